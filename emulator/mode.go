package emulator

import (
	"strings"
)

// Mode selects how frames drive simulation passes.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_REPLAY     = Mode(iota) // replay
	MODE_CONTINUOUS              // continuous
)

// ParseMode returns the mode for its name.
func ParseMode(name string) (mode Mode, err error) {
	for mode = MODE_REPLAY; mode <= MODE_CONTINUOUS; mode++ {
		if strings.EqualFold(name, mode.String()) {
			return
		}
	}

	mode = MODE_REPLAY
	err = ErrModeInvalid(name)
	return
}
