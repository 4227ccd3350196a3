package emulator

import (
	"errors"

	"github.com/ezrec/s1603/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit exceeded"))
)

// ErrModeInvalid is an unrecognized run mode name.
type ErrModeInvalid string

func (err ErrModeInvalid) Error() string {
	return f("mode '%v' invalid", string(err))
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     uint16
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("ip 0x%04x %v", err.Ip, err.Err)
	}
	return f("ip 0x%04x line %d %v", err.Ip, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
