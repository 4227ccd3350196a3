// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"iter"
	"log"

	"github.com/ezrec/s1603/cpu"
	"github.com/ezrec/s1603/display"
	"github.com/ezrec/s1603/internal"
)

// Emulator state. CPU + memory + framebuffer.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the loaded program listing, if any.

	Display display.Framebuffer // Framebuffer window over the CPU memory.

	Mode     Mode // Frame run mode.
	MaxTicks int  // Maximum ticks per pass; 0 is unlimited.
	Passes   int  // Completed simulation passes since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Display.Memory = emu.Cpu.Memory

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		emu.Cpu.Defines(),
		emu.Display.Defines(),
	)
}

// Load a binary image into memory, and reset.
// There is no listing for a bare image.
func (emu *Emulator) Load(image []uint16) (err error) {
	err = emu.Cpu.Memory.Load(image)
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}
	emu.Reset()

	return
}

// LoadProgram loads an assembled program into memory, and reset.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	bins, err := prog.Binary()
	if err != nil {
		return
	}

	err = emu.Load(bins)
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the processor state. Memory is left untouched.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Passes = 0
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: emu.LineNo(), Err: err}
		}
	}()

	done, err = emu.Cpu.Tick()

	return
}

// Run a single simulation pass, from address 0 until halt.
// Registers and memory carry over from the previous pass.
func (emu *Emulator) Run() (err error) {
	emu.Cpu.Pc = 0

	for ticks := 0; ; ticks++ {
		if emu.MaxTicks > 0 && ticks >= emu.MaxTicks {
			err = &ErrRuntime{Ip: emu.Cpu.Pc, LineNo: emu.LineNo(), Err: ErrTickLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	emu.Passes++

	if emu.Verbose {
		log.Printf("emulator: pass %d complete, %d ticks", emu.Passes, emu.Cpu.Ticks)
	}

	return
}

// Frame advances the simulation by one display frame, per the run
// mode, then renders the framebuffer.
func (emu *Emulator) Frame(r display.Renderer) (err error) {
	switch emu.Mode {
	case MODE_CONTINUOUS:
		if emu.Passes == 0 {
			err = emu.Run()
		}
	default:
		err = emu.Run()
	}
	if err != nil {
		return
	}

	err = emu.Display.Render(r)

	return
}
