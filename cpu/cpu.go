package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("0x%x", MEMORY_SIZE),
	"VRAM_START":  fmt.Sprintf("0x%x", VRAM_START),
	"VRAM_END":    fmt.Sprintf("0x%x", VRAM_END),
	"STACK_TOP":   fmt.Sprintf("0x%x", STACK_TOP),
	"O_PORT_FLAG": fmt.Sprintf("0x%x", O_PORT_FLAG),
	"O_PORT":      fmt.Sprintf("0x%x", O_PORT),
	"I_PORT":      fmt.Sprintf("0x%x", I_PORT),
	"EXH":         REG_EXH.String(),
	"EXL":         REG_EXL.String(),
}

// Cpu is the simulation context for the S1603 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.
	Strict  bool // Set to make unknown opcodes fatal.

	Memory *Memory // Shared address space.

	Register [8]uint16 // Register bank.
	Sp       uint16    // Stack pointer; next free stack slot.
	Pc       uint16    // Current program counter.
	Zero     bool      // Zero flag, set by cmp.

	Ticks   int // Instructions completed since reset.
	Unknown int // Unknown opcodes executed since reset.
}

// NewCpu creates a new CPU with zeroed memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Memory: &Memory{},
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "sp", "zero",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"stack",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%04X", cpu.Pc)
		case "sp":
			strval = fmt.Sprintf("%04X", cpu.Sp)
		case "zero":
			strval = "false"
			if cpu.Zero {
				strval = "true"
			}
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7":
			strval = fmt.Sprintf("%04X", cpu.Register[byte(reg[1]-'0')])
		case "stack":
			val, ok := cpu.Peek()
			if ok {
				strval = fmt.Sprintf("%04X", val)
			} else {
				strval = "----"
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Reset the CPU state.
// - Clears the registers and the zero flag.
// - Sets the stack pointer to STACK_TOP, and the program counter to 0.
// - Zeros statistics counters.
// Memory is left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Sp = STACK_TOP
	cpu.Pc = 0
	cpu.Zero = false
	cpu.Ticks = 0
	cpu.Unknown = 0
}

// FetchCode fetches the instruction at the program counter, including
// the auxiliary word of two-word forms.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	word, err := cpu.Memory.Read(uint32(cpu.Pc))
	if err != nil {
		return
	}

	code = Code{Word: word}

	for n := range code.ImmediateNeed() {
		var imm uint16
		imm, err = cpu.Memory.Read(uint32(cpu.Pc) + 1 + uint32(n))
		if err != nil {
			return
		}
		code.Immediates = append(code.Immediates, imm)
	}

	return
}

// Tick executes a single CPU instruction cycle.
// Returns done when the instruction was a halt.
func (cpu *Cpu) Tick() (done bool, err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	done, err = cpu.Execute(code)

	return
}

// address forms a 16-bit address from a high and low register pair.
// The high register is not masked, so the result may fall outside of
// memory.
func address(hi, lo uint16) uint32 {
	return (uint32(hi) << 8) | uint32(lo)
}

// Execute executes a single decoded instruction located at the current
// program counter.
func (cpu *Cpu) Execute(code Code) (done bool, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, code)
	}

	if len(code.Immediates) < code.ImmediateNeed() {
		err = ErrImmediateShort
		return
	}

	op, r1, r2, r3, imm := code.Decode()
	reg := &cpu.Register

	next_ip := uint32(cpu.Pc) + uint32(op.Words())

	jump := func(target uint32) {
		if target >= MEMORY_SIZE {
			err = ErrAddress(target)
			return
		}
		next_ip = target
	}

	switch op {
	case OP_HLT:
		cpu.Ticks++
		done = true
		return
	case OP_IMOV:
		reg[r1] = uint16(imm)
	case OP_MOV:
		reg[r1] = reg[r2]
	case OP_LOAD:
		var value uint16
		value, err = cpu.Memory.Read(address(reg[r2], reg[r3]))
		if err != nil {
			return
		}
		reg[r1] = value
	case OP_STORE:
		err = cpu.Memory.Write(address(reg[r1], reg[r2]), reg[r3])
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR, OP_NOT:
		var output uint16
		output, err = cpu.doAlu(op, reg[r1], reg[r2])
		if err != nil {
			return
		}
		reg[r1] = output
	case OP_JMP:
		jump(address(reg[r1], reg[r2]))
	case OP_JZ:
		if cpu.Zero {
			jump(address(reg[r1], reg[r2]))
		}
	case OP_JNZ:
		if !cpu.Zero {
			jump(address(reg[r1], reg[r2]))
		}
	case OP_PUSH:
		err = cpu.Push(reg[r1])
	case OP_POP:
		var value uint16
		value, err = cpu.Pop()
		if err != nil {
			return
		}
		reg[r1] = value
	case OP_CMP:
		cpu.Zero = reg[r1] == reg[r2]
	case OP_CALL:
		if next_ip >= MEMORY_SIZE {
			err = ErrIpOverflow
			return
		}
		err = cpu.Push(uint16(next_ip))
		if err != nil {
			return
		}
		next_ip = uint32(code.Immediates[0])
	case OP_RET:
		var value uint16
		value, err = cpu.Pop()
		if err != nil {
			return
		}
		next_ip = uint32(value)
	case OP_NOP:
		// pass
	default:
		cpu.Unknown++
		log.Printf("%04x: unknown opcode 0x%02x (word 0x%04x)", cpu.Pc, int(op), code.Word)
		if cpu.Strict {
			err = ErrOpcodeUnknown
			return
		}
	}

	if err != nil {
		return
	}

	if next_ip >= MEMORY_SIZE {
		err = ErrIpOverflow
		return
	}

	cpu.Ticks++
	cpu.Pc = uint16(next_ip)

	return
}

// doAlu performs the requested ALU action, and returns the output value.
// All arithmetic wraps at 16 bits.
func (cpu *Cpu) doAlu(op CodeOp, input uint16, value uint16) (output uint16, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MUL:
		output = input * value
	case OP_DIV:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		output = input / value
	case OP_AND:
		output = input & value
	case OP_OR:
		output = input | value
	case OP_XOR:
		output = input ^ value
	case OP_NOT:
		output = ^value
	}

	return
}
