package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is the 5-bit operation selector of an instruction word.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_IMOV  = CodeOp(0b00000) // imov
	OP_MOV   = CodeOp(0b00001) // mov
	OP_LOAD  = CodeOp(0b00010) // load
	OP_STORE = CodeOp(0b00011) // store
	OP_ADD   = CodeOp(0b00100) // add
	OP_SUB   = CodeOp(0b00101) // sub
	OP_MUL   = CodeOp(0b00110) // mul
	OP_DIV   = CodeOp(0b00111) // div
	OP_AND   = CodeOp(0b01000) // and
	OP_OR    = CodeOp(0b01001) // or
	OP_XOR   = CodeOp(0b01010) // xor
	OP_NOT   = CodeOp(0b01011) // not
	OP_JMP   = CodeOp(0b01100) // jmp
	OP_JZ    = CodeOp(0b01101) // jz
	OP_JNZ   = CodeOp(0b01110) // jnz
	OP_PUSH  = CodeOp(0b01111) // push
	OP_POP   = CodeOp(0b10000) // pop
	OP_CMP   = CodeOp(0b10001) // cmp
	OP_CALL  = CodeOp(0b10010) // call
	OP_RET   = CodeOp(0b10011) // ret
	OP_NOP   = CodeOp(0b10100) // nop
	OP_HLT   = CodeOp(0b11111) // hlt
)

// Known returns true if the opcode has a defined behaviour.
func (op CodeOp) Known() bool {
	return (op >= OP_IMOV && op <= OP_NOP) || op == OP_HLT
}

// Words returns the number of memory words the instruction occupies.
func (op CodeOp) Words() int {
	if op == OP_CALL {
		return 2
	}
	return 1
}

// CodeReg is a 3-bit register index.
type CodeReg int

const (
	REG_R0  = CodeReg(0)
	REG_R1  = CodeReg(1)
	REG_R2  = CodeReg(2)
	REG_R3  = CodeReg(3)
	REG_R4  = CodeReg(4)
	REG_R5  = CodeReg(5)
	REG_R6  = CodeReg(6)
	REG_R7  = CodeReg(7)
	REG_EXH = REG_R6 // Extended address, high byte.
	REG_EXL = REG_R7 // Extended address, low byte.
)

func (reg CodeReg) String() string {
	return fmt.Sprintf("r%d", int(reg))
}

// Operand roles for the disassembler.
type operands int

const (
	args_none operands = iota
	args_r1
	args_r1_r2
	args_r1_r2_r3
	args_r1_imm
	args_address
)

var opArgs = map[CodeOp]operands{
	OP_HLT:   args_none,
	OP_NOP:   args_none,
	OP_RET:   args_none,
	OP_IMOV:  args_r1_imm,
	OP_MOV:   args_r1_r2,
	OP_LOAD:  args_r1_r2_r3,
	OP_STORE: args_r1_r2_r3,
	OP_ADD:   args_r1_r2,
	OP_SUB:   args_r1_r2,
	OP_MUL:   args_r1_r2,
	OP_DIV:   args_r1_r2,
	OP_AND:   args_r1_r2,
	OP_OR:    args_r1_r2,
	OP_XOR:   args_r1_r2,
	OP_NOT:   args_r1_r2,
	OP_JMP:   args_r1_r2,
	OP_JZ:    args_r1_r2,
	OP_JNZ:   args_r1_r2,
	OP_CMP:   args_r1_r2,
	OP_PUSH:  args_r1,
	OP_POP:   args_r1,
	OP_CALL:  args_address,
}

// Opcode represents a line of assembled code with its source location and generated instructions.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Code
	LinkLabel string
	Link      CodeLink
}

// Size returns the number of memory words used by the opcode's codes.
func (op *Opcode) Size() (size int) {
	for _, code := range op.Codes {
		size += code.Size()
	}
	return
}

// Code represents a single instruction word, plus the auxiliary
// word that follows it for two-word forms.
type Code struct {
	Word       uint16
	Immediates []uint16
}

// MakeCode creates a register form instruction.
func MakeCode(op CodeOp, reg1, reg2, reg3 CodeReg) Code {
	word := (uint16(op) << 11) | ((uint16(reg1) & 7) << 8) | ((uint16(reg2) & 7) << 5) | ((uint16(reg3) & 7) << 2)
	return Code{Word: word}
}

// MakeCodeImm creates an immediate load instruction.
func MakeCodeImm(reg CodeReg, imm uint8) Code {
	return Code{Word: (uint16(OP_IMOV) << 11) | ((uint16(reg) & 7) << 8) | uint16(imm)}
}

// MakeCodeCall creates a two-word call to an absolute address.
func MakeCodeCall(addr uint16) Code {
	return Code{Word: uint16(OP_CALL) << 11, Immediates: []uint16{addr}}
}

// MakeCodeHalt creates a halt instruction.
func MakeCodeHalt() Code {
	return MakeCode(OP_HLT, REG_R0, REG_R0, REG_R0)
}

// Op returns the opcode field, bits 15-11.
func (code Code) Op() CodeOp {
	return CodeOp((code.Word >> 11) & 0x1f)
}

// Decode returns the opcode, the three register fields and the
// immediate. Fields are not validated against the opcode.
func (code Code) Decode() (op CodeOp, reg1, reg2, reg3 CodeReg, imm uint8) {
	word := code.Word
	op = CodeOp((word >> 11) & 0x1f)
	reg1 = CodeReg((word >> 8) & 0x7)
	reg2 = CodeReg((word >> 5) & 0x7)
	reg3 = CodeReg((word >> 2) & 0x7)
	imm = uint8((word >> 0) & 0xff)
	return
}

// Address returns the auxiliary address operand of a two-word form.
func (code Code) Address() (addr uint16, ok bool) {
	if len(code.Immediates) < 1 {
		return
	}
	return code.Immediates[0], true
}

// ImmediateNeed returns the number of auxiliary words required by this instruction.
func (code Code) ImmediateNeed() int {
	return code.Op().Words() - 1
}

// Size returns the number of memory words this code occupies.
func (code Code) Size() int {
	return 1 + len(code.Immediates)
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op, reg1, reg2, reg3, imm := code.Decode()

	if !op.Known() {
		return fmt.Sprintf(".word 0x%04x", code.Word)
	}

	words := []string{op.String()}
	switch opArgs[op] {
	case args_r1:
		words = append(words, reg1.String())
	case args_r1_r2:
		words = append(words, reg1.String(), reg2.String())
	case args_r1_r2_r3:
		words = append(words, reg1.String(), reg2.String(), reg3.String())
	case args_r1_imm:
		words = append(words, reg1.String(), fmt.Sprintf("0x%02x", imm))
	case args_address:
		addr, ok := code.Address()
		if ok {
			words = append(words, fmt.Sprintf("0x%04x", addr))
		} else {
			words = append(words, "?")
		}
	}

	out = strings.Join(words, " ")

	return
}
