package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		word uint16
		op   CodeOp
		reg1 CodeReg
		reg2 CodeReg
		reg3 CodeReg
		imm  uint8
	}){
		{"imov", 0x0005, OP_IMOV, REG_R0, REG_R0, REG_R1, 0x05},
		{"imov_r1", 0x0103, OP_IMOV, REG_R1, REG_R0, REG_R0, 0x03},
		{"add", 0x2020, OP_ADD, REG_R0, REG_R1, REG_R0, 0x20},
		{"store", 0x1a4c, OP_STORE, REG_R2, REG_R2, REG_R3, 0x4c},
		{"hlt", 0xf800, OP_HLT, REG_R0, REG_R0, REG_R0, 0x00},
		{"all_ones", 0xffff, OP_HLT, REG_R7, REG_R7, REG_R7, 0xff},
	}

	for _, entry := range table {
		op, reg1, reg2, reg3, imm := Code{Word: entry.word}.Decode()
		assert.Equal(entry.op, op, entry.name)
		assert.Equal(entry.reg1, reg1, entry.name)
		assert.Equal(entry.reg2, reg2, entry.name)
		assert.Equal(entry.reg3, reg3, entry.name)
		assert.Equal(entry.imm, imm, entry.name)
	}
}

func TestCode_Make(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0x0005), MakeCodeImm(REG_R0, 5).Word)
	assert.Equal(uint16(0x0103), MakeCodeImm(REG_R1, 3).Word)
	assert.Equal(uint16(0x2020), MakeCode(OP_ADD, REG_R0, REG_R1, REG_R0).Word)
	assert.Equal(uint16(0x8820), MakeCode(OP_CMP, REG_R0, REG_R1, REG_R0).Word)
	assert.Equal(uint16(0xf800), MakeCodeHalt().Word)

	call := MakeCodeCall(0x1234)
	assert.Equal(uint16(0x9000), call.Word)
	assert.Equal(2, call.Size())
	addr, ok := call.Address()
	assert.True(ok)
	assert.Equal(uint16(0x1234), addr)

	_, ok = MakeCodeHalt().Address()
	assert.False(ok)
}

func TestCode_ImmediateNeed(t *testing.T) {
	assert := assert.New(t)

	for op := range CodeOp(32) {
		code := MakeCode(op, REG_R0, REG_R0, REG_R0)
		if op == OP_CALL {
			assert.Equal(1, code.ImmediateNeed(), op.String())
		} else {
			assert.Equal(0, code.ImmediateNeed(), op.String())
		}
	}
}

func TestCodeOp_Known(t *testing.T) {
	assert := assert.New(t)

	for op := range CodeOp(32) {
		known := op <= OP_NOP || op == OP_HLT
		assert.Equal(known, op.Known(), op.String())
	}
}

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{MakeCodeImm(REG_R0, 5), "imov r0 0x05"},
		{MakeCode(OP_MOV, REG_R3, REG_R4, REG_R0), "mov r3 r4"},
		{MakeCode(OP_LOAD, REG_R0, REG_EXH, REG_EXL), "load r0 r6 r7"},
		{MakeCode(OP_STORE, REG_R1, REG_R2, REG_R3), "store r1 r2 r3"},
		{MakeCode(OP_ADD, REG_R0, REG_R1, REG_R0), "add r0 r1"},
		{MakeCode(OP_JNZ, REG_EXH, REG_EXL, REG_R0), "jnz r6 r7"},
		{MakeCode(OP_PUSH, REG_R5, REG_R0, REG_R0), "push r5"},
		{MakeCode(OP_RET, REG_R0, REG_R0, REG_R0), "ret"},
		{MakeCodeCall(0x10), "call 0x0010"},
		{Code{Word: uint16(OP_CALL) << 11}, "call ?"},
		{MakeCodeHalt(), "hlt"},
		{Code{Word: 0xa800}, ".word 0xa800"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String())
	}
}

func TestOpcode_Size(t *testing.T) {
	assert := assert.New(t)

	op := &Opcode{Codes: []Code{MakeCodeCall(3), MakeCodeHalt()}}
	assert.Equal(3, op.Size())

	op = &Opcode{}
	assert.Equal(0, op.Size())
}
