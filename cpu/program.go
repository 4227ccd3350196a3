package cpu

import (
	"iter"
)

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode covering a memory address.
type Debug struct {
	*Opcode
	Index int // Word offset of ip within the opcode.
}

func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(ip) >= op.Ip && int(ip) < op.Ip+op.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, starting at address 0.
// Gaps between opcodes are zero filled.
func (prog *Program) Binary() (bins []uint16, err error) {
	for ip, code := range prog.Codes() {
		end := int(ip) + code.Size()
		if end > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		if end > len(bins) {
			bins = append(bins, make([]uint16, end-len(bins))...)
		}
		bins[ip] = code.Word
		copy(bins[int(ip)+1:end], code.Immediates)
	}

	return
}

// Codes iterates over every code in the program, with its address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			ip := op.Ip
			for _, code := range op.Codes {
				if !yield(uint16(ip), code) {
					return
				}
				ip += code.Size()
			}
		}
	}
}
