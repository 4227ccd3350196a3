package cpu

// The stack lives in memory, growing down from STACK_TOP. The stack
// pointer addresses the next free slot. The top of the stack overlaps
// the top of the framebuffer.

// Push a value onto the stack.
func (cpu *Cpu) Push(value uint16) (err error) {
	if cpu.Sp == 0 {
		err = ErrStackFull
		return
	}

	cpu.Memory[cpu.Sp] = value
	cpu.Sp--

	return
}

// Pop a value from the stack.
func (cpu *Cpu) Pop() (value uint16, err error) {
	if cpu.Sp == MEMORY_SIZE-1 {
		err = ErrStackEmpty
		return
	}

	cpu.Sp++
	value = cpu.Memory[cpu.Sp]

	return
}

// Depth is the number of words pushed relative to STACK_TOP.
// Negative if more words were popped than pushed.
func (cpu *Cpu) Depth() int {
	return STACK_TOP - int(cpu.Sp)
}

// Empty returns true if nothing is on the stack.
func (cpu *Cpu) Empty() bool {
	return cpu.Depth() <= 0
}

// Peek at the top of stack.
func (cpu *Cpu) Peek() (value uint16, ok bool) {
	if cpu.Empty() {
		return
	}

	return cpu.Memory[cpu.Sp+1], true
}
