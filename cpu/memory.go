// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Memory map. All addresses are word addresses.
const (
	MEMORY_SIZE = 0x10000 // Number of addressable words.
	VRAM_START  = 0xF000  // First framebuffer word.
	VRAM_END    = 0xFFFC  // Last framebuffer word (inclusive).
	VRAM_SIZE   = VRAM_END - VRAM_START + 1
	STACK_TOP   = 0xFFFC // Initial stack pointer, shared with VRAM_END.
	O_PORT_FLAG = 0xFFFD // Output port flag register (reserved).
	O_PORT      = 0xFFFE // Output port (reserved).
	I_PORT      = 0xFFFF // Input port (reserved).
)

// Memory is the flat word-addressable store shared by code, data,
// the stack and the framebuffer.
type Memory [MEMORY_SIZE]uint16

// Read a word. Addresses are wider than a word so that computed
// addresses which overflow the address space are caught.
func (mem *Memory) Read(addr uint32) (value uint16, err error) {
	if addr >= MEMORY_SIZE {
		err = ErrAddress(addr)
		return
	}

	value = mem[addr]
	return
}

// Write a word.
func (mem *Memory) Write(addr uint32, value uint16) (err error) {
	if addr >= MEMORY_SIZE {
		err = ErrAddress(addr)
		return
	}

	mem[addr] = value
	return
}

// Load clears memory and copies the image in starting at address 0.
func (mem *Memory) Load(image []uint16) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrAddress(len(image))
		return
	}

	clear(mem[:])
	copy(mem[:], image)

	return
}
