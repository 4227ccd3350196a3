// Package cpu implements the processor and assembler for the S1603 system.
//
// The CPU consists of a program counter (PC), eight 16-bit general-purpose
// registers (r0-r7), a zero flag, and a stack pointer (SP) into a flat
// 65536 word memory. Registers r6 and r7 double as the extended address
// pair (exh, exl) for long jumps. The stack grows down from STACK_TOP and
// shares its top words with the framebuffer window.
//
// The assembler provides an assembly language for the S1603 instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
