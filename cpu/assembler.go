// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// CodeLink selects which part of a label address a link fixup patches.
type CodeLink int

const (
	LINK_ADDRESS = CodeLink(0) // Whole address, into the auxiliary word.
	LINK_HI      = CodeLink(1) // High byte, into the imov immediate.
	LINK_LO      = CodeLink(2) // Low byte, into the imov immediate.
	LINK_WORD    = CodeLink(3) // Whole address, as a .word
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = func() (equ map[string]string) {
	equ = maps.Collect((&Cpu{}).Defines())
	equ["LINENO"] = "0"
	return
}()

// Assembler is a single pass macro assembler for the S1603.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]CodeReg{
	"r0":  REG_R0,
	"r1":  REG_R1,
	"r2":  REG_R2,
	"r3":  REG_R3,
	"r4":  REG_R4,
	"r5":  REG_R5,
	"r6":  REG_R6,
	"r7":  REG_R7,
	"exh": REG_EXH,
	"exl": REG_EXL,
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	}

	if invert {
		value = ^value
	}

	return
}

// wordOf returns a 16-bit value.
func (asm *Assembler) wordOf(word string) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	// Permit negative 16-bit values.
	if v32 > 0xffff && v32 < 0xffff8000 {
		err = ErrImmediateRange
		return
	}

	value = uint16(v32)
	return
}

// register returns the register index for a word.
func (asm *Assembler) register(word string) (reg CodeReg, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// registers decodes a fixed number of register operands.
func (asm *Assembler) registers(count int, words []string) (regs []CodeReg, err error) {
	if len(words) < count {
		err = ErrOpcodeMissing
		return
	}
	if len(words) > count {
		err = ErrOpcodeExtraArgs
		return
	}

	for _, word := range words {
		var reg CodeReg
		reg, err = asm.register(word)
		if err != nil {
			return
		}
		regs = append(regs, reg)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	err = nil
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
			continue
		}
		// EQUATE.hi and EQUATE.lo
		for _, suffix := range []string{".hi", ".lo"} {
			base, found := strings.CutSuffix(word, suffix)
			if !found {
				continue
			}
			equate, ok = asm.Equate[base]
			if ok {
				words[n] = equate + suffix
			}
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + last.Size()
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Codes) < 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		linked := &op.Codes[len(op.Codes)-1]
		switch op.Link {
		case LINK_ADDRESS:
			if len(linked.Immediates) < 1 {
				log.Fatalf("Missing address for link label '%s' at line %d: %v", label, op.LineNo, op.Words)
			}
			linked.Immediates[0] = uint16(ip)
		case LINK_HI:
			linked.Word = (linked.Word & 0xff00) | uint16((ip>>8)&0xff)
		case LINK_LO:
			linked.Word = (linked.Word & 0xff00) | uint16((ip>>0)&0xff)
		case LINK_WORD:
			linked.Word = uint16(ip)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// opRegs is the number of register operands of the register forms.
var opRegs = map[string]struct {
	op    CodeOp
	count int
}{
	"hlt":   {OP_HLT, 0},
	"nop":   {OP_NOP, 0},
	"ret":   {OP_RET, 0},
	"push":  {OP_PUSH, 1},
	"pop":   {OP_POP, 1},
	"mov":   {OP_MOV, 2},
	"add":   {OP_ADD, 2},
	"sub":   {OP_SUB, 2},
	"mul":   {OP_MUL, 2},
	"div":   {OP_DIV, 2},
	"and":   {OP_AND, 2},
	"or":    {OP_OR, 2},
	"xor":   {OP_XOR, 2},
	"not":   {OP_NOT, 2},
	"cmp":   {OP_CMP, 2},
	"jmp":   {OP_JMP, 2},
	"jz":    {OP_JZ, 2},
	"jnz":   {OP_JNZ, 2},
	"load":  {OP_LOAD, 3},
	"store": {OP_STORE, 3},
}

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isLabel returns true if the word could be a label reference.
func isLabel(word string) bool {
	return labelRe.MatchString(word)
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string
	var link CodeLink
	var org = -1

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil {
			return
		}
		if org >= 0 {
			asm.Opcode = append(asm.Opcode, Opcode{LineNo: lineno, Ip: org, Words: initial_words})
			return
		}
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, LinkLabel: label, Link: link}
		if opcode.Ip+opcode.Size() > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Alternate syntax substitutions
	switch mnemonic {
	case "halt":
		mnemonic = "hlt"
	case "jump":
		mnemonic = "jmp"
	}

	form, ok := opRegs[mnemonic]
	if ok {
		var regs []CodeReg
		regs, err = asm.registers(form.count, args)
		if err != nil {
			return
		}
		regs = append(regs, REG_R0, REG_R0, REG_R0)
		codes = append(codes, MakeCode(form.op, regs[0], regs[1], regs[2]))
		return
	}

	switch mnemonic {
	case "imov":
		if len(args) < 2 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var reg CodeReg
		reg, err = asm.register(args[0])
		if err != nil {
			return
		}
		value := args[1]
		part := LINK_ADDRESS
		if base, ok := strings.CutSuffix(value, ".hi"); ok {
			value, part = base, LINK_HI
		} else if base, ok := strings.CutSuffix(value, ".lo"); ok {
			value, part = base, LINK_LO
		}
		if part != LINK_ADDRESS && isLabel(value) {
			label = value
			link = part
			codes = append(codes, MakeCodeImm(reg, 0))
			return
		}
		var imm uint32
		imm, err = asm.valueOf(value)
		if err != nil {
			return
		}
		switch part {
		case LINK_HI:
			imm = (imm >> 8) & 0xff
		case LINK_LO:
			imm &= 0xff
		}
		if imm > 0xff {
			err = ErrImmediateRange
			return
		}
		codes = append(codes, MakeCodeImm(reg, uint8(imm)))
	case "call":
		if len(args) < 1 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		if isLabel(args[0]) {
			label = args[0]
			link = LINK_ADDRESS
			codes = append(codes, MakeCodeCall(0))
			return
		}
		var addr uint16
		addr, err = asm.wordOf(args[0])
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeCall(addr))
	case ".word":
		if len(args) < 1 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		if isLabel(args[0]) {
			label = args[0]
			link = LINK_WORD
			codes = append(codes, Code{})
			return
		}
		var value uint16
		value, err = asm.wordOf(args[0])
		if err != nil {
			return
		}
		codes = append(codes, Code{Word: value})
	case ".org":
		if len(args) < 1 {
			err = ErrOpcodeMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var value uint32
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if int(value) < asm.currentIp() || value > MEMORY_SIZE {
			err = ErrImmediateRange
			return
		}
		org = int(value)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
