/*
	   AC11 Assembler.

		Copyright (c) 2024, Richard Cornwell

		Permission is hereby granted, free of charge, to any person obtaining a
		copy of this software and associated documentation files (the "Software"),
		to deal in the Software without restriction, including without limitation
		the rights to use, copy, modify, merge, publish, distribute, sublicense,
		and/or sell copies of the Software, and to permit persons to whom the
		Software is furnished to do so, subject to the following conditions:

		The above copyright notice and this permission notice shall be included in
		all copies or substantial portions of the Software.

		THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
		IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
		FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
		RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
		IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
		CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/
package assembler

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcornwell/AC11/emu/isa"
)

// Terminal error kinds. Every assembly error wraps one of these and
// names the offending source line.
var (
	ErrParse          = errors.New("parse error")
	ErrSyntax         = errors.New("syntax error")
	ErrUndefinedLabel = errors.New("undefined label")
)

// Opcodes that take an operand. The rest must appear bare.
var needsOperand = map[isa.Opcode]bool{
	isa.Load: true, isa.Store: true, isa.Add: true, isa.Sub: true,
	isa.Mod: true, isa.Cmp: true, isa.Jmp: true, isa.Jz: true,
	isa.Jnz: true, isa.Jn: true, isa.Jnn: true,
}

// Program holds the two images produced by one translation.
type Program struct {
	Code []isa.Instruction
	Data []isa.DataWord
}

// A source line with its position in the original file, kept for error
// reporting after preprocessing dropped the noise around it.
type line struct {
	num  int
	text string
}

// translator holds the working state of a single translation. Every
// call to Assemble gets a fresh one, nothing leaks between runs.
type translator struct {
	labelPos map[string]int
	data     []isa.DataWord
	code     []isa.Instruction
}

// Assemble translates one source text into its instruction and data
// images.
func Assemble(src string) (*Program, error) {
	t := &translator{labelPos: make(map[string]int)}

	lines, err := preprocess(src)
	if err != nil {
		return nil, err
	}
	if err := t.parseLabels(lines); err != nil {
		return nil, err
	}
	if err := t.parseInstructions(lines); err != nil {
		return nil, err
	}
	return &Program{Code: t.code, Data: t.data}, nil
}

// Translate assembles the source file and writes both image files.
// Nothing is written unless the whole translation succeeds.
func Translate(srcPath, instPath, dataPath string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	prog, err := Assemble(string(src))
	if err != nil {
		return err
	}
	if err := isa.WriteData(dataPath, prog.Data); err != nil {
		return err
	}
	return isa.WriteCode(instPath, prog.Code)
}

// preprocess cuts everything before the .data header (the .text header
// when the source has no .data), strips
// comments and whitespace, and drops blank and section-header lines.
// Original line numbers survive for diagnostics.
func preprocess(src string) ([]line, error) {
	if !strings.Contains(src, ".text") {
		return nil, fmt.Errorf("%w: missing .text section", ErrParse)
	}
	start := strings.Index(src, ".data")
	if start == -1 {
		start = strings.Index(src, ".text")
	}

	var lines []line
	offset := 0
	for num, text := range strings.Split(src, "\n") {
		at := offset
		offset += len(text) + 1
		if at+len(text) <= start {
			continue
		}
		if pos := strings.Index(text, ";"); pos != -1 {
			text = text[:pos]
		}
		text = strings.TrimSpace(text)
		if text == "" || isSectionHeader(text) {
			continue
		}
		lines = append(lines, line{num: num + 1, text: text})
	}
	return lines, nil
}

func isSectionHeader(text string) bool {
	return text == ".data" || text == ".data:" || text == ".text" || text == ".text:"
}

// parseLabels is the first pass: walk every line, advance the data and
// instruction pointers, and record where each label lands.
func (t *translator) parseLabels(lines []line) error {
	dataPtr := 0
	instPtr := 0
	for _, ln := range lines {
		colon := strings.Index(ln.text, ":")
		if colon == -1 {
			// Plain instruction.
			instPtr++
			continue
		}

		name := strings.TrimSpace(ln.text[:colon])
		if name == "" || strings.ContainsAny(name, " \t") {
			return fmt.Errorf("line %d: %w: bad label %q", ln.num, ErrParse, name)
		}
		rest := strings.TrimSpace(ln.text[colon+1:])
		if rest == "" {
			// Instruction label, points at the next instruction.
			t.labelPos[name] = instPtr
			continue
		}

		// Data declaration: type plus literal or label.
		quoted := ""
		if q := strings.Index(rest, "'"); q != -1 {
			quoted = rest[q:]
			rest = strings.TrimSpace(rest[:q])
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return fmt.Errorf("line %d: %w: missing data type", ln.num, ErrParse)
		}
		ty := isa.DataType(fields[0])
		if !ty.Valid() {
			return fmt.Errorf("line %d: %w: unknown data type %q", ln.num, ErrParse, fields[0])
		}

		switch ty {
		case isa.String:
			if quoted == "" {
				return fmt.Errorf("line %d: %w: string needs a quoted literal", ln.num, ErrSyntax)
			}
			chars, err := stringChars(quoted)
			if err != nil {
				return fmt.Errorf("line %d: %w", ln.num, err)
			}
			t.labelPos[name] = dataPtr
			t.data = append(t.data, chars...)
			dataPtr += len(chars)

		case isa.Char:
			word, err := t.charWord(name, fields, quoted)
			if err != nil {
				return fmt.Errorf("line %d: %w", ln.num, err)
			}
			t.labelPos[name] = dataPtr
			t.data = append(t.data, word)
			dataPtr++

		case isa.Num:
			if len(fields) != 2 {
				return fmt.Errorf("line %d: %w: num needs one value", ln.num, ErrParse)
			}
			word, err := t.numWord(name, fields[1])
			if err != nil {
				return fmt.Errorf("line %d: %w", ln.num, err)
			}
			t.labelPos[name] = dataPtr
			t.data = append(t.data, word)
			dataPtr++
		}
	}
	return nil
}

// stringChars expands a quoted string literal into one char word per
// character. The literal must contain \0; the text up to the first \0
// is expanded, anything after it is dropped, and the terminator is
// stored as a NUL word.
func stringChars(quoted string) ([]isa.DataWord, error) {
	text := strings.ReplaceAll(quoted, "'", "")
	end := strings.Index(text, `\0`)
	if end == -1 {
		return nil, fmt.Errorf("%w: string literal missing \\0 terminator", ErrSyntax)
	}
	text = text[:end]

	words := make([]isa.DataWord, 0, len(text)+1)
	for _, ch := range text {
		words = append(words, isa.DataWord{Word: isa.NewWord(string(ch), int(ch), isa.Char)})
	}
	words = append(words, isa.DataWord{Word: isa.NewWord("\x00", 0, isa.Char)})
	return words, nil
}

// charWord builds a single char word from a quoted literal or a label
// reference.
func (t *translator) charWord(name string, fields []string, quoted string) (isa.DataWord, error) {
	if quoted == "" {
		// No literal: the value must be an already declared label.
		if len(fields) != 2 {
			return isa.DataWord{}, fmt.Errorf("%w: char needs a quoted literal", ErrSyntax)
		}
		pos, ok := t.labelPos[fields[1]]
		if !ok {
			return isa.DataWord{}, fmt.Errorf("%w: %q", ErrUndefinedLabel, fields[1])
		}
		return isa.DataWord{Word: isa.NewWord(name, pos, isa.Char), L2L: true}, nil
	}

	text := strings.ReplaceAll(quoted, "'", "")
	switch text {
	case `\n`:
		text = "\n"
	case `\0`:
		text = "\x00"
	}
	runes := []rune(text)
	if len(runes) != 1 {
		return isa.DataWord{}, fmt.Errorf("%w: char literal %q is not one character", ErrSyntax, text)
	}
	return isa.DataWord{Word: isa.NewWord(name, int(runes[0]), isa.Char)}, nil
}

// numWord builds a num word from an integer literal or an already
// declared label, which is stored for relocation.
func (t *translator) numWord(name, value string) (isa.DataWord, error) {
	if val, err := strconv.Atoi(value); err == nil {
		return isa.DataWord{Word: isa.NewWord(name, val, isa.Num)}, nil
	}
	pos, ok := t.labelPos[value]
	if !ok {
		return isa.DataWord{}, fmt.Errorf("%w: %q", ErrUndefinedLabel, value)
	}
	return isa.DataWord{Word: isa.NewWord(name, pos, isa.Num), L2L: true}, nil
}

// parseInstructions is the second pass: emit an instruction record for
// every non-label line, resolving symbolic operands through the label
// table built by the first pass.
func (t *translator) parseInstructions(lines []line) error {
	for _, ln := range lines {
		if strings.Contains(ln.text, ":") {
			continue
		}
		fields := strings.Fields(ln.text)
		op := isa.Opcode(fields[0])
		if !op.Valid() {
			return fmt.Errorf("line %d: %w: unknown mnemonic %q", ln.num, ErrParse, fields[0])
		}

		if len(fields) == 1 {
			if needsOperand[op] {
				return fmt.Errorf("line %d: %w: %s needs an operand", ln.num, ErrParse, op)
			}
			t.code = append(t.code, isa.Instruction{Opcode: op})
			continue
		}
		if len(fields) > 2 {
			return fmt.Errorf("line %d: %w: extra data after operand", ln.num, ErrParse)
		}
		if !needsOperand[op] {
			return fmt.Errorf("line %d: %w: %s takes no operand", ln.num, ErrParse, op)
		}

		operand := fields[1]
		indirect := false
		if strings.HasPrefix(operand, "[") && strings.HasSuffix(operand, "]") {
			operand = operand[1 : len(operand)-1]
			indirect = true
		}

		arg, err := strconv.Atoi(operand)
		if err != nil {
			pos, ok := t.labelPos[operand]
			if !ok {
				return fmt.Errorf("line %d: %w: %q", ln.num, ErrUndefinedLabel, operand)
			}
			arg = pos
		}
		t.code = append(t.code, isa.Instruction{
			Opcode: op, Arg: arg, HasArg: true, Indirect: indirect,
		})
	}
	return nil
}
