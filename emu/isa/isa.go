/*
 * AC11 - Instruction set and binary image formats.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package isa

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Opcode is an instruction mnemonic. The string value is also the wire
// form used by the instruction image files.
type Opcode string

const (
	Load  Opcode = "load"
	Store Opcode = "store"
	Add   Opcode = "add"
	Sub   Opcode = "sub"
	Mod   Opcode = "mod"
	Cmp   Opcode = "cmp"
	Jmp   Opcode = "jmp"
	Jz    Opcode = "jz"
	Jnz   Opcode = "jnz"
	Jn    Opcode = "jn"
	Jnn   Opcode = "jnn"
	Push  Opcode = "push"
	Pop   Opcode = "pop"
	Iret  Opcode = "iret"
	Ei    Opcode = "ei"
	Di    Opcode = "di"
	Hlt   Opcode = "hlt"

	// Latch selectors for the data path. Never appear in images.
	Interrupt Opcode = "interrupt"
	Indirect  Opcode = "indirect"
)

// Opcode groups used by the control unit and the loader.
var (
	// Basic instructions execute in the common fetch/address/operate shape.
	Basic = opcodeSet(Load, Store, Add, Sub, Mod, Cmp, Ei, Di, Hlt)

	// Control flow instructions load their target into PC when taken.
	ControlFlow = opcodeSet(Jmp, Jz, Jnz, Jn, Jnn)

	// Arithmetic instructions latch ACC from the ALU result.
	Arithmetic = opcodeSet(Add, Sub, Mod)

	// Address instructions carry a data memory address in their arg.
	AddressOps = opcodeSet(Load, Store, Add, Sub, Mod, Cmp)

	// Stack instructions address memory through SP.
	StackOps = opcodeSet(Push, Pop, Iret)
)

func opcodeSet(ops ...Opcode) map[Opcode]bool {
	set := make(map[Opcode]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

// Valid reports whether op is a real mnemonic.
func (op Opcode) Valid() bool {
	return Basic[op] || ControlFlow[op] || StackOps[op]
}

// DataType tags a data memory word.
type DataType string

const (
	Num    DataType = "num"
	Char   DataType = "char"
	String DataType = "string"
)

// Valid reports whether ty is a known data type.
func (ty DataType) Valid() bool {
	return ty == Num || ty == Char || ty == String
}

// Word is one data memory cell. Characters are stored as their code
// point. Name is cosmetic, kept for trace output only.
type Word struct {
	Name string
	Type DataType
	Val  int
}

// NewWord builds a tagged data word.
func NewWord(name string, val int, ty DataType) Word {
	return Word{Name: name, Type: ty, Val: val}
}

func (w Word) String() string {
	if w.Type == "" {
		return "null"
	}
	return fmt.Sprintf("{%s %s %d}", w.Name, w.Type, w.Val)
}

// DataWord is a Word as it appears in a data image, carrying the
// label-to-label flag the loader needs for relocation.
type DataWord struct {
	Word
	L2L bool
}

// Instruction is one decoded instruction memory cell. Arg is only
// meaningful when HasArg is set. Indirect selects indirect addressing.
type Instruction struct {
	Opcode   Opcode
	Arg      int
	HasArg   bool
	Indirect bool
}

// Wire forms. Arg and Val are stringified integers, absent args are the
// literal "None".
type instImage struct {
	Opcode      string `json:"opcode"`
	Arg         string `json:"arg"`
	AddressType bool   `json:"address_type"`
}

type dataImage struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Val  string `json:"val"`
	L2L  bool   `json:"l2l"`
}

const noArg = "None"

// EncodeCode renders instructions in the instruction image format.
func EncodeCode(code []Instruction) ([]byte, error) {
	image := make([]instImage, len(code))
	for i, inst := range code {
		arg := noArg
		if inst.HasArg {
			arg = strconv.Itoa(inst.Arg)
		}
		image[i] = instImage{
			Opcode:      string(inst.Opcode),
			Arg:         arg,
			AddressType: inst.Indirect,
		}
	}
	return json.MarshalIndent(image, "", "    ")
}

// DecodeCode parses an instruction image.
func DecodeCode(data []byte) ([]Instruction, error) {
	var image []instImage
	if err := json.Unmarshal(data, &image); err != nil {
		return nil, err
	}
	code := make([]Instruction, len(image))
	for i, rec := range image {
		op := Opcode(rec.Opcode)
		if !op.Valid() {
			return nil, fmt.Errorf("instruction %d: unknown opcode %q", i, rec.Opcode)
		}
		inst := Instruction{Opcode: op, Indirect: rec.AddressType}
		if rec.Arg != noArg {
			arg, err := strconv.Atoi(rec.Arg)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: bad arg %q", i, rec.Arg)
			}
			inst.Arg = arg
			inst.HasArg = true
		}
		code[i] = inst
	}
	return code, nil
}

// EncodeData renders data words in the data image format.
func EncodeData(data []DataWord) ([]byte, error) {
	image := make([]dataImage, len(data))
	for i, word := range data {
		image[i] = dataImage{
			Name: word.Name,
			Type: string(word.Type),
			Val:  strconv.Itoa(word.Val),
			L2L:  word.L2L,
		}
	}
	return json.MarshalIndent(image, "", "    ")
}

// DecodeData parses a data image.
func DecodeData(data []byte) ([]DataWord, error) {
	var image []dataImage
	if err := json.Unmarshal(data, &image); err != nil {
		return nil, err
	}
	words := make([]DataWord, len(image))
	for i, rec := range image {
		ty := DataType(rec.Type)
		if !ty.Valid() {
			return nil, fmt.Errorf("data word %d: unknown type %q", i, rec.Type)
		}
		val, err := strconv.Atoi(rec.Val)
		if err != nil {
			return nil, fmt.Errorf("data word %d: bad value %q", i, rec.Val)
		}
		words[i] = DataWord{Word: Word{Name: rec.Name, Type: ty, Val: val}, L2L: rec.L2L}
	}
	return words, nil
}

// ReadCode loads an instruction image file.
func ReadCode(path string) ([]Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	code, err := DecodeCode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// ReadData loads a data image file.
func ReadData(path string) ([]DataWord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	words, err := DecodeData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// LoadCodeData loads an instruction and data image pair.
func LoadCodeData(instPath, dataPath string) ([]Instruction, []DataWord, error) {
	code, err := ReadCode(instPath)
	if err != nil {
		return nil, nil, err
	}
	data, err := ReadData(dataPath)
	if err != nil {
		return nil, nil, err
	}
	return code, data, nil
}

// WriteCode writes an instruction image. The file appears atomically,
// a failed write leaves no partial image behind.
func WriteCode(path string, code []Instruction) error {
	image, err := EncodeCode(code)
	if err != nil {
		return err
	}
	return writeAtomic(path, image)
}

// WriteData writes a data image atomically.
func WriteData(path string, data []DataWord) error {
	image, err := EncodeData(data)
	if err != nil {
		return err
	}
	return writeAtomic(path, image)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".image-*")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
