/*
 * AC11 data path test cases.
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

package datapath

import (
	"errors"
	"testing"

	"github.com/rcornwell/AC11/emu/device"
	"github.com/rcornwell/AC11/emu/isa"
)

func newDP(input []device.Entry) *DataPath {
	return New(device.NewInput(input), device.NewOutput())
}

func TestNewColdState(t *testing.T) {
	dp := newDP(nil)
	if dp.SP != MemSize {
		t.Errorf("SP got: %d expected: %d", dp.SP, MemSize)
	}
	if dp.ACC.Type != isa.Num || dp.ACC.Val != 0 {
		t.Errorf("ACC got: %s expected: num 0", dp.ACC)
	}
}

// The ISR lands at the start of both memories, the program image right
// after it, with data addresses and jump targets rewritten for the
// offsets.
func TestLoadProgramLayout(t *testing.T) {
	dp := newDP(nil)

	isrCode := []isa.Instruction{
		{Opcode: isa.Load, Arg: 0, HasArg: true, Indirect: true},
		{Opcode: isa.Iret},
	}
	isrData := []isa.DataWord{{Word: isa.NewWord("in_ptr", 0, isa.Num)}}
	entry, err := dp.LoadProgram(isrCode, isrData)
	if err != nil {
		t.Fatalf("isr load returned error: %v", err)
	}
	if entry != 0 {
		t.Errorf("isr entry got: %d expected: 0", entry)
	}
	dp.SetIntVector(entry)

	progCode := []isa.Instruction{
		{Opcode: isa.Load, Arg: 1, HasArg: true},
		{Opcode: isa.Jmp, Arg: 0, HasArg: true},
		{Opcode: isa.Hlt},
	}
	progData := []isa.DataWord{
		{Word: isa.NewWord("a", 7, isa.Num)},
		{Word: isa.NewWord("p", 0, isa.Num), L2L: true},
	}
	entry, err = dp.LoadProgram(progCode, progData)
	if err != nil {
		t.Fatalf("program load returned error: %v", err)
	}
	if entry != len(isrCode) {
		t.Errorf("program entry got: %d expected: %d", entry, len(isrCode))
	}

	// ISR data sits right past the reserved cells, its memory arg is
	// rewritten by the ISR data offset.
	if dp.IMem[0].Arg != 3 {
		t.Errorf("isr load arg got: %d expected: 3", dp.IMem[0].Arg)
	}
	if dp.DMem[3].Name != "in_ptr" {
		t.Errorf("isr data got: %s expected: in_ptr", dp.DMem[3])
	}

	// Program data follows the ISR's at cell 4.
	if dp.IMem[2].Arg != 5 {
		t.Errorf("program load arg got: %d expected: 5", dp.IMem[2].Arg)
	}
	if dp.IMem[3].Arg != 2 {
		t.Errorf("program jmp arg got: %d expected: 2", dp.IMem[3].Arg)
	}
	if dp.IMem[4].Opcode != isa.Hlt || dp.IMem[4].HasArg {
		t.Errorf("hlt got: %+v expected bare hlt", dp.IMem[4])
	}
	if dp.DMem[4].Val != 7 {
		t.Errorf("program data got: %s expected: num 7", dp.DMem[4])
	}

	// Label-to-label word relocated by the program data offset.
	if dp.DMem[5].Val != 4 {
		t.Errorf("l2l word got: %d expected: 4", dp.DMem[5].Val)
	}

	// Interrupt vector points at the ISR entry.
	if dp.DMem[IntVector].Val != 0 {
		t.Errorf("vector got: %d expected: 0", dp.DMem[IntVector].Val)
	}
}

func TestLoadProgramOverflow(t *testing.T) {
	dp := newDP(nil)
	data := make([]isa.DataWord, MemSize)
	if _, err := dp.LoadProgram(nil, data); err == nil {
		t.Error("oversized data image did not return error")
	}
	code := make([]isa.Instruction, MemSize+1)
	if _, err := dp.LoadProgram(code, nil); err == nil {
		t.Error("oversized instruction image did not return error")
	}
}

func TestLatchPC(t *testing.T) {
	dp := newDP(nil)

	dp.PC = 5
	dp.LatchPC(isa.Load, 0)
	if dp.PC != 6 {
		t.Errorf("pc after load got: %d expected: 6", dp.PC)
	}

	dp.LatchPC(isa.Jmp, 40)
	if dp.PC != 40 {
		t.Errorf("pc after jmp got: %d expected: 40", dp.PC)
	}

	dp.DR = isa.NewWord("saved_pc", 17, isa.Num)
	dp.LatchPC(isa.Iret, 0)
	if dp.PC != 17 {
		t.Errorf("pc after iret got: %d expected: 17", dp.PC)
	}

	dp.LatchPC(isa.Push, 0)
	if dp.PC != 18 {
		t.Errorf("pc after push got: %d expected: 18", dp.PC)
	}
}

func TestLatchAR(t *testing.T) {
	dp := newDP(nil)

	dp.LatchAR(isa.Interrupt)
	if dp.AR != IntVector {
		t.Errorf("ar for interrupt got: %d expected: %d", dp.AR, IntVector)
	}

	dp.IR = isa.Instruction{Opcode: isa.Load, Arg: 9, HasArg: true}
	dp.LatchAR(isa.Load)
	if dp.AR != 9 {
		t.Errorf("ar for load got: %d expected: 9", dp.AR)
	}

	dp.DR = isa.NewWord("", 33, isa.Num)
	dp.LatchAR(isa.Indirect)
	if dp.AR != 33 {
		t.Errorf("ar for indirect got: %d expected: 33", dp.AR)
	}

	dp.SP = 2040
	dp.LatchAR(isa.Push)
	if dp.AR != 2040 {
		t.Errorf("ar for push got: %d expected: 2040", dp.AR)
	}

	// ei carries no address, the latch is a no-op.
	dp.LatchAR(isa.Ei)
	if dp.AR != 2040 {
		t.Errorf("ar for ei got: %d expected: 2040", dp.AR)
	}
}

func TestLatchSP(t *testing.T) {
	dp := newDP(nil)
	dp.LatchSP(isa.Push)
	dp.LatchSP(isa.Interrupt)
	if dp.SP != MemSize-2 {
		t.Errorf("sp after two pushes got: %d expected: %d", dp.SP, MemSize-2)
	}
	dp.LatchSP(isa.Pop)
	dp.LatchSP(isa.Iret)
	if dp.SP != MemSize {
		t.Errorf("sp after two pops got: %d expected: %d", dp.SP, MemSize)
	}
}

func TestLatchACC(t *testing.T) {
	dp := newDP(nil)

	dp.PC = 12
	dp.LatchACC(isa.Interrupt)
	if dp.ACC.Type != isa.Num || dp.ACC.Val != 12 {
		t.Errorf("acc after interrupt got: %s expected: num 12", dp.ACC)
	}

	dp.DR = isa.NewWord("x", 'x', isa.Char)
	dp.LatchACC(isa.Load)
	if dp.ACC != dp.DR {
		t.Errorf("acc after load got: %s expected: %s", dp.ACC, dp.DR)
	}

	dp.ALU.Out = 99
	dp.LatchACC(isa.Add)
	if dp.ACC.Type != isa.Num || dp.ACC.Val != 99 {
		t.Errorf("acc after add got: %s expected: num 99", dp.ACC)
	}
}

func TestLatchALU(t *testing.T) {
	dp := newDP(nil)
	dp.ACC = isa.NewWord("", 4, isa.Num)
	dp.DR = isa.NewWord("", 9, isa.Num)
	dp.LatchALU()
	if dp.ALU.Left != 4 || dp.ALU.Right != 9 {
		t.Errorf("alu inputs got: %d %d expected: 4 9", dp.ALU.Left, dp.ALU.Right)
	}
}

// A data read at cell 0 consumes a scheduled character.
func TestReadMemInputPort(t *testing.T) {
	dp := newDP([]device.Entry{{Tick: 0, Char: 'z'}})
	dp.AR = InputPort
	if err := dp.ReadMem(DataMem); err != nil {
		t.Fatalf("read returned error: %v", err)
	}
	if dp.DR.Type != isa.Char || dp.DR.Val != 'z' {
		t.Errorf("dr got: %s expected: char z", dp.DR)
	}

	err := dp.ReadMem(DataMem)
	if !errors.Is(err, device.ErrInputExhausted) {
		t.Errorf("read on empty got: %v expected: %v", err, device.ErrInputExhausted)
	}
}

// A data write at cell 1 goes to the output device, not to memory.
func TestWriteDMemOutputPort(t *testing.T) {
	dp := newDP(nil)
	dp.AR = OutputPort
	dp.ACC = isa.NewWord("", 'q', isa.Char)
	if err := dp.WriteDMem(); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	dp.ACC = isa.NewWord("", 7, isa.Num)
	if err := dp.WriteDMem(); err != nil {
		t.Fatalf("write returned error: %v", err)
	}

	data := dp.Out.Data()
	if len(data) != 2 || data[0] != "q" || data[1] != "7" {
		t.Errorf("output got: %q expected: [q 7]", data)
	}
	if dp.DMem[OutputPort].Type != "" {
		t.Error("output write landed in memory")
	}
}

func TestWriteDMem(t *testing.T) {
	dp := newDP(nil)
	dp.AR = 100
	dp.ACC = isa.NewWord("v", 5, isa.Num)
	if err := dp.WriteDMem(); err != nil {
		t.Fatalf("write returned error: %v", err)
	}
	if dp.DMem[100] != dp.ACC {
		t.Errorf("mem got: %s expected: %s", dp.DMem[100], dp.ACC)
	}

	dp.AR = MemSize
	if err := dp.WriteDMem(); err == nil {
		t.Error("out of range write did not return error")
	}
	dp.AR = MemSize
	if err := dp.ReadMem(DataMem); err == nil {
		t.Error("out of range read did not return error")
	}
}
