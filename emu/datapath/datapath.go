/*
 * AC11 - Data path: registers, memories and micro operations.
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
	"fmt"

	"github.com/rcornwell/AC11/emu/alu"
	"github.com/rcornwell/AC11/emu/device"
	"github.com/rcornwell/AC11/emu/isa"
)

const (
	MemSize    = 2048 // Words in each memory.
	InputPort  = 0    // Data memory cell mapped to the input device.
	OutputPort = 1    // Data memory cell mapped to the output device.
	IntVector  = 2    // Data memory cell holding the ISR entry address.
)

// MemType selects one of the two memories for a read.
type MemType int

const (
	InstMem MemType = iota
	DataMem
)

// DataPath holds the registers, both memories and the wiring to the
// ALU and the ports. Micro operations mutate exactly the state their
// name says; tick accounting belongs to the control unit.
type DataPath struct {
	PC  int             // Program counter, indexes IMem.
	AR  int             // Address register, indexes DMem.
	SP  int             // Stack pointer, empty descending.
	ACC isa.Word        // Accumulator.
	DR  isa.Word        // Last word read from data memory or the input port.
	IR  isa.Instruction // Current decoded instruction.

	IMem [MemSize]isa.Instruction
	DMem [MemSize]isa.Word

	ALU *alu.ALU
	In  *device.Input
	Out *device.Output

	// Load cursors, point at the first free cell of each memory.
	instFree int
	dataFree int
}

// New builds a cold data path. The stack is empty (SP one past the
// last cell) and the data cursor starts past the two ports and the
// interrupt vector.
func New(in *device.Input, out *device.Output) *DataPath {
	return &DataPath{
		SP:       MemSize,
		ACC:      isa.NewWord("empty acc", 0, isa.Num),
		ALU:      alu.New(),
		In:       in,
		Out:      out,
		dataFree: IntVector + 1,
	}
}

// LoadProgram places one image pair at the current cursors. Data words
// flagged label-to-label get the data offset added, memory address
// args get the data offset, jump targets get the instruction offset.
// Returns the image's instruction entry point.
func (dp *DataPath) LoadProgram(code []isa.Instruction, data []isa.DataWord) (int, error) {
	if dp.dataFree+len(data) > MemSize {
		return 0, fmt.Errorf("data image does not fit: %d words at %d", len(data), dp.dataFree)
	}
	if dp.instFree+len(code) > MemSize {
		return 0, fmt.Errorf("instruction image does not fit: %d words at %d", len(code), dp.instFree)
	}

	dOffset := dp.dataFree
	iOffset := dp.instFree
	for i, word := range data {
		if word.L2L {
			word.Val += dOffset
		}
		dp.DMem[dOffset+i] = word.Word
	}
	dp.dataFree += len(data)

	for i, inst := range code {
		if inst.HasArg {
			switch {
			case isa.AddressOps[inst.Opcode]:
				inst.Arg += dOffset
			case isa.ControlFlow[inst.Opcode]:
				inst.Arg += iOffset
			}
		}
		dp.IMem[iOffset+i] = inst
	}
	dp.instFree += len(code)
	return iOffset, nil
}

// SetIntVector writes the ISR entry address into the vector cell. Done
// once at load time, never touched afterwards.
func (dp *DataPath) SetIntVector(entry int) {
	dp.DMem[IntVector] = isa.NewWord("interrupt vector", entry, isa.Num)
}

// InstCursor returns the next free instruction cell.
func (dp *DataPath) InstCursor() int {
	return dp.instFree
}

// LatchPC sets the next PC. Jumps take their target, iret takes the
// stacked value out of DR, everything else increments.
func (dp *DataPath) LatchPC(sel isa.Opcode, arg int) {
	switch {
	case sel == isa.Iret:
		dp.PC = dp.DR.Val
	case isa.ControlFlow[sel]:
		dp.PC = arg
	default:
		dp.PC++
	}
}

// LatchAR selects the data memory address for the next access.
func (dp *DataPath) LatchAR(sel isa.Opcode) {
	switch {
	case sel == isa.Interrupt:
		dp.AR = IntVector
	case isa.AddressOps[sel]:
		dp.AR = dp.IR.Arg
	case sel == isa.Indirect:
		dp.AR = dp.DR.Val
	case isa.StackOps[sel]:
		dp.AR = dp.SP
	}
}

// LatchACC loads the accumulator from the selected source.
func (dp *DataPath) LatchACC(sel isa.Opcode) {
	switch {
	case sel == isa.Interrupt:
		dp.ACC = isa.NewWord("saved_pc", dp.PC, isa.Num)
	case sel == isa.Load || sel == isa.Pop:
		dp.ACC = dp.DR
	case isa.Arithmetic[sel]:
		dp.ACC = isa.NewWord(string(sel)+" operation res", dp.ALU.Out, isa.Num)
	}
}

// LatchSP moves the stack pointer. Push and interrupt entry
// pre-decrement, pop and iret post-increment.
func (dp *DataPath) LatchSP(sel isa.Opcode) {
	switch sel {
	case isa.Push, isa.Interrupt:
		dp.SP--
	case isa.Pop, isa.Iret:
		dp.SP++
	}
}

// LatchALU feeds the ALU inputs from ACC and DR.
func (dp *DataPath) LatchALU() {
	dp.ALU.Left = dp.ACC.Val
	dp.ALU.Right = dp.DR.Val
}

// ReadMem fetches into IR from instruction memory, or into DR from
// data memory. A data read at the input port cell consumes one
// scheduled character instead.
func (dp *DataPath) ReadMem(mem MemType) error {
	switch mem {
	case InstMem:
		dp.IR = dp.IMem[dp.PC]
	case DataMem:
		if dp.AR == InputPort {
			word, err := dp.In.SendChar()
			if err != nil {
				return err
			}
			dp.DR = word
			return nil
		}
		if dp.AR < 0 || dp.AR >= MemSize {
			return fmt.Errorf("data read out of range: %d", dp.AR)
		}
		dp.DR = dp.DMem[dp.AR]
	}
	return nil
}

// WriteDMem stores ACC at AR. A write at the output port cell goes to
// the output device instead, dispatched on the accumulator's tag.
func (dp *DataPath) WriteDMem() error {
	if dp.AR == OutputPort {
		if dp.ACC.Type == isa.Char {
			dp.Out.WriteChar(dp.ACC.Val)
		} else {
			dp.Out.WriteInt(dp.ACC.Val)
		}
		return nil
	}
	if dp.AR < 0 || dp.AR >= MemSize {
		return fmt.Errorf("data write out of range: %d", dp.AR)
	}
	dp.DMem[dp.AR] = dp.ACC
	return nil
}
