/*
 * AC11 - Control unit.
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

package control

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rcornwell/AC11/emu/datapath"
	"github.com/rcornwell/AC11/emu/isa"
)

// ErrHalted signals normal termination through hlt.
var ErrHalted = errors.New("halted")

// Control decodes and sequences instructions over the data path. It
// owns the tick counter, the interrupt enable flag and the latched
// interrupt request.
type Control struct {
	dp   *datapath.DataPath
	tick int

	EI  bool // Interrupts enabled. True on cold boot.
	IRQ bool // Interrupt pending. Set by the driver, cleared by iret.
}

// New builds a control unit with interrupts enabled.
func New(dp *datapath.DataPath) *Control {
	return &Control{dp: dp, EI: true}
}

// Tick returns the cumulative tick count.
func (c *Control) Tick() int {
	return c.tick
}

func (c *Control) advance() {
	c.tick++
}

// Execute runs exactly one instruction: fetch, decode into one of the
// three groups, dispatch, then the trailing interrupt poll. Returns
// ErrHalted for hlt and the device or ALU error for the terminal
// failures.
func (c *Control) Execute() error {
	_ = c.dp.ReadMem(datapath.InstMem)
	c.advance()

	inst := c.dp.IR
	op := inst.Opcode
	switch {
	case isa.Basic[op]:
		if err := c.executeBasic(inst); err != nil {
			return err
		}
		c.dp.LatchPC(op, 0)
	case isa.ControlFlow[op]:
		c.executeControlFlow(inst)
	case isa.StackOps[op]:
		if err := c.executeStack(inst); err != nil {
			return err
		}
		if op != isa.Iret {
			c.dp.LatchPC(op, 0)
		}
	default:
		return fmt.Errorf("invalid opcode at pc %d: %q", c.dp.PC, op)
	}

	return c.pollInterrupt()
}

// executeBasic handles the fetch/address/operate instructions. hlt
// terminates right at decode, before any further ticks.
func (c *Control) executeBasic(inst isa.Instruction) error {
	op := inst.Opcode
	if op == isa.Hlt {
		return ErrHalted
	}

	if inst.Indirect {
		if err := c.resolveIndirect(op); err != nil {
			return err
		}
	} else {
		c.dp.LatchAR(op)
		c.advance()
	}

	switch {
	case op == isa.Load:
		if err := c.dp.ReadMem(datapath.DataMem); err != nil {
			return err
		}
		c.dp.LatchACC(op)
		c.advance()
	case op == isa.Store:
		if err := c.dp.WriteDMem(); err != nil {
			return err
		}
		c.advance()
	case isa.Arithmetic[op]:
		if err := c.dp.ReadMem(datapath.DataMem); err != nil {
			return err
		}
		c.dp.LatchALU()
		c.advance()
		if err := c.dp.ALU.Do(op); err != nil {
			return err
		}
		c.dp.LatchACC(op)
		c.advance()
	case op == isa.Cmp:
		if err := c.dp.ReadMem(datapath.DataMem); err != nil {
			return err
		}
		c.dp.LatchALU()
		c.advance()
		if err := c.dp.ALU.Do(op); err != nil {
			return err
		}
		c.advance()
	case op == isa.Ei:
		c.EI = true
		c.advance()
	case op == isa.Di:
		c.EI = false
		c.advance()
	}
	return nil
}

// resolveIndirect replaces the instruction's address with the word it
// points at. Reading through the input port cell consumes a character
// and uses its value as the address.
func (c *Control) resolveIndirect(op isa.Opcode) error {
	c.dp.LatchAR(op)
	c.advance()
	if err := c.dp.ReadMem(datapath.DataMem); err != nil {
		return err
	}
	c.dp.LatchAR(isa.Indirect)
	c.advance()
	return nil
}

// executeControlFlow takes or falls through a jump. jmp spends one
// tick; conditional jumps spend one tick on the flag test and one on
// the PC latch.
func (c *Control) executeControlFlow(inst isa.Instruction) {
	op := inst.Opcode
	if op == isa.Jmp {
		c.dp.LatchPC(op, inst.Arg)
		c.advance()
		return
	}

	c.advance()
	taken := false
	switch op {
	case isa.Jz:
		taken = c.dp.ALU.Zero
	case isa.Jnz:
		taken = !c.dp.ALU.Zero
	case isa.Jn:
		taken = c.dp.ALU.Negative
	case isa.Jnn:
		taken = !c.dp.ALU.Negative
	}
	if taken {
		c.dp.LatchPC(op, inst.Arg)
	} else {
		// Fall through, plain increment.
		c.dp.LatchPC(isa.Add, 0)
	}
	c.advance()
}

// executeStack handles push, pop and iret through SP.
func (c *Control) executeStack(inst isa.Instruction) error {
	switch inst.Opcode {
	case isa.Push:
		c.dp.LatchSP(isa.Push)
		c.dp.LatchAR(isa.Push)
		if err := c.dp.WriteDMem(); err != nil {
			return err
		}
		c.advance()
	case isa.Pop:
		c.dp.LatchAR(isa.Pop)
		c.advance()
		if err := c.dp.ReadMem(datapath.DataMem); err != nil {
			return err
		}
		c.dp.LatchACC(isa.Pop)
		c.dp.LatchSP(isa.Pop)
		c.advance()
	case isa.Iret:
		c.dp.LatchAR(isa.Iret)
		c.advance()
		if err := c.dp.ReadMem(datapath.DataMem); err != nil {
			return err
		}
		c.dp.LatchSP(isa.Iret)
		c.advance()
		c.dp.LatchPC(isa.Iret, 0)
		c.EI = true
		c.IRQ = false
		c.advance()
		slog.Debug("-----------Interrupt-Ended-----------")
	}
	return nil
}

// pollInterrupt spends the boundary tick and enters the interrupt
// sequence when one is pending and enabled. With EI false the poll is
// a no-op besides the tick, the request stays latched.
func (c *Control) pollInterrupt() error {
	c.advance()
	if c.EI && c.IRQ {
		slog.Debug("-----------Interrupt-Started-----------")
		return c.enterInterrupt()
	}
	return nil
}

// enterInterrupt saves PC on the stack and vectors to the ISR entry.
// Only PC is saved; ACC and the flags belong to the ISR. The request
// stays latched until iret completes.
func (c *Control) enterInterrupt() error {
	c.EI = false
	slog.Debug("EI switched to False")

	// Save PC.
	c.dp.LatchACC(isa.Interrupt)
	c.dp.LatchSP(isa.Interrupt)
	c.advance()
	c.dp.LatchAR(isa.Push)
	if err := c.dp.WriteDMem(); err != nil {
		return err
	}
	c.advance()
	slog.Debug(fmt.Sprintf("save_pc: ar:%d mem[ar]:%s", c.dp.AR, c.dp.DMem[c.dp.AR]))

	// Find the ISR entry through the vector cell.
	c.dp.LatchAR(isa.Interrupt)
	c.advance()
	if err := c.dp.ReadMem(datapath.DataMem); err != nil {
		return err
	}
	c.advance()
	c.dp.LatchACC(isa.Load)
	c.advance()
	c.dp.LatchPC(isa.Iret, 0)
	c.advance()
	slog.Debug(fmt.Sprintf("find_isr: ar:%d mem[ar]:%s", c.dp.AR, c.dp.DMem[c.dp.AR]))
	slog.Debug("-----------Execute-ISR-----------")
	return nil
}

// String renders the trace line for the instruction about to execute.
func (c *Control) String() string {
	dp := c.dp
	state := fmt.Sprintf("tick:%d pc:%d ar:%d acc:%d ei:%t interrupt:%t",
		c.tick, dp.PC, dp.AR, dp.ACC.Val, c.EI, c.IRQ)

	inst := dp.IMem[dp.PC]
	arg := "null"
	mem := "null"
	if inst.HasArg {
		arg = strconv.Itoa(inst.Arg)
		if !isa.ControlFlow[inst.Opcode] && inst.Arg >= 0 && inst.Arg < datapath.MemSize {
			mem = dp.DMem[inst.Arg].String()
		}
	}
	return fmt.Sprintf("%s \tOpcode:%s Arg:%s Mem[arg]:%s", state, inst.Opcode, arg, mem)
}
