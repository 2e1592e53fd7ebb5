/*
 * AC11 - Simulation driver.
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

package machine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rcornwell/AC11/emu/control"
	"github.com/rcornwell/AC11/emu/datapath"
	"github.com/rcornwell/AC11/emu/device"
	"github.com/rcornwell/AC11/emu/isa"
)

// DefaultLimit is the hard instruction ceiling for runaway programs.
const DefaultLimit = 100000

// ErrLimitExceeded is returned when the ceiling is reached.
var ErrLimitExceeded = errors.New("instruction limit exceeded")

// Machine wires the data path, control unit and ports together and
// drives the simulation one instruction at a time.
type Machine struct {
	DP  *datapath.DataPath
	CU  *control.Control
	In  *device.Input
	Out *device.Output

	limit int
	steps int
}

// New builds a machine from decoded images. The ISR image is loaded
// first, the program image after it; the interrupt vector gets the ISR
// entry and PC starts at the program entry.
func New(code []isa.Instruction, data []isa.DataWord,
	isrCode []isa.Instruction, isrData []isa.DataWord,
	input []device.Entry, limit int,
) (*Machine, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	in := device.NewInput(input)
	out := device.NewOutput()
	dp := datapath.New(in, out)

	isrEntry, err := dp.LoadProgram(isrCode, isrData)
	if err != nil {
		return nil, fmt.Errorf("loading isr: %w", err)
	}
	dp.SetIntVector(isrEntry)

	entry, err := dp.LoadProgram(code, data)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	dp.PC = entry

	return &Machine{DP: dp, CU: control.New(dp), In: in, Out: out, limit: limit}, nil
}

// Step logs the control unit state, latches the interrupt request when
// the schedule head is due, then executes one instruction. An input
// scheduled at tick T is taken no earlier than the first instruction
// boundary at which the tick count reaches T with interrupts enabled.
func (m *Machine) Step() error {
	if m.steps >= m.limit {
		return ErrLimitExceeded
	}
	slog.Debug(m.CU.String())
	if !m.In.Empty() {
		if tick, _ := m.In.Peek(); tick <= m.CU.Tick() {
			m.CU.IRQ = true
		}
	}
	m.steps++
	return m.CU.Execute()
}

// Run steps until a terminal condition. Halting through hlt is the
// normal end and returns nil after reporting the total tick count; the
// other terminal errors come back to the caller.
func (m *Machine) Run() error {
	for {
		err := m.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, control.ErrHalted) {
			slog.Debug(fmt.Sprintf("Simulation stopped by HLT command Total ticks: %d", m.CU.Tick()))
			return nil
		}
		if errors.Is(err, device.ErrInputExhausted) {
			slog.Debug("Input buffer is empty")
		}
		return err
	}
}

// Ticks returns the cumulative tick count.
func (m *Machine) Ticks() int {
	return m.CU.Tick()
}

// Steps returns the number of instructions executed.
func (m *Machine) Steps() int {
	return m.steps
}

// Output returns everything the program wrote to the output port.
func (m *Machine) Output() []string {
	return m.Out.Data()
}
