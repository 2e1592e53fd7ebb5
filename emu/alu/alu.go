/*
 * AC11 - Arithmetic logic unit.
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

package alu

import (
	"errors"
	"fmt"

	"github.com/rcornwell/AC11/emu/isa"
)

// ErrDivideByZero is returned for mod with a zero right input.
var ErrDivideByZero = errors.New("modulo by zero")

// ALU performs binary arithmetic on two integer inputs. Zero and
// Negative reflect the result of the most recent operation and are
// unchanged by anything else in the machine.
type ALU struct {
	Left     int
	Right    int
	Out      int
	Zero     bool
	Negative bool
}

// New returns an ALU with cleared inputs and flags.
func New() *ALU {
	return &ALU{}
}

// Do performs op over Left and Right and updates both flags. For cmp
// the result is computed only for the flags, the caller must not latch
// it anywhere.
func (a *ALU) Do(op isa.Opcode) error {
	switch op {
	case isa.Add:
		a.Out = a.Left + a.Right
	case isa.Sub, isa.Cmp:
		a.Out = a.Left - a.Right
	case isa.Mod:
		if a.Right == 0 {
			return ErrDivideByZero
		}
		// Floored modulo, result takes the sign of the divisor.
		a.Out = ((a.Left % a.Right) + a.Right) % a.Right
	default:
		return fmt.Errorf("not an ALU operation: %s", op)
	}
	a.Zero = a.Out == 0
	a.Negative = a.Out < 0
	return nil
}
