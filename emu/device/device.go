/*
 * AC11 - Memory mapped input and output ports.
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

package device

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcornwell/AC11/emu/isa"
)

// ErrInputExhausted is returned when the program reads the input port
// with nothing left in the schedule.
var ErrInputExhausted = errors.New("input buffer is empty")

// Entry is one scheduled input character. Tick is the simulated time
// at which the character becomes due.
type Entry struct {
	Tick int
	Char rune
}

// Input wraps the finite timed character queue behind data memory
// cell 0. Characters are consumed in FIFO order, one per port read.
type Input struct {
	queue []Entry
}

// NewInput builds an input port over a copy of the schedule.
func NewInput(entries []Entry) *Input {
	queue := make([]Entry, len(entries))
	copy(queue, entries)
	return &Input{queue: queue}
}

// Peek returns the head of the queue without consuming it. An empty
// queue returns the (-1, 0) sentinel; the schedule parser rejects
// negative ticks so the sentinel is unambiguous.
func (in *Input) Peek() (int, rune) {
	if len(in.queue) == 0 {
		return -1, 0
	}
	return in.queue[0].Tick, in.queue[0].Char
}

// Empty reports whether the schedule is used up.
func (in *Input) Empty() bool {
	return len(in.queue) == 0
}

// Len returns the number of characters still scheduled.
func (in *Input) Len() int {
	return len(in.queue)
}

// SendChar consumes the head character and hands it over as a data
// word for DR.
func (in *Input) SendChar() (isa.Word, error) {
	if len(in.queue) == 0 {
		return isa.Word{}, ErrInputExhausted
	}
	ch := in.queue[0].Char
	in.queue = in.queue[1:]
	slog.Debug("CHAR_IN: " + printable(ch))
	return isa.NewWord("char_from_input_device", int(ch), isa.Char), nil
}

// Output is the append-only sink behind data memory cell 1.
type Output struct {
	data []string
}

// NewOutput builds an empty output port.
func NewOutput() *Output {
	return &Output{}
}

// WriteChar appends the character with code point val. Appending a NUL
// logs everything written so far as one string for observability.
func (out *Output) WriteChar(val int) {
	ch := rune(val)
	out.data = append(out.data, string(ch))
	slog.Debug("CHAR_OUT: " + printable(ch))
	if ch == 0 {
		slog.Debug("THE WHOLE WORD: " + strings.Join(out.data, ""))
	}
}

// WriteInt appends the integer val.
func (out *Output) WriteInt(val int) {
	out.data = append(out.data, strconv.Itoa(val))
	slog.Debug("INT_OUT: " + strconv.Itoa(val))
}

// Data returns everything written so far.
func (out *Output) Data() []string {
	data := make([]string, len(out.data))
	copy(data, out.data)
	return data
}

func printable(ch rune) string {
	if ch == 0 {
		return "null"
	}
	return string(ch)
}
