/*
 * AC11 monitor command test cases.
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

package command

import (
	"testing"

	"github.com/rcornwell/AC11/emu/isa"
	"github.com/rcornwell/AC11/emu/machine"
)

func testMachine(t *testing.T) *machine.Machine {
	t.Helper()
	code := []isa.Instruction{
		{Opcode: isa.Jmp, Arg: 0, HasArg: true},
		{Opcode: isa.Hlt},
	}
	m, err := machine.New(code, nil, []isa.Instruction{{Opcode: isa.Iret}}, nil, nil, 100)
	if err != nil {
		t.Fatalf("machine build returned error: %v", err)
	}
	return m
}

func TestMatchCommands(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"s", "step"},
		{"st", "step"},
		{"ru", "run"},
		{"re", "regs"},
		{"d", "dmem"},
		{"im", "imem"},
		{"in", "input"},
		{"o", "output"},
		{"q", "quit"},
	}
	for _, c := range cases {
		match := matchList(c.input)
		if len(match) != 1 {
			t.Errorf("%q matches got: %d expected: 1", c.input, len(match))
			continue
		}
		if match[0].name != c.expect {
			t.Errorf("%q got: %s expected: %s", c.input, match[0].name, c.expect)
		}
	}

	// Too short to be unique.
	if match := matchList("r"); len(match) != 0 {
		t.Errorf("\"r\" matches got: %d expected: 0", len(match))
	}
}

func TestCompleteCmd(t *testing.T) {
	matches := CompleteCmd("st")
	if len(matches) != 1 || matches[0] != "step" {
		t.Errorf("complete got: %v expected: [step]", matches)
	}
}

func TestProcessCommand(t *testing.T) {
	m := testMachine(t)

	done, err := ProcessCommand(m, "step")
	if err != nil {
		t.Fatalf("step returned error: %v", err)
	}
	if done {
		t.Error("step ended the monitor")
	}
	if m.Steps() != 1 {
		t.Errorf("steps got: %d expected: 1", m.Steps())
	}

	done, err = ProcessCommand(m, "quit")
	if err != nil || !done {
		t.Errorf("quit got: done=%t err=%v expected: done=true", done, err)
	}

	if _, err = ProcessCommand(m, "bogus"); err == nil {
		t.Error("unknown command did not return error")
	}
}
