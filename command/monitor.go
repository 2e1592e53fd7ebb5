/*
 * AC11 - Monitor console.
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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/AC11/emu/control"
	"github.com/rcornwell/AC11/emu/datapath"
	"github.com/rcornwell/AC11/emu/machine"
)

type cmd struct {
	name    string // Command name.
	min     int    // Minimum match size.
	process func(*machine.Machine, []string) (bool, error)
}

var cmdList = []cmd{
	{name: "step", min: 1, process: step},
	{name: "run", min: 2, process: run},
	{name: "regs", min: 2, process: regs},
	{name: "dmem", min: 1, process: dmem},
	{name: "imem", min: 2, process: imem},
	{name: "input", min: 2, process: input},
	{name: "output", min: 1, process: output},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand runs one monitor command line against the machine.
// Returns true when the monitor should exit.
func ProcessCommand(m *machine.Machine, commandLine string) (bool, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return false, nil
	}

	match := matchList(fields[0])
	if len(match) == 0 {
		return false, errors.New("command not found: " + fields[0])
	}
	if len(match) > 1 {
		return false, errors.New("unique command not found: " + fields[0])
	}
	return match[0].process(m, fields[1:])
}

// CompleteCmd completes a command name during line editing.
func CompleteCmd(commandLine string) []string {
	name := strings.TrimLeft(commandLine, " ")
	if strings.Contains(name, " ") {
		return nil
	}
	matches := []string{}
	for _, c := range matchList(name) {
		matches = append(matches, c.name)
	}
	return matches
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) < match.min || len(command) > len(match.name) {
		return false
	}
	return strings.HasPrefix(match.name, command)
}

func matchList(command string) []cmd {
	var matches []cmd
	for _, c := range cmdList {
		if matchCommand(c, command) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Console reads and runs monitor commands until quit or ctrl-C.
func Console(m *machine.Machine) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(CompleteCmd)

	for {
		command, err := line.Prompt("AC11> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line: " + err.Error())
			return
		}
		line.AppendHistory(command)
		done, err := ProcessCommand(m, command)
		if err != nil {
			fmt.Println("Error: " + err.Error())
		}
		if done {
			return
		}
	}
}

// report prints the outcome of a terminal condition.
func report(m *machine.Machine, err error) {
	switch {
	case err == nil:
	case errors.Is(err, control.ErrHalted):
		fmt.Printf("Halted, total ticks: %d\n", m.Ticks())
	default:
		fmt.Println("Stopped: " + err.Error())
	}
}

func step(m *machine.Machine, args []string) (bool, error) {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return false, errors.New("bad step count")
		}
		count = n
	}
	for range count {
		if err := m.Step(); err != nil {
			report(m, err)
			return false, nil
		}
	}
	fmt.Println(m.CU.String())
	return false, nil
}

func run(m *machine.Machine, _ []string) (bool, error) {
	for {
		err := m.Step()
		if err == nil {
			continue
		}
		report(m, err)
		return false, nil
	}
}

func regs(m *machine.Machine, _ []string) (bool, error) {
	dp := m.DP
	fmt.Printf("pc:%d ar:%d sp:%d acc:%s dr:%s\n", dp.PC, dp.AR, dp.SP, dp.ACC, dp.DR)
	fmt.Printf("z:%t n:%t ei:%t irq:%t tick:%d\n",
		dp.ALU.Zero, dp.ALU.Negative, m.CU.EI, m.CU.IRQ, m.Ticks())
	return false, nil
}

// Parse a dump range: start [count].
func dumpRange(args []string) (int, int, error) {
	start := 0
	count := 8
	var err error
	if len(args) > 0 {
		if start, err = strconv.Atoi(args[0]); err != nil {
			return 0, 0, errors.New("bad address")
		}
	}
	if len(args) > 1 {
		if count, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, errors.New("bad count")
		}
	}
	if start < 0 || count < 1 || start >= datapath.MemSize {
		return 0, 0, errors.New("address out of range")
	}
	if start+count > datapath.MemSize {
		count = datapath.MemSize - start
	}
	return start, count, nil
}

func dmem(m *machine.Machine, args []string) (bool, error) {
	start, count, err := dumpRange(args)
	if err != nil {
		return false, err
	}
	for i := start; i < start+count; i++ {
		fmt.Printf("%4d: %s\n", i, m.DP.DMem[i])
	}
	return false, nil
}

func imem(m *machine.Machine, args []string) (bool, error) {
	start, count, err := dumpRange(args)
	if err != nil {
		return false, err
	}
	for i := start; i < start+count; i++ {
		inst := m.DP.IMem[i]
		arg := "null"
		if inst.HasArg {
			arg = strconv.Itoa(inst.Arg)
			if inst.Indirect {
				arg = "[" + arg + "]"
			}
		}
		fmt.Printf("%4d: %s %s\n", i, inst.Opcode, arg)
	}
	return false, nil
}

func input(m *machine.Machine, _ []string) (bool, error) {
	if m.In.Empty() {
		fmt.Println("input: empty")
		return false, nil
	}
	tick, ch := m.In.Peek()
	fmt.Printf("input: %d pending, head tick:%d char:%q\n", m.In.Len(), tick, ch)
	return false, nil
}

func output(m *machine.Machine, _ []string) (bool, error) {
	fmt.Printf("output: %q\n", strings.Join(m.Output(), ""))
	return false, nil
}

func quit(_ *machine.Machine, _ []string) (bool, error) {
	return true, nil
}
