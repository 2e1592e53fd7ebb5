/*
 * AC11 - Simulator main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	command "github.com/rcornwell/AC11/command"
	schedule "github.com/rcornwell/AC11/config/schedule"
	isa "github.com/rcornwell/AC11/emu/isa"
	machine "github.com/rcornwell/AC11/emu/machine"
	logger "github.com/rcornwell/AC11/util/logger"
)

func fatal(err error) {
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optISRCode := getopt.StringLong("isr-code", 'I', "static/isr/instr.json", "ISR instruction image")
	optISRData := getopt.StringLong("isr-data", 'D', "static/isr/data.json", "ISR data image")
	optLimit := getopt.IntLong("limit", 'n', machine.DefaultLimit, "Instruction limit")
	optMonitor := getopt.BoolLong("monitor", 'm', "Interactive monitor")
	optDebug := getopt.BoolLong("debug", 'd', "Echo trace to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("<instr.json> <data.json> <input.yml>")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	args := getopt.Args()
	if len(args) != 3 {
		getopt.Usage()
		os.Exit(2)
	}

	var file io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer f.Close()
		file = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(logger.NewHandler(file, programLevel, *optDebug)))

	code, data, err := isa.LoadCodeData(args[0], args[1])
	fatal(err)

	isrCode, isrData, err := isa.LoadCodeData(*optISRCode, *optISRData)
	fatal(err)

	input, err := schedule.Load(args[2])
	fatal(err)

	m, err := machine.New(code, data, isrCode, isrData, input, *optLimit)
	fatal(err)

	if *optMonitor {
		command.Console(m)
		return
	}

	fatal(m.Run())
	if out := m.Output(); len(out) != 0 {
		fmt.Println(strings.Join(out, " "))
	}
}
