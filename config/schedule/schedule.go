/*
 * AC11 - Input schedule parser.
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

package schedule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rcornwell/AC11/emu/device"
)

// One [tick, char] pair of the YAML sequence.
type pair struct {
	tick int
	char rune
}

func (p *pair) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: schedule entry must be a [tick, char] pair", value.Line)
	}
	if err := value.Content[0].Decode(&p.tick); err != nil {
		return fmt.Errorf("line %d: bad tick: %w", value.Content[0].Line, err)
	}
	var text string
	if err := value.Content[1].Decode(&text); err != nil {
		return fmt.Errorf("line %d: bad char: %w", value.Content[1].Line, err)
	}
	runes := []rune(text)
	if len(runes) != 1 {
		return fmt.Errorf("line %d: input char must be one character, got %q", value.Line, text)
	}
	p.char = runes[0]
	return nil
}

// Parse decodes an input schedule. Ticks must be non-negative and
// non-decreasing; rejecting negative ticks here keeps the input port's
// empty sentinel unambiguous.
func Parse(data []byte) ([]device.Entry, error) {
	var raw []pair
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make([]device.Entry, len(raw))
	last := 0
	for i, p := range raw {
		if p.tick < 0 {
			return nil, fmt.Errorf("schedule entry %d: negative tick %d", i, p.tick)
		}
		if p.tick < last {
			return nil, fmt.Errorf("schedule entry %d: tick %d out of order, previous %d", i, p.tick, last)
		}
		last = p.tick
		entries[i] = device.Entry{Tick: p.tick, Char: p.char}
	}
	return entries, nil
}

// Load reads and parses the schedule file at path.
func Load(path string) ([]device.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
