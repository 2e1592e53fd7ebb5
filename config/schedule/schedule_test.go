/*
 * AC11 input schedule test cases.
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
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	src := `- [1, "h"]
- [10, "e"]
- [10, "\x00"]
`
	entries, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entry count got: %d expected: %d", len(entries), 3)
	}
	if entries[0].Tick != 1 || entries[0].Char != 'h' {
		t.Errorf("entry 0 got: %+v expected: tick 1 char h", entries[0])
	}
	if entries[2].Tick != 10 || entries[2].Char != 0 {
		t.Errorf("entry 2 got: %+v expected: tick 10 char NUL", entries[2])
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse([]byte("[]\n"))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entry count got: %d expected: 0", len(entries))
	}
}

// Negative ticks would collide with the input port's empty sentinel.
func TestParseNegativeTick(t *testing.T) {
	_, err := Parse([]byte(`- [-1, "h"]`))
	if err == nil || !strings.Contains(err.Error(), "negative tick") {
		t.Errorf("negative tick got: %v expected: negative tick error", err)
	}
}

func TestParseOutOfOrder(t *testing.T) {
	src := `- [10, "a"]
- [5, "b"]
`
	_, err := Parse([]byte(src))
	if err == nil || !strings.Contains(err.Error(), "out of order") {
		t.Errorf("out of order got: %v expected: out of order error", err)
	}
}

func TestParseMultiChar(t *testing.T) {
	_, err := Parse([]byte(`- [1, "ab"]`))
	if err == nil {
		t.Error("multi character entry did not return error")
	}
}

func TestParseBadShape(t *testing.T) {
	_, err := Parse([]byte(`- [1, "a", 2]`))
	if err == nil {
		t.Error("three element entry did not return error")
	}
}
