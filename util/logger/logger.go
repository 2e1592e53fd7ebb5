/*
 * AC11 - Wrapper for slog
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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandler renders records as plain "time LEVEL: message" lines. The
// execution trace depends on this staying free of key=value noise.
// Records go to the log file when one is set; anything above debug
// level is echoed to stderr, debug too when echo is on.
type LogHandler struct {
	out   io.Writer
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	echo  bool
}

// NewHandler builds a handler writing to file, which may be nil for
// stderr-only logging.
func NewHandler(file io.Writer, level slog.Leveler, echo bool) *LogHandler {
	if level == nil {
		level = slog.LevelDebug
	}
	return &LogHandler{out: file, level: level, mu: &sync.Mutex{}, echo: echo}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	for _, a := range h.attrs {
		strs = append(strs, a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, a.Value.String())
		return true
	})
	b := []byte(strings.Join(strs, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(b)
	}
	if h.echo || r.Level > slog.LevelDebug {
		_, err = os.Stderr.Write(b)
	}
	return err
}

// SetEcho switches debug echo to stderr on or off.
func (h *LogHandler) SetEcho(echo bool) {
	h.echo = echo
}
