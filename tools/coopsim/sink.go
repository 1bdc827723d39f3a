package main

import (
	"bytes"
	"io"
	"sync"

	"github.com/fatih/color"
)

type lineTag struct {
	prefix []byte
	color  *color.Color
}

var lineTags = []lineTag{
	{[]byte("[OK]"), color.New(color.FgGreen, color.Bold)},
	{[]byte("[ERR]"), color.New(color.FgRed, color.Bold)},
	{[]byte("[hal]"), color.New(color.FgCyan)},
}

// consoleWriter copies serial console output to a host writer and colorizes
// the status tag at the start of each line. The console transmits one byte at
// a time so the start of every line is held back until it is known whether it
// begins with a tag.
type consoleWriter struct {
	mu        sync.Mutex
	out       io.Writer
	stripCR   bool
	midLine   bool
	lineStart []byte
}

func newConsoleWriter(out io.Writer, stripCR bool) *consoleWriter {
	return &consoleWriter{out: out, stripCR: stripCR}
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range p {
		if err := w.writeByte(b); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *consoleWriter) writeByte(b byte) error {
	if b == '\r' && w.stripCR {
		return nil
	}

	if w.midLine {
		w.midLine = b != '\n'
		_, err := w.out.Write([]byte{b})
		return err
	}

	w.lineStart = append(w.lineStart, b)
	for _, tag := range lineTags {
		if bytes.Equal(w.lineStart, tag.prefix) {
			w.lineStart = w.lineStart[:0]
			w.midLine = true
			_, err := io.WriteString(w.out, tag.color.Sprint(string(tag.prefix)))
			return err
		}

		if bytes.HasPrefix(tag.prefix, w.lineStart) {
			return nil
		}
	}

	return w.flushLineStart()
}

// flushLineStart writes the held back bytes unmodified.
func (w *consoleWriter) flushLineStart() error {
	if len(w.lineStart) == 0 {
		return nil
	}

	w.midLine = w.lineStart[len(w.lineStart)-1] != '\n'
	_, err := w.out.Write(w.lineStart)
	w.lineStart = w.lineStart[:0]
	return err
}

// Flush writes any held back bytes.
func (w *consoleWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLineStart()
}
