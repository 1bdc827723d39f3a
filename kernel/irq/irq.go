// Package irq routes hardware interrupt lines to the drivers that service
// them.
package irq

import (
	"coopos/kernel"
	"sync/atomic"
)

// Line identifies a hardware interrupt line of the legacy PIC pair.
type Line uint8

const (
	// Timer is the line used by the programmable interval timer.
	Timer = Line(0)

	// Keyboard is the line used by the PS/2 keyboard controller.
	Keyboard = Line(1)

	// NumLines is the number of lines served by the master and slave PIC.
	NumLines = 16
)

// Handler services an interrupt. Handlers run in interrupt context: they
// must not block and must not assume anything about the state of the
// interrupted code.
type Handler func()

var (
	handlers [NumLines]atomic.Pointer[Handler]

	// spurious counts interrupts that arrived on a line with no handler.
	spurious atomic.Uint64

	errInvalidLine = &kernel.Error{Module: "irq", Message: "invalid interrupt line"}
)

// HandleIRQ installs h as the handler for line, replacing any previous
// handler. Passing a nil handler uninstalls it.
func HandleIRQ(line Line, h Handler) *kernel.Error {
	if line >= NumLines {
		return errInvalidLine
	}

	if h == nil {
		handlers[line].Store(nil)
		return nil
	}

	handlers[line].Store(&h)
	return nil
}

// Dispatch invokes the handler installed for line. It is called by the
// interrupt entry code with interrupts disabled.
func Dispatch(line Line) {
	if line < NumLines {
		if h := handlers[line].Load(); h != nil {
			(*h)()
			return
		}
	}

	spurious.Add(1)
}

// SpuriousCount returns the number of interrupts that had no handler.
func SpuriousCount() uint64 {
	return spurious.Load()
}
