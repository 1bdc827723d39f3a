package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// traceVersion is bumped whenever the trace layout changes.
const traceVersion = 1

// Trace is a recorded keyboard session.
type Trace struct {
	Version int          `msgpack:"version"`
	Events  []TraceEvent `msgpack:"events"`
}

// TraceEvent is a single scancode and the time that elapsed since the
// previous one.
type TraceEvent struct {
	DelayMicros uint32 `msgpack:"delay_us"`
	Scancode    uint8  `msgpack:"scancode"`
}

// Delay returns the pause before the event as a time.Duration.
func (ev TraceEvent) Delay() time.Duration {
	return time.Duration(ev.DelayMicros) * time.Microsecond
}

func newTrace() *Trace {
	return &Trace{Version: traceVersion}
}

// add appends scancode to the trace. Delays that do not fit the trace format
// are clamped.
func (t *Trace) add(delay time.Duration, scancode uint8) {
	us, err := safecast.Conv[uint32](delay.Microseconds())
	if err != nil {
		us = math.MaxUint32
		if delay < 0 {
			us = 0
		}
	}

	t.Events = append(t.Events, TraceEvent{DelayMicros: us, Scancode: scancode})
}

func writeTrace(path string, t *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close trace: %w", cerr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(t); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

func readTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	var t Trace
	if err := msgpack.NewDecoder(f).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}

	if t.Version != traceVersion {
		return nil, fmt.Errorf("unsupported trace version %d", t.Version)
	}
	return &t, nil
}
