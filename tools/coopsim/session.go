package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// readKeys forwards the bytes read from r until it fails. Reads cannot be
// interrupted so the goroutine lingers until the process exits.
func readKeys(r io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)

		var buf [1]byte
		for {
			if _, err := r.Read(buf[:]); err != nil {
				return
			}
			keys <- buf[0]
		}
	}()
	return keys
}

// interactive runs m with keyboard input taken from stdin until the user
// presses Ctrl-C or Ctrl-D or stdin is exhausted. If rec is not nil, every
// scancode sent to the kernel is appended to it.
func interactive(ctx context.Context, m *machine, console *consoleWriter, rec *Trace) error {
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.run(gctx)
	})

	g.Go(func() error {
		defer cancel()

		keys := readKeys(os.Stdin)
		last := time.Now()
		for {
			var (
				b  byte
				ok bool
			)

			select {
			case <-gctx.Done():
				return nil
			case b, ok = <-keys:
			}

			if !ok || b == keyCtrlC || b == keyCtrlD {
				return nil
			}

			for _, scancode := range scancodesFor(b) {
				if rec != nil {
					now := time.Now()
					rec.add(now.Sub(last), scancode)
					last = now
				}

				if err := m.send(gctx, scancode); err != nil {
					return ignoreCanceled(err)
				}
			}
		}
	})

	err := g.Wait()
	if ferr := console.Flush(); err == nil {
		err = ferr
	}
	return err
}

// replay feeds the events of t to m, honoring the recorded delays scaled by
// 1/speed, and returns once the kernel has processed all of them. A speed of
// zero replays without delays.
func replay(ctx context.Context, m *machine, console *consoleWriter, t *Trace, speed float64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return m.run(gctx)
	})

	g.Go(func() error {
		defer cancel()

		for _, ev := range t.Events {
			if speed > 0 {
				select {
				case <-time.After(time.Duration(float64(ev.Delay()) / speed)):
				case <-gctx.Done():
					return nil
				}
			}

			if err := m.send(gctx, ev.Scancode); err != nil {
				return ignoreCanceled(err)
			}
		}

		return ignoreCanceled(m.waitIdle(gctx))
	})

	err := g.Wait()
	if ferr := console.Flush(); err == nil {
		err = ferr
	}
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
