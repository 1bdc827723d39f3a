package main

import (
	"context"
	"coopos/device/keyboard"
	"coopos/device/tty"
	"coopos/kernel/conf"
	"coopos/kernel/cpu/simcpu"
	"coopos/kernel/irq"
	"coopos/kernel/kfmt"
	"coopos/kernel/kmain"
	taskkbd "coopos/kernel/task/keyboard"
	"fmt"
	"io"
	"time"
)

// idlePollInterval controls how often waitIdle samples the simulated core.
const idlePollInterval = 5 * time.Millisecond

// machine is a simulated PC with a serial console and a keyboard controller.
type machine struct {
	cfg   conf.Config
	core  *simcpu.CPU
	ports *simcpu.Ports
	kbd   *simcpu.KeyboardController
}

// newMachine wires the simulated devices and points the kernel drivers at
// them. The serial console output is copied to console.
func newMachine(cfg conf.Config, console io.Writer) *machine {
	m := &machine{
		cfg:   cfg,
		core:  simcpu.New(),
		ports: simcpu.NewPorts(),
	}

	simcpu.AttachUART(m.ports, tty.COM1, console)
	m.kbd = simcpu.NewKeyboardController(m.core, m.ports, simcpu.Line(irq.Keyboard))
	m.core.HandleIRQ(simcpu.Line(irq.Keyboard), func() { irq.Dispatch(irq.Keyboard) })

	tty.UsePorts(m.ports.ReadByte, m.ports.WriteByte)
	keyboard.UsePorts(m.ports.ReadByte, m.ports.WriteByte)

	return m
}

// run boots the kernel and keeps it running until ctx is done. A kernel
// panic is reported on the console and returned as an error.
func (m *machine) run(ctx context.Context) (err error) {
	stop := context.AfterFunc(ctx, m.core.PowerOff)
	defer stop()

	defer func() {
		switch r := recover(); r {
		case nil, simcpu.ErrPoweredOff:
		default:
			kfmt.PrintPanic(r)
			err = fmt.Errorf("kernel panic: %v", r)
		}
	}()

	kmain.Boot(m.core, m.cfg, taskkbd.PrintKeypresses())
	return nil
}

// send delivers a scancode to the kernel and waits for the interrupt to be
// acknowledged.
func (m *machine) send(ctx context.Context, scancode uint8) error {
	return m.kbd.Send(ctx, scancode)
}

// waitIdle blocks until the core halts with no interrupt pending, which
// means that every task has processed its input.
func (m *machine) waitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for {
		if m.core.Halted() && m.core.Pending() == 0 {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
