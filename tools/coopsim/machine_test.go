package main

import (
	"bytes"
	"context"
	"coopos/device/keyboard"
	"coopos/device/tty"
	"coopos/kernel/conf"
	"coopos/kernel/cpu"
	"coopos/kernel/kfmt"
	"testing"
	"time"

	"github.com/fatih/color"
)

func TestReplaySession(t *testing.T) {
	defer func(orig bool) {
		color.NoColor = orig
		tty.UsePorts(cpu.PortReadByte, cpu.PortWriteByte)
		keyboard.UsePorts(cpu.PortReadByte, cpu.PortWriteByte)
		kfmt.SetOutputSink(nil)
	}(color.NoColor)
	color.NoColor = true

	cfg := conf.Embedded()
	cfg.QuietBoot = false

	tr := newTrace()
	for _, b := range []byte("Hi!\n") {
		for _, scancode := range scancodesFor(b) {
			tr.add(0, scancode)
		}
	}

	var out bytes.Buffer
	console := newConsoleWriter(&out, true)
	m := newMachine(cfg, console)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := replay(ctx, m, console, tr, 0); err != nil {
		t.Fatal(err)
	}

	if ctx.Err() != nil {
		t.Fatal("replay did not finish before the deadline")
	}

	exp := "[hal] serial_tty(0.0.1): initialized\n" +
		"[hal] ps2_keyboard(0.0.1): initialized\n" +
		"[OK] coopos 0.1.0\n" +
		"[OK] Scancode initialized\n" +
		"Hi!\n"

	if got := out.String(); got != exp {
		t.Fatalf("expected console output:\n%q\ngot:\n%q", exp, got)
	}
}
