package kmain

import (
	"bytes"
	"context"
	"coopos/device/keyboard"
	"coopos/device/tty"
	"coopos/kernel/conf"
	"coopos/kernel/cpu"
	"coopos/kernel/cpu/simcpu"
	"coopos/kernel/irq"
	"coopos/kernel/kfmt"
	taskkbd "coopos/kernel/task/keyboard"
	"testing"
	"time"
)

func TestBoot(t *testing.T) {
	defer func() {
		tty.UsePorts(cpu.PortReadByte, cpu.PortWriteByte)
		keyboard.UsePorts(cpu.PortReadByte, cpu.PortWriteByte)
		irq.HandleIRQ(irq.Keyboard, nil)
		kfmt.SetOutputSink(nil)
	}()

	var (
		core  = simcpu.New()
		ports = simcpu.NewPorts()
		kc    = simcpu.NewKeyboardController(core, ports, simcpu.Line(irq.Keyboard))
		out   bytes.Buffer
	)

	simcpu.AttachUART(ports, tty.COM1, &out)
	tty.UsePorts(ports.ReadByte, ports.WriteByte)
	keyboard.UsePorts(ports.ReadByte, ports.WriteByte)
	core.HandleIRQ(simcpu.Line(irq.Keyboard), func() { irq.Dispatch(irq.Keyboard) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// "h", "i" and enter, each pressed and released.
	input := []uint8{0x23, 0xa3, 0x17, 0x97, 0x1c, 0x9c}
	core.OnIdle(func() {
		if len(input) == 0 {
			core.PowerOff()
			return
		}

		if err := kc.Send(ctx, input[0]); err != nil {
			t.Errorf("unable to send scancode: %v", err)
			core.PowerOff()
			return
		}
		input = input[1:]
	})

	cfg := conf.Embedded()
	cfg.QuietBoot = false

	func() {
		defer func() {
			if err := recover(); err != simcpu.ErrPoweredOff {
				panic(err)
			}
		}()

		Boot(core, cfg, taskkbd.PrintKeypresses())
	}()

	exp := "[hal] serial_tty(0.0.1): initialized\r\n" +
		"[hal] ps2_keyboard(0.0.1): initialized\r\n" +
		"[OK] coopos 0.1.0\r\n" +
		"[OK] Scancode initialized\r\n" +
		"hi\r\n"

	if got := out.String(); got != exp {
		t.Fatalf("expected serial output:\n%q\ngot:\n%q", exp, got)
	}

	if got := conf.Active(); got != cfg {
		t.Fatalf("expected boot config %+v to be active; got %+v", cfg, got)
	}
}
