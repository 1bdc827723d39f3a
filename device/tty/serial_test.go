package tty

import (
	"bytes"
	"coopos/device"
	"coopos/kernel/cpu/simcpu"
	"testing"
)

func TestProbe(t *testing.T) {
	defer func(origRead func(uint16) uint8, origWrite func(uint16, uint8)) {
		UsePorts(origRead, origWrite)
	}(portReadByteFn, portWriteByteFn)

	// A bus where writes are lost reads back 0xff.
	UsePorts(func(uint16) uint8 { return 0xff }, func(uint16, uint8) {})
	if drv := probe(); drv != nil {
		t.Fatal("expected probe to fail when no UART is present")
	}

	ports := simcpu.NewPorts()
	UsePorts(ports.ReadByte, ports.WriteByte)

	drv := probe()
	if drv == nil {
		t.Fatal("expected probe to detect the UART")
	}

	if _, ok := drv.(Device); !ok {
		t.Fatal("expected serial driver to implement tty.Device")
	}

	if _, ok := drv.(device.IRQHandler); ok {
		t.Fatal("serial driver is not expected to service interrupts")
	}
}

func TestSerialDriverInit(t *testing.T) {
	type write struct {
		port uint16
		val  uint8
	}

	var writes []write
	s := NewSerial(COM1, nil, func(port uint16, val uint8) {
		writes = append(writes, write{port, val})
	})

	if err := s.DriverInit(&bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	exp := []write{
		{COM1 + 1, 0},
		{COM1 + 3, 0x80},
		{COM1 + 0, 3},
		{COM1 + 1, 0},
		{COM1 + 3, 0x03},
		{COM1 + 2, 0xc7},
		{COM1 + 4, 0x03},
	}

	if len(writes) != len(exp) {
		t.Fatalf("expected writes %v; got %v", exp, writes)
	}

	for i := range exp {
		if writes[i] != exp[i] {
			t.Errorf("expected write %d to be %v; got %v", i, exp[i], writes[i])
		}
	}

	if exp, got := "serial_tty", s.DriverName(); got != exp {
		t.Fatalf("expected driver name %q; got %q", exp, got)
	}
}

func TestSerialWrite(t *testing.T) {
	ports := simcpu.NewPorts()
	ports.Set(COM1+regLineStatus, lineStatusTxEmpty)

	var out bytes.Buffer
	ports.OnWrite(COM1+regData, func(b uint8) { out.WriteByte(b) })

	s := NewSerial(COM1, ports.ReadByte, ports.WriteByte)
	n, err := s.Write([]byte("[OK] hi\n"))
	if err != nil {
		t.Fatal(err)
	}

	if exp := 8; n != exp {
		t.Fatalf("expected to write %d bytes; wrote %d", exp, n)
	}

	if exp, got := "[OK] hi\r\n", out.String(); got != exp {
		t.Fatalf("expected UART to transmit %q; got %q", exp, got)
	}
}

func TestSerialTxTimeout(t *testing.T) {
	ports := simcpu.NewPorts()
	ports.Set(COM1+regLineStatus, 0)

	s := NewSerial(COM1, ports.ReadByte, ports.WriteByte)
	if n, err := s.Write([]byte("x")); err != errTxTimeout || n != 0 {
		t.Fatalf("expected errTxTimeout after 0 bytes; got %v after %d bytes", err, n)
	}
}
