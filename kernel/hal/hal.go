// Package hal detects the hardware present in the system and connects the
// drivers that claim it to the rest of the kernel.
package hal

import (
	"bytes"
	"coopos/device"
	"coopos/device/keyboard"
	"coopos/device/tty"
	"coopos/kernel/irq"
	"coopos/kernel/kfmt"
	taskkbd "coopos/kernel/task/keyboard"
	"sort"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeTTY      tty.Device
	activeKeyboard keyboard.Device

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	strBuf  bytes.Buffer

	// scancodeSinkFn receives the scancodes of the active keyboard.
	scancodeSinkFn = taskkbd.AddScancode
)

// ActiveTTY returns the currently active TTY or nil if no TTY was detected.
func ActiveTTY() tty.Device {
	return devices.activeTTY
}

// ActiveKeyboard returns the currently active keyboard or nil if no keyboard
// was detected.
func ActiveKeyboard() keyboard.Device {
	return devices.activeKeyboard
}

// ActiveDrivers returns the drivers that were successfully initialized.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers. Interrupt handlers are installed for drivers that need them; it
// is up to the caller to enable interrupts once the rest of the kernel is
// ready to receive them.
func DetectHardware() {
	// Get driver list and sort by detection priority
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(drivers)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList) {
	var w = kfmt.PrefixWriter{Sink: kfmt.Output()}

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(info, drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func onDriverInit(_ *device.DriverInfo, drv device.Driver) {
	switch drvImpl := drv.(type) {
	case tty.Device:
		if devices.activeTTY != nil {
			return
		}

		// The first TTY receives kfmt output, including everything
		// printed before it was detected.
		devices.activeTTY = drvImpl
		kfmt.SetOutputSink(drvImpl)
	case keyboard.Device:
		if devices.activeKeyboard != nil {
			return
		}

		devices.activeKeyboard = drvImpl
		drvImpl.SetScancodeSink(scancodeSinkFn)
	}

	if h, ok := drv.(device.IRQHandler); ok {
		if err := irq.HandleIRQ(irq.Line(h.IRQLine()), h.HandleIRQ); err != nil {
			kfmt.ReportErr("%s: %s", drv.DriverName(), err.Message)
		}
	}
}
