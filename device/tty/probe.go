package tty

import "coopos/device"

func probe() device.Driver {
	if drv := probeForSerial(); drv != nil {
		return drv
	}
	return nil
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probe,
	})
}
