// Package tty provides terminal devices that the kernel can use as the
// output sink for kfmt.
package tty

import "io"

// Device is implemented by objects that can be used as a terminal device.
// Writes may be issued concurrently by interrupt handlers and the scheduler.
type Device interface {
	io.Writer
	io.ByteWriter
}
