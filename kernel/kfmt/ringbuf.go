package kfmt

import "io"

// ringBufferSize defines size of the ring buffer that buffers early Printf
// output. Its default size is selected so it can buffer the contents of a
// standard 80*25 text-mode console. The ring buffer size must always be a
// power of 2.
const ringBufferSize = 2048

// ringBuffer captures Printf output produced before an output sink is
// attached. Once full, the oldest bytes are overwritten.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

// Len returns the number of buffered bytes.
func (rb *ringBuffer) Len() int {
	return (rb.wIndex - rb.rIndex) & (ringBufferSize - 1)
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p. It returns io.EOF once the buffer is
// drained.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && rb.rIndex != rb.wIndex {
		// Copy up to the write index or the end of the backing array,
		// whichever comes first.
		end := rb.wIndex
		if rb.rIndex > rb.wIndex {
			end = ringBufferSize
		}

		c := copy(p[n:], rb.buffer[rb.rIndex:end])
		n += c
		rb.rIndex = (rb.rIndex + c) & (ringBufferSize - 1)
	}

	return n, nil
}

// WriteTo drains the buffer into w using a single Write call.
func (rb *ringBuffer) WriteTo(w io.Writer) (int64, error) {
	if rb.Len() == 0 {
		return 0, nil
	}

	var (
		out = make([]byte, rb.Len())
		n   int
	)
	for n < len(out) {
		c, _ := rb.Read(out[n:])
		n += c
	}

	written, err := w.Write(out)
	return int64(written), err
}
