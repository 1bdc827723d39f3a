package kfmt

import (
	"io"
	"sync/atomic"
	"unicode/utf8"
	"unsafe"
)

const (
	// maxBufSize defines the buffer size for formatting numbers.
	maxBufSize = 32

	// lineBufSize is the amount of formatted output a printer collects
	// before handing it to the sink.
	lineBufSize = 160
)

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	// earlyPrintBuffer is a ring buffer that stores Printf output before an
	// output sink is attached.
	earlyPrintBuffer ringBuffer

	// outputSink is the io.Writer where Printf sends its output. If it
	// holds nil, the output is redirected to the earlyPrintBuffer.
	outputSink atomic.Pointer[sinkRef]
)

type sinkRef struct {
	w io.Writer
}

// SetOutputSink sets the default target for calls to Printf to w and copies
// any data accumulated in the earlyPrintBuffer to it. Printf may be called
// concurrently by interrupt handlers and the scheduler so w must tolerate
// concurrent writes.
func SetOutputSink(w io.Writer) {
	if w == nil {
		outputSink.Store(nil)
		return
	}

	outputSink.Store(&sinkRef{w: w})
	io.Copy(w, &earlyPrintBuffer)
}

// GetOutputSink returns the default target for calls to Printf.
func GetOutputSink() io.Writer {
	if ref := outputSink.Load(); ref != nil {
		return ref.w
	}
	return nil
}

// Output returns a writer that targets whichever sink is active when Write is
// called. Data written before a sink is attached is kept in the early print
// buffer.
func Output() io.Writer {
	return activeSinkWriter{}
}

type activeSinkWriter struct{}

func (activeSinkWriter) Write(p []byte) (int, error) {
	if w := GetOutputSink(); w != nil {
		return w.Write(p)
	}
	return earlyPrintBuffer.Write(p)
}

// Printf provides a minimal Printf implementation whose output is sent to the
// active output sink. It supports the following subset of formatting verbs:
//
// Strings:
//
//	%s the uninterpreted bytes of the string or byte slice
//	%c the character represented by a rune or byte
//
// Integers:
//
//	%o base 8
//	%d base 10
//	%x base 16, with lower-case letters for a-f
//
// Booleans:
//
//	%t "true" or "false"
//
// Width is specified by an optional decimal number immediately preceding the verb.
// If absent, the width is whatever is necessary to represent the value.
//
// String values with length less than the specified width will be left-padded with
// spaces. Integer values formatted as base-10 will also be left-padded with spaces.
// Finally, integer values formatted as base-16 will be left-padded with zeroes.
func Printf(format string, args ...interface{}) {
	Fprintf(GetOutputSink(), format, args...)
}

// Fprintf behaves exactly like Printf but it writes the formatted output to
// the specified io.Writer.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	p := printer{w: w}
	p.format(format, args)
	p.flush()
}

// printer accumulates formatted output in a fixed buffer and hands it to the
// sink with a single Write call unless the output exceeds lineBufSize. Each
// Fprintf call owns its printer, which lives on the caller's stack, so
// formatting never allocates and output produced by an interrupt handler
// does not interleave with a line printed by the scheduler.
type printer struct {
	w      io.Writer
	n      int
	buf    [lineBufSize]byte
	numBuf [maxBufSize + 1]byte
}

func (p *printer) write(b []byte) {
	for len(b) > 0 {
		if p.n == len(p.buf) {
			p.flush()
		}
		c := copy(p.buf[p.n:], b)
		p.n += c
		b = b[c:]
	}
}

func (p *printer) writeString(s string) {
	for len(s) > 0 {
		if p.n == len(p.buf) {
			p.flush()
		}
		c := copy(p.buf[p.n:], s)
		p.n += c
		s = s[c:]
	}
}

func (p *printer) writeByte(ch byte) {
	if p.n == len(p.buf) {
		p.flush()
	}
	p.buf[p.n] = ch
	p.n++
}

func (p *printer) format(format string, args []interface{}) {
	var (
		nextCh                       byte
		nextArgIndex                 int
		blockStart, blockEnd, padLen int
		fmtLen                       = len(format)
	)

	for blockEnd < fmtLen {
		nextCh = format[blockEnd]
		if nextCh != '%' {
			blockEnd++
			continue
		}

		if blockStart < blockEnd {
			p.writeString(format[blockStart:blockEnd])
		}

		// Scan til we hit the format character
		padLen = 0
		blockEnd++
	parseFmt:
		for ; blockEnd < fmtLen; blockEnd++ {
			nextCh = format[blockEnd]
			switch {
			case nextCh == '%':
				p.writeByte('%')
				break parseFmt
			case nextCh >= '0' && nextCh <= '9':
				padLen = (padLen * 10) + int(nextCh-'0')
				continue
			case nextCh == 'd' || nextCh == 'x' || nextCh == 'o' || nextCh == 's' || nextCh == 't' || nextCh == 'c':
				// Run out of args to print
				if nextArgIndex >= len(args) {
					p.write(errMissingArg)
					break parseFmt
				}

				switch nextCh {
				case 'o':
					p.fmtInt(args[nextArgIndex], 8, padLen)
				case 'd':
					p.fmtInt(args[nextArgIndex], 10, padLen)
				case 'x':
					p.fmtInt(args[nextArgIndex], 16, padLen)
				case 's':
					p.fmtString(args[nextArgIndex], padLen)
				case 't':
					p.fmtBool(args[nextArgIndex])
				case 'c':
					p.fmtChar(args[nextArgIndex])
				}

				nextArgIndex++
				break parseFmt
			}

			// reached end of formatting string without finding a verb
			p.write(errNoVerb)
		}
		blockStart, blockEnd = blockEnd+1, blockEnd+1
	}

	if blockStart < blockEnd && blockStart < fmtLen {
		p.writeString(format[blockStart:fmtLen])
	}

	// Check for unused args
	for ; nextArgIndex < len(args); nextArgIndex++ {
		p.write(errExtraArg)
	}
}

func (p *printer) flush() {
	if p.n == 0 {
		return
	}

	doWrite(p.w, p.buf[:p.n])
	p.n = 0
}

// doWrite is a proxy that uses the runtime.noescape hack to hide p from the
// compiler's escape analysis. Without this hack, the compiler cannot prove
// that p does not escape through the call to the yet unknown sink and moves
// every printer to the heap, which makes each Printf call allocate; that is
// not acceptable for output produced in interrupt context.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		earlyPrintBuffer.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. This function is copied over
// from runtime/stubs.go
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

// fmtBool prints a formatted version of boolean value v.
func (p *printer) fmtBool(v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		p.write(errWrongArgType)
	case bVal:
		p.write(trueValue)
	default:
		p.write(falseValue)
	}
}

// fmtChar prints the UTF-8 encoding of a rune or a single byte.
func (p *printer) fmtChar(v interface{}) {
	switch ch := v.(type) {
	case rune:
		var enc [utf8.UTFMax]byte
		p.write(enc[:utf8.EncodeRune(enc[:], ch)])
	case byte:
		p.writeByte(ch)
	default:
		p.write(errWrongArgType)
	}
}

// fmtString prints a formatted version of string or []byte value v, applying
// the padding specified by padLen.
func (p *printer) fmtString(v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		p.fmtRepeat(' ', padLen-len(castedVal))
		p.writeString(castedVal)
	case []byte:
		p.fmtRepeat(' ', padLen-len(castedVal))
		p.write(castedVal)
	default:
		p.write(errWrongArgType)
	}
}

// fmtRepeat writes count bytes with value ch.
func (p *printer) fmtRepeat(ch byte, count int) {
	for i := 0; i < count; i++ {
		p.writeByte(ch)
	}
}

// fmtInt prints out a formatted version of v in the requested base, applying
// the padding specified by padLen. This function supports all built-in signed
// and unsigned integer types and base 8, 10 and 16 output.
func (p *printer) fmtInt(v interface{}, base, padLen int) {
	var (
		sval             int64
		uval             uint64
		divider          uint64
		remainder        uint64
		padCh            byte
		left, right, end int
		numFmtBuf        = p.numBuf[:]
	)

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	switch base {
	case 8:
		divider = 8
		padCh = '0'
	case 10:
		divider = 10
		padCh = ' '
	case 16:
		divider = 16
		padCh = '0'
	}

	switch t := v.(type) {
	case uint8:
		uval = uint64(t)
	case uint16:
		uval = uint64(t)
	case uint32:
		uval = uint64(t)
	case uint64:
		uval = t
	case uint:
		uval = uint64(t)
	case uintptr:
		uval = uint64(t)
	case int8:
		sval = int64(t)
	case int16:
		sval = int64(t)
	case int32:
		sval = int64(t)
	case int64:
		sval = t
	case int:
		sval = int64(t)
	default:
		p.write(errWrongArgType)
		return
	}

	// Handle signs
	if sval < 0 {
		uval = uint64(-sval)
	} else if sval > 0 {
		uval = uint64(sval)
	}

	for right < maxBufSize {
		remainder = uval % divider
		if remainder < 10 {
			numFmtBuf[right] = byte(remainder) + '0'
		} else {
			// map values from 10 to 15 -> a-f
			numFmtBuf[right] = byte(remainder-10) + 'a'
		}

		right++

		uval /= divider
		if uval == 0 {
			break
		}
	}

	// Apply padding if required
	for ; right-left < padLen; right++ {
		numFmtBuf[right] = padCh
	}

	// Apply negative sign to the rightmost blank character (if using enough padding);
	// otherwise append the sign as a new char
	if sval < 0 {
		for end = right - 1; numFmtBuf[end] == ' '; end-- {
		}

		if end == right-1 {
			right++
		}

		numFmtBuf[end+1] = '-'
	}

	// Reverse in place
	end = right
	for right = right - 1; left < right; left, right = left+1, right-1 {
		numFmtBuf[left], numFmtBuf[right] = numFmtBuf[right], numFmtBuf[left]
	}

	p.write(numFmtBuf[0:end])
}
