// Package keyboard decodes PS/2 keyboard input and provides the driver for
// the legacy i8042 keyboard controller.
package keyboard

const (
	// extendedPrefix precedes the scancodes of keys that were added to
	// the original 83-key layout.
	extendedPrefix = 0xe0

	// releaseBit is set in the scancode that reports a key release.
	releaseBit = 0x80
)

type keyDef struct {
	normal, shifted rune
	code            KeyCode
	letter          bool
}

func chars(normal, shifted rune) keyDef {
	return keyDef{normal: normal, shifted: shifted}
}

func letter(r rune) keyDef {
	return keyDef{normal: r, shifted: r - 'a' + 'A', letter: true}
}

func raw(code KeyCode) keyDef {
	return keyDef{code: code}
}

// setOne maps scancode set 1 make codes to keys using the US 104-key layout.
// Keypad keys are decoded as if num lock is on.
var setOne = [...]keyDef{
	0x01: chars(0x1b, 0x1b),
	0x02: chars('1', '!'),
	0x03: chars('2', '@'),
	0x04: chars('3', '#'),
	0x05: chars('4', '$'),
	0x06: chars('5', '%'),
	0x07: chars('6', '^'),
	0x08: chars('7', '&'),
	0x09: chars('8', '*'),
	0x0a: chars('9', '('),
	0x0b: chars('0', ')'),
	0x0c: chars('-', '_'),
	0x0d: chars('=', '+'),
	0x0e: chars('\b', '\b'),
	0x0f: chars('\t', '\t'),
	0x10: letter('q'),
	0x11: letter('w'),
	0x12: letter('e'),
	0x13: letter('r'),
	0x14: letter('t'),
	0x15: letter('y'),
	0x16: letter('u'),
	0x17: letter('i'),
	0x18: letter('o'),
	0x19: letter('p'),
	0x1a: chars('[', '{'),
	0x1b: chars(']', '}'),
	0x1c: chars('\n', '\n'),
	0x1d: raw(KeyLeftCtrl),
	0x1e: letter('a'),
	0x1f: letter('s'),
	0x20: letter('d'),
	0x21: letter('f'),
	0x22: letter('g'),
	0x23: letter('h'),
	0x24: letter('j'),
	0x25: letter('k'),
	0x26: letter('l'),
	0x27: chars(';', ':'),
	0x28: chars('\'', '"'),
	0x29: chars('`', '~'),
	0x2a: raw(KeyLeftShift),
	0x2b: chars('\\', '|'),
	0x2c: letter('z'),
	0x2d: letter('x'),
	0x2e: letter('c'),
	0x2f: letter('v'),
	0x30: letter('b'),
	0x31: letter('n'),
	0x32: letter('m'),
	0x33: chars(',', '<'),
	0x34: chars('.', '>'),
	0x35: chars('/', '?'),
	0x36: raw(KeyRightShift),
	0x37: chars('*', '*'),
	0x38: raw(KeyLeftAlt),
	0x39: chars(' ', ' '),
	0x3a: raw(KeyCapsLock),
	0x3b: raw(KeyF1),
	0x3c: raw(KeyF2),
	0x3d: raw(KeyF3),
	0x3e: raw(KeyF4),
	0x3f: raw(KeyF5),
	0x40: raw(KeyF6),
	0x41: raw(KeyF7),
	0x42: raw(KeyF8),
	0x43: raw(KeyF9),
	0x44: raw(KeyF10),
	0x45: raw(KeyNumLock),
	0x46: raw(KeyScrollLock),
	0x47: chars('7', '7'),
	0x48: chars('8', '8'),
	0x49: chars('9', '9'),
	0x4a: chars('-', '-'),
	0x4b: chars('4', '4'),
	0x4c: chars('5', '5'),
	0x4d: chars('6', '6'),
	0x4e: chars('+', '+'),
	0x4f: chars('1', '1'),
	0x50: chars('2', '2'),
	0x51: chars('3', '3'),
	0x52: chars('0', '0'),
	0x53: chars('.', '.'),
	0x57: raw(KeyF11),
	0x58: raw(KeyF12),
}

// setOneExtended maps the make codes that follow the 0xe0 prefix.
var setOneExtended = [...]keyDef{
	0x1c: chars('\n', '\n'),
	0x1d: raw(KeyRightCtrl),
	0x35: chars('/', '/'),
	0x38: raw(KeyRightAlt),
	0x47: raw(KeyHome),
	0x48: raw(KeyArrowUp),
	0x49: raw(KeyPageUp),
	0x4b: raw(KeyArrowLeft),
	0x4d: raw(KeyArrowRight),
	0x4f: raw(KeyEnd),
	0x50: raw(KeyArrowDown),
	0x51: raw(KeyPageDown),
	0x52: raw(KeyInsert),
	0x53: raw(KeyDelete),
	0x5b: raw(KeyLeftWin),
	0x5c: raw(KeyRightWin),
	0x5d: raw(KeyApps),
}

// Decoder turns a stream of scancode set 1 bytes into key presses. Control
// key combinations are not treated specially. A Decoder is not safe for
// concurrent use.
type Decoder struct {
	extended bool
	lshift   bool
	rshift   bool
	capsLock bool
}

// NewDecoder returns a decoder with all modifiers released.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// AddByte feeds a single scancode byte to the decoder. It returns true and
// the decoded key when b completes a key press. Key releases, modifier and
// lock keys, prefix bytes and unknown scancodes yield no key.
func (d *Decoder) AddByte(b uint8) (Key, bool) {
	if b == extendedPrefix {
		d.extended = true
		return Key{}, false
	}

	table := setOne[:]
	if d.extended {
		table = setOneExtended[:]
		d.extended = false
	}

	released := b&releaseBit != 0
	code := int(b &^ releaseBit)
	if code >= len(table) {
		return Key{}, false
	}
	def := table[code]

	switch def.code {
	case KeyLeftShift:
		d.lshift = !released
		return Key{}, false
	case KeyRightShift:
		d.rshift = !released
		return Key{}, false
	case KeyCapsLock:
		if !released {
			d.capsLock = !d.capsLock
		}
		return Key{}, false
	}

	if released {
		return Key{}, false
	}

	if def.normal == 0 {
		if def.code == KeyNone {
			return Key{}, false
		}
		return Key{Code: def.code}, true
	}

	shift := d.lshift || d.rshift
	if def.letter && d.capsLock {
		shift = !shift
	}

	if shift {
		return Key{Rune: def.shifted}, true
	}
	return Key{Rune: def.normal}, true
}
