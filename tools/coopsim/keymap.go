package main

const (
	scancodeLeftShift = 0x2a
	scancodeRelease   = 0x80

	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

type keyStroke struct {
	code  uint8
	shift bool
}

// keymap translates host input bytes to scancode set 1 make codes using the
// US layout.
var keymap = map[byte]keyStroke{
	0x1b: {code: 0x01},
	'\b': {code: 0x0e},
	0x7f: {code: 0x0e},
	'\t': {code: 0x0f},
	'\r': {code: 0x1c},
	'\n': {code: 0x1c},
	' ':  {code: 0x39},
}

func init() {
	rows := []struct {
		first           uint8
		normal, shifted string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1e, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2b, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}

	for _, row := range rows {
		for i := 0; i < len(row.normal); i++ {
			code := row.first + uint8(i)
			keymap[row.normal[i]] = keyStroke{code: code}
			keymap[row.shifted[i]] = keyStroke{code: code, shift: true}
		}
	}
}

// scancodesFor returns the press and release sequence that types b or nil if
// b has no key on the US layout.
func scancodesFor(b byte) []uint8 {
	key, ok := keymap[b]
	if !ok {
		return nil
	}

	if key.shift {
		return []uint8{scancodeLeftShift, key.code, key.code | scancodeRelease, scancodeLeftShift | scancodeRelease}
	}
	return []uint8{key.code, key.code | scancodeRelease}
}
