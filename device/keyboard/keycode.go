package keyboard

// KeyCode identifies a key that does not map to a printable character.
type KeyCode uint8

// The list of supported non-printable keys.
const (
	KeyNone KeyCode = iota
	KeyLeftShift
	KeyRightShift
	KeyLeftCtrl
	KeyRightCtrl
	KeyLeftAlt
	KeyRightAlt
	KeyLeftWin
	KeyRightWin
	KeyApps
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	numKeyCodes
)

var keyCodeNames = [numKeyCodes]string{
	KeyNone:       "None",
	KeyLeftShift:  "LShift",
	KeyRightShift: "RShift",
	KeyLeftCtrl:   "LControl",
	KeyRightCtrl:  "RControl",
	KeyLeftAlt:    "LAlt",
	KeyRightAlt:   "RAltGr",
	KeyLeftWin:    "LWin",
	KeyRightWin:   "RWin",
	KeyApps:       "Apps",
	KeyCapsLock:   "CapsLock",
	KeyNumLock:    "NumpadLock",
	KeyScrollLock: "ScrollLock",
	KeyF1:         "F1",
	KeyF2:         "F2",
	KeyF3:         "F3",
	KeyF4:         "F4",
	KeyF5:         "F5",
	KeyF6:         "F6",
	KeyF7:         "F7",
	KeyF8:         "F8",
	KeyF9:         "F9",
	KeyF10:        "F10",
	KeyF11:        "F11",
	KeyF12:        "F12",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyInsert:     "Insert",
	KeyDelete:     "Delete",
}

// String implements fmt.Stringer.
func (k KeyCode) String() string {
	if k >= numKeyCodes {
		return "Unknown"
	}
	return keyCodeNames[k]
}

// Key is the result of decoding a key press. Printable keys carry a non-zero
// Rune; all other keys carry their Code.
type Key struct {
	Rune rune
	Code KeyCode
}

// IsRune returns true if the key maps to a character.
func (k Key) IsRune() bool {
	return k.Rune != 0
}
