//go:build windows

package keys

// Windows virtual key codes as reported by the low-level keyboard hook.
var named = map[string]Code{
	"a":            0x41,
	"b":            0x42,
	"c":            0x43,
	"d":            0x44,
	"e":            0x45,
	"f":            0x46,
	"g":            0x47,
	"h":            0x48,
	"i":            0x49,
	"j":            0x4A,
	"k":            0x4B,
	"l":            0x4C,
	"m":            0x4D,
	"n":            0x4E,
	"o":            0x4F,
	"p":            0x50,
	"q":            0x51,
	"r":            0x52,
	"s":            0x53,
	"t":            0x54,
	"u":            0x55,
	"v":            0x56,
	"w":            0x57,
	"x":            0x58,
	"y":            0x59,
	"z":            0x5A,
	"0":            0x30,
	"1":            0x31,
	"2":            0x32,
	"3":            0x33,
	"4":            0x34,
	"5":            0x35,
	"6":            0x36,
	"7":            0x37,
	"8":            0x38,
	"9":            0x39,
	"semicolon":    0xBA,
	"equal":        0xBB,
	"comma":        0xBC,
	"minus":        0xBD,
	"period":       0xBE,
	"slash":        0xBF,
	"grave":        0xC0,
	"leftbracket":  0xDB,
	"backslash":    0xDC,
	"rightbracket": 0xDD,
	"quote":        0xDE,

	"return":        0x0D,
	"tab":           0x09,
	"space":         0x20,
	"delete":        0x08,
	"escape":        0x1B,
	"forwarddelete": 0x2E,
	"home":          0x24,
	"end":           0x23,
	"pageup":        0x21,
	"pagedown":      0x22,
	"left":          0x25,
	"up":            0x26,
	"right":         0x27,
	"down":          0x28,

	"f1":  0x70,
	"f2":  0x71,
	"f3":  0x72,
	"f4":  0x73,
	"f5":  0x74,
	"f6":  0x75,
	"f7":  0x76,
	"f8":  0x77,
	"f9":  0x78,
	"f10": 0x79,
	"f11": 0x7A,
	"f12": 0x7B,

	"command":      0x5B,
	"rightcommand": 0x5C,
	"shift":        0xA0,
	"rightshift":   0xA1,
	"control":      0xA2,
	"rightcontrol": 0xA3,
	"option":       0xA4,
	"rightoption":  0xA5,
	"capslock":     0x14,
}

var modifierCodes = map[Code]Modifier{
	0x5B: Command,
	0x5C: Command,
	0xA4: Option,
	0xA5: Option,
	0xA2: Control,
	0xA3: Control,
	0xA0: Shift,
	0xA1: Shift,
}

var modifierKeys = [...]Code{
	Command: 0x5B,
	Option:  0xA4,
	Control: 0xA2,
	Shift:   0xA0,
}

// Extended reports whether c must be injected with KEYEVENTF_EXTENDEDKEY.
func Extended(c Code) bool {
	switch c {
	case 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x2D, 0x2E, 0x5B, 0x5C, 0xA3, 0xA5:
		return true
	}
	return false
}
