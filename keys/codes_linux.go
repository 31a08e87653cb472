//go:build linux

package keys

import evdev "github.com/holoplot/go-evdev"

// Linux evdev key codes.
var named = map[string]Code{
	"a":            Code(evdev.KEY_A),
	"b":            Code(evdev.KEY_B),
	"c":            Code(evdev.KEY_C),
	"d":            Code(evdev.KEY_D),
	"e":            Code(evdev.KEY_E),
	"f":            Code(evdev.KEY_F),
	"g":            Code(evdev.KEY_G),
	"h":            Code(evdev.KEY_H),
	"i":            Code(evdev.KEY_I),
	"j":            Code(evdev.KEY_J),
	"k":            Code(evdev.KEY_K),
	"l":            Code(evdev.KEY_L),
	"m":            Code(evdev.KEY_M),
	"n":            Code(evdev.KEY_N),
	"o":            Code(evdev.KEY_O),
	"p":            Code(evdev.KEY_P),
	"q":            Code(evdev.KEY_Q),
	"r":            Code(evdev.KEY_R),
	"s":            Code(evdev.KEY_S),
	"t":            Code(evdev.KEY_T),
	"u":            Code(evdev.KEY_U),
	"v":            Code(evdev.KEY_V),
	"w":            Code(evdev.KEY_W),
	"x":            Code(evdev.KEY_X),
	"y":            Code(evdev.KEY_Y),
	"z":            Code(evdev.KEY_Z),
	"0":            Code(evdev.KEY_0),
	"1":            Code(evdev.KEY_1),
	"2":            Code(evdev.KEY_2),
	"3":            Code(evdev.KEY_3),
	"4":            Code(evdev.KEY_4),
	"5":            Code(evdev.KEY_5),
	"6":            Code(evdev.KEY_6),
	"7":            Code(evdev.KEY_7),
	"8":            Code(evdev.KEY_8),
	"9":            Code(evdev.KEY_9),
	"minus":        Code(evdev.KEY_MINUS),
	"equal":        Code(evdev.KEY_EQUAL),
	"comma":        Code(evdev.KEY_COMMA),
	"period":       Code(evdev.KEY_DOT),
	"slash":        Code(evdev.KEY_SLASH),
	"semicolon":    Code(evdev.KEY_SEMICOLON),
	"quote":        Code(evdev.KEY_APOSTROPHE),
	"grave":        Code(evdev.KEY_GRAVE),
	"leftbracket":  Code(evdev.KEY_LEFTBRACE),
	"rightbracket": Code(evdev.KEY_RIGHTBRACE),
	"backslash":    Code(evdev.KEY_BACKSLASH),

	"return":        Code(evdev.KEY_ENTER),
	"tab":           Code(evdev.KEY_TAB),
	"space":         Code(evdev.KEY_SPACE),
	"delete":        Code(evdev.KEY_BACKSPACE),
	"escape":        Code(evdev.KEY_ESC),
	"forwarddelete": Code(evdev.KEY_DELETE),
	"home":          Code(evdev.KEY_HOME),
	"end":           Code(evdev.KEY_END),
	"pageup":        Code(evdev.KEY_PAGEUP),
	"pagedown":      Code(evdev.KEY_PAGEDOWN),
	"left":          Code(evdev.KEY_LEFT),
	"right":         Code(evdev.KEY_RIGHT),
	"up":            Code(evdev.KEY_UP),
	"down":          Code(evdev.KEY_DOWN),

	"f1":  Code(evdev.KEY_F1),
	"f2":  Code(evdev.KEY_F2),
	"f3":  Code(evdev.KEY_F3),
	"f4":  Code(evdev.KEY_F4),
	"f5":  Code(evdev.KEY_F5),
	"f6":  Code(evdev.KEY_F6),
	"f7":  Code(evdev.KEY_F7),
	"f8":  Code(evdev.KEY_F8),
	"f9":  Code(evdev.KEY_F9),
	"f10": Code(evdev.KEY_F10),
	"f11": Code(evdev.KEY_F11),
	"f12": Code(evdev.KEY_F12),

	"command":      Code(evdev.KEY_LEFTMETA),
	"rightcommand": Code(evdev.KEY_RIGHTMETA),
	"option":       Code(evdev.KEY_LEFTALT),
	"rightoption":  Code(evdev.KEY_RIGHTALT),
	"control":      Code(evdev.KEY_LEFTCTRL),
	"rightcontrol": Code(evdev.KEY_RIGHTCTRL),
	"shift":        Code(evdev.KEY_LEFTSHIFT),
	"rightshift":   Code(evdev.KEY_RIGHTSHIFT),
	"capslock":     Code(evdev.KEY_CAPSLOCK),
}

var modifierCodes = map[Code]Modifier{
	Code(evdev.KEY_LEFTMETA):   Command,
	Code(evdev.KEY_RIGHTMETA):  Command,
	Code(evdev.KEY_LEFTALT):    Option,
	Code(evdev.KEY_RIGHTALT):   Option,
	Code(evdev.KEY_LEFTCTRL):   Control,
	Code(evdev.KEY_RIGHTCTRL):  Control,
	Code(evdev.KEY_LEFTSHIFT):  Shift,
	Code(evdev.KEY_RIGHTSHIFT): Shift,
}

var modifierKeys = [...]Code{
	Command: Code(evdev.KEY_LEFTMETA),
	Option:  Code(evdev.KEY_LEFTALT),
	Control: Code(evdev.KEY_LEFTCTRL),
	Shift:   Code(evdev.KEY_LEFTSHIFT),
}
