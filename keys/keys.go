package keys

import (
	"fmt"
	"sort"
	"strings"
)

// Code is a platform key code. It is only compared for equality.
type Code uint16

// Modifier identifies one of the modifier keys a binding can carry.
type Modifier int

const (
	Command Modifier = iota
	Option
	Control
	Shift
)

var modifierNames = [...]string{
	Command: "command",
	Option:  "option",
	Control: "control",
	Shift:   "shift",
}

func (m Modifier) String() string {
	if m < 0 || int(m) >= len(modifierNames) {
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
	return modifierNames[m]
}

// Flag returns the single bit m occupies in a Flags mask.
func (m Modifier) Flag() Flags {
	return 1 << uint(m)
}

// Flags is a bitmask of modifiers.
type Flags uint8

// Has reports whether every bit of m's flag is set.
func (f Flags) Has(m Modifier) bool {
	return f&m.Flag() != 0
}

// Modifiers lists the modifiers present in f in declaration order.
func (f Flags) Modifiers() []Modifier {
	var mods []Modifier
	for m := Command; m <= Shift; m++ {
		if f.Has(m) {
			mods = append(mods, m)
		}
	}
	return mods
}

func (f Flags) String() string {
	mods := f.Modifiers()
	if len(mods) == 0 {
		return "none"
	}
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.String()
	}
	return strings.Join(parts, "+")
}

// ParseModifier parses a modifier name. Common aliases (cmd, alt, ctrl, ...)
// are accepted.
func ParseModifier(name string) (Modifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "command", "cmd", "meta", "super", "win", "windows":
		return Command, nil
	case "option", "opt", "alt":
		return Option, nil
	case "control", "ctrl":
		return Control, nil
	case "shift":
		return Shift, nil
	}
	return 0, fmt.Errorf("unknown modifier: %s", name)
}

// ModifierOf reports which modifier a physical key belongs to.
func ModifierOf(c Code) (Modifier, bool) {
	m, ok := modifierCodes[c]
	return m, ok
}

// IsModifier reports whether c is one of the modifier keys.
func IsModifier(c Code) bool {
	_, ok := modifierCodes[c]
	return ok
}

// FlagsFor returns the union of the modifier bits of codes. Codes that are not
// modifier keys contribute nothing.
func FlagsFor(codes ...Code) Flags {
	var f Flags
	for _, c := range codes {
		if m, ok := modifierCodes[c]; ok {
			f |= m.Flag()
		}
	}
	return f
}

// CodeFor returns the left-hand physical key used to synthesize m.
func CodeFor(m Modifier) Code {
	return modifierKeys[m]
}

// Parse resolves a key name such as "h", "left", "pagedown" or "f5" to the
// code used on this platform.
func Parse(name string) (Code, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		n = alias
	}
	if c, ok := named[n]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown key: %s", name)
}

// MustParse is like Parse but panics on unknown names. Meant for tables of
// built-in keys.
func MustParse(name string) Code {
	c, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return c
}

var codeNames = func() map[Code]string {
	m := make(map[Code]string, len(named))
	for name, c := range named {
		if prev, ok := m[c]; ok && prev < name {
			continue
		}
		m[c] = name
	}
	return m
}()

// Name returns the canonical name of c, or a hex placeholder for codes
// without one.
func Name(c Code) string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", uint16(c))
}

// Names returns every known key name, sorted.
func Names() []string {
	out := make([]string, 0, len(named))
	for n := range named {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var aliases = map[string]string{
	"esc":        "escape",
	"enter":      "return",
	"backspace":  "delete",
	"del":        "forwarddelete",
	"pgup":       "pageup",
	"pgdn":       "pagedown",
	"cmd":        "command",
	"alt":        "option",
	"ctrl":       "control",
	"leftarrow":  "left",
	"rightarrow": "right",
	"uparrow":    "up",
	"downarrow":  "down",
	"-":          "minus",
	"=":          "equal",
	",":          "comma",
	".":          "period",
	"/":          "slash",
	";":          "semicolon",
	"'":          "quote",
	"`":          "grave",
	"[":          "leftbracket",
	"]":          "rightbracket",
	"\\":         "backslash",
}
