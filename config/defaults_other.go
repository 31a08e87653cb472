//go:build !darwin

package config

// Command is the Windows/Super key here, so line navigation uses home/end
// and word deletes use control.
func defaultBindings() []BindingConfig {
	return []BindingConfig{
		bind("h", "left"),
		bind("j", "down"),
		bind("k", "up"),
		bind("l", "right"),
		bind("y", "home"),
		bind("o", "end"),
		bind("u", "pagedown"),
		bind("i", "pageup"),
		bind("e", "escape"),
		bind("m", "delete"),
		bind("n", "delete", "control"),
		bind("b", "home", "shift"),
		bind("comma", "forwarddelete"),
		bind("period", "forwarddelete", "control"),
		bind("slash", "end", "shift"),
		bind("1", "f1"),
		bind("2", "f2"),
		bind("3", "f3"),
		bind("4", "f4"),
		bind("5", "f5"),
		bind("6", "f6"),
		bind("7", "f7"),
		bind("8", "f8"),
		bind("9", "f9"),
		bind("0", "f10"),
		bind("minus", "f11"),
		bind("equal", "f12"),
	}
}
