package config

func defaultBindings() []BindingConfig {
	return []BindingConfig{
		bind("h", "left"),
		bind("j", "down"),
		bind("k", "up"),
		bind("l", "right"),
		bind("y", "left", "command"),
		bind("o", "right", "command"),
		bind("u", "pagedown"),
		bind("i", "pageup"),
		bind("e", "escape"),
		bind("m", "delete"),
		bind("n", "delete", "option"),
		bind("b", "delete", "command"),
		bind("comma", "forwarddelete"),
		bind("period", "forwarddelete", "option"),
		bind("slash", "forwarddelete", "command"),
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
