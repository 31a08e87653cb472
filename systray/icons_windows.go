package systray

import _ "embed"

var (
	//go:embed icons/idle.ico
	iconIdle []byte
	//go:embed icons/hyper.ico
	iconHyper []byte
	//go:embed icons/paused.ico
	iconPaused []byte
)
