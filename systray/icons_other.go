//go:build !windows

package systray

import _ "embed"

var (
	//go:embed icons/idle.png
	iconIdle []byte
	//go:embed icons/hyper.png
	iconHyper []byte
	//go:embed icons/paused.png
	iconPaused []byte
)
