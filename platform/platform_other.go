//go:build !windows && !linux && !darwin

package platform

import (
	"fmt"
	"runtime"

	"markestedt/hyperspace/engine"
)

// New is not available on this platform.
func New() (Source, engine.Sink, error) {
	return nil, nil, fmt.Errorf("keyboard interception is not supported on %s", runtime.GOOS)
}

// Diagnose always fails on this platform.
func Diagnose() (string, error) {
	return "", fmt.Errorf("keyboard interception is not supported on %s", runtime.GOOS)
}
