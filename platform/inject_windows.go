//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"markestedt/hyperspace/keys"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard        = 1
	keyeventfExtendedKey = 0x0001
	keyeventfKeyup       = 0x0002
	mapvkVkToVsc         = 0
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

func keyInput(code keys.Code, isDown bool) input {
	scan, _, _ := mapVirtualKeyW.Call(uintptr(code), mapvkVkToVsc)

	var flags uint32
	if !isDown {
		flags |= keyeventfKeyup
	}
	if keys.Extended(code) {
		flags |= keyeventfExtendedKey
	}

	return input{
		inputType: inputKeyboard,
		ki: keyboardInput{
			wVk:         uint16(code),
			wScan:       uint16(scan),
			dwFlags:     flags,
			dwExtraInfo: SentinelTag,
		},
	}
}

// Synthesize injects one key event tagged with SentinelTag. On key down, any
// modifier in flags that is not already physically down is pressed around the
// key and released right after it.
func (h *WindowsHook) Synthesize(code keys.Code, isDown bool, flags keys.Flags) error {
	var inputs []input

	var wrapped []keys.Code
	if isDown {
		for _, m := range flags.Modifiers() {
			mk := keys.CodeFor(m)
			if mk == code || isKeyPressed(genericVK(m)) {
				continue
			}
			wrapped = append(wrapped, mk)
			inputs = append(inputs, keyInput(mk, true))
		}
	}

	inputs = append(inputs, keyInput(code, isDown))

	for i := len(wrapped) - 1; i >= 0; i-- {
		inputs = append(inputs, keyInput(wrapped[i], false))
	}

	// Send all inputs at once so nothing interleaves with them
	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("SendInput failed: %w", err)
	}

	return nil
}

// genericVK is the side-agnostic virtual key GetAsyncKeyState understands
// for m.
func genericVK(m keys.Modifier) keys.Code {
	switch m {
	case keys.Option:
		return 0x12 // VK_MENU
	case keys.Control:
		return 0x11 // VK_CONTROL
	case keys.Shift:
		return 0x10 // VK_SHIFT
	default:
		return keys.CodeFor(m)
	}
}
