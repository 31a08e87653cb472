//go:build windows

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	getMessage          = user32.NewProc("GetMessageW")
	postThreadMessage   = user32.NewProc("PostThreadMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL = 13
	wmQuit       = 0x0012
	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsHook is a Source built on a low-level keyboard hook. It is also the
// Sink: injected events carry SentinelTag in dwExtraInfo.
type WindowsHook struct {
	mu       sync.Mutex
	handler  Handler
	hook     uintptr
	threadID uint32
}

// New returns the Windows event source and sink.
func New() (Source, engine.Sink, error) {
	h := &WindowsHook{}
	return h, h, nil
}

// Run installs the hook and pumps messages until ctx is cancelled. The hook
// procedure, and therefore the handler, runs on the pumping thread.
func (h *WindowsHook) Run(ctx context.Context, handler Handler) error {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.runHook(errCh)
	}()

	if err := <-errCh; err != nil {
		return err
	}
	slog.Info("Keyboard hook installed")

	select {
	case <-ctx.Done():
		h.mu.Lock()
		tid := h.threadID
		h.mu.Unlock()
		postThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
		<-done
		return nil
	case <-done:
		return fmt.Errorf("keyboard hook message loop exited")
	}
}

func (h *WindowsHook) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 {
			kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			if h.handleKeyEvent(wParam, kbInfo) == engine.Suppress {
				return 1
			}
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}

	h.mu.Lock()
	h.hook = hook
	h.threadID = windows.GetCurrentThreadId()
	h.mu.Unlock()

	errCh <- nil

	var m msg
	for {
		r, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
	}

	unhookWindowsHookEx.Call(hook)
	slog.Info("Keyboard hook removed")
}

func (h *WindowsHook) handleKeyEvent(wParam uintptr, kbInfo *kbdllhookstruct) engine.Decision {
	var isDown bool
	switch wParam {
	case wmKeydown, wmSyskeydown:
		isDown = true
	case wmKeyup, wmSyskeyup:
		isDown = false
	default:
		return engine.Forward
	}

	code := keys.Code(kbInfo.vkCode)
	return Dispatch(Event{
		Code:     code,
		Down:     isDown,
		Modifier: keys.IsModifier(code),
		Tag:      int64(kbInfo.dwExtraInfo),
	}, h.handler)
}

func isKeyPressed(vk keys.Code) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

// Diagnose reports whether a low-level hook can be installed.
func Diagnose() (string, error) {
	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}
	hook, _, err := setWindowsHookEx.Call(whKeyboardLL, windows.NewCallback(hookProc), 0, 0)
	if hook == 0 {
		return "", fmt.Errorf("cannot install keyboard hook: %w", err)
	}
	unhookWindowsHookEx.Call(hook)
	return "low-level keyboard hook available", nil
}
