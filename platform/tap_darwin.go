//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <stdbool.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <ApplicationServices/ApplicationServices.h>

extern CGEventRef hyperspaceCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CFMachPortRef createEventTap() {
    CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) | CGEventMaskBit(kCGEventKeyUp) | CGEventMaskBit(kCGEventFlagsChanged);
    return CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionDefault,
        mask,
        hyperspaceCallback,
        NULL
    );
}

static CFRunLoopRef attachEventTap(CFMachPortRef tap) {
    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopRef loop = CFRunLoopGetCurrent();
    CFRunLoopAddSource(loop, source, kCFRunLoopCommonModes);
    CFRelease(source);
    CGEventTapEnable(tap, true);
    return loop;
}

static void postKey(CGKeyCode code, bool down, CGEventFlags flags, int64_t tag) {
    CGEventRef ev = CGEventCreateKeyboardEvent(NULL, code, down);
    CGEventSetFlags(ev, flags);
    CGEventSetIntegerValueField(ev, kCGEventSourceUserData, tag);
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
}

static bool accessibilityTrusted() {
    return AXIsProcessTrusted();
}
*/
import "C"

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

// CGEventFlags bits for the four modifiers.
const (
	maskShift     = 1 << 17
	maskControl   = 1 << 18
	maskAlternate = 1 << 19
	maskCommand   = 1 << 20
)

var cgMasks = [...]uint64{
	keys.Command: maskCommand,
	keys.Option:  maskAlternate,
	keys.Control: maskControl,
	keys.Shift:   maskShift,
}

// The tap callback has no user pointer we can safely hand a Go value
// through, so the running tap is reachable from here.
var (
	activeMu  sync.Mutex
	activeTap *DarwinTap
)

// DarwinTap is a Source built on a CGEventTap; it is also the Sink, posting
// events with SentinelTag in kCGEventSourceUserData.
type DarwinTap struct {
	handler Handler
	tap     C.CFMachPortRef
	mods    modifierState
}

// New returns the macOS event source and sink.
func New() (Source, engine.Sink, error) {
	t := &DarwinTap{mods: modifierState{}}
	return t, t, nil
}

// Run creates the event tap and runs its run loop until ctx is cancelled.
func (t *DarwinTap) Run(ctx context.Context, h Handler) error {
	activeMu.Lock()
	if activeTap != nil {
		activeMu.Unlock()
		return fmt.Errorf("event tap already running")
	}
	t.handler = h
	activeTap = t
	activeMu.Unlock()

	defer func() {
		activeMu.Lock()
		activeTap = nil
		activeMu.Unlock()
	}()

	errCh := make(chan error, 1)
	loopCh := make(chan C.CFRunLoopRef, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tap := C.createEventTap()
		if tap == C.CFMachPortRef(0) {
			errCh <- fmt.Errorf("failed to create event tap (grant Accessibility permission)")
			return
		}
		t.tap = tap
		loopCh <- C.attachEventTap(tap)
		errCh <- nil
		C.CFRunLoopRun()
		C.CGEventTapEnable(tap, false)
		C.CFRelease(C.CFTypeRef(tap))
	}()

	if err := <-errCh; err != nil {
		return err
	}
	loop := <-loopCh
	slog.Info("Event tap installed")

	select {
	case <-ctx.Done():
		C.CFRunLoopStop(loop)
		<-done
		return nil
	case <-done:
		return fmt.Errorf("event tap run loop exited")
	}
}

//export hyperspaceCallback
func hyperspaceCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	activeMu.Lock()
	t := activeTap
	activeMu.Unlock()
	if t == nil {
		return event
	}

	if eventType == C.kCGEventTapDisabledByTimeout || eventType == C.kCGEventTapDisabledByUserInput {
		slog.Warn("Event tap was disabled, re-enabling")
		C.CGEventTapEnable(t.tap, true)
		return event
	}

	code := keys.Code(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
	tag := int64(C.CGEventGetIntegerValueField(event, C.kCGEventSourceUserData))

	ev := Event{Code: code, Tag: tag}
	switch eventType {
	case C.kCGEventKeyDown:
		ev.Down = true
	case C.kCGEventKeyUp:
		ev.Down = false
	case C.kCGEventFlagsChanged:
		// one flags-changed notification per modifier key; the mask is
		// shared by left and right so it only resyncs the per-key state
		m, ok := keys.ModifierOf(code)
		if !ok {
			return event
		}
		ev.Modifier = true
		ev.Down = t.mods.update(code, uint64(C.CGEventGetFlags(event))&cgMasks[m] != 0)
	default:
		return event
	}

	if Dispatch(ev, t.handler) == engine.Suppress {
		return C.CGEventRef(0)
	}
	return event
}

// Synthesize posts one tagged keyboard event.
func (t *DarwinTap) Synthesize(code keys.Code, isDown bool, flags keys.Flags) error {
	var cg uint64
	for _, m := range flags.Modifiers() {
		cg |= cgMasks[m]
	}
	C.postKey(C.CGKeyCode(code), C.bool(isDown), C.CGEventFlags(cg), C.int64_t(SentinelTag))
	return nil
}

// Diagnose reports whether the process may create an event tap.
func Diagnose() (string, error) {
	if !bool(C.accessibilityTrusted()) {
		return "", fmt.Errorf("accessibility permission not granted (System Settings > Privacy & Security > Accessibility)")
	}
	return "accessibility permission granted", nil
}
