//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"markestedt/hyperspace/engine"
	"markestedt/hyperspace/keys"
)

// VirtualDeviceName names the uinput keyboard all output goes through. The
// source never opens a device with this name, which is how our own events
// are kept out of the input stream.
const VirtualDeviceName = "hyperspace virtual keyboard"

// EvdevBackend grabs every physical keyboard and re-emits events through a
// uinput device. It is both the Source and the Sink on Linux.
type EvdevBackend struct {
	keyboards []*evdev.InputDevice
	out       *evdev.InputDevice

	// keys currently down on the virtual device; only touched from the
	// dispatch goroutine
	down map[evdev.EvCode]bool
}

// New opens all keyboards and creates the virtual output device.
func New() (Source, engine.Sink, error) {
	kbds, err := findKeyboards()
	if err != nil {
		return nil, nil, fmt.Errorf("finding keyboards: %w", err)
	}
	if len(kbds) == 0 {
		return nil, nil, fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	caps := map[evdev.EvCode]bool{}
	for _, k := range kbds {
		for _, c := range k.CapableEvents(evdev.EV_KEY) {
			caps[c] = true
		}
	}
	for _, name := range keys.Names() {
		caps[evdev.EvCode(keys.MustParse(name))] = true
	}
	codes := make([]evdev.EvCode, 0, len(caps))
	for c := range caps {
		codes = append(codes, c)
	}

	out, err := evdev.CreateDevice(VirtualDeviceName, evdev.InputID{
		BusType: 0x03, // BUS_USB
		Vendor:  0x4853,
		Product: 0x5350,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
		evdev.EV_MSC: {evdev.MSC_SCAN},
	})
	if err != nil {
		for _, k := range kbds {
			k.Close()
		}
		return nil, nil, fmt.Errorf("creating uinput device (is /dev/uinput writable?): %w", err)
	}

	b := &EvdevBackend{
		keyboards: kbds,
		out:       out,
		down:      make(map[evdev.EvCode]bool),
	}
	return b, b, nil
}

type deviceEvent struct {
	ev  *evdev.InputEvent
	err error
}

// Run grabs the keyboards and serializes their events onto one goroutine
// until ctx is cancelled.
func (b *EvdevBackend) Run(ctx context.Context, h Handler) error {
	for _, k := range b.keyboards {
		if err := k.Grab(); err != nil {
			b.release()
			return fmt.Errorf("grabbing keyboard: %w", err)
		}
	}
	slog.Info("Keyboards grabbed", "count", len(b.keyboards))

	events := make(chan deviceEvent, 64)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for _, k := range b.keyboards {
		wg.Add(1)
		go func(dev *evdev.InputDevice) {
			defer wg.Done()
			for {
				ev, err := dev.ReadOne()
				if err != nil {
					select {
					case events <- deviceEvent{err: err}:
					case <-stop:
					}
					return
				}
				select {
				case events <- deviceEvent{ev: ev}:
				case <-stop:
					return
				}
			}
		}(k)
	}

	defer func() {
		close(stop)
		// closing the devices unblocks the readers
		b.release()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case de := <-events:
			if de.err != nil {
				return fmt.Errorf("reading keyboard: %w", de.err)
			}
			b.process(de.ev, h)
		}
	}
}

func (b *EvdevBackend) process(ev *evdev.InputEvent, h Handler) {
	if ev.Type != evdev.EV_KEY {
		// SYN reports are regenerated after every key we write
		return
	}

	code := keys.Code(ev.Code)
	// value 2 is auto-repeat, which the engine treats as another down
	isDown := ev.Value != 0
	decision := Dispatch(Event{Code: code, Down: isDown, Modifier: keys.IsModifier(code)}, h)
	if decision == engine.Suppress {
		return
	}
	if err := b.write(ev.Code, ev.Value); err != nil {
		slog.Warn("Failed to forward key event", "key", keys.Name(code), "error", err)
	}
}

// Synthesize writes a key event to the virtual keyboard, preceded by a
// MSC_SCAN event carrying SentinelTag.
func (b *EvdevBackend) Synthesize(code keys.Code, isDown bool, flags keys.Flags) error {
	var wrapped []evdev.EvCode
	if isDown {
		for _, m := range flags.Modifiers() {
			if b.modifierDown(m) {
				continue
			}
			mk := evdev.EvCode(keys.CodeFor(m))
			if err := b.write(mk, 1); err != nil {
				return err
			}
			wrapped = append(wrapped, mk)
		}
	}

	value := int32(0)
	if isDown {
		value = 1
	}
	if err := b.out.WriteOne(&evdev.InputEvent{Type: evdev.EV_MSC, Code: evdev.MSC_SCAN, Value: SentinelTag}); err != nil {
		return fmt.Errorf("writing scan tag: %w", err)
	}
	if err := b.write(evdev.EvCode(code), value); err != nil {
		return err
	}

	for i := len(wrapped) - 1; i >= 0; i-- {
		if err := b.write(wrapped[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func (b *EvdevBackend) modifierDown(m keys.Modifier) bool {
	for c := range b.down {
		if mod, ok := keys.ModifierOf(keys.Code(c)); ok && mod == m {
			return true
		}
	}
	return false
}

func (b *EvdevBackend) write(code evdev.EvCode, value int32) error {
	if err := b.out.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}); err != nil {
		return fmt.Errorf("writing key event: %w", err)
	}
	if err := b.out.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
		return fmt.Errorf("writing sync report: %w", err)
	}
	if value == 0 {
		delete(b.down, code)
	} else {
		b.down[code] = true
	}
	return nil
}

func (b *EvdevBackend) release() {
	var errs []error
	for _, k := range b.keyboards {
		k.Ungrab()
		errs = append(errs, k.Close())
	}
	b.keyboards = nil
	if b.out != nil {
		errs = append(errs, b.out.Close())
		b.out = nil
	}
	if err := errors.Join(errs...); err != nil {
		slog.Debug("Closing input devices", "error", err)
	}
}

func findKeyboards() ([]*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var kbds []*evdev.InputDevice
	for _, p := range paths {
		if p.Name == VirtualDeviceName {
			continue
		}
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if isKeyboard(dev) {
			kbds = append(kbds, dev)
		} else {
			dev.Close()
		}
	}
	return kbds, nil
}

// isKeyboard accepts devices that can produce both KEY_A and KEY_SPACE.
func isKeyboard(dev *evdev.InputDevice) bool {
	var hasA, hasSpace bool
	for _, c := range dev.CapableEvents(evdev.EV_KEY) {
		switch c {
		case evdev.KEY_A:
			hasA = true
		case evdev.KEY_SPACE:
			hasSpace = true
		}
	}
	return hasA && hasSpace
}

// Diagnose checks that keyboards can be opened.
func Diagnose() (string, error) {
	kbds, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(kbds) == 0 {
		return "", fmt.Errorf("no keyboard devices found (run: sudo usermod -aG input $USER)")
	}
	names := make([]string, 0, len(kbds))
	for _, k := range kbds {
		if n, err := k.Name(); err == nil {
			names = append(names, n)
		}
		k.Close()
	}
	return fmt.Sprintf("%d keyboard(s) found: %v", len(kbds), names), nil
}
