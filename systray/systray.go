package systray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/getlantern/systray"

	"markestedt/hyperspace/engine"
)

// SystrayManager manages the system tray icon and menu. It is an engine
// observer: the icon follows the engine state.
type SystrayManager struct {
	dashboardURL string
	trigger      string
	onPause      func(paused bool)

	state   atomic.Int32
	paused  atomic.Bool
	changed chan struct{}

	quit     chan struct{}
	quitOnce sync.Once
}

// NewSystrayManager creates a new systray manager. dashboardURL may be empty
// when the web UI is disabled; onPause is called when the user toggles Pause.
func NewSystrayManager(dashboardURL, trigger string, onPause func(paused bool)) *SystrayManager {
	if onPause == nil {
		onPause = func(bool) {}
	}
	return &SystrayManager{
		dashboardURL: dashboardURL,
		trigger:      trigger,
		onPause:      onPause,
		changed:      make(chan struct{}, 1),
		quit:         make(chan struct{}),
	}
}

// Run starts the system tray (blocking call). On macOS it must run on the
// main thread.
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

func (m *SystrayManager) OnTransition(from, to engine.State) {
	m.state.Store(int32(to))
	m.notify()
}

func (m *SystrayManager) OnAction(a engine.Action) {}

// notify wakes the tray updater without blocking the event thread
func (m *SystrayManager) notify() {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle("HyperSpace")
	systray.SetTooltip("HyperSpace - hold " + m.trigger + " for hyper keys")

	// Add menu items
	mStatus := systray.AddMenuItem(statusLabel(engine.Idle, false), "Current mode")
	mStatus.Disable()
	systray.AddSeparator()
	mPause := systray.AddMenuItemCheckbox("Pause", "Pass every key through unchanged", false)
	var mDashboard *systray.MenuItem
	if m.dashboardURL != "" {
		mDashboard = systray.AddMenuItem("Open Dashboard", "Open the HyperSpace web dashboard")
	} else {
		// a nil channel never fires
		mDashboard = &systray.MenuItem{}
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit HyperSpace")

	// Keep the icon in sync with the engine
	go func() {
		for {
			select {
			case <-m.changed:
				state := engine.State(m.state.Load())
				paused := m.paused.Load()
				systray.SetIcon(iconFor(state, paused))
				mStatus.SetTitle(statusLabel(state, paused))
			case <-m.quit:
				return
			}
		}
	}()

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-mPause.ClickedCh:
				paused := !mPause.Checked()
				if paused {
					mPause.Check()
				} else {
					mPause.Uncheck()
				}
				m.paused.Store(paused)
				slog.Info("Remapping toggled from system tray", "paused", paused)
				m.onPause(paused)
				m.notify()
			case <-mDashboard.ClickedCh:
				m.openDashboard()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				m.quitOnce.Do(func() { close(m.quit) })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func iconFor(state engine.State, paused bool) []byte {
	switch {
	case paused:
		return iconPaused
	case state == engine.HyperMode:
		return iconHyper
	default:
		return iconIdle
	}
}

func statusLabel(state engine.State, paused bool) string {
	if paused {
		return "Status: paused"
	}
	return "Status: " + state.String()
}

// openDashboard opens the web UI in the default browser
func (m *SystrayManager) openDashboard() {
	slog.Info("Opening dashboard", "url", m.dashboardURL)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", m.dashboardURL)
	case "darwin":
		cmd = exec.Command("open", m.dashboardURL)
	case "linux":
		cmd = exec.Command("xdg-open", m.dashboardURL)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}
