package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"markestedt/hyperspace/config"
	"markestedt/hyperspace/keys"
	"markestedt/hyperspace/platform"
	"markestedt/hyperspace/systray"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	doctor := flag.Bool("doctor", false, "check keyboard access and exit")
	noTray := flag.Bool("no-tray", false, "run without the system tray icon")
	flag.Parse()

	// Setup logging
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *doctor {
		os.Exit(runDoctor())
	}

	if *configPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			slog.Error("Failed to locate config", "error", err)
			os.Exit(1)
		}
		*configPath = p
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		slog.Error("Invalid log level", "error", err)
		os.Exit(1)
	}
	level.Set(lvl)
	slog.Info("Configuration loaded", "path", *configPath)

	source, sink, err := platform.New()
	if err != nil {
		slog.Error("Failed to open keyboard", "error", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dataDir := filepath.Dir(*configPath)

	if *noTray {
		agent, err := NewAgent(cfg, dataDir, source, sink)
		if err != nil {
			slog.Error("Failed to create agent", "error", err)
			os.Exit(1)
		}
		if err := agent.Run(ctx); err != nil {
			slog.Error("Agent error", "error", err)
			os.Exit(1)
		}
		slog.Info("HyperSpace stopped")
		return
	}

	var dashboardURL string
	if cfg.Web.Enabled {
		dashboardURL = fmt.Sprintf("http://localhost:%d", cfg.Web.Port)
	}

	var agent *Agent
	tray := systray.NewSystrayManager(dashboardURL, cfg.Trigger, func(paused bool) {
		agent.SetPaused(paused)
	})

	agent, err = NewAgent(cfg, dataDir, source, sink, tray)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	done := make(chan error, 1)
	go func() {
		done <- agent.Run(ctx)
		tray.Stop()
	}()
	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
			tray.Stop()
		}
	}()

	// The tray owns the main thread until it quits
	tray.Run()
	cancel()

	if err := <-done; err != nil {
		slog.Error("Agent error", "error", err)
		os.Exit(1)
	}
	slog.Info("HyperSpace stopped")
}

func runDoctor() int {
	msg, err := platform.Diagnose()
	if err != nil {
		fmt.Fprintf(os.Stderr, "keyboard access: FAIL: %v\n", err)
		return 1
	}
	fmt.Printf("keyboard access: ok (%s)\n", msg)
	fmt.Printf("trigger default: %s (code %#x)\n", "space", uint16(keys.MustParse("space")))
	fmt.Printf("known key names: %d\n", len(keys.Names()))
	return 0
}
