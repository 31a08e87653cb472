package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"markestedt/hyperspace/keys"
)

// Config is the agent configuration loaded from config.toml.
type Config struct {
	Trigger  string          `toml:"trigger"`
	Log      LogConfig       `toml:"log"`
	Feedback FeedbackConfig  `toml:"feedback"`
	Stats    StatsConfig     `toml:"stats"`
	Web      WebConfig       `toml:"web"`
	Bindings []BindingConfig `toml:"bindings"`
}

// LogConfig sets the slog level.
type LogConfig struct {
	Level string `toml:"level"`
}

// FeedbackConfig controls the click played when a binding fires.
type FeedbackConfig struct {
	Click bool `toml:"click"`
}

// StatsConfig controls recording of sessions and actions to the stats
// database.
type StatsConfig struct {
	Enabled bool `toml:"enabled"`
}

// WebConfig controls the local dashboard server.
type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// BindingConfig maps a key pressed in hyper mode to a target key and the
// modifiers held while the target is tapped.
type BindingConfig struct {
	Key       string   `toml:"key"`
	Target    string   `toml:"target"`
	Modifiers []string `toml:"modifiers"`
}

// Default configuration
func Default() *Config {
	return &Config{
		Trigger: "space",
		Log: LogConfig{
			Level: "info",
		},
		Feedback: FeedbackConfig{
			Click: false,
		},
		Stats: StatsConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    7345,
		},
		Bindings: defaultBindings(),
	}
}

func bind(key, target string, modifiers ...string) BindingConfig {
	if modifiers == nil {
		modifiers = []string{}
	}
	return BindingConfig{Key: key, Target: target, Modifiers: modifiers}
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "hyperspace", "config.toml"), nil
}

// Load loads the configuration from the TOML file at path, or from
// ConfigPath when path is empty. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		slog.Info("Created default config", "path", path)
		return cfg, nil
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("Unknown config key", "key", key.String(), "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the TOML file, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Validate checks the settings that would stop the agent from starting.
// Individual bindings are checked by Table.
func (c *Config) Validate() error {
	if _, err := c.TriggerCode(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Web.Enabled && (c.Web.Port <= 0 || c.Web.Port > 65535) {
		return fmt.Errorf("web.port must be between 1 and 65535, got %d", c.Web.Port)
	}
	return nil
}

// TriggerCode resolves the trigger key. Modifiers cannot be the trigger.
func (c *Config) TriggerCode() (keys.Code, error) {
	code, err := keys.Parse(c.Trigger)
	if err != nil {
		return 0, fmt.Errorf("trigger: %w", err)
	}
	if keys.IsModifier(code) {
		return 0, fmt.Errorf("trigger: %q is a modifier key", c.Trigger)
	}
	return code, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Table builds the remap table from the bindings. Entries that cannot be
// used are skipped and reported in the returned errors; the first binding
// for a key wins.
func (c *Config) Table() (*keys.Table, []error) {
	trigger, _ := c.TriggerCode()

	var errs []error
	m := make(map[keys.Code]keys.Binding, len(c.Bindings))
	for i, bc := range c.Bindings {
		key, b, err := bc.parse()
		if err != nil {
			errs = append(errs, fmt.Errorf("bindings[%d]: %w", i, err))
			continue
		}
		if key == trigger {
			errs = append(errs, fmt.Errorf("bindings[%d]: %q is the trigger key", i, bc.Key))
			continue
		}
		if _, dup := m[key]; dup {
			errs = append(errs, fmt.Errorf("bindings[%d]: duplicate binding for %q", i, bc.Key))
			continue
		}
		m[key] = b
	}
	return keys.NewTable(m), errs
}

func (bc BindingConfig) parse() (keys.Code, keys.Binding, error) {
	key, err := keys.Parse(bc.Key)
	if err != nil {
		return 0, keys.Binding{}, fmt.Errorf("key: %w", err)
	}
	if keys.IsModifier(key) {
		return 0, keys.Binding{}, fmt.Errorf("key: %q is a modifier key", bc.Key)
	}
	target, err := keys.Parse(bc.Target)
	if err != nil {
		return 0, keys.Binding{}, fmt.Errorf("target: %w", err)
	}

	var flags keys.Flags
	for _, name := range bc.Modifiers {
		mod, err := keys.ParseModifier(name)
		if err != nil {
			return 0, keys.Binding{}, fmt.Errorf("modifiers: %w", err)
		}
		flags |= mod.Flag()
	}
	return key, keys.Binding{Target: target, Modifiers: flags}, nil
}
