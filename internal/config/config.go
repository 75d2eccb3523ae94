// Package config provides configuration types and defaults for treelights.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/toggler"
)

// Config holds all configuration options for treelights.
type Config struct {
	Cycle       time.Duration   `mapstructure:"cycle"`
	StartMode   string          `mapstructure:"start_mode"` // mode the initial advance starts from
	WatchConfig bool            `mapstructure:"watch_config"`
	UI          UIConfig        `mapstructure:"ui"`
	Theme       ThemeConfig     `mapstructure:"theme"`
	Journal     JournalConfig   `mapstructure:"journal"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
	MQTT        MQTTConfig      `mapstructure:"mqtt"`
	Flags       map[string]bool `mapstructure:"flags"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowHelp    bool   `mapstructure:"show_help"`
	LegendStyle string `mapstructure:"legend_style"` // "dark" (default) or "light"
}

// ThemeConfig holds the hex colors of the lights.
type ThemeConfig struct {
	Off   string `mapstructure:"off"`
	White string `mapstructure:"white"`
	Red   string `mapstructure:"red"`
	Green string `mapstructure:"green"`
	Blue  string `mapstructure:"blue"`
}

// JournalConfig controls the SQLite event journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // Default: ~/.treelights/journal.db
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/treelights/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// MQTTConfig configures publishing light state to an MQTT broker.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"` // e.g. tcp://localhost:1883
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// Mode returns the parsed start mode.
func (c Config) Mode() (toggler.Mode, error) {
	if c.StartMode == "" {
		return toggler.Off, nil
	}
	return toggler.ParseMode(c.StartMode)
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/treelights/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "treelights", "traces", "traces.jsonl")
}

// DefaultJournalPath returns ~/.treelights/journal.db, or empty string if
// the home dir is unavailable.
func DefaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".treelights", "journal.db")
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.Cycle <= 0 {
		return fmt.Errorf("cycle must be positive, got %v", c.Cycle)
	}
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("start_mode: %w", err)
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	if err := ValidateJournal(c.Journal); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidateMQTT(c.MQTT)
}

// ValidateUI checks UI configuration for errors.
func ValidateUI(ui UIConfig) error {
	switch ui.LegendStyle {
	case "", "dark", "light", "notty":
		return nil
	default:
		return fmt.Errorf("ui.legend_style must be \"dark\", \"light\", or \"notty\", got %q", ui.LegendStyle)
	}
}

// ValidateTheme checks that every configured light color is a hex color.
// Empty values use defaults.
func ValidateTheme(theme ThemeConfig) error {
	for name, v := range map[string]string{
		"off":   theme.Off,
		"white": theme.White,
		"red":   theme.Red,
		"green": theme.Green,
		"blue":  theme.Blue,
	} {
		if v != "" && !hexColor.MatchString(v) {
			return fmt.Errorf("theme.%s must be a hex color like \"#FF0000\", got %q", name, v)
		}
	}
	return nil
}

// ValidateJournal checks journal configuration for errors.
func ValidateJournal(j JournalConfig) error {
	if j.Enabled && j.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateMQTT checks MQTT configuration for errors.
func ValidateMQTT(m MQTTConfig) error {
	if !m.Enabled {
		return nil
	}
	if m.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if !strings.Contains(m.Broker, "://") {
		return fmt.Errorf("mqtt.broker must include a scheme like tcp://, got %q", m.Broker)
	}
	if strings.ContainsAny(m.TopicPrefix, "+#") {
		return fmt.Errorf("mqtt.topic_prefix must not contain wildcards, got %q", m.TopicPrefix)
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Cycle:       toggler.DefaultCycle,
		StartMode:   "off",
		WatchConfig: true,
		UI: UIConfig{
			ShowHelp:    true,
			LegendStyle: "dark",
		},
		Theme: ThemeConfig{
			Off:   "#3A3A3A",
			White: "#FFFFFF",
			Red:   "#FF5F5F",
			Green: "#5FD75F",
			Blue:  "#5F87FF",
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    DefaultJournalPath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "treelights",
			ClientID:    "treelights",
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Treelights Configuration

# Delay of the white mode and period of the alternating mode
cycle: 2s

# Mode the lights advance from on startup: off, white, rainbow, alternating.
# The default "off" starts the lights in white.
start_mode: "off"

# Reload this file when it changes
watch_config: true

# UI settings
ui:
  show_help: true       # Show the key legend under the lights
  legend_style: dark    # Legend markdown style: "dark" (default), "light", or "notty"

# Light colors
theme:
  off: "#3A3A3A"
  white: "#FFFFFF"
  red: "#FF5F5F"
  green: "#5FD75F"
  blue: "#5F87FF"

# Event journal: every event is recorded to SQLite; list with 'treelights history'
journal:
  enabled: false
  # path: ~/.treelights/journal.db

# Distributed tracing of mode advances
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/treelights/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Publish the light state to an MQTT broker so real lights can follow.
# State is published retained on <topic_prefix>/state as {"mode":"...","color":"..."}
mqtt:
  enabled: false
  broker: tcp://localhost:1883
  topic_prefix: treelights
  client_id: treelights
  # username: ""
  # password: ""

# Opt-in features
# flags:
#   mouse: true      # click the switch with the mouse
#   remember: true   # resume the last mode on the next run
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
