package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/treelights/internal/toggler"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 2*time.Second, cfg.Cycle)
	require.Equal(t, "off", cfg.StartMode)
	require.True(t, cfg.WatchConfig)
	require.True(t, cfg.UI.ShowHelp)
	require.Equal(t, "dark", cfg.UI.LegendStyle)
	require.Equal(t, "#FFFFFF", cfg.Theme.White)
	require.False(t, cfg.Journal.Enabled)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.False(t, cfg.MQTT.Enabled)
	require.Equal(t, "treelights", cfg.MQTT.TopicPrefix)
}

func TestDefaults_Valid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestConfig_Mode(t *testing.T) {
	cfg := Defaults()

	cfg.StartMode = ""
	m, err := cfg.Mode()
	require.NoError(t, err)
	require.Equal(t, toggler.Off, m)

	cfg.StartMode = "Rainbow"
	m, err = cfg.Mode()
	require.NoError(t, err)
	require.Equal(t, toggler.Rainbow, m)

	cfg.StartMode = "disco"
	_, err = cfg.Mode()
	require.ErrorIs(t, err, toggler.ErrUnknownMode)
}

func TestValidate_Cycle(t *testing.T) {
	cfg := Defaults()
	cfg.Cycle = 0

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle must be positive")
}

func TestValidate_StartMode(t *testing.T) {
	cfg := Defaults()
	cfg.StartMode = "strobe"

	err := cfg.Validate()
	require.ErrorIs(t, err, toggler.ErrUnknownMode)
	require.Contains(t, err.Error(), "start_mode")
}

func TestValidateUI(t *testing.T) {
	for _, style := range []string{"", "dark", "light", "notty"} {
		require.NoError(t, ValidateUI(UIConfig{LegendStyle: style}), style)
	}
	err := ValidateUI(UIConfig{LegendStyle: "neon"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ui.legend_style")
}

func TestValidateTheme(t *testing.T) {
	tests := []struct {
		name    string
		theme   ThemeConfig
		wantErr string
	}{
		{name: "empty uses defaults", theme: ThemeConfig{}},
		{name: "short hex", theme: ThemeConfig{Red: "#f00"}},
		{name: "long hex", theme: ThemeConfig{Green: "#00FF00"}},
		{name: "missing hash", theme: ThemeConfig{Blue: "0000FF"}, wantErr: "theme.blue"},
		{name: "named color", theme: ThemeConfig{White: "white"}, wantErr: "theme.white"},
		{name: "bad digits", theme: ThemeConfig{Off: "#GGGGGG"}, wantErr: "theme.off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTheme(tt.theme)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJournal(t *testing.T) {
	require.NoError(t, ValidateJournal(JournalConfig{}))
	require.NoError(t, ValidateJournal(JournalConfig{Enabled: true, Path: "/tmp/j.db"}))

	err := ValidateJournal(JournalConfig{Enabled: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "journal.path is required")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		wantErr string
	}{
		{name: "disabled empty", tracing: TracingConfig{}},
		{name: "sample rate low", tracing: TracingConfig{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "sample rate high", tracing: TracingConfig{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "bad exporter", tracing: TracingConfig{Exporter: "zipkin"}, wantErr: "tracing.exporter"},
		{name: "file without path disabled", tracing: TracingConfig{Exporter: "file"}},
		{name: "file without path", tracing: TracingConfig{Enabled: true, Exporter: "file"}, wantErr: "file_path is required"},
		{name: "otlp without endpoint", tracing: TracingConfig{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint is required"},
		{name: "stdout", tracing: TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMQTT(t *testing.T) {
	require.NoError(t, ValidateMQTT(MQTTConfig{}), "disabled config is never checked")
	require.NoError(t, ValidateMQTT(MQTTConfig{Enabled: true, Broker: "tcp://pi:1883", TopicPrefix: "tree"}))

	err := ValidateMQTT(MQTTConfig{Enabled: true})
	require.ErrorContains(t, err, "mqtt.broker is required")

	err = ValidateMQTT(MQTTConfig{Enabled: true, Broker: "pi:1883"})
	require.ErrorContains(t, err, "scheme")

	err = ValidateMQTT(MQTTConfig{Enabled: true, Broker: "tcp://pi:1883", TopicPrefix: "tree/#"})
	require.ErrorContains(t, err, "wildcards")
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultConfigTemplate()), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	want := Defaults()
	require.Equal(t, want.Cycle, cfg.Cycle)
	require.Equal(t, want.StartMode, cfg.StartMode)
	require.Equal(t, want.WatchConfig, cfg.WatchConfig)
	require.Equal(t, want.UI, cfg.UI)
	require.Equal(t, want.Theme, cfg.Theme)
	require.Equal(t, want.MQTT.Broker, cfg.MQTT.Broker)
	require.Equal(t, want.MQTT.TopicPrefix, cfg.MQTT.TopicPrefix)
}

func TestWriteDefaultConfig_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `cycle: 500ms
start_mode: rainbow
theme:
  red: "#AA0000"
mqtt:
  enabled: true
  broker: tcp://pi.local:1883
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, 500*time.Millisecond, cfg.Cycle)
	require.Equal(t, "rainbow", cfg.StartMode)
	require.Equal(t, "#AA0000", cfg.Theme.Red)
	require.Equal(t, Defaults().Theme.Green, cfg.Theme.Green, "unset keys keep their default")
	require.True(t, cfg.MQTT.Enabled)
	require.Equal(t, "tcp://pi.local:1883", cfg.MQTT.Broker)
	require.Equal(t, "treelights", cfg.MQTT.ClientID)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_mode: disco\n"), 0o600))

	_, err := LoadFile(path)
	require.ErrorIs(t, err, toggler.ErrUnknownMode)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLocate_ExplicitFile(t *testing.T) {
	v := viper.New()
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cycle: 3s\n"), 0o600))

	Locate(v, path)
	require.NoError(t, Read(v))

	require.Equal(t, path, v.ConfigFileUsed())
	require.Equal(t, 3*time.Second, v.GetDuration("cycle"))
}

func TestRead_WritesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	v := viper.New()
	SetDefaults(v)
	Locate(v, "")
	require.NoError(t, Read(v))

	_, err := os.Stat(filepath.Join(dir, LocalConfigPath))
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)
	require.Equal(t, Defaults().Cycle, cfg.Cycle)
}
