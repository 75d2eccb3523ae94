package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/zjrosen/treelights/internal/log"
)

// LocalConfigPath is the project-local config file, checked first.
const LocalConfigPath = ".treelights/config.yaml"

// SetDefaults registers every default value on v so unset keys unmarshal
// to Defaults().
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("cycle", d.Cycle)
	v.SetDefault("start_mode", d.StartMode)
	v.SetDefault("watch_config", d.WatchConfig)
	v.SetDefault("ui.show_help", d.UI.ShowHelp)
	v.SetDefault("ui.legend_style", d.UI.LegendStyle)
	v.SetDefault("theme.off", d.Theme.Off)
	v.SetDefault("theme.white", d.Theme.White)
	v.SetDefault("theme.red", d.Theme.Red)
	v.SetDefault("theme.green", d.Theme.Green)
	v.SetDefault("theme.blue", d.Theme.Blue)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("mqtt.enabled", d.MQTT.Enabled)
	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.topic_prefix", d.MQTT.TopicPrefix)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
}

// Locate points v at the config file to read: cfgFile when set, otherwise
// .treelights/config.yaml in the current directory, otherwise
// ~/.config/treelights/config.yaml.
func Locate(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return
	}
	if _, err := os.Stat(LocalConfigPath); err == nil {
		v.SetConfigFile(LocalConfigPath)
		return
	}
	home, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(home, ".config", "treelights"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// Read reads the located config file into v. When no file exists anywhere a
// default one is written to LocalConfigPath; failing that, v keeps its
// defaults.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("reading config: %w", err)
	}
	if writeErr := WriteDefaultConfig(LocalConfigPath); writeErr != nil {
		log.Warn(log.CatConfig, "Continuing without a config file", "error", writeErr)
		return nil
	}
	v.SetConfigFile(LocalConfigPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading default config: %w", err)
	}
	return nil
}

// Decode unmarshals and validates the current contents of v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and validates the config at path over the defaults. The
// watcher uses it to reload a changed file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Decode(v)
}
