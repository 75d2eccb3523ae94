package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/treelights/internal/config"
	"github.com/zjrosen/treelights/internal/toggler"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or edit the config file",
	// The config file may not exist or may be invalid; these commands fix it.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with every default",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configTarget()
		if err := initConfig(path, configForce); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set start_mode or cycle, keeping comments",
	Long: `Set a single key in the config file. Comments and the other keys are kept.

Examples:
  treelights config set start_mode rainbow
  treelights config set cycle 1500ms`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"start_mode", "cycle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configTarget()
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configTarget returns the file the config commands edit: --config, else the
// first existing file in the search order, else the local default.
func configTarget() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.LocalConfigPath); err == nil {
		return config.LocalConfigPath
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "treelights", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return config.LocalConfigPath
}

func initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}
	return config.WriteDefaultConfig(path)
}

func setConfigValue(path, key, value string) error {
	switch strings.ReplaceAll(key, "-", "_") {
	case "start_mode":
		m, err := toggler.ParseMode(value)
		if err != nil {
			return err
		}
		return config.SaveStartMode(path, m)
	case "cycle":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid cycle %q: %w", value, err)
		}
		return config.SaveCycle(path, d)
	default:
		return fmt.Errorf("unknown key %q (want start_mode or cycle)", key)
	}
}
