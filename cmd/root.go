package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/treelights/internal/app"
	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/config"
	"github.com/zjrosen/treelights/internal/flags"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/pubsub"
	"github.com/zjrosen/treelights/internal/toggler"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the view.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	remember  bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:               "treelights",
	Short:             "Tree lights that cycle through four modes",
	Long:              `A terminal tree of three lights. Press space to cycle off, white, rainbow and alternating.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .treelights/config.yaml or ~/.config/treelights/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by "+log.EnvDebug+")")
	rootCmd.PersistentFlags().Duration("cycle", 0,
		"delay of white and period of alternating (overrides config)")
	rootCmd.PersistentFlags().String("start-mode", "",
		"mode the lights advance from on startup (overrides config)")
	rootCmd.Flags().BoolVar(&remember, "remember", false,
		"save the final mode to the config so the next run resumes it")

	_ = viper.BindPFlag("cycle", rootCmd.PersistentFlags().Lookup("cycle"))
	_ = viper.BindPFlag("start_mode", rootCmd.PersistentFlags().Lookup("start-mode"))
}

// loadConfig reads the config file into cfg. Bound flags win over the file
// only when set.
func loadConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	config.SetDefaults(v)
	config.Locate(v, cfgFile)
	if err := config.Read(v); err != nil {
		return err
	}
	var err error
	cfg, err = config.Decode(v)
	return err
}

// configPath returns the config file in use, or the local default.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return config.LocalConfigPath
}

func runApp(_ *cobra.Command, _ []string) error {
	cleanup, err := setupLogging("treelights")
	if err != nil {
		return err
	}
	defer cleanup()

	startMode, err := cfg.Mode()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := setupTracing(cfg)
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	events := pubsub.NewBroker[channel.Event]()
	defer events.Close()

	stopJournal, err := startJournal(ctx, cfg, events, startMode)
	if err != nil {
		return err
	}
	defer stopJournal()

	stopMQTT := startMQTT(ctx, cfg, events)
	defer stopMQTT()

	reloads, stopWatcher := startWatcher(cfg, configPath())
	defer stopWatcher()

	app.ApplyTheme(cfg.Theme)
	engine := app.NewEngine(events,
		toggler.WithCycle(cfg.Cycle),
		toggler.WithStartMode(startMode),
		toggler.WithTracer(provider.Tracer()),
	)
	model := app.New(ctx, app.Options{
		Controller: engine,
		Events:     events,
		Reloads:    reloads,
		Config:     cfg,
	})
	engine.Start(ctx)

	features := flags.New(cfg.Flags)
	zone.NewGlobal()
	p := tea.NewProgram(model, programOptions(features)...)
	_, err = p.Run()

	save := remember || features.Enabled(flags.FlagRemember)
	var last toggler.Mode
	var lastErr error
	if save {
		last, lastErr = finalMode(ctx, engine)
	}
	engine.Stop()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	if save {
		if lastErr != nil {
			return lastErr
		}
		return rememberMode(configPath(), last)
	}
	return nil
}

// stateSource reads the toggler state from wherever it runs.
type stateSource interface {
	State(ctx context.Context) (toggler.State, error)
}

// finalMode asks the loop for the mode it ended in. The UI's copy trails
// the loop by whatever the broker has not delivered yet.
func finalMode(ctx context.Context, src stateSource) (toggler.Mode, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	st, err := src.State(ctx)
	if err != nil {
		return toggler.Off, fmt.Errorf("reading final mode: %w", err)
	}
	return st.Mode, nil
}

// programOptions returns the Bubble Tea options for the enabled features.
func programOptions(features *flags.Registry) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if features.Enabled(flags.FlagMouse) {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return opts
}

// rememberMode saves the start mode that brings the lights back to m.
func rememberMode(path string, m toggler.Mode) error {
	from := resumeFrom(m)
	if err := config.SaveStartMode(path, from); err != nil {
		return fmt.Errorf("remembering mode: %w", err)
	}
	log.Info(log.CatConfig, "Remembered mode", "mode", m, "start_mode", from)
	return nil
}

// resumeFrom returns the mode whose successor is m.
func resumeFrom(m toggler.Mode) toggler.Mode {
	for _, from := range toggler.Modes() {
		if toggler.Next(from) == m {
			return from
		}
	}
	return toggler.Off
}

// setupLogging enables the file log when debugging. The returned cleanup is
// always safe to call.
func setupLogging(prefix string) (func(), error) {
	if os.Getenv(log.EnvDebug) == "" && !debugFlag {
		return func() {}, nil
	}
	logPath := os.Getenv("TREELIGHTS_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "Treelights starting", "debug", true, "logPath", logPath,
		"config", configPath(), "cycle", cfg.Cycle, "at", time.Now().Format(time.RFC3339))
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
