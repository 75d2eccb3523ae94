package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/clock"
	"github.com/zjrosen/treelights/internal/journal"
	"github.com/zjrosen/treelights/internal/presentation"
	"github.com/zjrosen/treelights/internal/toggler"
)

var (
	simAdvances int
	simEvery    time.Duration
	simDuration time.Duration
	simFormat   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Print the events of a run on a virtual clock",
	Long: `Run the lights headless on a virtual clock and print every event with its
offset from the start. Nothing waits in real time.

Examples:
  # Startup alone: off advances to white, which lights after one cycle
  treelights simulate

  # Press the switch three times, once every 3s, and watch for 20s
  treelights simulate --advances 3 --every 3s --duration 20s

  # Machine readable
  treelights simulate --advances 2 --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := presentation.ParseFormat(simFormat)
		if err != nil {
			return err
		}
		startMode, err := cfg.Mode()
		if err != nil {
			return err
		}
		steps, err := simulate(simulation{
			Cycle:     cfg.Cycle,
			StartMode: startMode,
			Advances:  simAdvances,
			Every:     simEvery,
			Duration:  simDuration,
		})
		if err != nil {
			return err
		}
		return presentation.NewFormatter(os.Stdout, format).FormatSteps(steps)
	},
}

func init() {
	simulateCmd.Flags().IntVarP(&simAdvances, "advances", "n", 0, "number of switch presses after startup")
	simulateCmd.Flags().DurationVar(&simEvery, "every", 3*time.Second, "time between switch presses")
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 0, "virtual time to run (default: until the last press plus two cycles)")
	simulateCmd.Flags().StringVarP(&simFormat, "format", "f", "table", "output format: table, yaml or json")
	rootCmd.AddCommand(simulateCmd)
}

// simulation describes one headless run.
type simulation struct {
	Cycle     time.Duration
	StartMode toggler.Mode
	Advances  int
	Every     time.Duration
	Duration  time.Duration
}

// simulate runs the lights on a virtual clock and returns every event.
func simulate(s simulation) ([]presentation.StepDTO, error) {
	if s.Advances < 0 {
		return nil, fmt.Errorf("advances must not be negative, got %d", s.Advances)
	}
	if s.Advances > 0 && s.Every <= 0 {
		return nil, fmt.Errorf("every must be positive, got %s", s.Every)
	}
	if s.Cycle <= 0 {
		return nil, toggler.ErrInvalidCycle
	}
	duration := s.Duration
	if duration <= 0 {
		duration = time.Duration(s.Advances)*s.Every + 2*s.Cycle
	}

	v := clock.NewVirtual()
	start := v.Now()
	ch := channel.New(v)
	defer ch.Reset()

	var steps []presentation.StepDTO
	ch.Filter(channel.Any, func(e channel.Event) {
		steps = append(steps, presentation.NewStep(v.Now().Sub(start), string(e.Type), journal.PayloadText(e.Payload)))
	})

	tg := toggler.New(ch, toggler.WithCycle(s.Cycle), toggler.WithStartMode(s.StartMode))
	for i := 0; i < s.Advances; i++ {
		v.AfterFunc(s.Every*time.Duration(i+1), tg.Advance)
	}
	tg.Start()
	v.Flush()
	v.Advance(duration)
	tg.Stop()

	return steps, nil
}
