// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/treelights/internal/channel"
	"github.com/zjrosen/treelights/internal/config"
	"github.com/zjrosen/treelights/internal/keys"
	"github.com/zjrosen/treelights/internal/log"
	"github.com/zjrosen/treelights/internal/pubsub"
	"github.com/zjrosen/treelights/internal/toggler"
	"github.com/zjrosen/treelights/internal/ui/legend"
	"github.com/zjrosen/treelights/internal/ui/lights"
	"github.com/zjrosen/treelights/internal/ui/styles"
	"github.com/zjrosen/treelights/internal/ui/toaster"
)

const (
	zoneSwitch = "switch"

	panelWidth  = 24
	panelHeight = 6
	maxLegend   = 64
)

// eventMsg carries a channel event mirrored by the engine.
type eventMsg struct {
	event channel.Event
}

// reloadMsg reports that the config file changed on disk.
type reloadMsg struct {
	path string
}

// Options wires the model to the rest of the program.
type Options struct {
	Controller Controller
	// Events receives every channel event.
	Events *pubsub.Broker[channel.Event]
	// Reloads, when set, receives config file changes.
	Reloads *pubsub.Broker[string]
	Config  config.Config
}

// Model is the root application state.
type Model struct {
	ctrl  Controller
	cfg   config.Config
	state toggler.State

	keys     keys.KeyMap
	help     help.Model
	showHelp bool
	toaster  toaster.Model
	lights   *lights.Renderer
	legend   *legend.Renderer

	events  *pubsub.ContinuousListener[channel.Event]
	reloads *pubsub.ContinuousListener[string]

	width  int
	height int
}

// New creates the model. It subscribes to the brokers immediately so no
// event published before the program starts is missed.
func New(ctx context.Context, opts Options) Model {
	m := Model{
		ctrl:     opts.Controller,
		cfg:      opts.Config,
		state:    toggler.State{Mode: toggler.Off, Color: toggler.ColorOff},
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		showHelp: opts.Config.UI.ShowHelp,
		toaster:  toaster.New(),
		lights:   lights.NewRenderer(),
	}
	m.legend = m.newLegend()
	if opts.Events != nil {
		m.events = pubsub.NewMappedListener(ctx, opts.Events, func(e pubsub.Event[channel.Event]) tea.Msg {
			return eventMsg{event: e.Payload}
		})
	}
	if opts.Reloads != nil {
		m.reloads = pubsub.NewMappedListener(ctx, opts.Reloads, func(e pubsub.Event[string]) tea.Msg {
			return reloadMsg{path: e.Payload}
		})
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listen(m.events), listen(m.reloads))
}

func listen[T any](l *pubsub.ContinuousListener[T]) tea.Cmd {
	if l == nil {
		return nil
	}
	return l.Listen()
}

// State returns the mode and color the UI shows.
func (m Model) State() toggler.State { return m.state }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.legend = m.newLegend()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Switch):
			m.ctrl.Advance()
			return m, nil
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if z := zone.Get(zoneSwitch); z != nil && z.InBounds(msg) {
			m.ctrl.Advance()
		}
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, listen(m.events))

	case reloadMsg:
		cmd := m.reload(msg.path)
		return m, tea.Batch(cmd, listen(m.reloads))

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil
	}
	return m, nil
}

// handleEvent mirrors the toggler's bookkeeping for the attributes shown.
func (m *Model) handleEvent(e channel.Event) tea.Cmd {
	switch e.Type {
	case toggler.EventModeAdvance:
		if adv, ok := e.Payload.(toggler.Advance); ok {
			m.state.Mode = toggler.Next(adv.From)
		}
	case toggler.EventColorSet:
		if c, ok := e.Payload.(toggler.Color); ok {
			m.state.Color = c
		}
	case toggler.EventBehaviorFailed:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.ShowFor(fmt.Sprintf("%s failed: %v", m.state.Mode, e.Payload), toaster.StyleError, toaster.DefaultDuration)
		return cmd
	}
	return nil
}

// reload applies the config at path: cycle, palette and legend style.
func (m *Model) reload(path string) tea.Cmd {
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Reloading config", err, "path", path)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.ShowFor("Config not reloaded: "+err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return cmd
	}
	if err := m.ctrl.SetCycle(cfg.Cycle); err != nil {
		log.ErrorErr(log.CatConfig, "Applying cycle", err, "cycle", cfg.Cycle)
	}
	ApplyTheme(cfg.Theme)
	m.lights.Invalidate(context.Background())
	m.cfg = cfg
	m.legend = m.newLegend()

	log.Info(log.CatConfig, "Config reloaded", "path", path, "cycle", cfg.Cycle)
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.ShowFor("Config reloaded", toaster.StyleSuccess, toaster.DefaultDuration)
	return cmd
}

// ApplyTheme sets the bulb palette from the theme config.
func ApplyTheme(t config.ThemeConfig) {
	styles.ApplyLights(styles.LightPalette{
		Off:   t.Off,
		White: t.White,
		Red:   t.Red,
		Green: t.Green,
		Blue:  t.Blue,
	})
}

// View implements tea.Model.
func (m Model) View() string {
	tree := styles.RenderPanel(
		m.lights.Render(context.Background(), m.state.Color),
		"Tree Lights", panelWidth, panelHeight,
		styles.BorderDefaultColor, styles.TextPrimaryColor,
	)
	button := zone.Mark(zoneSwitch, styles.PrimaryButtonStyle.Render("Switch!"))
	atts := styles.LabelStyle.Render("Mode: ") + styles.ValueStyle.Render(m.state.Mode.String()) +
		"  " + styles.LabelStyle.Render("Color: ") + styles.ValueStyle.Render(string(m.state.Color))

	sections := []string{tree, button, atts}
	if m.showHelp {
		sections = append(sections, m.legendView())
	}
	sections = append(sections, styles.StatusBarStyle.Render(m.help.View(m.keys)))

	view := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width > 0 && m.height > 0 {
		view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
		view = m.toaster.Overlay(view, m.width, m.height)
	} else if t := m.toaster.View(); t != "" {
		view = strings.Join([]string{view, t}, "\n")
	}
	return zone.Scan(view)
}

// newLegend builds the legend renderer for the current width and style.
func (m Model) newLegend() *legend.Renderer {
	width := maxLegend
	if m.width > 0 {
		width = min(m.width, maxLegend)
	}
	r, err := legend.New(width, m.cfg.UI.LegendStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "Creating legend", err, "style", m.cfg.UI.LegendStyle)
		return nil
	}
	return r
}

func (m Model) legendView() string {
	if m.legend == nil {
		return ""
	}
	return m.legend.Render(m.cfg.Cycle)
}
