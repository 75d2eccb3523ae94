package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Format selects how a Formatter writes its output.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatYAML, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, yaml or json)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// FormatSteps writes a simulated timeline.
func (f *Formatter) FormatSteps(steps []StepDTO) error {
	return f.write(steps, []string{"AT", "EVENT", "PAYLOAD"}, func(add func(...string)) {
		for _, s := range steps {
			add(s.At, s.Type, s.Payload)
		}
	})
}

// FormatEntries writes recorded journal entries.
func (f *Formatter) FormatEntries(entries []EntryDTO) error {
	return f.write(entries, []string{"SEQ", "SESSION", "AT", "EVENT", "PAYLOAD"}, func(add func(...string)) {
		for _, e := range entries {
			add(strconv.FormatInt(e.Seq, 10), shortID(e.Session), e.At, e.Type, e.Payload)
		}
	})
}

// FormatSessions writes recorded sessions.
func (f *Formatter) FormatSessions(sessions []SessionDTO) error {
	return f.write(sessions, []string{"SESSION", "STARTED", "START MODE", "CYCLE", "EVENTS"}, func(add func(...string)) {
		for _, s := range sessions {
			add(s.ID, s.StartedAt, s.StartMode, s.Cycle, strconv.FormatInt(s.Events, 10))
		}
	})
}

func (f *Formatter) write(v any, headers []string, rows func(add func(...string))) error {
	switch f.format {
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	default:
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderColumn(false).
			BorderRow(false).
			BorderLeft(false).
			BorderRight(false).
			BorderTop(false).
			BorderBottom(false).
			Headers(headers...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				s := lipgloss.NewStyle().PaddingRight(2)
				if row == table.HeaderRow {
					return s.Bold(true)
				}
				return s
			})
		rows(func(cells ...string) { t.Row(cells...) })
		_, err := fmt.Fprintln(f.writer, t.Render())
		return err
	}
}

// shortID trims a session uuid to its first group for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
