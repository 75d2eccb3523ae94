// Package legend renders the help text explaining the modes.
package legend

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/treelights/internal/ui/styles"
)

// noMarginStyle removes document margins from the base style.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown returns the legend source for the given cycle.
func Markdown(cycle time.Duration) string {
	c := styles.FormatCycle(cycle)
	var b strings.Builder
	b.WriteString("## Modes\n\n")
	b.WriteString("| Mode | Lights |\n|---|---|\n")
	b.WriteString("| off | dark |\n")
	fmt.Fprintf(&b, "| white | white after %s |\n", c)
	b.WriteString("| rainbow | red, green and blue at once |\n")
	fmt.Fprintf(&b, "| alternating | white, then rainbow and white every %s |\n", c)
	b.WriteString("\nPress **space** or click **Switch!** to move to the next mode.\n")
	return b.String()
}

// Renderer wraps glamour with the legend's configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer wrapping at width. style is a glamour standard
// style name (dark, light, notty); empty picks one from the terminal.
func New(width int, style string) (*Renderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating legend renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render renders the legend for cycle. When glamour fails the markdown
// source is returned wrapped at the configured width.
func (r *Renderer) Render(cycle time.Duration) string {
	src := Markdown(cycle)
	out, err := r.renderer.Render(src)
	if err != nil {
		return wordwrap.String(src, r.width)
	}
	return strings.Trim(out, "\n")
}
