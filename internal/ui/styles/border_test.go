package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testColorRed   = lipgloss.Color("#FF0000")
	testColorGreen = lipgloss.Color("#00FF00")
)

func TestRenderPanel_Basic(t *testing.T) {
	result := RenderPanel("content", "Tree", 20, 5, testColorGreen, testColorGreen)

	assert.Contains(t, result, "╭", "missing top-left corner")
	assert.Contains(t, result, "╮", "missing top-right corner")
	assert.Contains(t, result, "╰", "missing bottom-left corner")
	assert.Contains(t, result, "╯", "missing bottom-right corner")

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Tree", "title not found in first line")
	assert.Contains(t, result, "content")
}

func TestRenderPanel_FixedSize(t *testing.T) {
	content := "Line 1\nLine 2\nLine 3\nLine 4\nLine 5"
	result := RenderPanel(content, "Tree", 12, 5, testColorRed, testColorRed)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 5, "content taller than the panel is clipped")
	for i, line := range lines {
		assert.Equal(t, 12, lipgloss.Width(line), "line %d: %q", i, line)
	}
	assert.NotContains(t, result, "Line 4")
}

func TestRenderPanel_LongTitle(t *testing.T) {
	result := RenderPanel("x", "A Very Long Title That Does Not Fit", 20, 3, testColorRed, testColorRed)

	lines := strings.Split(result, "\n")
	assert.Equal(t, 20, lipgloss.Width(lines[0]))
	assert.Contains(t, lines[0], "...")
}

func TestRenderPanel_Centered(t *testing.T) {
	result := RenderPanel("ab", "", 10, 3, testColorRed, testColorRed)

	lines := strings.Split(result, "\n")
	assert.Equal(t, "│   ab   │", lines[1])
}

func TestBuildTopBorder(t *testing.T) {
	borderStyle := lipgloss.NewStyle()
	titleStyle := lipgloss.NewStyle()

	tests := []struct {
		name       string
		title      string
		innerWidth int
		want       string
	}{
		{"normal", "Tree", 10, "╭─ Tree ───╮"},
		{"empty title", "", 4, "╭────╮"},
		{"narrow", "Tree", 4, "╭────╮"},
		{"just enough", "T", 5, "╭─ T ─╮"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, buildTopBorder(tt.title, tt.innerWidth, borderStyle, titleStyle))
		})
	}
}
