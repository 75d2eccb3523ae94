package legend

import (
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	md := Markdown(2 * time.Second)

	require.Contains(t, md, "| white | white after 2s |")
	require.Contains(t, md, "| alternating | white, then rainbow and white every 2s |")
	require.Contains(t, md, "| rainbow |")
	require.Contains(t, md, "| off |")
}

func TestMarkdown_FollowsCycle(t *testing.T) {
	require.Contains(t, Markdown(750*time.Millisecond), "white after 750ms")
}

func TestRender_NoTTY(t *testing.T) {
	r, err := New(60, "notty")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())

	out := ansi.Strip(r.Render(2 * time.Second))

	require.Contains(t, out, "Modes")
	require.Contains(t, out, "alternating")
	require.Contains(t, out, "Switch!")
	require.NotContains(t, out, "|---|", "tables are laid out, not printed")
}

func TestNew_UnknownStyle(t *testing.T) {
	_, err := New(60, "no-such-style")
	require.Error(t, err)
}
