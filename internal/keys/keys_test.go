package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Switch(t *testing.T) {
	k := DefaultKeyMap()

	require.Equal(t, []string{" ", "enter", "s"}, k.Switch.Keys())
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, k.Switch))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, k.Switch))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}, k.Switch))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, k.Switch))
}

func TestDefaultKeyMap_Quit(t *testing.T) {
	k := DefaultKeyMap()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, k.Quit))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, k.Quit))
}

func TestDefaultKeyMap_HelpText(t *testing.T) {
	k := DefaultKeyMap()
	for _, b := range []key.Binding{k.Switch, k.Help, k.Quit} {
		h := b.Help()
		require.NotEmpty(t, h.Key)
		require.NotEmpty(t, h.Desc)
	}
	require.Equal(t, "switch mode", k.Switch.Help().Desc)
}

func TestKeyMap_ShortHelpRenders(t *testing.T) {
	view := help.New().View(DefaultKeyMap())

	require.Contains(t, view, "switch mode")
	require.Contains(t, view, "toggle help")
	require.Contains(t, view, "quit")
}

func TestKeyMap_FullHelpCoversShortHelp(t *testing.T) {
	k := DefaultKeyMap()
	var full []key.Binding
	for _, col := range k.FullHelp() {
		full = append(full, col...)
	}
	require.ElementsMatch(t, k.ShortHelp(), full)
}
