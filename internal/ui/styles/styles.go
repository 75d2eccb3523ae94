// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"} // Attribute values
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Button colors
	ButtonTextColor           = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor      = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonPrimaryFocusBgColor = lipgloss.AdaptiveColor{Light: "#3498DB", Dark: "#3498DB"}

	// Toast notification colors
	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	// Light bulb colors, overridable from the theme config
	LightOffColor   lipgloss.TerminalColor = lipgloss.Color("#3A3A3A")
	LightWhiteColor lipgloss.TerminalColor = lipgloss.Color("#FFFFFF")
	LightRedColor   lipgloss.TerminalColor = lipgloss.Color("#FF5F5F")
	LightGreenColor lipgloss.TerminalColor = lipgloss.Color("#5FD75F")
	LightBlueColor  lipgloss.TerminalColor = lipgloss.Color("#5F87FF")

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonPrimaryFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	// Attribute label ("Mode:", "Color:")
	LabelStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	ValueStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)

// LightPalette holds the hex colors of the bulbs. Empty fields keep the
// current color.
type LightPalette struct {
	Off   string
	White string
	Red   string
	Green string
	Blue  string
}

// ApplyLights applies custom bulb colors from configuration.
func ApplyLights(p LightPalette) {
	set := func(dst *lipgloss.TerminalColor, hex string) {
		if hex != "" {
			*dst = lipgloss.Color(hex)
		}
	}
	set(&LightOffColor, p.Off)
	set(&LightWhiteColor, p.White)
	set(&LightRedColor, p.Red)
	set(&LightGreenColor, p.Green)
	set(&LightBlueColor, p.Blue)
}

// CurrentLights returns the palette in use.
func CurrentLights() LightPalette {
	hex := func(c lipgloss.TerminalColor) string {
		if s, ok := c.(lipgloss.Color); ok {
			return string(s)
		}
		return ""
	}
	return LightPalette{
		Off:   hex(LightOffColor),
		White: hex(LightWhiteColor),
		Red:   hex(LightRedColor),
		Green: hex(LightGreenColor),
		Blue:  hex(LightBlueColor),
	}
}
