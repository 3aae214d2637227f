// Package style holds the terminal styles shared by the CLI and the logs.
package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	Gray = func(shade int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%x%x%x", shade, shade, shade)))
	}

	Bold      = Gray(238).Bold(true).Render
	LightGray = Gray(9)

	HABlue  = lipgloss.Color("#1DAEEF")
	HAStyle = lipgloss.NewStyle().Foreground(HABlue)

	DarkDivider   = Gray(5).SetString("⁞")
	DarkerDivider = Gray(3).SetString("|")
)

// ColorizeHABlue renders text in the hub's blue.
func ColorizeHABlue(text string) string {
	return HAStyle.Render(text)
}

// HABlueFrame wraps text in blue angle brackets, e.g. for entity ids in logs.
func HABlueFrame(text string) string {
	return ColorizeHABlue("<") + text + ColorizeHABlue(">")
}

// DisableColors switches lipgloss to plain ascii output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
