package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive colors that work on light and dark terminals.
var (
	colorPurple = lipgloss.AdaptiveColor{Light: "#7B2FBE", Dark: "#B97EFF"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#FF4672"}
	colorAmber  = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}
	colorSubtle = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorFg     = lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#FFFDF5"}
	colorDimFg  = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	colorBorder = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple).
			PaddingRight(2)

	upPillStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorGreen).
			Padding(0, 1)

	downPillStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorRed).
			Padding(0, 1)

	waitingPillStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(colorAmber).
				Padding(0, 1)
)

var (
	helpKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorDimFg)

	helpSepStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDimFg)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(colorDimFg).
			Width(12)

	cardValueStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	spinnerStyle = lipgloss.NewStyle().Foreground(colorPurple)
)

// latencyStyle colors a latency green, amber or red.
func latencyStyle(ms int) lipgloss.Style {
	switch {
	case ms < 100:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case ms < 500:
		return lipgloss.NewStyle().Foreground(colorAmber)
	default:
		return lipgloss.NewStyle().Foreground(colorRed)
	}
}
