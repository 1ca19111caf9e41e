package tui

import (
	"rdrupload/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by every screen. barFill is also the progress bar colour.
const barFill = "#2a9d8f"

var (
	ink    = lipgloss.AdaptiveColor{Light: "#1d3557", Dark: "#e9edf2"}
	accent = lipgloss.AdaptiveColor{Light: "#1d7a70", Dark: barFill}
	faint  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	created  = lipgloss.AdaptiveColor{Light: "#2d6a4f", Dark: "#74c69d"}
	rejected = lipgloss.AdaptiveColor{Light: "#9c6500", Dark: "#f4a261"}
	failed   = lipgloss.AdaptiveColor{Light: "#b42318", Dark: "#e76f51"}
)

var (
	choiceStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Foreground(ink)

	activeChoiceStyle = choiceStyle.
		Foreground(lipgloss.Color("#ffffff")).
		Background(accent).
		Bold(true)

	promptStyle = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)

	responseStyle = lipgloss.NewStyle().
		Foreground(faint)

	barStyle = lipgloss.NewStyle().
		MarginTop(1)

	failedStyle = lipgloss.NewStyle().
		Foreground(failed).
		Bold(true)
)

// outcomeStyle colours a status line by how the run ended.
func outcomeStyle(outcome models.Outcome) lipgloss.Style {
	switch outcome {
	case models.OutcomeCreated:
		return lipgloss.NewStyle().Foreground(created).Bold(true)
	case models.OutcomeRejected:
		return lipgloss.NewStyle().Foreground(rejected).Bold(true)
	default:
		return failedStyle
	}
}

// frame holds the width-dependent styles of one screen.
type frame struct {
	title lipgloss.Style
	panel lipgloss.Style
	help  lipgloss.Style
}

// newFrame sizes the screen styles to the terminal. Narrow or unknown
// widths leave the content unconstrained.
func newFrame(width int) frame {
	inner := width - 4
	if inner < 20 {
		inner = 0
	}

	return frame{
		title: lipgloss.NewStyle().
			Foreground(ink).
			Bold(true).
			MarginTop(1).
			MarginBottom(1).
			Width(inner),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(2).
			MarginBottom(1).
			Width(inner),
		help: lipgloss.NewStyle().
			Foreground(faint).
			MarginTop(1).
			Width(inner),
	}
}
