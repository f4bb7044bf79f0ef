package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/phonekit/phonekit/internal/cli/ui"
)

// colorEnabled returns true if stderr is a terminal and color should be used.
// Respects the NO_COLOR environment variable (https://no-color.org/).
func colorEnabled() bool {
	return ui.ColorEnabled()
}

// The helpers below render through a forced-ANSI renderer so they always
// produce escape codes when color=true; the caller already made the TTY
// decision via the color bool parameter.

func render(text string, color bool, style func(lipgloss.Style) lipgloss.Style) string {
	if !color {
		return text
	}
	return style(ui.ForcedRenderer().NewStyle()).Render(text)
}

// bold returns text in bold if color is enabled.
func bold(text string, color bool) string {
	return render(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Bold(true) })
}

// dim returns text in dim if color is enabled.
func dim(text string, color bool) string {
	return render(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Faint(true) })
}

// cyan returns text in cyan if color is enabled.
func cyan(text string, color bool) string {
	return render(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Foreground(ui.ColorCyan) })
}

// green returns text in green if color is enabled.
func green(text string, color bool) string {
	return render(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Foreground(ui.ColorGreen) })
}

// boldCyan returns text in bold cyan if color is enabled.
func boldCyan(text string, color bool) string {
	return render(text, color, func(s lipgloss.Style) lipgloss.Style { return s.Bold(true).Foreground(ui.ColorCyan) })
}
