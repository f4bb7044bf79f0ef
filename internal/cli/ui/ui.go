// Package ui holds the phonekit CLI styles, symbols and terminal checks.
// CLI commands render through these definitions rather than raw ANSI codes.
package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// BrandEmoji prefixes the version line.
const BrandEmoji = "\u260E" // ☎

// ANSI 4-bit colors; termenv degrades them on limited terminals.
var (
	ColorCyan   = lipgloss.Color("6")
	ColorGreen  = lipgloss.Color("2")
	ColorYellow = lipgloss.Color("3")
	ColorRed    = lipgloss.Color("1")
)

// Styles by role.
var (
	StyleDim      = lipgloss.NewStyle().Faint(true)
	StyleBoldCyan = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	StyleBoldRed  = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(ColorRed)

	// StyleHeader renders table headers; StyleLabel pads the key column of
	// "countries show" and single-number parse output.
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	StyleLabel  = lipgloss.NewStyle().Bold(true).Width(14)

	StyleCode = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleHint = lipgloss.NewStyle().Faint(true)
)

// Status symbols.
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolDot     = "●"
	SymbolArrow   = "→"
)

// The default lipgloss renderer strips ANSI when stderr is not a terminal.
// Helpers that take an explicit color flag render through this one instead.
var (
	forcedRenderer     *lipgloss.Renderer
	forcedRendererOnce sync.Once
)

// ForcedRenderer returns a lipgloss renderer that always produces ANSI output,
// regardless of terminal detection.
func ForcedRenderer() *lipgloss.Renderer {
	forcedRendererOnce.Do(func() {
		forcedRenderer = lipgloss.NewRenderer(os.Stderr)
		forcedRenderer.SetColorProfile(termenv.ANSI)
	})
	return forcedRenderer
}

// ColorEnabled reports whether stderr is a terminal and NO_COLOR is unset.
// NO_COLOR disables color even when empty (https://no-color.org/).
func ColorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
