package wizard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mark3labs/inspectr/internal/tui/theme"
)

var palette = theme.NewCatppuccinMocha()

// Color palette (Catppuccin Mocha)
var (
	colorPrimary       = lipgloss.Color(palette.Primary)
	colorSecondary     = lipgloss.Color(palette.Secondary)
	colorText          = lipgloss.Color(palette.FgBase)
	colorBase          = lipgloss.Color(palette.BgBase)
	colorSubtext0      = lipgloss.Color(palette.FgSubtle)
	colorSubtext1      = lipgloss.Color("#bac2de") // Subtext1
	colorSurface2      = lipgloss.Color("#585b70") // Surface2
	colorRed           = lipgloss.Color(palette.Error)
	colorGreen         = lipgloss.Color(palette.Success)
	colorYellow        = lipgloss.Color(palette.Warning)
	colorBorderFocused = lipgloss.Color(palette.Secondary)
)

// Modal styles
var (
	styleModalContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderFocused).
				Background(colorBase).
				Padding(1, 2)

	styleModalTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Align(lipgloss.Center)
)

// List and status styles
var (
	styleItem = lipgloss.NewStyle().
			Foreground(colorText)

	styleItemSelected = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	styleBusy = lipgloss.NewStyle().
			Foreground(colorYellow)
)

// Hint bar styles
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(colorSurface2)
)

// renderHintBar renders key-description pairs.
// Example: renderHintBar("↑↓", "navigate", "enter", "select")
// Returns: "↑↓ navigate • enter select"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + styleHintSeparator.Render("•") + " ")
		}
		b.WriteString(styleHintKey.Render(pairs[i]) + " " + styleHintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// renderItem renders a list line with a cursor marker when selected.
func renderItem(text string, selected bool) string {
	if selected {
		return styleItemSelected.Render("▸ " + text)
	}
	return styleItem.Render("  " + text)
}
