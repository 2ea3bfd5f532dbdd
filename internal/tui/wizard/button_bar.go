package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button is a single entry of a ButtonBar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar renders a centered row of buttons.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a button bar.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

var (
	buttonNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cdd6f4")).
			Background(lipgloss.Color("#313244")).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)

	buttonDisabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6c7086")).
			Background(lipgloss.Color("#181825")).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)

	buttonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1e1e2e")).
			Background(lipgloss.Color("#b4befe")).
			Bold(true).
			Padding(0, 2).
			MarginLeft(1).
			MarginRight(1)
)

// Render renders the button bar.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, buttonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, buttonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, buttonNormal.Render(btn.Label))
		}
	}

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, strings.Join(rendered, ""))
}

func enabled(ok bool) ButtonState {
	if ok {
		return ButtonNormal
	}
	return ButtonDisabled
}

// CreateBackNextButtons creates the Back/Next set. The next button is
// focused when enabled since enter activates it.
func CreateBackNextButtons(backEnabled, nextEnabled bool, nextLabel string) []Button {
	next := enabled(nextEnabled)
	if nextEnabled {
		next = ButtonFocused
	}
	return []Button{
		{Label: "← Back", State: enabled(backEnabled)},
		{Label: nextLabel, State: next},
	}
}

// CreateCancelNextButtons creates the Cancel/Next set of the first step.
func CreateCancelNextButtons(nextEnabled bool, nextLabel string) []Button {
	next := enabled(nextEnabled)
	if nextEnabled {
		next = ButtonFocused
	}
	return []Button{
		{Label: "Cancel", State: ButtonNormal},
		{Label: nextLabel, State: next},
	}
}

// CreateRetryButtons creates the Exit/Retry set shown after a partial failure.
func CreateRetryButtons() []Button {
	return []Button{
		{Label: "Exit", State: ButtonNormal},
		{Label: "Retry", State: ButtonFocused},
	}
}
