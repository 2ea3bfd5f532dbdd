package theme

import "charm.land/lipgloss/v2"

// Styles contains the pre-built lipgloss styles for command output.
type Styles struct {
	HeaderTitle lipgloss.Style
	Label       lipgloss.Style
	Muted       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
}
