package wizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"

	"github.com/mark3labs/inspectr/internal/api"
	core "github.com/mark3labs/inspectr/internal/wizard"
)

// CommitRequestedMsg starts (or retries) the commit.
type CommitRequestedMsg struct{}

// ReviewStep shows the composed inspection before it is committed.
type ReviewStep struct {
	viewport viewport.Model
	markdown string
	width    int
	height   int
}

// NewReviewStep renders state for review.
func NewReviewStep(state core.State, property api.Property) *ReviewStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	md := ReviewMarkdown(state, property)
	vp.SetContent(renderMarkdown(md, 60))

	return &ReviewStep{
		viewport: vp,
		markdown: md,
		width:    60,
		height:   10,
	}
}

// ReviewMarkdown summarizes what the commit will create.
func ReviewMarkdown(state core.State, property api.Property) string {
	var b strings.Builder

	b.WriteString("# Review inspection\n\n")
	address := property.Address()
	if address == "" {
		address = fmt.Sprintf("Property #%d", state.PropertyID)
	}
	fmt.Fprintf(&b, "**Property:** %s  \n", address)
	fmt.Fprintf(&b, "**Type:** %s  \n", state.InspectionType.Label())
	fmt.Fprintf(&b, "**Rooms:** %d · **Photos:** %d\n\n", len(state.Rooms), state.PhotoCount())

	b.WriteString("| # | Room | Type | Photos |\n")
	b.WriteString("|---|------|------|--------|\n")
	for i, room := range state.Rooms {
		fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, room.CommitName(), room.Type.Label(), len(room.Photos))
	}
	b.WriteString("\n")

	if state.HasPhotos() {
		b.WriteString("> AI analysis starts once all photos are attached.\n")
	} else {
		b.WriteString("> No photos attached, so analysis will be skipped.\n")
	}
	return b.String()
}

// renderMarkdown renders markdown with glamour, falling back to plain text.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// Markdown returns the unrendered summary.
func (s *ReviewStep) Markdown() string {
	return s.markdown
}

// SetSize updates the dimensions and re-renders.
func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	// Reserve space for the button and hint bars.
	vpHeight := height - 4
	if vpHeight < 3 {
		vpHeight = 3
	}
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(vpHeight)
	s.viewport.SetContent(renderMarkdown(s.markdown, width))
}

// Update handles messages for the step.
func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter", "ctrl+enter":
			return func() tea.Msg { return CommitRequestedMsg{} }
		}
	}
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// View renders the step.
func (s *ReviewStep) View() string {
	var b strings.Builder
	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")
	bar := NewButtonBar(CreateBackNextButtons(true, true, "Create inspection"))
	bar.SetWidth(s.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")
	b.WriteString(renderHintBar("↑↓", "scroll", "enter", "create", "esc", "back"))
	return b.String()
}
