package wizard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
)

// PropertyLister loads the properties offered in the first step.
type PropertyLister interface {
	ListProperties(ctx context.Context) ([]api.Property, error)
}

// PropertiesLoadedMsg is sent when the property list arrives.
type PropertiesLoadedMsg struct {
	Properties []api.Property
}

// PropertiesErrorMsg is sent when loading properties fails.
type PropertiesErrorMsg struct {
	Err error
}

// PropertySelectedMsg is sent when the user confirms a property and type.
type PropertySelectedMsg struct {
	PropertyID     int64
	InspectionType inspection.Type
}

// PropertyStep lists properties and picks the inspection type.
type PropertyStep struct {
	lister     PropertyLister
	properties []api.Property
	selected   int
	// highlight is the remembered or preselected property, a hint only.
	highlight int64
	typeIdx   int
	loading   bool
	err       string
	spinner   spinner.Model
	width     int
	height    int
}

// NewPropertyStep creates the step. itype starts the type picker.
func NewPropertyStep(lister PropertyLister, itype inspection.Type, highlight int64) *PropertyStep {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipglossv2.NewStyle().Foreground(lipglossv2.Color(palette.Primary))

	step := &PropertyStep{
		lister:    lister,
		highlight: highlight,
		loading:   true,
		spinner:   s,
		width:     60,
		height:    10,
	}
	for i, t := range inspection.Types {
		if t == itype {
			step.typeIdx = i
		}
	}
	return step
}

// Init starts loading properties.
func (p *PropertyStep) Init(ctx context.Context) tea.Cmd {
	p.loading = true
	p.err = ""
	return tea.Batch(p.fetch(ctx), p.spinner.Tick)
}

func (p *PropertyStep) fetch(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		props, err := p.lister.ListProperties(ctx)
		if err != nil {
			return PropertiesErrorMsg{Err: err}
		}
		return PropertiesLoadedMsg{Properties: props}
	}
}

// SetSize updates the dimensions.
func (p *PropertyStep) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// InspectionType returns the type currently picked.
func (p *PropertyStep) InspectionType() inspection.Type {
	return inspection.Types[p.typeIdx]
}

// Selected returns the property under the cursor.
func (p *PropertyStep) Selected() (api.Property, bool) {
	if p.selected < 0 || p.selected >= len(p.properties) {
		return api.Property{}, false
	}
	return p.properties[p.selected], true
}

// Update handles messages for the step.
func (p *PropertyStep) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PropertiesLoadedMsg:
		p.loading = false
		p.properties = msg.Properties
		p.selected = 0
		for i, prop := range p.properties {
			if prop.ID == p.highlight {
				p.selected = i
			}
		}
		return nil

	case PropertiesErrorMsg:
		p.loading = false
		p.err = api.Message(msg.Err, "Failed to load properties")
		return nil

	case spinner.TickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyPressMsg:
		if p.loading {
			return nil
		}
		if p.err != "" {
			if msg.String() == "r" {
				return p.Init(ctx)
			}
			return nil
		}

		switch msg.String() {
		case "up", "k":
			if p.selected > 0 {
				p.selected--
			}
		case "down", "j":
			if p.selected < len(p.properties)-1 {
				p.selected++
			}
		case "tab", "right", "l":
			p.typeIdx = (p.typeIdx + 1) % len(inspection.Types)
		case "shift+tab", "left", "h":
			p.typeIdx = (p.typeIdx + len(inspection.Types) - 1) % len(inspection.Types)
		case "enter":
			prop, ok := p.Selected()
			if !ok {
				return nil
			}
			itype := p.InspectionType()
			return func() tea.Msg {
				return PropertySelectedMsg{PropertyID: prop.ID, InspectionType: itype}
			}
		}
	}
	return nil
}

// View renders the step.
func (p *PropertyStep) View() string {
	var b strings.Builder

	if p.loading {
		b.WriteString(p.spinner.View())
		b.WriteString(" Loading properties...\n")
		return b.String()
	}

	if p.err != "" {
		b.WriteString(styleError.Render("Error: " + p.err))
		b.WriteString("\n\n")
		b.WriteString(renderHintBar("r", "retry", "esc", "cancel"))
		return b.String()
	}

	if len(p.properties) == 0 {
		b.WriteString(styleMuted.Render("No properties yet. Use `inspectr quick <address>` to add one."))
		b.WriteString("\n\n")
		b.WriteString(renderHintBar("esc", "cancel"))
		return b.String()
	}

	// Keep the cursor visible in a window of the list.
	visible := p.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := start + visible
	if end > len(p.properties) {
		end = len(p.properties)
	}
	for i := start; i < end; i++ {
		prop := p.properties[i]
		line := prop.Address()
		if prop.PropertyType != "" {
			line += styleMuted.Render(" · " + prop.PropertyType)
		}
		if prop.ID == p.highlight {
			line += styleMuted.Render(" (last used)")
		}
		b.WriteString(renderItem(line, i == p.selected))
		b.WriteString("\n")
	}
	if len(p.properties) > visible {
		b.WriteString(styleMuted.Render(fmt.Sprintf("  %d of %d", p.selected+1, len(p.properties))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("Inspection type: ")
	for i, t := range inspection.Types {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(renderTypeChip(t.Label(), i == p.typeIdx))
	}
	b.WriteString("\n\n")

	bar := NewButtonBar(CreateCancelNextButtons(true, "Next →"))
	bar.SetWidth(p.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")
	b.WriteString(renderHintBar("↑↓", "property", "tab", "type", "enter", "next", "esc", "cancel"))
	return b.String()
}

func renderTypeChip(label string, active bool) string {
	if active {
		return styleItemSelected.Render("[" + label + "]")
	}
	return styleMuted.Render(" " + label + " ")
}
