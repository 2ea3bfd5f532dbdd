// Package wizard is the terminal front end of the inspection wizard. Every
// edit and the commit go through the controller in internal/wizard; this
// package only renders its state and turns keys into controller calls.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"
	"github.com/charmbracelet/lipgloss"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/capture"
	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/upload"
	core "github.com/mark3labs/inspectr/internal/wizard"
)

// ErrCancelled is returned by Run when the user leaves before committing.
var ErrCancelled = errors.New("wizard cancelled by user")

// Deps are the collaborators of the terminal wizard. Controller, Properties
// and Agent are required.
type Deps struct {
	Controller  *core.Controller
	Properties  PropertyLister
	Agent       *upload.Agent
	Camera      *capture.Camera
	Affordances upload.Affordances
	// Feed must be the one passed as the controller's OnProgress.
	Feed Feed
	// Navigator is the controller's result handler, used for the done screen.
	Navigator *navigator.Navigator
	// Preselect highlights a property; the remembered one is used when zero.
	Preselect int64
}

// Result is what the wizard ended with.
type Result struct {
	Commit *core.CommitResult
}

// Model is the BubbleTea model of the wizard.
type Model struct {
	ctx  context.Context
	deps Deps
	ctrl *core.Controller

	propertyStep *PropertyStep
	roomsStep    *RoomsStep
	reviewStep   *ReviewStep
	commitView   *CommitView

	property   api.Property
	committing bool
	waiting    bool
	// staleID is the inspection created by the previous attempt. Progress
	// carrying it belongs to that attempt.
	staleID    int64
	result     *core.CommitResult
	err        string
	cancelled  bool
	width      int
	height     int
}

// New creates the model.
func New(ctx context.Context, deps Deps) *Model {
	highlight := deps.Preselect
	if highlight == 0 {
		highlight = deps.Controller.RememberedPropertyID()
	}
	state := deps.Controller.State()
	return &Model{
		ctx:          ctx,
		deps:         deps,
		ctrl:         deps.Controller,
		propertyStep: NewPropertyStep(deps.Properties, state.InspectionType, highlight),
		roomsStep:    NewRoomsStep(deps.Controller, deps.Agent, deps.Camera, deps.Affordances),
		commitView:   NewCommitView(),
		width:        80,
		height:       24,
	}
}

// Run shows the wizard until the user finishes or leaves.
func Run(ctx context.Context, deps Deps) (*Result, error) {
	m := New(ctx, deps)

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}
	wm, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wm.cancelled && wm.result == nil {
		return nil, ErrCancelled
	}
	return &Result{Commit: wm.result}, nil
}

// Init loads properties.
func (m *Model) Init() tea.Cmd {
	return m.propertyStep.Init(m.ctx)
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case PropertySelectedMsg:
		m.err = ""
		for _, err := range []error{
			m.ctrl.SelectProperty(msg.PropertyID),
			m.ctrl.SetInspectionType(msg.InspectionType),
			m.ctrl.Next(),
		} {
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
		}
		m.property, _ = m.propertyStep.Selected()
		return m, nil

	case RoomsDoneMsg:
		if err := m.ctrl.Next(); err != nil {
			m.roomsStep.SetError(err)
			return m, nil
		}
		m.reviewStep = NewReviewStep(m.ctrl.State(), m.property)
		m.updateSizes()
		return m, nil

	case CommitRequestedMsg:
		return m, m.startCommit()

	case progressMsg:
		m.waiting = false
		if !m.committing {
			return m, nil
		}
		if !msg.progress.InspectionCreated || msg.progress.InspectionID != m.staleID {
			m.commitView.progress = msg.progress
		}
		return m, m.waitProgress()

	case commitDoneMsg:
		m.committing = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.result = msg.result
		m.commitView.progress = msg.result.Progress
		return m, nil

	case spinner.TickMsg:
		if m.committing {
			var cmd tea.Cmd
			m.commitView.spinner, cmd = m.commitView.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, m.updateCurrentStep(msg)
}

// handleKey processes wizard-level keys. It reports false when the key
// belongs to the current step.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelled = true
		return tea.Quit, true
	}
	if m.committing {
		// Nothing is editable and there is no going back mid-commit.
		return nil, true
	}

	switch m.ctrl.Step() {
	case core.StepDone:
		if key == "enter" || key == "esc" || key == "q" {
			return tea.Quit, true
		}
		return nil, true

	case core.StepPartiallyFailed:
		switch key {
		case "r", "enter":
			return m.startCommit(), true
		case "esc", "q":
			m.cancelled = true
			return tea.Quit, true
		}
		return nil, true

	case core.StepConfigureRooms:
		if m.roomsStep.Editing() {
			return nil, false
		}
	}

	if key != "esc" {
		return nil, false
	}
	m.err = ""
	exit, err := m.ctrl.Back()
	if err != nil {
		m.err = err.Error()
		return nil, true
	}
	if exit {
		m.cancelled = true
		return tea.Quit, true
	}
	return nil, true
}

func (m *Model) startCommit() tea.Cmd {
	if m.committing {
		return nil
	}
	state := m.ctrl.State()
	m.commitView.Reset(len(state.Rooms), state.PhotoCount())
	m.staleID = 0
	if m.result != nil {
		m.staleID = m.result.Progress.InspectionID
	}
	m.deps.Feed.Drain()
	m.committing = true
	m.err = ""

	cmds := []tea.Cmd{m.commitCmd(), m.commitView.spinner.Tick}
	if !m.waiting {
		cmds = append(cmds, m.waitProgress())
	}
	return tea.Batch(cmds...)
}

func (m *Model) commitCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Commit(ctx)
		return commitDoneMsg{result: res, err: err}
	}
}

// waitProgress reads the next update from the feed. At most one read is
// outstanding.
func (m *Model) waitProgress() tea.Cmd {
	feed := m.deps.Feed
	if feed == nil {
		return nil
	}
	m.waiting = true
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case p := <-feed:
			return progressMsg{progress: p}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) updateCurrentStep(msg tea.Msg) tea.Cmd {
	switch m.ctrl.Step() {
	case core.StepSelectProperty:
		return m.propertyStep.Update(m.ctx, msg)
	case core.StepConfigureRooms:
		return m.roomsStep.Update(m.ctx, msg)
	case core.StepReview:
		if m.reviewStep != nil {
			return m.reviewStep.Update(msg)
		}
	}
	// Late upload results still update the rooms step.
	if _, ok := msg.(uploadDoneMsg); ok {
		return m.roomsStep.Update(m.ctx, msg)
	}
	return nil
}

// contentSize is the space inside the modal.
func (m *Model) contentSize() (int, int) {
	w := m.width - 10
	h := m.height - 10
	if w < 40 {
		w = 40
	}
	if w > 96 {
		w = 96
	}
	if h < 10 {
		h = 10
	}
	return w, h
}

func (m *Model) updateSizes() {
	w, h := m.contentSize()
	m.propertyStep.SetSize(w, h)
	m.roomsStep.SetSize(w, h)
	if m.reviewStep != nil {
		m.reviewStep.SetSize(w, h)
	}
	m.commitView.SetWidth(w)
}

var stepTitles = map[core.Step]string{
	core.StepSelectProperty:  "Step 1 of 3: Property & Type",
	core.StepConfigureRooms:  "Step 2 of 3: Rooms & Photos",
	core.StepReview:          "Step 3 of 3: Review",
	core.StepCommitting:      "Creating Inspection",
	core.StepDone:            "Inspection Created",
	core.StepPartiallyFailed: "Inspection Incomplete",
}

// Content renders the modal body for the current step.
func (m *Model) Content() string {
	step := m.ctrl.Step()
	var body string
	switch {
	case m.committing || step == core.StepCommitting:
		body = m.commitView.Running()
	case step == core.StepDone && m.result != nil:
		body = m.commitView.Done(m.result, m.doneURL())
	case step == core.StepPartiallyFailed && m.result != nil:
		body = m.commitView.Failed(m.result, m.ctrl.State().Rooms)
	case step == core.StepSelectProperty:
		body = m.propertyStep.View()
	case step == core.StepConfigureRooms:
		body = m.roomsStep.View()
	case step == core.StepReview && m.reviewStep != nil:
		body = m.reviewStep.View()
	}

	sections := []string{styleModalTitle.Render("New Inspection - " + stepTitles[step]), ""}
	if m.property.ID != 0 && step != core.StepSelectProperty {
		sections = append(sections, styleMuted.Render(m.property.Address()), "")
	}
	sections = append(sections, body)
	if m.err != "" {
		sections = append(sections, "", styleError.Render(m.err))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) doneURL() string {
	if m.deps.Navigator == nil {
		return ""
	}
	if last := m.deps.Navigator.Last(); last != nil && last.Navigated {
		return last.Destination.URL
	}
	return ""
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.KeyboardEnhancements = tea.KeyboardEnhancements{
		ReportEventTypes: true, // Required for ctrl+enter
	}

	modalWidth, _ := m.contentSize()
	modal := styleModalContainer.Width(modalWidth + 6).Render(m.Content())
	content := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})
	view.Content = lipglossv2.NewLayer(canvas.Render())
	return view
}
