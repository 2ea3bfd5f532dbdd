package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"

	"github.com/mark3labs/inspectr/internal/capture"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/upload"
	core "github.com/mark3labs/inspectr/internal/wizard"
)

// RoomsDoneMsg asks to advance to the review step.
type RoomsDoneMsg struct{}

// uploadDoneMsg carries the result of one photo batch.
type uploadDoneMsg struct {
	roomID string
	result *upload.Result
	err    error
}

type inputMode int

const (
	modeList inputMode = iota
	modeRename
	modePaths
)

// RoomsStep edits the room list and attaches photos.
type RoomsStep struct {
	ctrl        *core.Controller
	agent       *upload.Agent
	camera      *capture.Camera
	affordances upload.Affordances

	selected int
	mode     inputMode
	input    textinput.Model
	status   string
	err      string
	width    int
	height   int
}

// NewRoomsStep creates the step. camera may be nil.
func NewRoomsStep(ctrl *core.Controller, agent *upload.Agent, camera *capture.Camera, aff upload.Affordances) *RoomsStep {
	input := textinput.New()
	input.Prompt = "> "
	input.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipglossv2.NewStyle().Foreground(lipglossv2.Color(palette.FgBase)),
			Placeholder: lipglossv2.NewStyle().Foreground(lipglossv2.Color("#a6adc8")),
			Prompt:      lipglossv2.NewStyle().Foreground(lipglossv2.Color("#b4befe")),
		},
		Blurred: textinput.StyleState{
			Text:        lipglossv2.NewStyle().Foreground(lipglossv2.Color("#a6adc8")),
			Placeholder: lipglossv2.NewStyle().Foreground(lipglossv2.Color("#a6adc8")),
			Prompt:      lipglossv2.NewStyle().Foreground(lipglossv2.Color("#6c7086")),
		},
		Cursor: textinput.CursorStyle{
			Color: lipglossv2.Color(palette.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	input.SetWidth(50)

	return &RoomsStep{
		ctrl:        ctrl,
		agent:       agent,
		camera:      camera,
		affordances: aff,
		input:       input,
		width:       60,
		height:      10,
	}
}

// SetSize updates the dimensions.
func (r *RoomsStep) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.input.SetWidth(width - 4)
}

// Editing reports whether a text input is open. ESC then closes the input
// instead of leaving the step.
func (r *RoomsStep) Editing() bool {
	return r.mode != modeList
}

func (r *RoomsStep) rooms() []inspection.RoomDraft {
	return r.ctrl.State().Rooms
}

func (r *RoomsStep) current() (inspection.RoomDraft, bool) {
	rooms := r.rooms()
	if r.selected < 0 || r.selected >= len(rooms) {
		return inspection.RoomDraft{}, false
	}
	return rooms[r.selected], true
}

// SetError shows err below the list.
func (r *RoomsStep) SetError(err error) {
	r.err = ""
	if err != nil {
		r.err = err.Error()
	}
}

func (r *RoomsStep) cameraOffered() bool {
	return r.affordances.Camera && r.camera.Available()
}

// Update handles messages for the step.
func (r *RoomsStep) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case uploadDoneMsg:
		r.status = ""
		if msg.err != nil {
			r.err = msg.err.Error()
			return nil
		}
		r.err = ""
		r.status = fmt.Sprintf("Added %d photo(s)", len(msg.result.Photos))
		if n := len(msg.result.Rejected); n > 0 {
			names := make([]string, n)
			for i, rej := range msg.result.Rejected {
				names[i] = rej.Name + ": " + rej.Reason
			}
			r.status += "; skipped " + strings.Join(names, ", ")
		}
		return nil

	case tea.KeyPressMsg:
		if r.mode != modeList {
			return r.updateInput(ctx, msg)
		}
		return r.updateList(ctx, msg)
	}

	if r.mode != modeList {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return cmd
	}
	return nil
}

func (r *RoomsStep) updateList(ctx context.Context, msg tea.KeyPressMsg) tea.Cmd {
	rooms := r.rooms()
	room, hasRoom := r.current()

	switch msg.String() {
	case "up", "k":
		if r.selected > 0 {
			r.selected--
		}
	case "down", "j":
		if r.selected < len(rooms)-1 {
			r.selected++
		}
	case "a":
		_, err := r.ctrl.AddRoom(inspection.DefaultRoomType, "")
		r.SetError(err)
		if err == nil {
			r.selected = len(r.rooms()) - 1
		}
	case "t":
		if hasRoom {
			r.SetError(r.ctrl.SetRoomType(room.ID, nextRoomType(room.Type)))
		}
	case "d":
		if hasRoom {
			r.SetError(r.ctrl.RemoveRoom(room.ID))
			if r.selected >= len(r.rooms()) && r.selected > 0 {
				r.selected--
			}
		}
	case "x":
		if hasRoom && len(room.Photos) > 0 {
			r.SetError(r.ctrl.RemovePhoto(room.ID, len(room.Photos)-1))
		}
	case "r":
		if hasRoom {
			r.mode = modeRename
			r.input.Placeholder = "Room name"
			r.input.SetValue(room.Name)
			return r.input.Focus()
		}
	case "p":
		if hasRoom {
			if r.agent.Busy(room.ID) {
				r.err = upload.ErrBusy.Error()
				return nil
			}
			r.mode = modePaths
			r.input.Placeholder = "Photo paths, space separated (drag files here)"
			r.input.SetValue("")
			return r.input.Focus()
		}
	case "c":
		if hasRoom && r.cameraOffered() {
			r.status = "Capturing..."
			return r.captureCmd(ctx, room.ID)
		}
	case "enter":
		return func() tea.Msg { return RoomsDoneMsg{} }
	}
	return nil
}

func (r *RoomsStep) updateInput(ctx context.Context, msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		r.closeInput()
		return nil
	case "enter":
		value := r.input.Value()
		mode := r.mode
		r.closeInput()
		room, ok := r.current()
		if !ok {
			return nil
		}
		if mode == modeRename {
			r.SetError(r.ctrl.RenameRoom(room.ID, value))
			return nil
		}
		paths := upload.ParsePaths(value)
		if len(paths) == 0 {
			return nil
		}
		r.status = "Uploading..."
		return r.uploadCmd(ctx, room.ID, paths, false)
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return cmd
}

func (r *RoomsStep) closeInput() {
	r.mode = modeList
	r.input.Blur()
	r.input.SetValue("")
}

// uploadCmd loads paths and uploads them as one batch for roomID. Captured
// files are deleted afterwards.
func (r *RoomsStep) uploadCmd(ctx context.Context, roomID string, paths []string, temporary bool) tea.Cmd {
	ctrl, agent := r.ctrl, r.agent
	return func() tea.Msg {
		if temporary {
			defer func() {
				for _, p := range paths {
					if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
						logger.Warn("removing captured photo %s: %v", p, err)
					}
				}
			}()
		}
		files, err := upload.LoadFiles(paths)
		if err != nil {
			return uploadDoneMsg{roomID: roomID, err: err}
		}
		res, err := ctrl.UploadPhotos(ctx, agent, roomID, files)
		return uploadDoneMsg{roomID: roomID, result: res, err: err}
	}
}

func (r *RoomsStep) captureCmd(ctx context.Context, roomID string) tea.Cmd {
	camera := r.camera
	send := r.uploadCmd
	return func() tea.Msg {
		path, err := camera.Capture(ctx)
		if err != nil {
			return uploadDoneMsg{roomID: roomID, err: err}
		}
		return send(ctx, roomID, []string{path}, true)()
	}
}

func nextRoomType(rt inspection.RoomType) inspection.RoomType {
	for i, t := range inspection.RoomTypes {
		if t == rt {
			return inspection.RoomTypes[(i+1)%len(inspection.RoomTypes)]
		}
	}
	return inspection.DefaultRoomType
}

// View renders the step.
func (r *RoomsStep) View() string {
	var b strings.Builder
	rooms := r.rooms()

	if len(rooms) == 0 {
		b.WriteString(styleMuted.Render("No rooms yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, room := range rooms {
		line := fmt.Sprintf("%s %s  %s",
			room.CommitName(),
			styleMuted.Render("("+room.Type.Label()+")"),
			styleMuted.Render(fmt.Sprintf("%d/%d photos", len(room.Photos), r.agent.MaxPhotos())),
		)
		if r.agent.Busy(room.ID) {
			line += " " + styleBusy.Render("uploading")
		}
		b.WriteString(renderItem(line, i == r.selected))
		b.WriteString("\n")
		if i == r.selected {
			for _, photo := range room.Photos {
				b.WriteString(styleMuted.Render("     · " + photo.OriginalName))
				b.WriteString("\n")
			}
		}
	}

	if r.mode != modeList {
		b.WriteString("\n")
		b.WriteString(r.input.View())
		b.WriteString("\n")
	}
	if r.status != "" {
		b.WriteString("\n")
		b.WriteString(styleBusy.Render(r.status))
		b.WriteString("\n")
	}
	if r.err != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render(r.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	bar := NewButtonBar(CreateBackNextButtons(true, len(rooms) > 0, "Review →"))
	bar.SetWidth(r.width)
	b.WriteString(bar.Render())
	b.WriteString("\n")

	if r.mode != modeList {
		b.WriteString(renderHintBar("enter", "confirm", "esc", "cancel"))
		return b.String()
	}
	hints := []string{"a", "add", "t", "type", "r", "rename", "d", "delete", "p", "photos"}
	if r.cameraOffered() {
		hints = append(hints, "c", "camera")
	}
	hints = append(hints, "x", "drop photo", "enter", "review", "esc", "back")
	b.WriteString(renderHintBar(hints...))
	return b.String()
}
