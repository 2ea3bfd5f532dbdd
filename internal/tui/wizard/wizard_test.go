package wizard

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/api/apitest"
	"github.com/mark3labs/inspectr/internal/capture"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/upload"
	core "github.com/mark3labs/inspectr/internal/wizard"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEsc   = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func key(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

type fixture struct {
	srv   *apitest.Server
	model *Model
	ctrl  *core.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.Properties = []api.Property{
		{ID: 1, AddressLine1: "123 Main St", City: "Springfield"},
		{ID: 2, AddressLine1: "9 Elm Ave", City: "Shelbyville"},
	}

	client, err := api.NewClient(srv.BaseURL(), "token")
	require.NoError(t, err)

	feed := NewFeed()
	nav := navigator.New("https://app.example.com", nil)
	ctrl := core.New(core.Options{Client: client, Results: nav, OnProgress: feed.Push})

	m := New(context.Background(), Deps{
		Controller: ctrl,
		Properties: client,
		Agent:      upload.NewAgent(client, upload.DefaultMaxPhotos),
		Feed:       feed,
		Navigator:  nav,
	})
	return &fixture{srv: srv, model: m, ctrl: ctrl}
}

// send runs msg through the model and returns its command.
func (f *fixture) send(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := f.model.Update(msg)
	return cmd
}

// follow executes cmd and delivers its message.
func (f *fixture) follow(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	f.send(t, cmd())
}

func (f *fixture) loadProperties(t *testing.T) {
	t.Helper()
	msg := f.model.propertyStep.fetch(context.Background())()
	f.send(t, msg)
}

func (f *fixture) toRooms(t *testing.T) {
	t.Helper()
	f.loadProperties(t)
	f.follow(t, f.send(t, keyEnter))
	require.Equal(t, core.StepConfigureRooms, f.ctrl.Step())
}

func (f *fixture) toReview(t *testing.T, rooms int) {
	t.Helper()
	f.toRooms(t)
	for i := 0; i < rooms; i++ {
		f.send(t, key("a"))
	}
	f.follow(t, f.send(t, keyEnter))
	require.Equal(t, core.StepReview, f.ctrl.Step())
}

func (f *fixture) commit(t *testing.T, start tea.Msg) {
	t.Helper()
	f.send(t, start)
	require.True(t, f.model.committing)
	f.send(t, f.model.commitCmd()())
	require.False(t, f.model.committing)
}

func TestPropertyStep_SelectsPropertyAndType(t *testing.T) {
	f := newFixture(t)
	f.loadProperties(t)

	step := f.model.propertyStep
	require.Contains(t, step.View(), "123 Main St, Springfield")

	step.Update(context.Background(), key("j"))
	step.Update(context.Background(), tea.KeyPressMsg{Code: tea.KeyTab})
	require.Equal(t, inspection.TypeMoveOut, step.InspectionType())

	cmd := step.Update(context.Background(), keyEnter)
	require.NotNil(t, cmd)
	require.Equal(t, PropertySelectedMsg{PropertyID: 2, InspectionType: inspection.TypeMoveOut}, cmd())
}

func TestPropertyStep_HighlightsRememberedProperty(t *testing.T) {
	step := NewPropertyStep(nil, inspection.TypeRoutine, 2)
	step.Update(context.Background(), PropertiesLoadedMsg{Properties: []api.Property{{ID: 1}, {ID: 2}}})

	prop, ok := step.Selected()
	require.True(t, ok)
	require.Equal(t, int64(2), prop.ID)
	require.Equal(t, inspection.TypeRoutine, step.InspectionType())
	require.Contains(t, step.View(), "(last used)")
}

func TestPropertyStep_ErrorOffersRetry(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(apitest.OpListProperties, 1, http.StatusServiceUnavailable, "Maintenance")
	f.loadProperties(t)

	view := f.model.propertyStep.View()
	require.Contains(t, view, "Maintenance")
	require.Contains(t, view, "retry")

	f.loadProperties(t)
	require.Contains(t, f.model.propertyStep.View(), "9 Elm Ave")
}

func TestModel_EscOnFirstStepCancels(t *testing.T) {
	f := newFixture(t)
	f.loadProperties(t)

	cmd := f.send(t, keyEsc)
	require.NotNil(t, cmd)
	require.True(t, f.model.cancelled)
}

func TestModel_EscGoesBackFromRooms(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)

	f.send(t, keyEsc)
	require.Equal(t, core.StepSelectProperty, f.ctrl.Step())
	require.False(t, f.model.cancelled)
}

func TestModel_RoomsGate(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)

	f.follow(t, f.send(t, keyEnter))
	require.Equal(t, core.StepConfigureRooms, f.ctrl.Step())
	require.Contains(t, f.model.roomsStep.View(), core.ErrNoRooms.Error())
}

func TestModel_CommitNavigates(t *testing.T) {
	f := newFixture(t)
	f.toReview(t, 2)

	require.Contains(t, f.model.reviewStep.Markdown(), "| 1 | Living Room |")
	require.Contains(t, f.model.reviewStep.Markdown(), "| 2 | Family Room |")
	f.srv.Reset()

	cmd := f.send(t, keyEnter)
	require.NotNil(t, cmd)
	f.commit(t, cmd())

	require.Equal(t, core.StepDone, f.ctrl.Step())
	require.Equal(t, []apitest.Op{apitest.OpCreateInspection, apitest.OpCreateRoom, apitest.OpCreateRoom}, f.srv.Ops())

	content := f.model.Content()
	require.Contains(t, content, "Inspection #100 created")
	require.Contains(t, content, "https://app.example.com/app/inspections/100")
	require.Contains(t, content, "exit")
	require.NotContains(t, content, "open")

	require.NotNil(t, f.send(t, keyEnter))
}

func TestModel_PartialFailureRetry(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(apitest.OpCreateRoom, 1, http.StatusBadRequest, "Room limit reached")
	f.toReview(t, 1)

	f.commit(t, CommitRequestedMsg{})
	require.Equal(t, core.StepPartiallyFailed, f.ctrl.Step())
	content := f.model.Content()
	require.Contains(t, content, "Room limit reached")
	require.Contains(t, content, "Inspection #100 was created with 0 of 1 room(s)")

	// Back navigation stays locked.
	f.send(t, key("k"))
	require.Equal(t, core.StepPartiallyFailed, f.ctrl.Step())

	cmd := f.send(t, key("r"))
	require.NotNil(t, cmd)
	require.True(t, f.model.committing)
	f.send(t, f.model.commitCmd()())

	require.Equal(t, core.StepDone, f.ctrl.Step())
	require.Equal(t, int64(101), f.model.result.InspectionID)
}

func TestModel_PartialFailureKeepsRoomsVisible(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(apitest.OpCreateRoom, 2, http.StatusBadRequest, "Room limit reached")
	f.toRooms(t)
	f.send(t, key("a"))
	f.send(t, key("a"))

	photo := filepath.Join(t.TempDir(), "sink.png")
	require.NoError(t, os.WriteFile(photo, pngBytes, 0o644))
	room := f.ctrl.State().Rooms[0]
	f.send(t, f.model.roomsStep.uploadCmd(context.Background(), room.ID, []string{photo}, false)())

	f.follow(t, f.send(t, keyEnter))
	require.Equal(t, core.StepReview, f.ctrl.Step())
	f.commit(t, CommitRequestedMsg{})
	require.Equal(t, core.StepPartiallyFailed, f.ctrl.Step())

	content := f.model.Content()
	require.Contains(t, content, "Room limit reached")
	require.Contains(t, content, "1. Living Room · 1 photo(s): sink.png")
	require.Contains(t, content, "2. Family Room · no photos")
}

func TestModel_RetryIgnoresStaleProgress(t *testing.T) {
	f := newFixture(t)
	f.srv.Fail(apitest.OpCreateRoom, 1, http.StatusBadRequest, "Room limit reached")
	f.toReview(t, 1)

	f.commit(t, CommitRequestedMsg{})
	require.Equal(t, core.StepPartiallyFailed, f.ctrl.Step())
	stale := core.Progress{InspectionCreated: true, InspectionID: 100}
	f.model.deps.Feed.Push(stale)
	require.NotEmpty(t, f.model.deps.Feed)

	f.send(t, key("r"))
	require.True(t, f.model.committing)
	require.Empty(t, f.model.deps.Feed)

	// A read that was already in flight still carries the old attempt.
	f.send(t, progressMsg{progress: stale})
	require.Contains(t, f.model.Content(), "Creating inspection...")

	f.send(t, progressMsg{progress: core.Progress{InspectionCreated: true, InspectionID: 101}})
	require.Contains(t, f.model.Content(), "Adding rooms 0/1")
}

func TestModel_KeysIgnoredWhileCommitting(t *testing.T) {
	f := newFixture(t)
	f.toReview(t, 1)

	f.send(t, CommitRequestedMsg{})
	require.True(t, f.model.committing)

	f.send(t, keyEsc)
	require.Equal(t, core.StepReview, f.ctrl.Step())
	require.False(t, f.model.cancelled)
	require.Contains(t, f.model.Content(), "Creating inspection...")
}

func TestModel_ProgressUpdatesView(t *testing.T) {
	f := newFixture(t)
	f.toReview(t, 2)
	f.send(t, CommitRequestedMsg{})

	f.send(t, progressMsg{progress: core.Progress{InspectionCreated: true, InspectionID: 100, RoomsCreated: 1}})
	require.Contains(t, f.model.Content(), "Adding rooms 1/2")
}

func TestRoomsStep_Edits(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)
	step := f.model.roomsStep

	step.Update(context.Background(), key("a"))
	step.Update(context.Background(), key("t"))
	rooms := f.ctrl.State().Rooms
	require.Len(t, rooms, 1)
	require.Equal(t, inspection.RoomBedroom, rooms[0].Type)

	step.Update(context.Background(), key("r"))
	require.True(t, step.Editing())
	step.input.SetValue("Den")
	step.Update(context.Background(), keyEnter)
	require.False(t, step.Editing())
	require.Equal(t, "Den", f.ctrl.State().Rooms[0].Name)

	require.NoError(t, f.ctrl.AddPhotos(rooms[0].ID, []inspection.UploadedPhoto{{URL: "u1"}, {URL: "u2"}}))
	step.Update(context.Background(), key("x"))
	require.Equal(t, []string{"u1"}, f.ctrl.State().Rooms[0].PhotoURLs())
	require.Equal(t, []apitest.Op{apitest.OpListProperties}, f.srv.Ops())

	step.Update(context.Background(), key("d"))
	require.Empty(t, f.ctrl.State().Rooms)
}

func TestRoomsStep_EscClosesInputFirst(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)
	f.send(t, key("a"))

	f.send(t, key("p"))
	require.True(t, f.model.roomsStep.Editing())

	f.send(t, keyEsc)
	require.False(t, f.model.roomsStep.Editing())
	require.Equal(t, core.StepConfigureRooms, f.ctrl.Step())
}

func TestRoomsStep_UploadsPaths(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)
	f.send(t, key("a"))

	dir := t.TempDir()
	photo := filepath.Join(dir, "sink.png")
	require.NoError(t, os.WriteFile(photo, pngBytes, 0o644))
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("plain text"), 0o644))

	room := f.ctrl.State().Rooms[0]
	f.send(t, f.model.roomsStep.uploadCmd(context.Background(), room.ID, []string{photo, notes}, false)())

	got := f.ctrl.State().Rooms[0]
	require.Len(t, got.Photos, 1)
	require.Equal(t, "sink.png", got.Photos[0].OriginalName)
	require.Contains(t, f.model.roomsStep.View(), "skipped notes.txt")
	require.FileExists(t, photo)
}

func TestRoomsStep_CaptureUploadsAndRemovesFile(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(t.TempDir(), "src.png")
	require.NoError(t, os.WriteFile(src, pngBytes, 0o644))

	camera := capture.New("cp '"+src+"' {{output}}", 5*time.Second)
	camera.Dir = t.TempDir()
	f.model.roomsStep.camera = camera
	f.model.roomsStep.affordances = upload.Affordances{FilePicker: true, Camera: true}

	f.toRooms(t)
	f.send(t, key("a"))
	require.Contains(t, f.model.roomsStep.View(), "camera")

	room := f.ctrl.State().Rooms[0]
	f.send(t, f.model.roomsStep.captureCmd(context.Background(), room.ID)())

	require.Len(t, f.ctrl.State().Rooms[0].Photos, 1)
	entries, err := os.ReadDir(camera.Dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRoomsStep_NoCameraWithoutAffordance(t *testing.T) {
	f := newFixture(t)
	f.toRooms(t)
	require.NotContains(t, f.model.roomsStep.View(), "camera")
	require.Nil(t, f.model.roomsStep.Update(context.Background(), key("c")))
}

func TestReviewMarkdown(t *testing.T) {
	state := core.State{
		PropertyID:     7,
		InspectionType: inspection.TypePreSale,
		Rooms: []inspection.RoomDraft{
			{Type: inspection.RoomKitchen, Name: "Kitchen"},
			{Type: inspection.RoomBathroom},
		},
	}

	md := ReviewMarkdown(state, api.Property{})
	require.Contains(t, md, "**Property:** Property #7")
	require.Contains(t, md, "**Type:** Pre-Sale")
	require.Contains(t, md, "| 2 | bathroom | Bathroom | 0 |")
	require.Contains(t, md, "analysis will be skipped")

	state.Rooms[0].Photos = []inspection.UploadedPhoto{{URL: "u"}}
	require.Contains(t, ReviewMarkdown(state, api.Property{}), "AI analysis starts")
}

func TestFeed_Drain(t *testing.T) {
	feed := NewFeed()
	feed.Push(core.Progress{RoomsCreated: 1})
	feed.Push(core.Progress{RoomsCreated: 2})
	feed.Drain()
	require.Empty(t, feed)

	var none Feed
	none.Drain()
}

func TestFeed_PushNeverBlocks(t *testing.T) {
	feed := make(Feed, 1)
	feed.Push(core.Progress{RoomsCreated: 1})
	feed.Push(core.Progress{RoomsCreated: 2})
	require.Equal(t, 1, (<-feed).RoomsCreated)
}
