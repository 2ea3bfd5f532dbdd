package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mark3labs/inspectr/internal/nats"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	j, err := nats.Open(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return NewStore(j.JS, j.Stream)
}

func TestStore_LoadHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	journal := NewJournal(store, "123-main-st", KindCommit)

	// First attempt fails while creating the second room
	require.NoError(t, journal.Record(ctx, ActionStart, Meta{Attempt: "a1", PropertyID: 42, InspectionType: "move_in", Rooms: 2}))
	require.NoError(t, journal.Record(ctx, ActionInspectionCreated, Meta{Attempt: "a1", InspectionID: 100}))
	require.NoError(t, journal.Record(ctx, ActionRoomCreated, Meta{Attempt: "a1", RoomIndex: 0, RoomID: 500}))
	require.NoError(t, journal.Record(ctx, ActionPhotoAttached, Meta{Attempt: "a1", RoomIndex: 0, PhotoIndex: 0}))
	require.NoError(t, journal.Record(ctx, ActionFailed, Meta{Attempt: "a1", Stage: "create_room", Error: "Room limit reached"}))

	// Retry succeeds
	require.NoError(t, journal.Record(ctx, ActionStart, Meta{Attempt: "a2", PropertyID: 42, InspectionType: "move_in", Rooms: 2}))
	require.NoError(t, journal.Record(ctx, ActionInspectionCreated, Meta{Attempt: "a2", InspectionID: 101}))
	require.NoError(t, journal.Record(ctx, ActionRoomCreated, Meta{Attempt: "a2"}))
	require.NoError(t, journal.Record(ctx, ActionRoomCreated, Meta{Attempt: "a2", RoomIndex: 1}))
	require.NoError(t, journal.Record(ctx, ActionAnalysisTriggered, Meta{Attempt: "a2"}))
	require.NoError(t, journal.Record(ctx, ActionDone, Meta{Attempt: "a2", InspectionID: 101}))

	// Another session must not leak in
	other := NewJournal(store, "elm-rd", KindCommit)
	require.NoError(t, other.Record(ctx, ActionStart, Meta{Attempt: "b1"}))

	history, err := store.LoadHistory(ctx, "123-main-st")
	require.NoError(t, err)
	require.Len(t, history.Attempts, 2)

	first := history.Attempts[0]
	require.Equal(t, OutcomeFailed, first.Outcome)
	require.Equal(t, int64(100), first.InspectionID)
	require.Equal(t, 1, first.RoomsCreated)
	require.Equal(t, 1, first.PhotosAttached)
	require.False(t, first.AnalysisTriggered)
	require.Equal(t, "create_room", first.Stage)
	require.Equal(t, "Room limit reached", first.Error)

	last := history.Last()
	require.Equal(t, OutcomeDone, last.Outcome)
	require.Equal(t, int64(101), last.InspectionID)
	require.Equal(t, 2, last.RoomsCreated)
	require.True(t, last.AnalysisTriggered)
	require.False(t, last.EndedAt.IsZero())
}

func TestStore_LoadHistoryEmpty(t *testing.T) {
	store := newTestStore(t)

	history, err := store.LoadHistory(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, history.Attempts)
	require.Nil(t, history.Last())
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, NewJournal(store, "quick-elm-rd", KindQuick).Record(ctx, ActionStart, Meta{Attempt: "q"}))
	require.NoError(t, NewJournal(store, "123-main-st", KindCommit).Record(ctx, ActionStart, Meta{Attempt: "c"}))
	require.NoError(t, NewJournal(store, "123-main-st", KindCommit).Record(ctx, ActionDone, Meta{Attempt: "c"}))

	names, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"123-main-st", "quick-elm-rd"}, names)
}

func TestHistory_IgnoresUnknownAttempts(t *testing.T) {
	h := NewHistory("s")
	meta, _ := json.Marshal(Meta{Attempt: "ghost"})
	h.Apply(Event{Type: KindCommit, Action: ActionRoomCreated, Meta: meta})
	h.Apply(Event{Type: KindCommit, Action: ActionStart, Meta: []byte(`not json`)})
	require.Empty(t, h.Attempts)
}

func TestHistory_QuickAttempt(t *testing.T) {
	h := NewHistory("quick-main-st")
	start, _ := json.Marshal(Meta{Attempt: "q1", Address: "123 Main St"})
	done, _ := json.Marshal(Meta{Attempt: "q1", InspectionID: 900})
	now := time.Now()

	h.Apply(Event{Type: KindQuick, Action: ActionStart, Meta: start, Timestamp: now})
	h.Apply(Event{Type: KindQuick, Action: ActionDone, Meta: done, Timestamp: now.Add(time.Second)})

	require.Len(t, h.Attempts, 1)
	require.Equal(t, KindQuick, h.Attempts[0].Kind)
	require.Equal(t, "123 Main St", h.Attempts[0].Address)
	require.Equal(t, int64(900), h.Attempts[0].InspectionID)
	require.Equal(t, OutcomeDone, h.Attempts[0].Outcome)
}

func TestGuard(t *testing.T) {
	var g Guard

	release, err := g.Acquire("wizard commit")
	require.NoError(t, err)
	require.Equal(t, "wizard commit", g.Owner())

	_, err = g.Acquire("quick action")
	require.True(t, errors.Is(err, ErrBusy))
	require.Contains(t, err.Error(), "wizard commit")

	release()
	release()
	require.Empty(t, g.Owner())

	release2, err := g.Acquire("quick action")
	require.NoError(t, err)
	release2()
}

func TestNames(t *testing.T) {
	require.Equal(t, "123-main-st-springfield", Name("123 Main St, Springfield", "x"))
	require.Equal(t, "session-abc", Name("  ", "abc"))

	s := New("42 Elm Rd")
	require.Equal(t, "42-elm-rd", s.Name)
	require.NotEmpty(t, s.ID)
	require.NotNil(t, s.Guard)

	q := NewQuick("123 Main St")
	require.Equal(t, "quick-123-main-st", q.Name)

	blank := NewQuick("")
	require.Equal(t, "session-"+blank.ID, blank.Name)
}
