package session

import (
	"encoding/json"
	"time"

	"github.com/mark3labs/inspectr/internal/nats"
)

// Journal actions.
const (
	ActionStart             = "start"
	ActionInspectionCreated = "inspection_created"
	ActionRoomCreated       = "room_created"
	ActionPhotoAttached     = "photo_attached"
	ActionAnalysisTriggered = "analysis_triggered"
	ActionDone              = "done"
	ActionFailed            = "failed"
)

// Attempt outcomes.
const (
	OutcomeRunning = "running"
	OutcomeDone    = "done"
	OutcomeFailed  = "failed"
)

// Meta is the metadata carried by journal events. Fields are set per action.
type Meta struct {
	Attempt        string `json:"attempt"`
	PropertyID     int64  `json:"property_id,omitempty"`
	InspectionType string `json:"inspection_type,omitempty"`
	Address        string `json:"address,omitempty"`
	Rooms          int    `json:"rooms,omitempty"`
	InspectionID   int64  `json:"inspection_id,omitempty"`
	RoomIndex      int    `json:"room_index,omitempty"`
	RoomID         int64  `json:"room_id,omitempty"`
	PhotoIndex     int    `json:"photo_index,omitempty"`
	Stage          string `json:"stage,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Attempt is the reduced view of one commit or quick action run.
type Attempt struct {
	ID                string    `json:"id"`
	Kind              string    `json:"kind"`
	StartedAt         time.Time `json:"started_at"`
	EndedAt           time.Time `json:"ended_at,omitempty"`
	PropertyID        int64     `json:"property_id,omitempty"`
	InspectionType    string    `json:"inspection_type,omitempty"`
	Address           string    `json:"address,omitempty"`
	Rooms             int       `json:"rooms"`
	InspectionID      int64     `json:"inspection_id,omitempty"`
	RoomsCreated      int       `json:"rooms_created"`
	PhotosAttached    int       `json:"photos_attached"`
	AnalysisTriggered bool      `json:"analysis_triggered"`
	Outcome           string    `json:"outcome"`
	Stage             string    `json:"stage,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// History is every attempt recorded for a session, in start order.
type History struct {
	Session  string     `json:"session"`
	Attempts []*Attempt `json:"attempts"`
	index    map[string]*Attempt
}

// NewHistory returns an empty History.
func NewHistory(session string) *History {
	return &History{Session: session, index: map[string]*Attempt{}}
}

// Apply reduces one event into the history.
func (h *History) Apply(event Event) {
	var meta Meta
	if err := json.Unmarshal(event.Meta, &meta); err != nil || meta.Attempt == "" {
		return
	}

	if event.Action == ActionStart {
		a := &Attempt{
			ID:             meta.Attempt,
			Kind:           event.Type,
			StartedAt:      event.Timestamp,
			PropertyID:     meta.PropertyID,
			InspectionType: meta.InspectionType,
			Address:        meta.Address,
			Rooms:          meta.Rooms,
			Outcome:        OutcomeRunning,
		}
		h.Attempts = append(h.Attempts, a)
		h.index[a.ID] = a
		return
	}

	a, ok := h.index[meta.Attempt]
	if !ok {
		return
	}
	switch event.Action {
	case ActionInspectionCreated:
		a.InspectionID = meta.InspectionID
	case ActionRoomCreated:
		a.RoomsCreated++
	case ActionPhotoAttached:
		a.PhotosAttached++
	case ActionAnalysisTriggered:
		a.AnalysisTriggered = true
	case ActionDone:
		if meta.InspectionID != 0 {
			a.InspectionID = meta.InspectionID
		}
		a.Outcome = OutcomeDone
		a.EndedAt = event.Timestamp
	case ActionFailed:
		a.Outcome = OutcomeFailed
		a.Stage = meta.Stage
		a.Error = meta.Error
		a.EndedAt = event.Timestamp
	}
}

// Last returns the most recent attempt, or nil.
func (h *History) Last() *Attempt {
	if len(h.Attempts) == 0 {
		return nil
	}
	return h.Attempts[len(h.Attempts)-1]
}

// Kinds of attempts, matching the journal event types.
const (
	KindCommit = nats.EventTypeCommit
	KindQuick  = nats.EventTypeQuick
)
