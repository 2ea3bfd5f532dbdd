// Package wizard drives the inspection creation workflow: property and type
// selection, room configuration, review, and the ordered commit against the API.
package wizard

import (
	"errors"
	"fmt"

	"github.com/mark3labs/inspectr/internal/inspection"
)

// Step is a wizard state.
type Step int

const (
	StepSelectProperty Step = iota
	StepConfigureRooms
	StepReview
	StepCommitting
	StepDone
	StepPartiallyFailed
)

func (s Step) String() string {
	switch s {
	case StepSelectProperty:
		return "select_property"
	case StepConfigureRooms:
		return "configure_rooms"
	case StepReview:
		return "review"
	case StepCommitting:
		return "committing"
	case StepDone:
		return "done"
	case StepPartiallyFailed:
		return "partially_failed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Locked reports whether the step forbids edits and back navigation.
func (s Step) Locked() bool {
	return s >= StepCommitting
}

var (
	// ErrNoProperty gates SelectProperty -> ConfigureRooms.
	ErrNoProperty = errors.New("select a property first")
	// ErrNoRooms gates ConfigureRooms -> Review and commit.
	ErrNoRooms = errors.New("add at least one room")
	// ErrLocked is returned for edits or back navigation once commit has begun.
	ErrLocked = errors.New("inspection is being committed and can no longer be edited")
	// ErrNotReady is returned when Commit is called outside Review or PartiallyFailed.
	ErrNotReady = errors.New("review the inspection before committing")
	// ErrAtEnd is returned by Next when there is no further editable step.
	ErrAtEnd = errors.New("no next step; confirm to commit")
)

// State is a snapshot of the wizard.
type State struct {
	Step           Step
	PropertyID     int64
	InspectionType inspection.Type
	Rooms          []inspection.RoomDraft
	// Result is the last commit outcome, nil before the first commit.
	Result *CommitResult
}

// HasPhotos reports whether any room holds a photo.
func (s State) HasPhotos() bool {
	for _, r := range s.Rooms {
		if len(r.Photos) > 0 {
			return true
		}
	}
	return false
}

// PhotoCount is the total number of photos across rooms.
func (s State) PhotoCount() int {
	n := 0
	for _, r := range s.Rooms {
		n += len(r.Photos)
	}
	return n
}
