package wizard

import (
	"context"

	"github.com/rs/xid"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/session"
)

// FailureMessage is shown when a failed step carries no server detail.
const FailureMessage = "Failed to create inspection"

// Stage names one kind of call in the commit sequence.
type Stage string

const (
	StageCreateInspection Stage = "create_inspection"
	StageCreateRoom       Stage = "create_room"
	StageAttachPhoto      Stage = "attach_photo"
	StageAnalyze          Stage = "analyze"
)

// Progress is the high-water mark of a commit attempt.
type Progress struct {
	InspectionCreated bool
	InspectionID      int64
	RoomsCreated      int
	PhotosAttached    int
	AnalysisTriggered bool
}

// CommitResult is the outcome of one commit attempt: Done with an inspection
// id, or partially failed at Stage with Progress recording what was created.
type CommitResult struct {
	Attempt      string
	Done         bool
	InspectionID int64
	Progress     Progress
	// Set when the attempt failed.
	Stage Stage
	// RoomIndex is the room being processed when Stage is create_room or attach_photo.
	RoomIndex int
	Message   string
	Err       error
}

// commitPlan is the immutable input of one attempt.
type commitPlan struct {
	attempt        string
	propertyID     int64
	inspectionType inspection.Type
	rooms          []inspection.RoomDraft
}

// run executes the sequence. Every call waits for the previous one and the
// first failure stops it; nothing already created is undone.
func (c *Controller) run(ctx context.Context, plan commitPlan) *CommitResult {
	res := &CommitResult{Attempt: plan.attempt}
	c.record(ctx, session.ActionStart, session.Meta{
		Attempt:        plan.attempt,
		PropertyID:     plan.propertyID,
		InspectionType: string(plan.inspectionType),
		Rooms:          len(plan.rooms),
	})

	fail := func(stage Stage, roomIndex int, err error) *CommitResult {
		res.Stage = stage
		res.RoomIndex = roomIndex
		res.Err = err
		res.Message = api.Message(err, FailureMessage)
		c.log.Error("commit %s failed at %s (room %d): %v", plan.attempt, stage, roomIndex, err)
		c.record(ctx, session.ActionFailed, session.Meta{
			Attempt:      plan.attempt,
			InspectionID: res.Progress.InspectionID,
			RoomIndex:    roomIndex,
			Stage:        string(stage),
			Error:        res.Message,
		})
		return res
	}

	insp, err := c.client.CreateInspection(ctx, api.CreateInspectionRequest{
		PropertyID:     plan.propertyID,
		InspectionType: string(plan.inspectionType),
	})
	if err != nil {
		return fail(StageCreateInspection, 0, err)
	}
	res.Progress.InspectionCreated = true
	res.Progress.InspectionID = insp.ID
	c.progress(res.Progress)
	c.record(ctx, session.ActionInspectionCreated, session.Meta{Attempt: plan.attempt, InspectionID: insp.ID})

	hasPhotos := false
	for i, room := range plan.rooms {
		created, err := c.client.AddRoom(ctx, insp.ID, api.CreateRoomRequest{
			RoomType:   string(room.Type),
			RoomName:   room.CommitName(),
			OrderIndex: i,
		})
		if err != nil {
			return fail(StageCreateRoom, i, err)
		}
		res.Progress.RoomsCreated++
		c.progress(res.Progress)
		c.record(ctx, session.ActionRoomCreated, session.Meta{Attempt: plan.attempt, RoomIndex: i, RoomID: created.ID})

		for j, url := range room.PhotoURLs() {
			hasPhotos = true
			if err := c.client.AddPhoto(ctx, insp.ID, created.ID, url); err != nil {
				return fail(StageAttachPhoto, i, err)
			}
			res.Progress.PhotosAttached++
			c.progress(res.Progress)
			c.record(ctx, session.ActionPhotoAttached, session.Meta{Attempt: plan.attempt, RoomIndex: i, PhotoIndex: j})
		}
	}

	if hasPhotos {
		if err := c.client.Analyze(ctx, insp.ID); err != nil {
			return fail(StageAnalyze, 0, err)
		}
		res.Progress.AnalysisTriggered = true
		c.progress(res.Progress)
		c.record(ctx, session.ActionAnalysisTriggered, session.Meta{Attempt: plan.attempt, InspectionID: insp.ID})
	} else {
		c.log.Info("commit %s: no photos, skipping analysis", plan.attempt)
	}

	res.Done = true
	res.InspectionID = insp.ID
	c.record(ctx, session.ActionDone, session.Meta{Attempt: plan.attempt, InspectionID: insp.ID})
	return res
}

func newAttemptID() string {
	return xid.New().String()
}

// record writes to the journal. The journal is advisory, so failures are
// only logged.
func (c *Controller) record(ctx context.Context, action string, meta session.Meta) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(ctx, action, meta); err != nil {
		c.log.Warn("journal %s: %v", action, err)
	}
}

func (c *Controller) progress(p Progress) {
	if c.onProgress != nil {
		c.onProgress(p)
	}
}
