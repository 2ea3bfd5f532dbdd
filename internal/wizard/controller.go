package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/prefs"
	"github.com/mark3labs/inspectr/internal/session"
	"github.com/mark3labs/inspectr/internal/upload"
)

// Client is the subset of the API the commit sequence calls.
type Client interface {
	CreateInspection(ctx context.Context, req api.CreateInspectionRequest) (*api.Inspection, error)
	AddRoom(ctx context.Context, inspectionID int64, req api.CreateRoomRequest) (*api.Room, error)
	AddPhoto(ctx context.Context, inspectionID, roomID int64, photoURL string) error
	Analyze(ctx context.Context, inspectionID int64) error
}

// Journal records commit progress. *session.Journal implements it.
type Journal interface {
	Record(ctx context.Context, action string, meta session.Meta) error
}

// PrefStore loads defaults at start and saves them after a successful commit.
type PrefStore interface {
	Load() prefs.Prefs
	Save(p prefs.Prefs) error
}

// ResultHandler receives every commit outcome, e.g. to navigate on success.
type ResultHandler interface {
	Handle(ctx context.Context, res CommitResult) error
}

// Options configures a Controller. Only Client is required.
type Options struct {
	Client  Client
	Journal Journal
	Prefs   PrefStore
	// Guard is shared with the quick action of the same session.
	Guard   *session.Guard
	Results ResultHandler
	// OnProgress is called after every successful call of the commit sequence.
	OnProgress func(Progress)
	// MaxPhotos is the per-room photo limit. Zero uses upload.DefaultMaxPhotos.
	MaxPhotos int
}

// Controller owns the state of one wizard session. Methods are safe for
// concurrent use; the commit runs without holding the lock so the state can
// be read while it is in flight.
type Controller struct {
	client     Client
	journal    Journal
	prefs      PrefStore
	guard      *session.Guard
	results    ResultHandler
	onProgress func(Progress)
	maxPhotos  int
	log        *logger.Scoped

	mu             sync.Mutex
	step           Step
	propertyID     int64
	inspectionType inspection.Type
	rooms          inspection.Rooms
	remembered     int64
	result         *CommitResult
}

// New creates a controller at SelectProperty. The inspection type starts at
// the remembered preference, or move_in.
func New(opts Options) *Controller {
	c := &Controller{
		client:         opts.Client,
		journal:        opts.Journal,
		prefs:          opts.Prefs,
		guard:          opts.Guard,
		results:        opts.Results,
		onProgress:     opts.OnProgress,
		maxPhotos:      opts.MaxPhotos,
		log:            logger.With("wizard"),
		step:           StepSelectProperty,
		inspectionType: inspection.DefaultType,
	}
	if c.guard == nil {
		c.guard = &session.Guard{}
	}
	if c.maxPhotos <= 0 {
		c.maxPhotos = upload.DefaultMaxPhotos
	}
	if c.prefs != nil {
		p := c.prefs.Load()
		if p.InspectionType.Valid() {
			c.inspectionType = p.InspectionType
		}
		c.remembered = p.PropertyID
	}
	return c
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Step:           c.step,
		PropertyID:     c.propertyID,
		InspectionType: c.inspectionType,
		Rooms:          c.rooms.List(),
		Result:         c.result,
	}
}

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// RememberedPropertyID is the property chosen in the last successful commit,
// zero when none. It is a hint only; selection stays explicit.
func (c *Controller) RememberedPropertyID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remembered
}

// SelectProperty chooses the property. Zero clears the selection.
func (c *Controller) SelectProperty(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step.Locked() {
		return ErrLocked
	}
	if id < 0 {
		return fmt.Errorf("invalid property id %d", id)
	}
	c.propertyID = id
	return nil
}

// SetInspectionType changes the inspection type.
func (c *Controller) SetInspectionType(t inspection.Type) error {
	if !t.Valid() {
		_, err := inspection.ParseType(string(t))
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step.Locked() {
		return ErrLocked
	}
	c.inspectionType = t
	return nil
}

// Next advances one step if its gate passes.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.step {
	case StepSelectProperty:
		if c.propertyID <= 0 {
			return ErrNoProperty
		}
		c.step = StepConfigureRooms
	case StepConfigureRooms:
		if c.rooms.Len() == 0 {
			return ErrNoRooms
		}
		c.step = StepReview
	case StepReview:
		return ErrAtEnd
	default:
		return ErrLocked
	}
	return nil
}

// Back moves one step back. At SelectProperty it reports exit so the caller
// can leave the wizard.
func (c *Controller) Back() (exit bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.step {
	case StepSelectProperty:
		return true, nil
	case StepConfigureRooms:
		c.step = StepSelectProperty
	case StepReview:
		c.step = StepConfigureRooms
	default:
		return false, ErrLocked
	}
	return false, nil
}

// AddRoom appends a room. Empty type and name are defaulted.
func (c *Controller) AddRoom(rt inspection.RoomType, name string) (inspection.RoomDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step.Locked() {
		return inspection.RoomDraft{}, ErrLocked
	}
	return c.rooms.Add(rt, name)
}

// RemoveRoom deletes a room.
func (c *Controller) RemoveRoom(id string) error {
	return c.edit(func() error { return c.rooms.Remove(id) })
}

// SetRoomType changes a room's type.
func (c *Controller) SetRoomType(id string, rt inspection.RoomType) error {
	return c.edit(func() error { return c.rooms.SetType(id, rt) })
}

// RenameRoom sets a room's name.
func (c *Controller) RenameRoom(id, name string) error {
	return c.edit(func() error { return c.rooms.Rename(id, name) })
}

// AddPhotos appends confirmed uploads to a room. The room may not hold more
// than the photo limit.
func (c *Controller) AddPhotos(id string, photos []inspection.UploadedPhoto) error {
	return c.edit(func() error {
		n, err := c.rooms.PhotoCount(id)
		if err != nil {
			return err
		}
		if n+len(photos) > c.maxPhotos {
			return fmt.Errorf("%w: %d selected, %d remaining", upload.ErrTooManyPhotos, len(photos), max(c.maxPhotos-n, 0))
		}
		return c.rooms.AddPhotos(id, photos)
	})
}

// MaxPhotos returns the per-room photo limit.
func (c *Controller) MaxPhotos() int {
	return c.maxPhotos
}

// RemovePhoto drops a photo by index. No network call is made.
func (c *Controller) RemovePhoto(id string, index int) error {
	return c.edit(func() error { return c.rooms.RemovePhoto(id, index) })
}

// PhotoCount returns the number of photos in a room.
func (c *Controller) PhotoCount(id string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.PhotoCount(id)
}

func (c *Controller) edit(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step.Locked() {
		return ErrLocked
	}
	return fn()
}

// Commit runs the commit sequence from Review, or again from the first step
// after a partial failure. Gate violations and a busy session are returned as
// errors without any network call; otherwise the outcome is in the result.
func (c *Controller) Commit(ctx context.Context) (*CommitResult, error) {
	c.mu.Lock()
	if step := c.step; step != StepReview && step != StepPartiallyFailed {
		c.mu.Unlock()
		if step.Locked() {
			return nil, ErrLocked
		}
		return nil, ErrNotReady
	}
	if c.propertyID <= 0 {
		c.mu.Unlock()
		return nil, ErrNoProperty
	}
	if c.rooms.Len() == 0 {
		c.mu.Unlock()
		return nil, ErrNoRooms
	}
	release, err := c.guard.Acquire("wizard commit")
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	plan := commitPlan{
		attempt:        newAttemptID(),
		propertyID:     c.propertyID,
		inspectionType: c.inspectionType,
		rooms:          c.rooms.List(),
	}
	c.step = StepCommitting
	c.mu.Unlock()
	defer release()

	c.log.Info("commit %s: property %d, %s, %d room(s)", plan.attempt, plan.propertyID, plan.inspectionType, len(plan.rooms))
	res := c.run(ctx, plan)

	c.mu.Lock()
	c.result = res
	if res.Done {
		c.step = StepDone
	} else {
		c.step = StepPartiallyFailed
	}
	c.mu.Unlock()

	if res.Done && c.prefs != nil {
		if err := c.prefs.Save(prefs.Prefs{InspectionType: plan.inspectionType, PropertyID: plan.propertyID}); err != nil {
			c.log.Warn("saving prefs: %v", err)
		}
	}
	if c.results != nil {
		if err := c.results.Handle(ctx, *res); err != nil {
			c.log.Warn("handling commit result: %v", err)
		}
	}
	return res, nil
}
