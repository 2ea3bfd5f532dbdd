// Package quickaction creates a property and its inspection from a bare
// address in one call, bypassing the wizard.
package quickaction

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/mark3labs/inspectr/internal/api"
	"github.com/mark3labs/inspectr/internal/inspection"
	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/navigator"
	"github.com/mark3labs/inspectr/internal/session"
)

// ErrEmptyAddress is returned before any call when the address is blank.
var ErrEmptyAddress = errors.New("address is required")

const (
	previewFailure = "Failed to look up property data"
	createFailure  = "Failed to create property"
)

// Client is the part of the API the shortcut uses.
type Client interface {
	QuickCreate(ctx context.Context, req api.QuickCreateRequest) (*api.QuickCreateResponse, error)
	LookupAddress(ctx context.Context, address string) (*api.LookupResponse, error)
}

// Navigator opens the created inspection.
type Navigator interface {
	OpenInspection(ctx context.Context, id int64) (navigator.Destination, error)
}

// Journal records quick action attempts. *session.Journal implements it.
type Journal interface {
	Record(ctx context.Context, action string, meta session.Meta) error
}

// Status is the shortcut's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusPreviewing
	StatusCreating
)

// Error is a failed operation with the text to show the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Preview is the lookup result. Nothing is created.
type Preview struct {
	Address string
	Found   bool
	Data    *api.PropertyData
	// Layout is the room list suggested from the looked up attributes.
	Layout []inspection.SuggestedRoom
}

// Started is the result of Create & Start.
type Started struct {
	InspectionID   int64
	Property       api.Property
	SuggestedRooms []api.SuggestedRoom
	Destination    navigator.Destination
}

// Options configures a Shortcut. Client is required.
type Options struct {
	Client    Client
	Navigator Navigator
	Journal   Journal
	// Guard is shared with the wizard of the same session.
	Guard *session.Guard
}

// Shortcut runs Preview and Create & Start. The two are never chained.
type Shortcut struct {
	client  Client
	nav     Navigator
	journal Journal
	guard   *session.Guard
	log     *logger.Scoped

	mu     sync.Mutex
	status Status
}

// New creates a shortcut.
func New(opts Options) *Shortcut {
	s := &Shortcut{
		client:  opts.Client,
		nav:     opts.Navigator,
		journal: opts.Journal,
		guard:   opts.Guard,
		log:     logger.With("quick"),
	}
	if s.guard == nil {
		s.guard = &session.Guard{}
	}
	return s
}

// Status returns the current state.
func (s *Shortcut) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Preview looks up address and suggests a room layout.
func (s *Shortcut) Preview(ctx context.Context, address string) (*Preview, error) {
	address, release, err := s.begin(address, StatusPreviewing, "address preview")
	if err != nil {
		return nil, err
	}
	defer release()

	resp, err := s.client.LookupAddress(ctx, address)
	if err != nil {
		s.log.Error("address lookup failed for %q: %v", address, err)
		return nil, &Error{Message: api.Message(err, previewFailure), Err: err}
	}

	p := &Preview{Address: address}
	if resp.Success && resp.PropertyData != nil {
		p.Found = true
		p.Data = resp.PropertyData
		p.Layout = inspection.SuggestLayout(resp.PropertyData.PropertyType, resp.PropertyData.Bedrooms, int(math.Ceil(resp.PropertyData.Bathrooms)))
	}
	s.log.Info("address lookup for %q: found=%t", address, p.Found)
	return p, nil
}

// CreateAndStart makes one quick-create call requesting a move-in inspection,
// then opens the inspection it returns.
func (s *Shortcut) CreateAndStart(ctx context.Context, address string) (*Started, error) {
	address, release, err := s.begin(address, StatusCreating, "quick action")
	if err != nil {
		return nil, err
	}
	defer release()

	attempt := xid.New().String()
	s.record(ctx, session.ActionStart, session.Meta{Attempt: attempt, Address: address, InspectionType: inspection.QuickCreateType})

	resp, err := s.client.QuickCreate(ctx, api.QuickCreateRequest{
		Address:          address,
		CreateInspection: true,
		InspectionType:   inspection.QuickCreateType,
	})
	if err != nil {
		s.log.Error("quick create failed for %q: %v", address, err)
		msg := api.Message(err, createFailure)
		s.record(ctx, session.ActionFailed, session.Meta{Attempt: attempt, Stage: "quick_create", Error: msg})
		return nil, &Error{Message: msg, Err: err}
	}
	s.record(ctx, session.ActionDone, session.Meta{Attempt: attempt, InspectionID: resp.InspectionID, PropertyID: resp.Property.ID})

	started := &Started{
		InspectionID:   resp.InspectionID,
		Property:       resp.Property,
		SuggestedRooms: resp.SuggestedRooms,
	}
	if s.nav != nil {
		dest, err := s.nav.OpenInspection(ctx, resp.InspectionID)
		if err != nil {
			// Creation succeeded; only showing it failed.
			s.log.Warn("opening inspection %d: %v", resp.InspectionID, err)
		}
		started.Destination = dest
	}
	return started, nil
}

// begin validates the address, claims the session and sets status. The
// returned release puts the shortcut back to idle.
func (s *Shortcut) begin(address string, status Status, owner string) (string, func(), error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", nil, ErrEmptyAddress
	}

	unlock, err := s.guard.Acquire(owner)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	return address, func() {
		s.mu.Lock()
		s.status = StatusIdle
		s.mu.Unlock()
		unlock()
	}, nil
}

func (s *Shortcut) record(ctx context.Context, action string, meta session.Meta) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(ctx, action, meta); err != nil {
		s.log.Warn("journal %s: %v", action, err)
	}
}
