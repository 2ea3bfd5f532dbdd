package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"github.com/rs/xid"
)

// ErrBusy is returned when another operation owns the session.
var ErrBusy = errors.New("session is busy")

// Guard gives one operation at a time exclusive use of a session. The wizard
// commit and the quick action share a Guard so they never overlap.
type Guard struct {
	mu    sync.Mutex
	owner string
}

// Acquire claims the guard for owner. The returned func releases it and is
// safe to call more than once.
func (g *Guard) Acquire(owner string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owner != "" {
		return nil, fmt.Errorf("%w: %s in progress", ErrBusy, g.owner)
	}
	g.owner = owner

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.owner = ""
			g.mu.Unlock()
		})
	}, nil
}

// Owner returns the current owner, empty when free.
func (g *Guard) Owner() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.owner
}

// Session identifies one wizard or quick action session.
type Session struct {
	ID    string
	Name  string
	Guard *Guard
}

// New creates a session named after label, e.g. a property address.
func New(label string) *Session {
	id := xid.New().String()
	return &Session{ID: id, Name: Name(label, id), Guard: &Guard{}}
}

// NewQuick creates a session for a quick action on address.
func NewQuick(address string) *Session {
	s := New("")
	if a := strings.TrimSpace(address); a != "" {
		s.Name = Name("quick "+a, s.ID)
	}
	return s
}

// Name makes a subject-safe session name from label, falling back to
// "session-<id>" when label has no usable characters.
func Name(label, id string) string {
	name := slug.Make(label)
	if name == "" {
		return "session-" + id
	}
	return name
}
