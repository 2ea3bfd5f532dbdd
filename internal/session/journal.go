package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher appends events. *Store implements it.
type Publisher interface {
	PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error)
}

// Journal records the events of one session and kind.
type Journal struct {
	pub     Publisher
	session string
	kind    string
}

// NewJournal returns a journal writing kind events for session.
func NewJournal(pub Publisher, session, kind string) *Journal {
	return &Journal{pub: pub, session: session, kind: kind}
}

// Session returns the session name events are written under.
func (j *Journal) Session() string {
	return j.session
}

// Record appends one action with its metadata.
func (j *Journal) Record(ctx context.Context, action string, meta Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding journal meta: %w", err)
	}
	_, err = j.pub.PublishEvent(ctx, Event{
		Session: j.session,
		Type:    j.kind,
		Action:  action,
		Meta:    data,
	})
	return err
}
