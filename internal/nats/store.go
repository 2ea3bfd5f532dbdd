// Package nats runs the embedded JetStream server backing the commit journal.
package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "inspectr_events"
	subjectPrefix = "inspectr"

	// EventTypeCommit marks wizard commit saga events.
	EventTypeCommit = "commit"
	// EventTypeQuick marks quick action events.
	EventTypeQuick = "quick"
)

// SubjectForSession returns the wildcard subject for all events of a session.
// Example: "inspectr.123-main-st.>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("%s.%s.>", subjectPrefix, session)
}

// SubjectForEvent returns the subject for one event type of a session.
// Example: "inspectr.123-main-st.commit"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, session, eventType)
}

// SessionFromSubject extracts the session token from an event subject.
func SessionFromSubject(subject string) (string, bool) {
	rest, ok := strings.CutPrefix(subject, subjectPrefix+".")
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, '.')
	if i <= 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[:i], true
}

// SetupStream creates or updates the stream holding every session's events
// with 90-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   90 * 24 * time.Hour,
	})
}
