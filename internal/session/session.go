package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mark3labs/inspectr/internal/logger"
	"github.com/mark3labs/inspectr/internal/nats"
)

// Event is one entry of the append-only commit journal.
type Event struct {
	ID        string          `json:"id"`        // NATS stream sequence
	Timestamp time.Time       `json:"timestamp"` // When the event occurred
	Session   string          `json:"session"`   // Session name
	Type      string          `json:"type"`      // commit or quick
	Action    string          `json:"action"`    // start, inspection_created, room_created, ...
	Meta      json.RawMessage `json:"meta"`      // Action-specific metadata
}

// Store publishes journal events to JetStream and reduces them into History.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store over an existing stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{
		js:     js,
		stream: stream,
	}
}

// PublishEvent appends an event on inspectr.{session}.{type}.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Session, event.Type)
	logger.Debug("Publishing event: session=%s type=%s action=%s", event.Session, event.Type, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// LoadHistory replays every event of a session into a History.
func (s *Store) LoadHistory(ctx context.Context, session string) (*History, error) {
	consumer, err := s.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{nats.SubjectForSession(session)},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	history := NewHistory(session)

	info, err := s.stream.Info(ctx, jetstream.WithSubjectFilter(nats.SubjectForSession(session)))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}
	pending := uint64(0)
	for _, n := range info.State.Subjects {
		pending += n
	}

	const batchSize = 500
	malformed := 0
	for pending > 0 {
		msgs, err := consumer.Fetch(batchSize, jetstream.FetchMaxWait(time.Second))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch events: %w", err)
		}

		got := 0
		for msg := range msgs.Messages() {
			got++
			pending--

			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				continue
			}
			if event.ID == "" {
				if meta, err := msg.Metadata(); err == nil {
					event.ID = fmt.Sprintf("%d", meta.Sequence.Stream)
				}
			}
			history.Apply(event)
		}
		if err := msgs.Error(); err != nil && got == 0 {
			return nil, fmt.Errorf("failed to fetch events: %w", err)
		}
		if got == 0 {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed events while loading history for %s", malformed, session)
	}
	return history, nil
}

// Sessions lists every session name that has at least one event, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	info, err := s.stream.Info(ctx, jetstream.WithSubjectFilter("inspectr.>"))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}

	seen := map[string]bool{}
	for subject := range info.State.Subjects {
		if name, ok := nats.SessionFromSubject(subject); ok {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
