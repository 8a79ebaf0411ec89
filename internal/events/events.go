// Package events publishes domain events to NATS. Publishing is best-effort
// and fire-and-forget; a nil Publisher is a no-op so the service runs without
// a broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subjects for the emitted domain events.
const (
	SubjectUserRegistered = "inkwell.users.registered"
	SubjectPostCreated    = "inkwell.posts.created"
	SubjectPostUpdated    = "inkwell.posts.updated"
	SubjectPostDeleted    = "inkwell.posts.deleted"
)

// Publisher emits JSON domain events over a NATS connection.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials the NATS endpoint. An empty URL returns a nil Publisher,
// which silently drops all events.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("inkwell"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: nc}, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// Publish encodes payload as JSON and emits it on subject. Failures are
// logged, never surfaced; an event drop must not fail the user's request.
func (p *Publisher) Publish(subject string, payload map[string]any) {
	if p == nil || subject == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish event")
	}
}
