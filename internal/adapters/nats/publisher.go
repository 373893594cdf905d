package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/openroute/internal/core/domain"
)

// Stream and subjects of session events.
const (
	StreamSessions = "OPENROUTE_SESSIONS"
	SubjectAll     = "openroute.session.>"
)

// SuggestionsSubject is the subject of suggestion set replacements of a session.
func SuggestionsSubject(sessionID string) string {
	return "openroute.session." + sessionID + ".suggestions"
}

// SelectionSubject is the subject of active suggestion changes of a session.
func SelectionSubject(sessionID string) string {
	return "openroute.session." + sessionID + ".selection"
}

// SessionSubjects returns the wildcard subject for one session, or for all
// sessions when sessionID is empty.
func SessionSubjects(sessionID string) string {
	if sessionID == "" {
		return SubjectAll
	}
	return "openroute.session." + sessionID + ".>"
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the session stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamSessions,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSuggestionsReplaced(ctx context.Context, event *domain.SuggestionsReplacedEvent) error {
	return p.publish(ctx, SuggestionsSubject(event.SessionID), event)
}

func (p *Publisher) PublishSelectionChanged(ctx context.Context, event *domain.SelectionChangedEvent) error {
	return p.publish(ctx, SelectionSubject(event.SessionID), event)
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Conn returns the underlying connection, e.g. for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("openroute"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
