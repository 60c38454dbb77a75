package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the ZONES stream exists.
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

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// Save publishes the committed state of a zone.
func (p *Publisher) Save(ctx context.Context, z domain.Zone) error {
	data, err := json.Marshal(z)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(savedSubject(z.ID), data,
		nats.Context(ctx), nats.MsgId(msgID("saved", z.ID, z.Revision)))
	return err
}

// Remove publishes a zone deletion.
func (p *Publisher) Remove(ctx context.Context, id domain.ZoneID, revision uint64) error {
	data, err := json.Marshal(ZoneRemovedEvent{ID: id, Revision: revision})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(removedSubject(id), data,
		nats.Context(ctx), nats.MsgId(msgID("removed", id, revision)))
	return err
}

// PublishSessionState broadcasts the edit session state to live clients.
func (p *Publisher) PublishSessionState(_ context.Context, st domain.SessionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectSessionState, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// ensureStream creates or updates the ZONES stream.
func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:       StreamZones,
		Subjects:   []string{SubjectZones},
		Retention:  nats.WorkQueuePolicy,
		MaxAge:     24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}
