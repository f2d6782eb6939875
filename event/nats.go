package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Default stream and subject layout. Events land on
// <prefix>.<kind>, e.g. registry.event.registered.
const (
	DefaultStreamName    = "REGISTRY_EVENTS"
	DefaultSubjectPrefix = "registry.event"
)

// NATSPublisher publishes registry events to a JetStream stream.
type NATSPublisher struct {
	js            jetstream.JetStream
	subjectPrefix string
	logger        *slog.Logger
}

// NewNATSPublisher connects to NATS at url and ensures the event stream
// exists. An empty subjectPrefix uses the default.
func NewNATSPublisher(ctx context.Context, url, subjectPrefix string, logger *slog.Logger) (*NATSPublisher, error) {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     DefaultStreamName,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure event stream: %w", err)
	}

	return &NATSPublisher{
		js:            js,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}, nil
}

// Publish implements Publisher. A nil receiver is a no-op so callers can
// publish unconditionally when eventing is optional.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", p.subjectPrefix, ev.Kind)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish event to %s: %w", subject, err)
	}

	p.logger.Debug("Published registry event",
		"kind", ev.Kind,
		"entry_id", ev.EntryID,
		"subject", subject)
	return nil
}
