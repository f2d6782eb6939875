// Package event publishes registry lifecycle notifications so downstream
// consumers (rollout controllers, audit sinks) can react to changes without
// polling the registry.
package event

import (
	"context"
	"time"
)

// Event kinds emitted by the registry facade.
const (
	KindRegistered = "registered"
	KindUpdated    = "updated"
	KindDeleted    = "deleted"
	KindActivated  = "activated"
	KindDeprecated = "deprecated"
	KindArchived   = "archived"
)

// Event describes a single registry change.
type Event struct {
	Kind    string         `json:"kind"`
	EntryID string         `json:"entry_id"`
	Name    string         `json:"name"`
	Version string         `json:"version,omitempty"`
	At      time.Time      `json:"at"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Publisher delivers registry events. Implementations must tolerate
// concurrent calls.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards all events. Useful as a default when eventing is disabled.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) error { return nil }
