// Package registry provides the in-memory versioned entry store at the heart
// of the SearchLift model registry. Entries are keyed by id and indexed by
// name and tag; dependency edges between entries are validated for existence
// and acyclicity at write time.
package registry

import "time"

// Entry is a stored, versioned record. The payload type T is opaque to the
// store; the model facade instantiates it with a trained-model descriptor.
type Entry[T any] struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Data         T              `json:"data"`
	Tags         []string       `json:"tags,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// clone returns a copy whose slices and metadata map are independent of the
// original, so entries handed to callers cannot mutate store state.
func (e *Entry[T]) clone() Entry[T] {
	cp := *e
	if e.Metadata != nil {
		cp.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	cp.Tags = append([]string(nil), e.Tags...)
	cp.Dependencies = append([]string(nil), e.Dependencies...)
	return cp
}
