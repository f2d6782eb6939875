// Package model exposes the public registry surface for search models. The
// Facade composes the entry store, version manager, and metadata validator so
// training code never touches the inner components directly.
package model

import "errors"

// Facade input errors. Invalid configs are programming errors and raised;
// lookups on unknown ids fail soft.
var (
	// ErrMissingID is returned when registering a config without an id.
	ErrMissingID = errors.New("model config missing id")

	// ErrMissingType is returned when registering a config without a type.
	ErrMissingType = errors.New("model config missing type")
)

// Config is the trainable payload stored for each registered model.
type Config struct {
	// ID is the caller-assigned model identifier, unique per model.
	ID string `json:"id"`

	// Type groups models by purpose (ranker, embedder, classifier).
	// Entries for the same type share a registry name.
	Type string `json:"type"`

	// DisplayName is a human-readable label.
	DisplayName string `json:"display_name,omitempty"`

	// Features lists the input feature names the model consumes.
	Features []string `json:"features,omitempty"`

	// Hyperparams holds training hyperparameters.
	Hyperparams map[string]any `json:"hyperparams,omitempty"`

	// Weights holds the trained parameter vector, if materialized.
	Weights []float64 `json:"weights,omitempty"`
}

// Validate reports whether the config is registrable.
func (c Config) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Type == "" {
		return ErrMissingType
	}
	return nil
}

// clone returns a deep copy so stored configs are isolated from callers.
func (c Config) clone() Config {
	cp := c
	cp.Features = append([]string(nil), c.Features...)
	cp.Weights = append([]float64(nil), c.Weights...)
	if c.Hyperparams != nil {
		cp.Hyperparams = make(map[string]any, len(c.Hyperparams))
		for k, v := range c.Hyperparams {
			cp.Hyperparams[k] = v
		}
	}
	return cp
}
