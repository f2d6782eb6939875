package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/searchlift/searchlift/event"
	"github.com/searchlift/searchlift/metadata"
	"github.com/searchlift/searchlift/registry"
	"github.com/searchlift/searchlift/version"
)

// Facade is the public registry surface. Registration mints a draft version
// and a metadata record alongside the entry; reads and partial updates pass
// through to the entry store.
type Facade struct {
	store     *registry.Store[Config]
	versions  *version.Manager
	metadata  *metadata.Validator
	publisher event.Publisher
	logger    *slog.Logger
}

// NewFacade wires a facade over fresh components. A nil publisher disables
// eventing; a nil logger uses the default.
func NewFacade(publisher event.Publisher, logger *slog.Logger) *Facade {
	if publisher == nil {
		publisher = event.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		store:     registry.NewStore[Config](),
		versions:  version.NewManager(),
		metadata:  metadata.NewValidator(),
		publisher: publisher,
		logger:    logger,
	}
}

// Versions exposes the underlying version manager for lifecycle queries.
func (f *Facade) Versions() *version.Manager { return f.versions }

// Metadata exposes the underlying metadata validator for schema registration
// and record queries.
func (f *Facade) Metadata() *metadata.Validator { return f.metadata }

// entryName groups entries of one model type under a shared registry name.
func entryName(modelType string) string {
	return "model_" + modelType
}

// RegisterModel registers a model config. It mints an entry id, asks the
// version manager for a fresh draft version (a minor bump over the latest
// known version for the type, or 0.1.0 for the first), wraps the config as
// the entry payload, and records a {type} metadata record. Invalid configs
// and store rejections are raised.
func (f *Facade) RegisterModel(ctx context.Context, cfg Config, tags, dependencies []string) (registry.Entry[Config], error) {
	if err := cfg.Validate(); err != nil {
		return registry.Entry[Config]{}, err
	}

	name := entryName(cfg.Type)

	var next version.SemVer
	if latest, ok := f.versions.Latest(name, true); ok {
		next = latest.SemVer.BumpMinor()
	}
	minted, err := f.versions.Create(name, next, "registered "+cfg.ID)
	if err != nil {
		return registry.Entry[Config]{}, fmt.Errorf("mint version for %s: %w", name, err)
	}
	versionString := minted.SemVer.String()

	entry := registry.Entry[Config]{
		ID:           uuid.New().String(),
		Name:         name,
		Version:      versionString,
		Metadata:     map[string]any{"type": cfg.Type},
		Data:         cfg.clone(),
		Tags:         tags,
		Dependencies: dependencies,
	}
	if err := f.store.Register(entry); err != nil {
		// The minted draft never shipped; retire it.
		f.versions.Archive(name, versionString)
		return registry.Entry[Config]{}, err
	}

	if err := f.metadata.Store(entry.ID, map[string]any{"type": cfg.Type}, ""); err != nil {
		return registry.Entry[Config]{}, fmt.Errorf("store metadata for %s: %w", entry.ID, err)
	}

	stored, _ := f.store.Get(entry.ID)
	f.logger.Info("Model registered",
		"entry_id", stored.ID,
		"model_id", cfg.ID,
		"type", cfg.Type,
		"version", versionString)
	f.publish(ctx, event.KindRegistered, stored.ID, name, versionString)
	return stored, nil
}

// GetModel returns the entry for id, failing soft when absent.
func (f *Facade) GetModel(id string) (registry.Entry[Config], bool) {
	return f.store.Get(id)
}

// UpdateModel applies a partial update to the entry for id. A missing id
// fails soft; integrity violations are raised with the entry unchanged.
func (f *Facade) UpdateModel(ctx context.Context, id string, opts ...registry.UpdateOption[Config]) (registry.Entry[Config], bool, error) {
	updated, ok, err := f.store.Update(id, opts...)
	if err != nil || !ok {
		return updated, ok, err
	}
	f.publish(ctx, event.KindUpdated, updated.ID, updated.Name, updated.Version)
	return updated, true, nil
}

// DeleteModel removes the entry and its metadata record, reporting whether
// anything was removed.
func (f *Facade) DeleteModel(ctx context.Context, id string) bool {
	entry, ok := f.store.Get(id)
	if !ok {
		return false
	}
	if !f.store.Delete(id) {
		return false
	}
	f.metadata.Delete(id)
	f.logger.Info("Model deleted", "entry_id", id, "name", entry.Name)
	f.publish(ctx, event.KindDeleted, id, entry.Name, entry.Version)
	return true
}

// ListModels returns all entries.
func (f *Facade) ListModels() []registry.Entry[Config] {
	return f.store.List()
}

// ModelsByTag returns the entries carrying tag.
func (f *Facade) ModelsByTag(tag string) []registry.Entry[Config] {
	return f.store.ByTag(tag)
}

// LatestModel returns the most recently created entry for a model type.
func (f *Facade) LatestModel(modelType string) (registry.Entry[Config], bool) {
	return f.store.LatestByName(entryName(modelType))
}

// ActivateModel transitions the version for a model type to active.
func (f *Facade) ActivateModel(ctx context.Context, modelType, versionString string) bool {
	return f.transition(ctx, modelType, versionString, event.KindActivated, f.versions.Activate)
}

// DeprecateModel transitions the version for a model type to deprecated.
func (f *Facade) DeprecateModel(ctx context.Context, modelType, versionString string) bool {
	return f.transition(ctx, modelType, versionString, event.KindDeprecated, f.versions.Deprecate)
}

// ArchiveModel transitions the version for a model type to archived.
func (f *Facade) ArchiveModel(ctx context.Context, modelType, versionString string) bool {
	return f.transition(ctx, modelType, versionString, event.KindArchived, f.versions.Archive)
}

func (f *Facade) transition(ctx context.Context, modelType, versionString, kind string, fn func(string, string) bool) bool {
	name := entryName(modelType)
	if !fn(name, versionString) {
		return false
	}
	f.publish(ctx, kind, "", name, versionString)
	return true
}

func (f *Facade) publish(ctx context.Context, kind, entryID, name, versionString string) {
	ev := event.Event{
		Kind:    kind,
		EntryID: entryID,
		Name:    name,
		Version: versionString,
		At:      time.Now(),
	}
	if err := f.publisher.Publish(ctx, ev); err != nil {
		// Eventing is best-effort; the registry mutation already landed.
		f.logger.Warn("Failed to publish registry event",
			"kind", kind,
			"entry_id", entryID,
			"error", err)
	}
}
