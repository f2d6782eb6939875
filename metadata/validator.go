package metadata

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Validation errors. An unknown schema is a programming error and raised;
// metadata that merely fails a known schema is reported as false.
var (
	// ErrUnknownSchema is returned when validating against a schema name
	// that was never registered.
	ErrUnknownSchema = errors.New("unknown metadata schema")

	// ErrInvalidMetadata is returned by Store when the metadata fails its
	// schema.
	ErrInvalidMetadata = errors.New("metadata failed schema validation")
)

// Record is a stored metadata bag for an entry, kept separately from the
// entry payload itself.
type Record struct {
	EntryID     string         `json:"entry_id"`
	Values      map[string]any `json:"values"`
	SchemaName  string         `json:"schema_name,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Validator holds named schemas and metadata records. Schema registration is
// last-write-wins; records are keyed by entry id.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	records map[string]*Record
	nowFn   func() time.Time
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{
		schemas: make(map[string]*Schema),
		records: make(map[string]*Record),
		nowFn:   time.Now,
	}
}

// RegisterSchema stores a named schema for later validation. Registering an
// existing name replaces the previous schema.
func (v *Validator) RegisterSchema(name string, schema Schema) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas[name] = &schema
}

// Schemas returns the registered schema names.
func (v *Validator) Schemas() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	return names
}

// Validate checks metadata against the named schema. An unknown schema name
// raises ErrUnknownSchema; a known schema that rejects the metadata returns
// (false, nil).
func (v *Validator) Validate(schemaName string, md map[string]any) (bool, error) {
	v.mu.RLock()
	schema, ok := v.schemas[schemaName]
	v.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSchema, schemaName)
	}
	return schema.check(md), nil
}

// Store persists a metadata record for entryID, stamping LastUpdated. When
// schemaName is non-empty the metadata is validated first and a failure
// raises ErrInvalidMetadata. An existing record is replaced.
func (v *Validator) Store(entryID string, md map[string]any, schemaName string) error {
	if schemaName != "" {
		ok, err := v.Validate(schemaName, md)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: schema %s, entry %s", ErrInvalidMetadata, schemaName, entryID)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records[entryID] = &Record{
		EntryID:     entryID,
		Values:      cloneValues(md),
		SchemaName:  schemaName,
		LastUpdated: v.nowFn(),
	}
	return nil
}

// Update merges updates over the existing record for entryID. It returns
// false without raising when no record exists, and false with the stored
// state unchanged when the merged result fails the named schema. An unknown
// schema name still raises.
func (v *Validator) Update(entryID string, updates map[string]any, schemaName string) (bool, error) {
	v.mu.RLock()
	existing, ok := v.records[entryID]
	v.mu.RUnlock()
	if !ok {
		return false, nil
	}

	merged := cloneValues(existing.Values)
	for k, val := range updates {
		merged[k] = val
	}

	if schemaName != "" {
		valid, err := v.Validate(schemaName, merged)
		if err != nil {
			return false, err
		}
		if !valid {
			return false, nil
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// Re-check under the write lock; the record may have been deleted.
	if _, ok := v.records[entryID]; !ok {
		return false, nil
	}
	v.records[entryID] = &Record{
		EntryID:     entryID,
		Values:      merged,
		SchemaName:  schemaName,
		LastUpdated: v.nowFn(),
	}
	return true, nil
}

// Get returns the record for entryID.
func (v *Validator) Get(entryID string) (Record, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	r, ok := v.records[entryID]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// Delete removes the record for entryID, reporting whether one existed.
func (v *Validator) Delete(entryID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.records[entryID]; !ok {
		return false
	}
	delete(v.records, entryID)
	return true
}

// List returns all records accepted by filter. A nil filter returns
// everything.
func (v *Validator) List(filter func(Record) bool) []Record {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Record, 0, len(v.records))
	for _, r := range v.records {
		cp := r.clone()
		if filter != nil && !filter(cp) {
			continue
		}
		out = append(out, cp)
	}
	return out
}

func (r *Record) clone() Record {
	cp := *r
	cp.Values = cloneValues(r.Values)
	return cp
}

func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
