package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the authoritative, process-lifetime storage for entries plus three
// consistent indices: by id, by name, and by tag. All operations are
// serialized by a single mutex; mutations validate against the prospective
// state before touching any index, so a failed write leaves the store
// unchanged.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
	byName  map[string][]string
	byTag   map[string]map[string]struct{}
	nowFn   func() time.Time
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]*Entry[T]),
		byName:  make(map[string][]string),
		byTag:   make(map[string]map[string]struct{}),
		nowFn:   time.Now,
	}
}

// Register inserts a fully-formed entry. Timestamps default to now when zero.
// It fails with ErrDuplicateID, ErrDuplicateVersion, ErrMissingDependency, or
// ErrCircularDependency; on failure no index is modified.
func (s *Store[T]) Register(e Entry[T]) error {
	if e.ID == "" {
		return fmt.Errorf("register: entry id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("register: entry name is required")
	}
	if e.Version == "" {
		return fmt.Errorf("register: entry version is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if s.versionTakenLocked(e.Name, e.Version, "") {
		return fmt.Errorf("%w: %s %s", ErrDuplicateVersion, e.Name, e.Version)
	}
	for _, dep := range e.Dependencies {
		if _, ok := s.entries[dep]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingDependency, dep)
		}
	}
	if err := s.checkCyclesLocked(e.ID, e.Dependencies); err != nil {
		return err
	}

	now := s.nowFn()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	stored := e.clone()
	s.entries[e.ID] = &stored
	s.byName[e.Name] = append(s.byName[e.Name], e.ID)
	s.indexTagsLocked(e.ID, stored.Tags)
	return nil
}

// Get returns the entry for id. The second return is false when absent.
func (s *Store[T]) Get(id string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		var zero Entry[T]
		return zero, false
	}
	return e.clone(), true
}

// Update applies a partial update to the entry for id. A missing id is a soft
// failure: (zero, false, nil). When dependencies change, existence and
// acyclicity are re-validated against the prospective post-update graph; when
// name or version change, (name, version) uniqueness is re-checked. On
// success the updated entry is returned with UpdatedAt refreshed.
func (s *Store[T]) Update(id string, opts ...UpdateOption[T]) (Entry[T], bool, error) {
	var zero Entry[T]

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[id]
	if !ok {
		return zero, false, nil
	}

	var p patch[T]
	for _, opt := range opts {
		opt(&p)
	}

	next := cur.clone()
	if p.name != nil {
		next.Name = *p.name
	}
	if p.version != nil {
		next.Version = *p.version
	}
	if p.setMetadata {
		next.Metadata = p.metadata
	}
	if p.setTags {
		next.Tags = append([]string(nil), p.tags...)
	}
	if p.setDeps {
		next.Dependencies = append([]string(nil), p.deps...)
	}
	if p.data != nil {
		next.Data = *p.data
	}

	if next.Name == "" {
		return zero, true, fmt.Errorf("update %s: entry name is required", id)
	}
	if next.Version == "" {
		return zero, true, fmt.Errorf("update %s: entry version is required", id)
	}
	if (p.name != nil || p.version != nil) && s.versionTakenLocked(next.Name, next.Version, id) {
		return zero, true, fmt.Errorf("%w: %s %s", ErrDuplicateVersion, next.Name, next.Version)
	}
	if p.setDeps {
		for _, dep := range next.Dependencies {
			if _, exists := s.entries[dep]; !exists {
				return zero, true, fmt.Errorf("%w: %s", ErrMissingDependency, dep)
			}
		}
		if err := s.checkCyclesLocked(id, next.Dependencies); err != nil {
			return zero, true, err
		}
	}

	s.unindexTagsLocked(id, cur.Tags)
	if next.Name != cur.Name {
		s.removeFromNameLocked(cur.Name, id)
		s.byName[next.Name] = append(s.byName[next.Name], id)
	}
	next.UpdatedAt = s.nowFn()
	stored := next.clone()
	s.entries[id] = &stored
	s.indexTagsLocked(id, stored.Tags)
	return next, true, nil
}

// Delete removes the entry and unwinds it from the name and tag indices,
// dropping buckets that become empty. It reports whether an entry was removed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)
	s.removeFromNameLocked(e.Name, id)
	s.unindexTagsLocked(id, e.Tags)
	return true
}

// LatestByName returns the entry for name with the greatest CreatedAt. This
// is a recency ordering, not a semantic-version ordering; semantic "latest"
// queries belong to the version manager.
func (s *Store[T]) LatestByName(name string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Entry[T]
	for _, id := range s.byName[name] {
		e := s.entries[id]
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		var zero Entry[T]
		return zero, false
	}
	return latest.clone(), true
}

// ByTag returns all entries carrying tag, sorted by id. An unknown tag yields
// an empty slice.
func (s *Store[T]) ByTag(tag string) []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byTag[tag]))
	for id := range s.byTag[tag] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Entry[T], 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id].clone())
	}
	return out
}

// List returns all stored entries, sorted by id.
func (s *Store[T]) List() []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Entry[T], 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id].clone())
	}
	return out
}

// Names returns the distinct entry names currently indexed, sorted.
func (s *Store[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear wipes all entries and indices. Intended for tests and resets.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry[T])
	s.byName = make(map[string][]string)
	s.byTag = make(map[string]map[string]struct{})
}

// checkCyclesLocked walks the prospective dependency graph depth-first,
// starting from the entry being written with deps as its outgoing edges and
// following stored edges beyond. The visited set is seeded with the written
// id; reaching any already-visited id fails the write. Must be called with
// the write lock held so concurrent writers cannot each create half a cycle.
func (s *Store[T]) checkCyclesLocked(id string, deps []string) error {
	visited := map[string]struct{}{id: {}}

	var walk func(edges []string) error
	walk = func(edges []string) error {
		for _, dep := range edges {
			if _, seen := visited[dep]; seen {
				return fmt.Errorf("%w: %s reaches %s twice", ErrCircularDependency, id, dep)
			}
			visited[dep] = struct{}{}
			if e, ok := s.entries[dep]; ok {
				if err := walk(e.Dependencies); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(deps)
}

// versionTakenLocked reports whether another entry with the same name already
// carries version. exclude skips the entry being updated.
func (s *Store[T]) versionTakenLocked(name, version, exclude string) bool {
	for _, id := range s.byName[name] {
		if id == exclude {
			continue
		}
		if s.entries[id].Version == version {
			return true
		}
	}
	return false
}

func (s *Store[T]) indexTagsLocked(id string, tags []string) {
	for _, tag := range tags {
		bucket, ok := s.byTag[tag]
		if !ok {
			bucket = make(map[string]struct{})
			s.byTag[tag] = bucket
		}
		bucket[id] = struct{}{}
	}
}

func (s *Store[T]) unindexTagsLocked(id string, tags []string) {
	for _, tag := range tags {
		bucket, ok := s.byTag[tag]
		if !ok {
			continue
		}
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(s.byTag, tag)
		}
	}
}

func (s *Store[T]) removeFromNameLocked(name, id string) {
	ids := s.byName[name]
	for i, existing := range ids {
		if existing == id {
			s.byName[name] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byName[name]) == 0 {
		delete(s.byName, name)
	}
}
