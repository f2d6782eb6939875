package version

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// State is a lifecycle state. Transitions are monotonic along
// draft -> active -> deprecated -> archived; archived is terminal. The one
// shortcut is draft -> archived, which retires an unused draft directly.
type State string

const (
	StateDraft      State = "draft"
	StateActive     State = "active"
	StateDeprecated State = "deprecated"
	StateArchived   State = "archived"
)

// ErrDuplicateVersion is returned when minting a (name, version) pair that
// already exists.
var ErrDuplicateVersion = errors.New("version already exists for name")

// Version is a minted semantic version with its lifecycle state. Versions are
// never deleted; archived ones stay queryable for audit.
type Version struct {
	Name        string    `json:"name"`
	SemVer      SemVer    `json:"semver"`
	State       State     `json:"state"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manager tracks versions per entry name and enforces lifecycle transitions.
// Invalid transitions are expected conditions and report false rather than
// raising.
type Manager struct {
	mu       sync.RWMutex
	versions map[string]map[string]*Version // name -> version string -> version
	nowFn    func() time.Time
}

// NewManager creates an empty version manager.
func NewManager() *Manager {
	return &Manager{
		versions: make(map[string]map[string]*Version),
		nowFn:    time.Now,
	}
}

// Create mints a new draft version for name. Negative components clamp to
// zero; a zero-value SemVer request defaults to 0.1.0. Minting a (name,
// version) pair that already exists fails with ErrDuplicateVersion.
func (m *Manager) Create(name string, sv SemVer, description string) (Version, error) {
	sv = NewSemVer(sv.Major, sv.Minor, sv.Patch)
	if sv == (SemVer{}) {
		sv = SemVer{Minor: 1}
	}
	key := sv.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	byVersion, ok := m.versions[name]
	if !ok {
		byVersion = make(map[string]*Version)
		m.versions[name] = byVersion
	}
	if _, exists := byVersion[key]; exists {
		return Version{}, fmt.Errorf("%w: %s %s", ErrDuplicateVersion, name, key)
	}

	now := m.nowFn()
	v := &Version{
		Name:        name,
		SemVer:      sv,
		State:       StateDraft,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	byVersion[key] = v
	return *v, nil
}

// Get returns the version for (name, versionString).
func (m *Manager) Get(name, versionString string) (Version, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.versions[name][versionString]
	if !ok {
		return Version{}, false
	}
	return *v, true
}

// Latest returns the greatest version for name by semantic order. Drafts are
// excluded unless includeDraft is set.
func (m *Manager) Latest(name string, includeDraft bool) (Version, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *Version
	for _, v := range m.versions[name] {
		if v.State == StateDraft && !includeDraft {
			continue
		}
		if latest == nil || v.SemVer.Compare(latest.SemVer) > 0 {
			latest = v
		}
	}
	if latest == nil {
		return Version{}, false
	}
	return *latest, true
}

// Activate transitions a draft version to active. It returns false when the
// version is missing or not in draft.
func (m *Manager) Activate(name, versionString string) bool {
	return m.transition(name, versionString, StateActive, StateDraft)
}

// Deprecate transitions an active version to deprecated.
func (m *Manager) Deprecate(name, versionString string) bool {
	return m.transition(name, versionString, StateDeprecated, StateActive)
}

// Archive transitions a version to archived from active, deprecated, or
// draft. Archived is terminal; archiving an archived version returns false.
func (m *Manager) Archive(name, versionString string) bool {
	return m.transition(name, versionString, StateArchived,
		StateActive, StateDeprecated, StateDraft)
}

// List returns all versions for name in ascending semantic order, optionally
// filtered by state. A nil filter returns every state.
func (m *Manager) List(name string, filter *State) []Version {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Version, 0, len(m.versions[name]))
	for _, v := range m.versions[name] {
		if filter != nil && v.State != *filter {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SemVer.Compare(out[j].SemVer) < 0
	})
	return out
}

// Active returns the versions for name currently in the active state.
func (m *Manager) Active(name string) []Version {
	state := StateActive
	return m.List(name, &state)
}

func (m *Manager) transition(name, versionString string, to State, from ...State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.versions[name][versionString]
	if !ok {
		return false
	}
	for _, s := range from {
		if v.State == s {
			v.State = to
			v.UpdatedAt = m.nowFn()
			return true
		}
	}
	return false
}
