package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestProperty_StoreInvariants drives the store with a random operation
// sequence and checks after every step that the stored dependency graph is
// acyclic, the secondary indices agree with the id map, and (name, version)
// stays unique per name.
func TestProperty_StoreInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewStore[payload]()
		nextID := 0

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			ids := storedIDs(s)
			op := rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("op%d", i))

			switch op {
			case 0: // register
				nextID++
				e := Entry[payload]{
					ID:      fmt.Sprintf("e%d", nextID),
					Name:    fmt.Sprintf("name%d", rapid.IntRange(0, 4).Draw(rt, "name")),
					Version: fmt.Sprintf("%d.0.0", nextID),
					Tags:    rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c"}), 0, 2).Draw(rt, "tags"),
				}
				if len(ids) > 0 && rapid.Bool().Draw(rt, "withDeps") {
					e.Dependencies = []string{rapid.SampledFrom(ids).Draw(rt, "dep")}
				}
				_ = s.Register(e)
			case 1: // update dependencies
				if len(ids) == 0 {
					continue
				}
				id := rapid.SampledFrom(ids).Draw(rt, "target")
				var deps []string
				if rapid.Bool().Draw(rt, "nonEmpty") {
					deps = []string{rapid.SampledFrom(ids).Draw(rt, "newDep")}
				}
				_, _, _ = s.Update(id, WithDependencies[payload](deps...))
			case 2: // update tags
				if len(ids) == 0 {
					continue
				}
				id := rapid.SampledFrom(ids).Draw(rt, "target")
				tags := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d"}), 0, 3).Draw(rt, "newTags")
				_, _, _ = s.Update(id, WithTags[payload](tags...))
			case 3: // delete
				if len(ids) == 0 {
					continue
				}
				s.Delete(rapid.SampledFrom(ids).Draw(rt, "victim"))
			}

			requireAcyclic(t, s)
			requireConsistentIndices(t, s)
		}
	})
}

func storedIDs(s *Store[payload]) []string {
	entries := s.List()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// requireAcyclic checks the stored graph with a three-color DFS, independent
// of the store's own write-time detection.
func requireAcyclic(t *testing.T, s *Store[payload]) {
	t.Helper()

	deps := make(map[string][]string)
	for _, e := range s.List() {
		deps[e.ID] = e.Dependencies
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(deps))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, d := range deps[id] {
			if _, exists := deps[d]; !exists {
				continue // dangling reference after delete, not a cycle
			}
			switch color[d] {
			case gray:
				return false
			case white:
				if !visit(d) {
					return false
				}
			}
		}
		color[id] = black
		return true
	}

	for id := range deps {
		if color[id] == white {
			require.True(t, visit(id), "stored dependency graph contains a cycle through %s", id)
		}
	}
}

func requireConsistentIndices(t *testing.T, s *Store[payload]) {
	t.Helper()

	s.mu.RLock()
	defer s.mu.RUnlock()

	seenVersions := make(map[string]map[string]bool)
	for id, e := range s.entries {
		require.Equal(t, id, e.ID, "id map key must match entry id")
		if seenVersions[e.Name] == nil {
			seenVersions[e.Name] = make(map[string]bool)
		}
		require.False(t, seenVersions[e.Name][e.Version],
			"duplicate version %s for name %s", e.Version, e.Name)
		seenVersions[e.Name][e.Version] = true
	}

	for name, ids := range s.byName {
		require.NotEmpty(t, ids, "empty name bucket %s retained", name)
		for _, id := range ids {
			e, ok := s.entries[id]
			require.True(t, ok, "name bucket %s references missing id %s", name, id)
			require.Equal(t, name, e.Name)
		}
	}

	for tag, bucket := range s.byTag {
		require.NotEmpty(t, bucket, "empty tag bucket %s retained", tag)
		for id := range bucket {
			e, ok := s.entries[id]
			require.True(t, ok, "tag bucket %s references missing id %s", tag, id)
			require.Contains(t, e.Tags, tag)
		}
	}

	// Every entry is reachable through its indices.
	for id, e := range s.entries {
		require.Contains(t, s.byName[e.Name], id)
		for _, tag := range e.Tags {
			_, ok := s.byTag[tag][id]
			require.True(t, ok, "entry %s missing from tag bucket %s", id, tag)
		}
	}
}
