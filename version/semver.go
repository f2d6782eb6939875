// Package version owns semantic version identifiers scoped per entry name and
// the lifecycle state machine each version moves through: draft, active,
// deprecated, archived.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a major.minor.patch triple. Components are non-negative;
// constructors clamp negative inputs to zero.
type SemVer struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// NewSemVer builds a SemVer, clamping negative components to zero.
func NewSemVer(major, minor, patch int) SemVer {
	return SemVer{
		Major: clamp(major),
		Minor: clamp(minor),
		Patch: clamp(patch),
	}
}

// Parse parses a "major.minor.patch" string.
func Parse(s string) (SemVer, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("invalid version string: %s", s)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return SemVer{}, fmt.Errorf("invalid version component %q in %s", part, s)
		}
		nums[i] = n
	}
	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders the version as "major.minor.patch".
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions lexicographically over (major, minor, patch).
// It returns -1 when v < other, 0 when equal, and 1 when v > other.
func (v SemVer) Compare(other SemVer) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, other.Patch)
}

// BumpMinor returns the next minor version with patch reset to zero.
func (v SemVer) BumpMinor() SemVer {
	return SemVer{Major: v.Major, Minor: v.Minor + 1}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
