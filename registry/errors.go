package registry

import "errors"

// Integrity-violation errors. These abort a mutation before any index is
// touched; expected absence (get/update/delete of an unknown id) is reported
// through ok booleans instead, never through these errors.
var (
	// ErrDuplicateID is returned when registering an id that already exists.
	ErrDuplicateID = errors.New("entry id already exists")

	// ErrDuplicateVersion is returned when an entry with the same name and
	// version is already stored.
	ErrDuplicateVersion = errors.New("entry version already exists for name")

	// ErrMissingDependency is returned when a dependency id does not
	// reference a stored entry.
	ErrMissingDependency = errors.New("dependency does not exist")

	// ErrCircularDependency is returned when a write would make the entry's
	// dependency closure reach an already-visited id.
	ErrCircularDependency = errors.New("circular dependency detected")
)
