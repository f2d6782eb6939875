package registry

// patch accumulates the fields an Update call wants to change. Unset fields
// keep the stored value.
type patch[T any] struct {
	name        *string
	version     *string
	metadata    map[string]any
	setMetadata bool
	tags        []string
	setTags     bool
	deps        []string
	setDeps     bool
	data        *T
}

// UpdateOption selects a mutable field for Store.Update.
type UpdateOption[T any] func(*patch[T])

// WithName changes the entry's logical name, moving it between name buckets.
func WithName[T any](name string) UpdateOption[T] {
	return func(p *patch[T]) { p.name = &name }
}

// WithVersion changes the entry's version string.
func WithVersion[T any](version string) UpdateOption[T] {
	return func(p *patch[T]) { p.version = &version }
}

// WithMetadata replaces the entry's metadata bag.
func WithMetadata[T any](metadata map[string]any) UpdateOption[T] {
	return func(p *patch[T]) {
		p.metadata = metadata
		p.setMetadata = true
	}
}

// WithTags replaces the entry's tags. Passing no tags clears them.
func WithTags[T any](tags ...string) UpdateOption[T] {
	return func(p *patch[T]) {
		p.tags = tags
		p.setTags = true
	}
}

// WithDependencies replaces the entry's dependency list. The prospective list
// is validated for existence and acyclicity before anything is applied.
func WithDependencies[T any](ids ...string) UpdateOption[T] {
	return func(p *patch[T]) {
		p.deps = ids
		p.setDeps = true
	}
}

// WithData replaces the entry's payload.
func WithData[T any](data T) UpdateOption[T] {
	return func(p *patch[T]) { p.data = &data }
}
