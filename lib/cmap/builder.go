package cmap

import "github.com/vkolb/gocomb/lib/attribute"

// Builder assembles a Map incrementally before handing it to callers:
// allocate darts and register attribute columns first, then Build.
// Builder itself holds no transactional state — every call it exposes
// either forwards to Map directly or to attribute.Register* — so it is
// a thin convenience wrapper, not a staging area with its own commit.
//
// Grid generators, mesh-file loaders and the other map-assembly
// facades that drive Builder in the source this is modeled on are
// external collaborators; they are explicitly out of scope here.
type Builder struct {
	m *Map
}

// NewBuilder starts building a map of dimension dim.
func NewBuilder(dim uint8) *Builder {
	return &Builder{m: NewMap(dim)}
}

// AddDart allocates one dart and returns its id.
func (b *Builder) AddDart() DartID { return b.m.AddDart() }

// AddDarts allocates n darts and returns their ids in allocation order.
func (b *Builder) AddDarts(n int) []DartID { return b.m.AddDarts(n) }

// AddAttribute registers a dense, sparse-vector-shaped column for T,
// bound to the given policy, using laws for merge/split.
func AddAttribute[T any](b *Builder, policy attribute.BindPolicy, laws attribute.UpdateLaws[T]) *attribute.SparseVec[T] {
	return attribute.Register[T](b.m.Attrs, policy, laws)
}

// AddHashMapAttribute registers a hash-map-shaped column for T, for
// attribute types expected to populate only a small fraction of cells.
func AddHashMapAttribute[T any](b *Builder, policy attribute.BindPolicy, laws attribute.UpdateLaws[T]) *attribute.HashMapStorage[T] {
	return attribute.RegisterHashMap[T](b.m.Attrs, policy, laws)
}

// Build finalizes construction and returns the assembled map. The
// Builder remains usable afterward (Build does not consume it), since
// nothing about it is single-shot: callers that do want a one-shot
// builder can simply drop the reference.
func (b *Builder) Build() *Map { return b.m }
