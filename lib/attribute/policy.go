// Package attribute implements the type-erased attribute storage system:
// sparse columns keyed by cell id, each with a user-supplied merge/split
// law, dispatched across all registered types by a Manager.
//
// The capability set a Storage exposes (ReadAt/WriteAt/MergeAt/SplitAt/
// Extend/RemoveAt) follows the "unknown attribute storage" pattern of
// the source this system is modeled on: dynamic dispatch over attribute
// types is achieved by erasing every storage behind this narrow
// interface instead of a trait object with a type-id key.
package attribute

// Key identifies a cell (the minimum dart id in its orbit). It is a
// plain integer so the attribute package has no dependency on the
// topology package that defines dart/cell ids.
type Key uint32

// BindPolicy names the orbit kind whose cell id is the key of a storage.
type BindPolicy uint8

const (
	Vertex BindPolicy = iota
	Edge
	Face
	Volume
	Custom
)

func (p BindPolicy) String() string {
	switch p {
	case Vertex:
		return "Vertex"
	case Edge:
		return "Edge"
	case Face:
		return "Face"
	case Volume:
		return "Volume"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// AffectedBySew reports whether a sew at the given topological dimension
// must merge attributes bound to this policy, per the affect table:
// dim-1 sew affects Vertex only, dim-2 affects Vertex+Edge, dim-3
// affects Vertex+Edge+Face. Volume and Custom storages are never
// auto-dispatched by sew/unsew; Custom storages are driven directly by
// their owner.
func (p BindPolicy) AffectedBySew(dim uint8) bool {
	switch p {
	case Vertex:
		return dim >= 1
	case Edge:
		return dim >= 2
	case Face:
		return dim >= 3
	default:
		return false
	}
}

// Capabilities is a bit flag describing what a Storage implementation
// supports, mirrored after the Feature bit-flag idiom used elsewhere in
// this stack for capability negotiation.
type Capabilities uint64

const (
	CapRead       Capabilities = 1 << iota // ReadAt
	CapWrite                               // WriteAt
	CapMergeSplit                          // MergeAt / SplitAt
	CapExtend                              // Extend
	CapPersistent                          // backed by durable storage, not memory
)

func (c Capabilities) Has(flag Capabilities) bool { return c&flag == flag }

func (c Capabilities) String() string {
	names := []struct {
		flag Capabilities
		name string
	}{
		{CapRead, "Read"}, {CapWrite, "Write"}, {CapMergeSplit, "MergeSplit"},
		{CapExtend, "Extend"}, {CapPersistent, "Persistent"},
	}
	s := ""
	for _, n := range names {
		if c.Has(n.flag) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "None"
	}
	return s
}
