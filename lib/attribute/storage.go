package attribute

import "github.com/vkolb/gocomb/stm"

// Storage is the type-erased capability set a concrete, generic column
// (SparseVec[T], HashMapStorage[T], PersistentStorage[T]) exposes to the
// Manager so columns of different T can be dispatched from one place
// without the Manager itself being generic.
//
// Values cross this boundary as `any`; concrete columns type-assert
// back to T internally. Typed callers should prefer the generic
// accessors on the concrete type (obtained via Of[T](manager)) and only
// reach for Storage when writing dispatch logic that must range over
// every registered type, such as Manager.MergeAllAtDim.
type Storage interface {
	Kind() BindPolicy
	Capabilities() Capabilities

	// Extend grows the column so that every key up to n is addressable.
	// HashMap-shaped columns may treat this as a no-op.
	Extend(n int)

	// NAttributes reports how many keys currently hold a value.
	NAttributes() int

	ReadAt(tx *stm.Transaction, key Key) (v any, ok bool)
	WriteAt(tx *stm.Transaction, key Key, v any)
	RemoveAt(tx *stm.Transaction, key Key) (v any, ok bool)

	// MergeAt reads the values at k1 and k2, combines them with the
	// registered merge (or merge-incomplete) law, writes the result at
	// newKey, and clears k1/k2 if distinct from newKey. A no-op (both
	// sides absent) succeeds without writing anything.
	MergeAt(tx *stm.Transaction, newKey, k1, k2 Key) error

	// SplitAt is the inverse of MergeAt: it reads the value at srcKey,
	// applies the split law, and writes the two results at newK1/newK2.
	SplitAt(tx *stm.Transaction, newK1, newK2, srcKey Key) error
}
