package attribute

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkolb/gocomb/stm"
)

// SparseVec is a dense, per-slot-transactional attribute column: one
// TVar per allocated cell id, holding either a value or nothing.
//
// Grounded on the source's AttrSparseVec<T>, a wrapper around
// Vec<TVar<Option<T>>>: absence is represented the same way here, with
// a nil *T rather than an Option, stored inside a TVar so presence and
// value are validated together by the STM.
type SparseVec[T any] struct {
	policy BindPolicy
	laws   UpdateLaws[T]

	growMu sync.Mutex // guards slice growth only, distinct from the STM
	slots  []*stm.TVar[*T]
}

// NewSparseVec creates an empty column bound to policy, using laws to
// combine values on merge/split.
func NewSparseVec[T any](policy BindPolicy, laws UpdateLaws[T]) *SparseVec[T] {
	return &SparseVec[T]{policy: policy, laws: laws}
}

func (s *SparseVec[T]) Kind() BindPolicy { return s.policy }

func (s *SparseVec[T]) Capabilities() Capabilities {
	return CapRead | CapWrite | CapMergeSplit | CapExtend
}

// Extend grows the column so key n is addressable.
func (s *SparseVec[T]) Extend(n int) {
	s.growMu.Lock()
	defer s.growMu.Unlock()
	for len(s.slots) <= n {
		s.slots = append(s.slots, stm.NewTVar[*T](nil))
	}
}

func (s *SparseVec[T]) slot(key Key) *stm.TVar[*T] {
	if int(key) >= len(s.slots) {
		s.Extend(int(key))
	}
	return s.slots[key]
}

// NAttributes counts populated slots. It is a best-effort, non-
// transactional scan: see stm.Peek.
func (s *SparseVec[T]) NAttributes() int {
	n := 0
	for _, slot := range s.slots {
		if stm.Peek(slot) != nil {
			n++
		}
	}
	return n
}

// Read returns the value at key, if any.
func (s *SparseVec[T]) Read(tx *stm.Transaction, key Key) (T, bool) {
	v := stm.Read(tx, s.slot(key))
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}

// Write sets (or overwrites) the value at key.
func (s *SparseVec[T]) Write(tx *stm.Transaction, key Key, v T) {
	stm.Write(tx, s.slot(key), &v)
}

// Remove clears the value at key, returning the previous value if any.
func (s *SparseVec[T]) Remove(tx *stm.Transaction, key Key) (T, bool) {
	slot := s.slot(key)
	old := stm.Read(tx, slot)
	stm.Write(tx, slot, (*T)(nil))
	if old == nil {
		var zero T
		return zero, false
	}
	return *old, true
}

// Merge combines the values at k1 and k2 and writes the result at
// newKey, clearing k1/k2 if distinct from newKey. Both sides absent is
// a no-op success (self-sew between two attribute-less darts).
func (s *SparseVec[T]) Merge(tx *stm.Transaction, newKey, k1, k2 Key) error {
	a, aok := s.Read(tx, k1)
	b, bok := s.Read(tx, k2)

	var (
		result T
		err    error
	)
	switch {
	case aok && bok:
		result, err = s.laws.Merge(a, b)
	case aok && !bok:
		result, err = s.laws.MergeIncomplete(a)
	case !aok && bok:
		result, err = s.laws.MergeIncomplete(b)
	default:
		return nil // NoOp: nothing to merge
	}
	if err != nil {
		kind := ErrMergeRejected
		if errors.Is(err, ErrIncomplete) {
			kind = ErrIncomplete
		}
		return errors.Wrapf(kind, "merge at cell %d from (%d,%d): %v", newKey, k1, k2, err)
	}

	if k1 != newKey {
		s.clear(tx, k1)
	}
	if k2 != newKey && k2 != k1 {
		s.clear(tx, k2)
	}
	s.Write(tx, newKey, result)
	return nil
}

func (s *SparseVec[T]) clear(tx *stm.Transaction, key Key) {
	stm.Write(tx, s.slot(key), (*T)(nil))
}

// Split is the inverse of Merge: it reads srcKey, applies the split
// law, and writes the two resulting values at newK1/newK2, clearing
// srcKey first if distinct from both destinations.
func (s *SparseVec[T]) Split(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	src, ok := s.Read(tx, srcKey)
	if !ok {
		return nil // NoOp: nothing to split
	}

	a, b, err := s.laws.Split(src)
	if err != nil {
		return errors.Wrapf(ErrSplitRejected, "split at cell %d into (%d,%d): %v", srcKey, newK1, newK2, err)
	}

	if srcKey != newK1 && srcKey != newK2 {
		s.clear(tx, srcKey)
	}
	s.Write(tx, newK1, a)
	s.Write(tx, newK2, b)
	return nil
}

// ------------------------------------------------------------------
// type-erased adapter implementing Storage
// ------------------------------------------------------------------

type erasedSparseVec[T any] struct{ *SparseVec[T] }

func (e erasedSparseVec[T]) ReadAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Read(tx, key)
	return v, ok
}

func (e erasedSparseVec[T]) WriteAt(tx *stm.Transaction, key Key, v any) {
	e.Write(tx, key, v.(T))
}

func (e erasedSparseVec[T]) RemoveAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Remove(tx, key)
	return v, ok
}

func (e erasedSparseVec[T]) MergeAt(tx *stm.Transaction, newKey, k1, k2 Key) error {
	return e.Merge(tx, newKey, k1, k2)
}

func (e erasedSparseVec[T]) SplitAt(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	return e.Split(tx, newK1, newK2, srcKey)
}
