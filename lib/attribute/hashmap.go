package attribute

import (
	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vkolb/gocomb/stm"
)

// HashMapStorage is a sparse, hash-map-shaped attribute column: a slot
// is created lazily on first access rather than pre-allocated by
// position. It suits Custom-bound attributes keyed by ids with no dense
// locality (e.g. attributes only a handful of cells ever carry).
//
// Grounded on the teacher's sharded concurrent map engine
// (lib/db/engines/maple/maple.go): the same xsync.MapOf + Compute idiom
// used there to atomically get-or-create a map entry is used here to
// get-or-create a cell's TVar slot without a separate lock.
type HashMapStorage[T any] struct {
	policy BindPolicy
	laws   UpdateLaws[T]
	data   *xsync.MapOf[Key, *stm.TVar[*T]]
}

// NewHashMapStorage creates an empty hash-map-shaped column.
func NewHashMapStorage[T any](policy BindPolicy, laws UpdateLaws[T]) *HashMapStorage[T] {
	return &HashMapStorage[T]{policy: policy, laws: laws, data: xsync.NewMapOf[Key, *stm.TVar[*T]]()}
}

func (s *HashMapStorage[T]) Kind() BindPolicy       { return s.policy }
func (s *HashMapStorage[T]) Capabilities() Capabilities {
	return CapRead | CapWrite | CapMergeSplit
}

// Extend is a no-op: slots are created lazily by key, not by position.
func (s *HashMapStorage[T]) Extend(int) {}

func (s *HashMapStorage[T]) NAttributes() int {
	n := 0
	s.data.Range(func(_ Key, slot *stm.TVar[*T]) bool {
		if stm.Peek(slot) != nil {
			n++
		}
		return true
	})
	return n
}

func (s *HashMapStorage[T]) slot(key Key) *stm.TVar[*T] {
	actual, _ := s.data.Compute(key, func(old *stm.TVar[*T], loaded bool) (*stm.TVar[*T], bool) {
		if loaded {
			return old, false
		}
		return stm.NewTVar[*T](nil), false
	})
	return actual
}

func (s *HashMapStorage[T]) Read(tx *stm.Transaction, key Key) (T, bool) {
	v := stm.Read(tx, s.slot(key))
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}

func (s *HashMapStorage[T]) Write(tx *stm.Transaction, key Key, v T) {
	stm.Write(tx, s.slot(key), &v)
}

func (s *HashMapStorage[T]) Remove(tx *stm.Transaction, key Key) (T, bool) {
	slot := s.slot(key)
	old := stm.Read(tx, slot)
	stm.Write(tx, slot, (*T)(nil))
	if old == nil {
		var zero T
		return zero, false
	}
	return *old, true
}

func (s *HashMapStorage[T]) clear(tx *stm.Transaction, key Key) {
	stm.Write(tx, s.slot(key), (*T)(nil))
}

func (s *HashMapStorage[T]) Merge(tx *stm.Transaction, newKey, k1, k2 Key) error {
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
		return nil
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

func (s *HashMapStorage[T]) Split(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	src, ok := s.Read(tx, srcKey)
	if !ok {
		return nil
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

type erasedHashMap[T any] struct{ *HashMapStorage[T] }

func (e erasedHashMap[T]) ReadAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Read(tx, key)
	return v, ok
}

func (e erasedHashMap[T]) WriteAt(tx *stm.Transaction, key Key, v any) {
	e.Write(tx, key, v.(T))
}

func (e erasedHashMap[T]) RemoveAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Remove(tx, key)
	return v, ok
}

func (e erasedHashMap[T]) MergeAt(tx *stm.Transaction, newKey, k1, k2 Key) error {
	return e.Merge(tx, newKey, k1, k2)
}

func (e erasedHashMap[T]) SplitAt(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	return e.Split(tx, newK1, newK2, srcKey)
}
