package attribute

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vkolb/gocomb/lib/attribute/internal"
	"github.com/vkolb/gocomb/stm"
)

// Codec converts an attribute value to and from bytes for disk storage.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// PersistentStorage is a disk-backed attribute column for out-of-core
// meshes: the transactional value lives in an in-memory TVar (hydrated
// lazily from pebble on first touch, same as the STM's other storages),
// while durable persistence happens off the hot path through a
// write-back queue drained by a background goroutine.
//
// Grounded on the teacher's GC design in lib/db/engines/maple/maple.go,
// which defers expiry/delete work to a background goroutine fed by a
// lock-free queue rather than doing it inline with the write call; the
// same shape is reused here for "make durable" instead of "garbage
// collect".
type PersistentStorage[T any] struct {
	policy BindPolicy
	laws   UpdateLaws[T]
	codec  Codec[T]
	db     *pebble.DB
	hot    *xsync.MapOf[Key, *stm.TVar[*T]]
	queue  *internal.WriteBackQueue
}

// NewPersistentStorage opens a column over db, codec controls how values
// serialize to pebble's []byte value type.
func NewPersistentStorage[T any](policy BindPolicy, laws UpdateLaws[T], db *pebble.DB, codec Codec[T]) *PersistentStorage[T] {
	s := &PersistentStorage[T]{
		policy: policy,
		laws:   laws,
		codec:  codec,
		db:     db,
		hot:    xsync.NewMapOf[Key, *stm.TVar[*T]](),
		queue:  internal.NewWriteBackQueue(),
	}
	go s.flush()
	return s
}

func (s *PersistentStorage[T]) flush() {
	for ev := range s.queue.Events() {
		key := keyBytes(Key(ev.Key))
		switch ev.Kind {
		case internal.EventPut:
			_ = s.db.Set(key, ev.Value, pebble.NoSync)
		case internal.EventDelete:
			_ = s.db.Delete(key, pebble.NoSync)
		}
	}
}

// Close stops the write-back queue from accepting new events and closes
// the underlying pebble DB. It does not wait for queued events to be
// flushed first: waiting for the queue to drain before calling Close is
// the caller's responsibility.
func (s *PersistentStorage[T]) Close() error {
	s.queue.Close()
	return s.db.Close()
}

func keyBytes(k Key) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(k))
	return b[:]
}

func (s *PersistentStorage[T]) Kind() BindPolicy { return s.policy }

func (s *PersistentStorage[T]) Capabilities() Capabilities {
	return CapRead | CapWrite | CapMergeSplit | CapPersistent
}

func (s *PersistentStorage[T]) Extend(int) {}

func (s *PersistentStorage[T]) NAttributes() int {
	n := 0
	s.hot.Range(func(_ Key, slot *stm.TVar[*T]) bool {
		if stm.Peek(slot) != nil {
			n++
		}
		return true
	})
	return n
}

func (s *PersistentStorage[T]) slot(key Key) *stm.TVar[*T] {
	actual, _ := s.hot.Compute(key, func(old *stm.TVar[*T], loaded bool) (*stm.TVar[*T], bool) {
		if loaded {
			return old, false
		}
		var init *T
		if raw, closer, err := s.db.Get(keyBytes(key)); err == nil {
			if v, decErr := s.codec.Decode(raw); decErr == nil {
				init = &v
			}
			_ = closer.Close()
		}
		return stm.NewTVar(init), false
	})
	return actual
}

func (s *PersistentStorage[T]) Read(tx *stm.Transaction, key Key) (T, bool) {
	v := stm.Read(tx, s.slot(key))
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}

func (s *PersistentStorage[T]) persistOnCommit(tx *stm.Transaction, key Key, v *T) {
	tx.OnCommit(func() {
		if v == nil {
			s.queue.Enqueue(&internal.WriteEvent{Kind: internal.EventDelete, Key: uint32(key)})
			return
		}
		raw, err := s.codec.Encode(*v)
		if err != nil {
			return
		}
		s.queue.Enqueue(&internal.WriteEvent{Kind: internal.EventPut, Key: uint32(key), Value: raw})
	})
}

func (s *PersistentStorage[T]) Write(tx *stm.Transaction, key Key, v T) {
	stm.Write(tx, s.slot(key), &v)
	s.persistOnCommit(tx, key, &v)
}

func (s *PersistentStorage[T]) Remove(tx *stm.Transaction, key Key) (T, bool) {
	slot := s.slot(key)
	old := stm.Read(tx, slot)
	stm.Write(tx, slot, (*T)(nil))
	s.persistOnCommit(tx, key, nil)
	if old == nil {
		var zero T
		return zero, false
	}
	return *old, true
}

func (s *PersistentStorage[T]) clear(tx *stm.Transaction, key Key) {
	stm.Write(tx, s.slot(key), (*T)(nil))
	s.persistOnCommit(tx, key, nil)
}

func (s *PersistentStorage[T]) Merge(tx *stm.Transaction, newKey, k1, k2 Key) error {
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

func (s *PersistentStorage[T]) Split(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
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

type erasedPersistent[T any] struct{ *PersistentStorage[T] }

func (e erasedPersistent[T]) ReadAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Read(tx, key)
	return v, ok
}

func (e erasedPersistent[T]) WriteAt(tx *stm.Transaction, key Key, v any) {
	e.Write(tx, key, v.(T))
}

func (e erasedPersistent[T]) RemoveAt(tx *stm.Transaction, key Key) (any, bool) {
	v, ok := e.Remove(tx, key)
	return v, ok
}

func (e erasedPersistent[T]) MergeAt(tx *stm.Transaction, newKey, k1, k2 Key) error {
	return e.Merge(tx, newKey, k1, k2)
}

func (e erasedPersistent[T]) SplitAt(tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	return e.Split(tx, newK1, newK2, srcKey)
}
