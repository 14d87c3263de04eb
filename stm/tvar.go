package stm

import (
	"sync"
	"sync/atomic"
)

var tvarSeq atomic.Uint64

// anyTVar is the type-erased view of a TVar used by Transaction bookkeeping.
// Transaction logs cannot be generic over T, since a single transaction
// typically touches TVars of many different types, so every TVar exposes
// this narrow surface for locking, versioning and untyped snapshotting.
type anyTVar interface {
	id() uint64
	lock()
	unlock()
	version() uint64
	snapshot() any
	installFrom(v any) (newVersion uint64)
}

// TVar is a transactional variable holding a value of type T.
//
// A TVar must only be mutated through Read/Write inside a transaction
// driven by Atomically or TryAtomically. Direct field access is not
// possible: the zero value is not usable, use NewTVar.
type TVar[T any] struct {
	tvarID uint64
	mu     sync.Mutex
	ver    atomic.Uint64
	val    atomic.Value // holds T wrapped in box[T]
}

// box avoids the nil-interface restriction of atomic.Value for types
// whose zero value is an interface or pointer.
type box[T any] struct{ v T }

// NewTVar creates a new transactional variable holding v.
func NewTVar[T any](v T) *TVar[T] {
	t := &TVar[T]{tvarID: tvarSeq.Add(1)}
	t.val.Store(box[T]{v})
	return t
}

func (t *TVar[T]) id() uint64 { return t.tvarID }

func (t *TVar[T]) lock()   { t.mu.Lock() }
func (t *TVar[T]) unlock() { t.mu.Unlock() }

func (t *TVar[T]) version() uint64 { return t.ver.Load() }

func (t *TVar[T]) snapshot() any {
	return t.val.Load().(box[T]).v
}

func (t *TVar[T]) installFrom(v any) uint64 {
	t.val.Store(box[T]{v.(T)})
	return t.ver.Add(1)
}

// Read records tv in the transaction's read log (if not already present)
// and returns the value as observed by this transaction: a prior Write
// to tv within the same transaction is visible immediately ("read your
// own writes"); otherwise the value is the current committed snapshot.
func Read[T any](tx *Transaction, tv *TVar[T]) T {
	if w, ok := tx.writes[tv.tvarID]; ok {
		return w.val.(T)
	}
	if _, ok := tx.reads[tv.tvarID]; !ok {
		tx.reads[tv.tvarID] = readEntry{tvar: tv, ver: tv.version()}
	}
	return tv.snapshot().(T)
}

// Write records a pending write of val to tv in the transaction's write
// log. The write is only made visible to other transactions on commit.
func Write[T any](tx *Transaction, tv *TVar[T], val T) {
	tx.writes[tv.tvarID] = writeEntry{tvar: tv, val: val}
}

// Peek returns tv's current committed value without opening a
// transaction. The read is not logged and never participates in
// conflict detection: concurrent writers may tear it. Callers must only
// use Peek for best-effort queries, never as an input to a decision
// that mutates state (see the orbit walker's snapshot mode).
func Peek[T any](tv *TVar[T]) T {
	return tv.snapshot().(T)
}
