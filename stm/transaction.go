package stm

import (
	"sort"

	"github.com/google/uuid"
)

// readEntry pins the version of a TVar observed by a Read, so commit can
// detect whether a concurrent transaction changed it since.
type readEntry struct {
	tvar anyTVar
	ver  uint64
}

// writeEntry holds a pending value to install on commit.
type writeEntry struct {
	tvar anyTVar
	val  any
}

// Transaction is the read/write log built up while a closure passed to
// Atomically or TryAtomically runs. A Transaction is only meaningful for
// the duration of a single attempt: on retry a fresh Transaction is
// created and the closure runs again from scratch.
type Transaction struct {
	id       uuid.UUID
	reads    map[uint64]readEntry
	writes   map[uint64]writeEntry
	onCommit []func()
}

func newTransaction() *Transaction {
	return &Transaction{
		id:     uuid.New(),
		reads:  make(map[uint64]readEntry),
		writes: make(map[uint64]writeEntry),
	}
}

// ID returns the diagnostic identifier of this transaction attempt. Two
// retries of the same Atomically call get distinct IDs.
func (tx *Transaction) ID() uuid.UUID { return tx.id }

// OnCommit registers f to run after this attempt successfully commits.
// f never runs for an attempt that aborts or loses a conflict; on retry,
// the closure passed to Atomically runs again and must re-register any
// hook it needs against the new Transaction. Used by write-through
// storages to schedule durable persistence only for writes that actually
// became visible.
func (tx *Transaction) OnCommit(f func()) {
	tx.onCommit = append(tx.onCommit, f)
}

func (tx *Transaction) runCommitHooks() {
	for _, f := range tx.onCommit {
		f()
	}
}

// commit attempts to install the transaction's writes. It returns true
// on success. On failure (a read-log entry's version changed since it
// was observed) no state is mutated and the caller should retry with a
// fresh Transaction.
//
// Locking order: every TVar touched by either log is locked once, in
// ascending TVar-id order, so that two transactions racing to commit
// always acquire their shared locks in the same order and cannot
// deadlock against each other.
func (tx *Transaction) commit() bool {
	touched := make(map[uint64]anyTVar, len(tx.reads)+len(tx.writes))
	for id, r := range tx.reads {
		touched[id] = r.tvar
	}
	for id, w := range tx.writes {
		touched[id] = w.tvar
	}

	ids := make([]uint64, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		touched[id].lock()
	}
	defer func() {
		for i := len(ids) - 1; i >= 0; i-- {
			touched[ids[i]].unlock()
		}
	}()

	for _, r := range tx.reads {
		if r.tvar.version() != r.ver {
			return false
		}
	}

	for _, w := range tx.writes {
		w.tvar.installFrom(w.val)
	}
	return true
}
