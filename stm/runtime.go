package stm

import (
	"runtime"

	"github.com/VictoriaMetrics/metrics"
)

var (
	commitsTotal   = metrics.NewCounter(`gocomb_stm_commits_total`)
	retriesTotal   = metrics.NewCounter(`gocomb_stm_retries_total`)
	conflictsTotal = metrics.NewCounter(`gocomb_stm_conflicts_total`)
)

// ErrTransactionConflict is returned by TryAtomically when the closure
// succeeded but the commit lost a race to a concurrent transaction.
// Atomically never returns this error: it retries internally instead.
var ErrTransactionConflict = errConflict{}

type errConflict struct{}

func (errConflict) Error() string { return "stm: transaction conflict, commit aborted" }

// Atomically runs f to completion against fresh transactions, retrying
// for as long as the commit loses to a conflicting concurrent writer.
// f returning a non-nil error is a final, non-retried abort: no partial
// effect of f is ever visible, since nothing f did is installed unless
// commit succeeds.
func Atomically(f func(tx *Transaction) error) error {
	for {
		tx := newTransaction()
		if err := f(tx); err != nil {
			return err
		}
		if tx.commit() {
			commitsTotal.Inc()
			tx.runCommitHooks()
			return nil
		}
		conflictsTotal.Inc()
		retriesTotal.Inc()
		runtime.Gosched()
	}
}

// AtomicallyR is the generic counterpart of Atomically for closures that
// produce a value alongside a possible error, e.g. reading back a newly
// computed cell id after a sew commits.
func AtomicallyR[T any](f func(tx *Transaction) (T, error)) (T, error) {
	for {
		tx := newTransaction()
		result, err := f(tx)
		if err != nil {
			var zero T
			return zero, err
		}
		if tx.commit() {
			commitsTotal.Inc()
			tx.runCommitHooks()
			return result, nil
		}
		conflictsTotal.Inc()
		retriesTotal.Inc()
		runtime.Gosched()
	}
}

// TryAtomically runs f exactly once. If f returns an error that error is
// returned directly. If f succeeds but the commit loses a race,
// ErrTransactionConflict is returned so the caller can decide whether to
// retry, compose with an outer transaction, or surface the conflict.
func TryAtomically(f func(tx *Transaction) error) error {
	tx := newTransaction()
	if err := f(tx); err != nil {
		return err
	}
	if !tx.commit() {
		conflictsTotal.Inc()
		return ErrTransactionConflict
	}
	commitsTotal.Inc()
	tx.runCommitHooks()
	return nil
}
