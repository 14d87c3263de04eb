// Package stm implements a small software transactional memory runtime:
// transactional variables ("TVars"), a per-goroutine read/write log, and
// an optimistic commit protocol with automatic retry.
//
// The design mirrors the classical STM shape (see Harris & Peyton Jones,
// "Composable Memory Transactions"): readers and writers of a TVar never
// block each other directly, every transaction instead builds a private
// log of the TVars it touched, and that log is validated and installed
// atomically at commit time. A conflicting transaction is never allowed
// to commit; it is silently discarded and its closure runs again.
//
// The package contains:
//   - TVar: a versioned transactional cell holding a value of any type
//   - Transaction: the read/write log built while a closure runs
//   - Atomically / TryAtomically: drivers that run a closure to a commit
//
// Thread-safety: every exported function in this package is safe for
// concurrent use from any number of goroutines.
package stm
