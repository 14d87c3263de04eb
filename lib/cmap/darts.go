package cmap

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkolb/gocomb/lib/cmap/internal"
)

// dartStore is the monotonically growing indexed collection of darts.
// Dart 0 is the permanent NULL dart and is never handed out or freed.
//
// Allocation/removal bookkeeping (which ids exist, which are free) is
// guarded by a coarse mutex distinct from the STM, per the resource
// policy's option (a): growing the backing storage is treated as a
// plain allocation step, not a transactional one, while the per-dart β
// and attribute state remain fully transactional.
type dartStore struct {
	mu     sync.Mutex
	count  uint32 // number of ids ever allocated, including the null dart
	unused *internal.IDHeap
}

func newDartStore() *dartStore {
	return &dartStore{count: 1, unused: internal.NewIDHeap()} // slot 0 reserved for NULL
}

// alloc hands out a dart id, preferring the smallest free id so cell ids
// stay stable across churn (I5 depends on "minimum dart id in the
// orbit"; reusing small ids keeps that minimum from drifting upward).
func (d *dartStore) alloc() DartID {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.unused.PopMin(); ok {
		return DartID(id)
	}
	id := d.count
	d.count++
	return DartID(id)
}

// free returns id to the unused set. Callers must have already verified
// id is free in every dimension (I4) before calling this.
func (d *dartStore) free(id DartID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unused.Add(uint32(id))
}

// isKnownUnused reports whether id is currently in the free set,
// without taking part in any transaction: used by P5 tests and Stats.
func (d *dartStore) isKnownUnused(id DartID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unused.Contains(uint32(id))
}

func (d *dartStore) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.count)
}

func (d *dartStore) unusedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unused.Len()
}

// unusedIDs returns every currently-free dart id, for serialization's
// [UNUSED] section. It takes a snapshot under the coarse lock and does
// not drain the heap it copies from.
func (d *dartStore) unusedIDs() []DartID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DartID, 0, d.unused.Len())
	for {
		id, ok := d.unused.PopMin()
		if !ok {
			break
		}
		out = append(out, DartID(id))
	}
	for _, id := range out {
		d.unused.Add(uint32(id))
	}
	return out
}

// errDartNotFree wraps ErrDartNotFree with the offending dart.
func errDartNotFree(d DartID) error {
	return errors.Wrapf(ErrDartNotFree, "dart %d", d)
}
