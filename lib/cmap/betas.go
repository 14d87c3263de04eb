package cmap

import (
	"sync"

	"github.com/vkolb/gocomb/stm"
)

// betaTable is a flat indexable (dimension, dart) -> TVar[DartID] grid,
// one transactional variable per β-relation slot. It grows with the
// dart store: row i has one slot per allocated dart (plus the null
// dart at index 0).
//
// Grounded on the original's BetaFunctions<const N: usize>(Vec<[TVar<DartIdType>; N]>):
// here the dimension axis is a Go slice instead of a const generic,
// since the map's dimension D is a runtime value, not a compile-time
// one.
type betaTable struct {
	dim    uint8
	rows   [][]*stm.TVar[DartID]
	growMu sync.Mutex // guards slice growth only, distinct from the STM
}

func newBetaTable(dim uint8) *betaTable {
	b := &betaTable{dim: dim, rows: make([][]*stm.TVar[DartID], dim+1)}
	for i := range b.rows {
		b.rows[i] = []*stm.TVar[DartID]{stm.NewTVar(NullDart)}
	}
	return b
}

// grow extends every row so that dart ids up to n are addressable.
func (b *betaTable) grow(n DartID) {
	b.growMu.Lock()
	defer b.growMu.Unlock()
	for i := range b.rows {
		for DartID(len(b.rows[i])) <= n {
			b.rows[i] = append(b.rows[i], stm.NewTVar(NullDart))
		}
	}
}

func (b *betaTable) slot(i uint8, d DartID) *stm.TVar[DartID] {
	return b.rows[i][d]
}

// beta reads β[i](d) transactionally.
func (b *betaTable) beta(tx *stm.Transaction, i uint8, d DartID) DartID {
	return stm.Read(tx, b.slot(i, d))
}

// setBeta writes β[i](d) = image transactionally.
func (b *betaTable) setBeta(tx *stm.Transaction, i uint8, d DartID, image DartID) {
	stm.Write(tx, b.slot(i, d), image)
}

// betaPeek reads β[i](d) non-transactionally (best-effort, may be torn).
func (b *betaTable) betaPeek(i uint8, d DartID) DartID {
	return stm.Peek(b.slot(i, d))
}
