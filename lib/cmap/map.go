package cmap

import (
	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/stm"
)

// Map owns the dart store, the β table, and the attribute manager of a
// single N-dimensional combinatorial map. It is the sole process-wide
// piece of shared state a caller needs: per spec.md §9, the map
// instance is the only global, there are no other singletons.
type Map struct {
	dim   uint8
	darts *dartStore
	betas *betaTable
	Attrs *attribute.Manager
}

// NewMap creates an empty map of dimension dim (so β ranges over
// 0..dim) with a fresh, empty attribute manager.
func NewMap(dim uint8) *Map {
	return &Map{
		dim:   dim,
		darts: newDartStore(),
		betas: newBetaTable(dim),
		Attrs: attribute.NewManager(),
	}
}

// Dim returns the map's dimension.
func (m *Map) Dim() uint8 { return m.dim }

// NDarts returns the number of darts ever allocated, including reused
// ids and the null dart.
func (m *Map) NDarts() int { return m.darts.len() }

// AddDart allocates a new dart, preferring the smallest free id (I5,
// P7). Allocation is performed under the dart store's coarse lock, not
// the STM, per the resource policy of spec.md §5.
func (m *Map) AddDart() DartID {
	id := m.darts.alloc()
	m.betas.grow(id)
	m.Attrs.Extend(int(id))
	return id
}

// AddDarts allocates n darts and returns their ids in allocation order.
func (m *Map) AddDarts(n int) []DartID {
	ids := make([]DartID, n)
	for i := range ids {
		ids[i] = m.AddDart()
	}
	return ids
}

// RemoveDart releases d back to the unused set. It fails with
// ErrDartNotFree if d currently holds a β relation in any dimension
// (I4). The freedom check and the clearing of any attribute value keyed
// at d run in one transaction; d is only added to the unused set after
// that transaction commits.
func (m *Map) RemoveDart(d DartID) error {
	if d == NullDart {
		return errDartNotFree(d)
	}

	err := stm.Atomically(func(tx *stm.Transaction) error {
		for i := uint8(0); i <= m.dim; i++ {
			if m.betas.beta(tx, i, d) != NullDart {
				return errDartNotFree(d)
			}
		}
		// d is free in every dimension, so its own i-cell id, for every
		// i, is itself: clear any attribute value registered at d.
		m.removeAllAttributesAt(tx, attribute.Key(d))
		return nil
	})
	if err != nil {
		return err
	}

	m.darts.free(d)
	return nil
}

func (m *Map) removeAllAttributesAt(tx *stm.Transaction, key attribute.Key) {
	m.Attrs.RemoveAllAt(tx, key)
}

// UnusedDarts returns every currently-free dart id, sorted ascending.
// Best-effort, like every other Peek-flavored query: a concurrent
// AddDart/RemoveDart may race it.
func (m *Map) UnusedDarts() []DartID { return m.darts.unusedIDs() }

// Beta reads β[i](d) without opening a transaction (best-effort).
func (m *Map) Beta(i uint8, d DartID) DartID { return m.betas.betaPeek(i, d) }

// BetaTx reads β[i](d) transactionally.
func (m *Map) BetaTx(tx *stm.Transaction, i uint8, d DartID) DartID {
	return m.betas.beta(tx, i, d)
}

// SetBetaTx writes β[i](d) = image. Reserved for link/unlink/sew/unsew.
func (m *Map) SetBetaTx(tx *stm.Transaction, i uint8, d, image DartID) {
	m.betas.setBeta(tx, i, d, image)
}

// CellID computes the i-cell id at d non-transactionally.
func (m *Map) CellID(i uint8, d DartID) CellID {
	return CellIDSnapshot(m.betas, d, i, m.dim)
}

// CellIDTx computes the i-cell id at d transactionally.
func (m *Map) CellIDTx(tx *stm.Transaction, i uint8, d DartID) CellID {
	return CellIDTx(tx, m.betas, d, i, m.dim)
}

// Orbit returns the i-cell orbit at d non-transactionally.
func (m *Map) Orbit(i uint8, d DartID) []DartID {
	return OrbitSnapshot(m.betas, d, Generators(i, m.dim))
}

// OrbitTx returns the i-cell orbit at d transactionally.
func (m *Map) OrbitTx(tx *stm.Transaction, i uint8, d DartID) []DartID {
	return OrbitTx(tx, m.betas, d, Generators(i, m.dim))
}

// ReadAttribute reads the value of type T at key (a generic free
// function, since Go has no generic methods: every typed accessor is a
// package-level function taking *Map explicitly).
func ReadAttribute[T any](m *Map, tx *stm.Transaction, key attribute.Key) (T, bool) {
	return attribute.Of[T](m.Attrs).Read(tx, key)
}

// WriteAttribute writes the value of type T at key.
func WriteAttribute[T any](m *Map, tx *stm.Transaction, key attribute.Key, v T) {
	attribute.Of[T](m.Attrs).Write(tx, key, v)
}

// RemoveAttribute clears the value of type T at key.
func RemoveAttribute[T any](m *Map, tx *stm.Transaction, key attribute.Key) (T, bool) {
	return attribute.Of[T](m.Attrs).Remove(tx, key)
}
