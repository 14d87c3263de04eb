package cmap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/stm"
)

// policyCellDim maps a BindPolicy to the orbit dimension i used to
// compute its cell id (Vertex is the 0-cell, Edge the 1-cell, and so
// on), per the Orbits table in spec.md §3.
func policyCellDim(p attribute.BindPolicy) uint8 {
	switch p {
	case attribute.Vertex:
		return 0
	case attribute.Edge:
		return 1
	case attribute.Face:
		return 2
	default:
		return 3 // Volume, and anything else that should never be auto-dispatched
	}
}

type linkFunc func(tx *stm.Transaction, m *Map, a, b DartID) error
type unlinkFunc func(tx *stm.Transaction, m *Map, d DartID) error

// SewTx performs an i-sew of darts a and b: it links them at dimension
// dim and merges every attribute whose BindPolicy is affected by dim
// (spec.md §4.5's affect table), in one transaction. Callers must wrap
// SewTx in stm.Atomically/stm.TryAtomically (or ForceSew/TrySew below).
func SewTx(tx *stm.Transaction, m *Map, dim uint8, a, b DartID) error {
	switch dim {
	case 1:
		return sewAtDim(tx, m, 1, a, b, Link1)
	case 2:
		return sewAtDim(tx, m, 2, a, b, Link2)
	case 3:
		return Sew3Tx(tx, m, a, b)
	default:
		return errors.Wrapf(ErrLinkError, "sew<%d>: unsupported dimension", dim)
	}
}

// UnsewTx performs an i-unsew of dart d against its current β[dim]
// image, splitting every attribute affected by dim.
func UnsewTx(tx *stm.Transaction, m *Map, dim uint8, d DartID) error {
	switch dim {
	case 1:
		return unsewAtDim(tx, m, 1, d, Unlink1)
	case 2:
		return unsewAtDim(tx, m, 2, d, Unlink2)
	case 3:
		return Unsew3Tx(tx, m, d)
	default:
		return errors.Wrapf(ErrLinkError, "unsew<%d>: unsupported dimension", dim)
	}
}

type pendingCell struct {
	policy   attribute.BindPolicy
	i        uint8
	keyA, keyB attribute.Key
}

func sewAtDim(tx *stm.Transaction, m *Map, dim uint8, a, b DartID, link linkFunc) error {
	if a == b {
		return nil // self-sew: NoOp
	}
	if m.BetaTx(tx, dim, a) == b {
		return nil // already sewn along this exact pair: NoOp
	}

	policies := attribute.AffectedPolicies(dim)
	pendings := make([]pendingCell, len(policies))
	for idx, p := range policies {
		i := policyCellDim(p)
		pendings[idx] = pendingCell{
			policy: p,
			i:      i,
			keyA:   attribute.Key(CellIDTx(tx, m.betas, a, i, m.dim)),
			keyB:   attribute.Key(CellIDTx(tx, m.betas, b, i, m.dim)),
		}
	}

	if err := link(tx, m, a, b); err != nil {
		return err
	}

	for _, pd := range pendings {
		newKey := attribute.Key(CellIDTx(tx, m.betas, a, pd.i, m.dim))
		if err := m.Attrs.MergeByPolicy(pd.policy, tx, newKey, pd.keyA, pd.keyB); err != nil {
			return err
		}
	}
	return nil
}

func unsewAtDim(tx *stm.Transaction, m *Map, dim uint8, d DartID, unlink unlinkFunc) error {
	partner := m.BetaTx(tx, dim, d)
	if partner == NullDart {
		return errors.Wrapf(ErrLinkError, "unsew<%d>: dart %d is %d-free", dim, d, dim)
	}

	policies := attribute.AffectedPolicies(dim)
	oldKeys := make([]attribute.Key, len(policies))
	dims := make([]uint8, len(policies))
	for idx, p := range policies {
		i := policyCellDim(p)
		dims[idx] = i
		oldKeys[idx] = attribute.Key(CellIDTx(tx, m.betas, d, i, m.dim))
	}

	if err := unlink(tx, m, d); err != nil {
		return err
	}

	for idx, p := range policies {
		newK1 := attribute.Key(CellIDTx(tx, m.betas, d, dims[idx], m.dim))
		newK2 := attribute.Key(CellIDTx(tx, m.betas, partner, dims[idx], m.dim))
		if err := m.Attrs.SplitByPolicy(p, tx, newK1, newK2, oldKeys[idx]); err != nil {
			return err
		}
	}
	return nil
}

// ForceSew wraps SewTx in a retry-forever Atomically driver, suitable
// for single-threaded callers or callers that are not themselves inside
// an outer transaction.
func ForceSew(m *Map, dim uint8, a, b DartID) error {
	return stm.Atomically(func(tx *stm.Transaction) error {
		return SewTx(tx, m, dim, a, b)
	})
}

// ForceUnsew is the force_ variant of UnsewTx.
func ForceUnsew(m *Map, dim uint8, d DartID) error {
	return stm.Atomically(func(tx *stm.Transaction) error {
		return UnsewTx(tx, m, dim, d)
	})
}

// TrySew wraps SewTx in a one-shot TryAtomically driver: the caller
// composes with outer transactions or retries itself.
func TrySew(m *Map, dim uint8, a, b DartID) error {
	return stm.TryAtomically(func(tx *stm.Transaction) error {
		return SewTx(tx, m, dim, a, b)
	})
}

// TryUnsew is the try_ variant of UnsewTx.
func TryUnsew(m *Map, dim uint8, d DartID) error {
	return stm.TryAtomically(func(tx *stm.Transaction) error {
		return UnsewTx(tx, m, dim, d)
	})
}
