package cmap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkolb/gocomb/stm"
)

// Link1 sets β[1](a) = b and β[0](b) = a, the topology-only half of a
// 1-sew. Requires a, b ≠ NULL, a 1-free, b 0-free (spec.md §4.5).
func Link1(tx *stm.Transaction, m *Map, a, b DartID) error {
	if a == NullDart || b == NullDart {
		return errors.Wrap(ErrLinkError, "link<1>: null dart is not a valid endpoint")
	}
	if m.BetaTx(tx, 1, a) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<1>: dart %d is not 1-free", a)
	}
	if m.BetaTx(tx, 0, b) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<1>: dart %d is not 0-free", b)
	}
	m.SetBetaTx(tx, 1, a, b)
	m.SetBetaTx(tx, 0, b, a)
	return nil
}

// Unlink1 clears β[1](a)/β[0](b) for the currently-linked image
// b = β[1](a). Fails if a is already 1-free.
func Unlink1(tx *stm.Transaction, m *Map, a DartID) error {
	b := m.BetaTx(tx, 1, a)
	if b == NullDart {
		return errors.Wrapf(ErrLinkError, "unlink<1>: dart %d is 1-free", a)
	}
	m.SetBetaTx(tx, 1, a, NullDart)
	m.SetBetaTx(tx, 0, b, NullDart)
	return nil
}

// Link2 sets the β[2] involution between a and b. Requires a, b ≠ NULL,
// both 2-free.
func Link2(tx *stm.Transaction, m *Map, a, b DartID) error {
	if a == NullDart || b == NullDart {
		return errors.Wrap(ErrLinkError, "link<2>: null dart is not a valid endpoint")
	}
	if m.BetaTx(tx, 2, a) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<2>: dart %d is not 2-free", a)
	}
	if m.BetaTx(tx, 2, b) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<2>: dart %d is not 2-free", b)
	}
	m.SetBetaTx(tx, 2, a, b)
	m.SetBetaTx(tx, 2, b, a)
	return nil
}

// Unlink2 clears the β[2] involution at d.
func Unlink2(tx *stm.Transaction, m *Map, d DartID) error {
	other := m.BetaTx(tx, 2, d)
	if other == NullDart {
		return errors.Wrapf(ErrLinkError, "unlink<2>: dart %d is 2-free", d)
	}
	m.SetBetaTx(tx, 2, d, NullDart)
	m.SetBetaTx(tx, 2, other, NullDart)
	return nil
}

// Link3 sets the β[3] involution between a and b — the single-dart-pair
// primitive used as a building block by Sew3, which additionally links
// every other corresponding dart pair along the two shared face orbits
// (see sew3.go). Requires a, b ≠ NULL, both 3-free.
func Link3(tx *stm.Transaction, m *Map, a, b DartID) error {
	if a == NullDart || b == NullDart {
		return errors.Wrap(ErrLinkError, "link<3>: null dart is not a valid endpoint")
	}
	if m.BetaTx(tx, 3, a) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<3>: dart %d is not 3-free", a)
	}
	if m.BetaTx(tx, 3, b) != NullDart {
		return errors.Wrapf(ErrLinkError, "link<3>: dart %d is not 3-free", b)
	}
	m.SetBetaTx(tx, 3, a, b)
	m.SetBetaTx(tx, 3, b, a)
	return nil
}

// Unlink3 clears the β[3] involution at d.
func Unlink3(tx *stm.Transaction, m *Map, d DartID) error {
	other := m.BetaTx(tx, 3, d)
	if other == NullDart {
		return errors.Wrapf(ErrLinkError, "unlink<3>: dart %d is 3-free", d)
	}
	m.SetBetaTx(tx, 3, d, NullDart)
	m.SetBetaTx(tx, 3, other, NullDart)
	return nil
}
