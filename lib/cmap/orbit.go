package cmap

import "github.com/vkolb/gocomb/stm"

// Generator is a composition of β relations applied in standard math
// notation, right to left: applying {1, 2} to d means β[1](β[2](d)),
// matching spec.md's β[j]∘β[k] convention (k applied first). An
// OrbitPolicy is a small set of such compositions whose closure from a
// seed dart defines an orbit.
type Generator []uint8

// Generators returns the generator set for the i-cell orbit at a map of
// dimension dim, derived from (and a strict superset of) spec.md §3's
// simplified sentence:
//
//	0-cell(d) = orbit under {β[j]∘β[k] : 1≤j<k≤N} ∪ {β[k]∘β[0] : 2≤k≤N}
//	i-cell(d), i≥1 = orbit under {β[k] : 1≤k≤N, k≠i} ∪ ({β[0]} if i≠1)
//
// The extra β[0]-rooted compositions for the 0-cell and the extra β[0]
// generator for i-cells other than the edge are not present in
// spec.md's one-line definition, which only states the interior-dart
// case; they are required so that the orbit is still correct when d
// sits on a boundary where β[1] (and therefore its inverse β[0]) is
// undefined for some neighbor. They are derived by generalizing the
// concrete 2D/3D OrbitPolicy generator tables of the reference
// implementation (which special-case exactly these boundary
// compositions) to an arbitrary map dimension; see DESIGN.md.
func Generators(i, dim uint8) []Generator {
	if i == 0 {
		var gens []Generator
		for j := uint8(1); j <= dim; j++ {
			for k := j + 1; k <= dim; k++ {
				gens = append(gens, Generator{j, k})
			}
		}
		for k := uint8(2); k <= dim; k++ {
			// β[k]∘β[0]: apply β[0] first, so 0 is last in the slice
			// under evalGenerator's right-to-left fold.
			gens = append(gens, Generator{k, 0})
		}
		return gens
	}

	var gens []Generator
	for k := uint8(1); k <= dim; k++ {
		if k != i {
			gens = append(gens, Generator{k})
		}
	}
	if i != 1 {
		gens = append(gens, Generator{0})
	}
	return gens
}

// walk runs the deterministic BFS described in spec.md §4.4: seed
// first, then neighbors expanded in generator order, each dart emitted
// the first time it is reached. apply evaluates one generator from a
// current dart, reading either transactionally or via a snapshot.
func walk(seed DartID, gens []Generator, apply func(g Generator, from DartID) DartID) []DartID {
	visited := map[DartID]bool{seed: true}
	order := []DartID{seed}
	queue := []DartID{seed}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, g := range gens {
			next := apply(g, cur)
			if next == NullDart || visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, next)
		}
	}
	return order
}

func evalGenerator(tx *stm.Transaction, b *betaTable, g Generator, from DartID) DartID {
	cur := from
	for k := len(g) - 1; k >= 0; k-- {
		cur = b.beta(tx, g[k], cur)
	}
	return cur
}

func evalGeneratorPeek(b *betaTable, g Generator, from DartID) DartID {
	cur := from
	for k := len(g) - 1; k >= 0; k-- {
		cur = b.betaPeek(g[k], cur)
	}
	return cur
}

// OrbitTx walks the orbit transactionally: every β read is logged in
// tx, so the result is consistent with whatever the enclosing
// transaction eventually commits or retries against.
func OrbitTx(tx *stm.Transaction, b *betaTable, seed DartID, gens []Generator) []DartID {
	return walk(seed, gens, func(g Generator, from DartID) DartID {
		return evalGenerator(tx, b, g, from)
	})
}

// OrbitSnapshot walks the orbit without a transaction: fast but
// possibly torn by concurrent writers. Only for best-effort queries,
// per spec.md §4.4/§5 — never as the input to a decision that mutates
// state.
func OrbitSnapshot(b *betaTable, seed DartID, gens []Generator) []DartID {
	return walk(seed, gens, func(g Generator, from DartID) DartID {
		return evalGeneratorPeek(b, g, from)
	})
}

func minDart(darts []DartID) DartID {
	m := darts[0]
	for _, d := range darts[1:] {
		if d < m {
			m = d
		}
	}
	return m
}

// CellIDTx computes the i-cell id at d — min(Orb_i(d)) — transactionally.
func CellIDTx(tx *stm.Transaction, b *betaTable, d DartID, i, dim uint8) CellID {
	return minDart(OrbitTx(tx, b, d, Generators(i, dim)))
}

// CellIDSnapshot computes the i-cell id at d non-transactionally.
func CellIDSnapshot(b *betaTable, d DartID, i, dim uint8) CellID {
	return minDart(OrbitSnapshot(b, d, Generators(i, dim)))
}
