package cmap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

// facePairGenerators are the two single-step generator sets a 3-sew
// walks its two shared-face orbits with: {β1, β0} from the a-side seed,
// {β0, β1} from the b-side seed. Walking the two sides with the
// generators in opposite declared order, rather than the same order
// twice, is what makes the two resulting orbits line up dart-for-dart
// when zipped — the b-side face is glued on facing the opposite way
// around its boundary. Grounded on
// cmap/dim3/sews/three.rs's OrbitPolicy::Custom(&[1, 0]) /
// OrbitPolicy::Custom(&[0, 1]) pair.
var (
	facePairGeneratorsA = []Generator{{1}, {0}}
	facePairGeneratorsB = []Generator{{0}, {1}}
)

// Sew3Tx performs a 3-sew of darts a and b: it β3-links every
// corresponding dart pair along the two faces incident to a and b (not
// just a and b themselves), then merges the Vertex, Edge and Face
// attributes the two faces share once glued.
//
// The source checks geometric alignment only on the seed pair (a, b),
// not on every linked pair along the face — its own comment on the
// check reads "we only check orientation of the arg darts, ideally we
// want to check every sewn pair". Sew3Tx carries over that same
// documented limitation rather than silently fixing it, since doing so
// would change observable behavior relative to the system this was
// grounded on. The check itself only runs when Vertex geometry
// (lib/geom.Vertex) happens to be registered; darts with no vertex
// attribute at all skip it entirely, same as the source's read-then-
// Option-match shape.
func Sew3Tx(tx *stm.Transaction, m *Map, a, b DartID) error {
	if a == NullDart || b == NullDart {
		return errors.Wrap(ErrLinkError, "sew<3>: null dart is not a valid endpoint")
	}
	if m.BetaTx(tx, 3, a) == b {
		return nil // already sewn along this exact pair: NoOp
	}

	if err := checkSew3Alignment(tx, m, a, b); err != nil {
		return err
	}

	sideA := OrbitTx(tx, m.betas, a, facePairGeneratorsA)
	sideB := OrbitTx(tx, m.betas, b, facePairGeneratorsB)
	if len(sideA) != len(sideB) {
		return errors.Wrapf(ErrLinkError, "sew<3>: mismatched face sizes (%d vs %d)", len(sideA), len(sideB))
	}

	faceKeyA := attribute.Key(minDart(sideA))
	faceKeyB := attribute.Key(minDart(sideB))

	type vePair struct{ ka, kb attribute.Key }
	vertexPairs := make([]vePair, 0, len(sideA))
	edgePairs := make([]vePair, 0, len(sideA))
	for k := range sideA {
		l, r := sideA[k], sideB[k]
		vertexPairs = append(vertexPairs, vePair{
			ka: attribute.Key(CellIDTx(tx, m.betas, l, 0, m.dim)),
			kb: attribute.Key(CellIDTx(tx, m.betas, r, 0, m.dim)),
		})
		edgePairs = append(edgePairs, vePair{
			ka: attribute.Key(CellIDTx(tx, m.betas, l, 1, m.dim)),
			kb: attribute.Key(CellIDTx(tx, m.betas, r, 1, m.dim)),
		})
	}

	for k := range sideA {
		if err := Link3(tx, m, sideA[k], sideB[k]); err != nil {
			return err
		}
	}

	if faceKeyA != faceKeyB {
		newFace := faceKeyA
		if faceKeyB < newFace {
			newFace = faceKeyB
		}
		if err := m.Attrs.MergeByPolicy(attribute.Face, tx, newFace, faceKeyA, faceKeyB); err != nil {
			return err
		}
	}

	mergeDeduped := func(policy attribute.BindPolicy, pairs []vePair) error {
		seen := make(map[attribute.Key]bool, len(pairs))
		for _, p := range pairs {
			if p.ka == p.kb || seen[p.ka] || seen[p.kb] {
				continue
			}
			seen[p.ka], seen[p.kb] = true, true
			newKey := p.ka
			if p.kb < newKey {
				newKey = p.kb
			}
			if err := m.Attrs.MergeByPolicy(policy, tx, newKey, p.ka, p.kb); err != nil {
				return err
			}
		}
		return nil
	}
	if err := mergeDeduped(attribute.Edge, edgePairs); err != nil {
		return err
	}
	if err := mergeDeduped(attribute.Vertex, vertexPairs); err != nil {
		return err
	}
	return nil
}

// checkSew3Alignment rejects a 3-sew whose two faces would fold onto
// each other rather than glue back to back, mirroring the source's dot
// product test: the edge vector leaving a and the edge vector leaving
// b, read along the same orbit direction, must point opposite ways.
func checkSew3Alignment(tx *stm.Transaction, m *Map, a, b DartID) error {
	if !attribute.IsRegistered[geom.Vertex](m.Attrs) {
		return nil
	}

	va, okA := ReadAttribute[geom.Vertex](m, tx, attribute.Key(CellIDTx(tx, m.betas, a, 0, m.dim)))
	vb, okB := ReadAttribute[geom.Vertex](m, tx, attribute.Key(CellIDTx(tx, m.betas, b, 0, m.dim)))
	if !okA || !okB {
		return nil
	}

	nextA := m.BetaTx(tx, 1, a)
	if nextA == NullDart {
		nextA = m.BetaTx(tx, 2, a)
	}
	nextB := m.BetaTx(tx, 1, b)
	if nextB == NullDart {
		nextB = m.BetaTx(tx, 2, b)
	}
	if nextA == NullDart || nextB == NullDart {
		return nil
	}

	vna, okNA := ReadAttribute[geom.Vertex](m, tx, attribute.Key(CellIDTx(tx, m.betas, nextA, 0, m.dim)))
	vnb, okNB := ReadAttribute[geom.Vertex](m, tx, attribute.Key(CellIDTx(tx, m.betas, nextB, 0, m.dim)))
	if !okNA || !okNB {
		return nil
	}

	lhs := vna.Sub(va)
	rhs := vnb.Sub(vb)
	if lhs.Dot(rhs) >= 0 {
		return errors.Wrapf(ErrLinkError, "sew<3>: darts %d and %d have incompatible orientation", a, b)
	}
	return nil
}

// Unsew3Tx performs a 3-unsew of d, splitting the same Vertex, Edge and
// Face attributes Sew3Tx would have merged, before dropping every
// β3-link along the two faces.
func Unsew3Tx(tx *stm.Transaction, m *Map, d DartID) error {
	partner := m.BetaTx(tx, 3, d)
	if partner == NullDart {
		return errors.Wrapf(ErrLinkError, "unsew<3>: dart %d is 3-free", d)
	}

	sideA := OrbitTx(tx, m.betas, d, facePairGeneratorsA)
	sideB := OrbitTx(tx, m.betas, partner, facePairGeneratorsB)
	if len(sideA) != len(sideB) {
		return errors.Wrapf(ErrLinkError, "unsew<3>: mismatched face sizes (%d vs %d)", len(sideA), len(sideB))
	}

	srcFace := attribute.Key(minDart(sideA))

	type veSplit struct{ newA, newB, src attribute.Key }
	vertexSplits := make([]veSplit, 0, len(sideA))
	edgeSplits := make([]veSplit, 0, len(sideA))
	for k := range sideA {
		l := sideA[k]
		srcV := attribute.Key(CellIDTx(tx, m.betas, l, 0, m.dim))
		srcE := attribute.Key(CellIDTx(tx, m.betas, l, 1, m.dim))
		vertexSplits = append(vertexSplits, veSplit{src: srcV})
		edgeSplits = append(edgeSplits, veSplit{src: srcE})
	}

	for k := range sideA {
		if err := Unlink3(tx, m, sideA[k]); err != nil {
			return err
		}
	}

	for k := range sideA {
		l, r := sideA[k], sideB[k]
		vertexSplits[k].newA = attribute.Key(CellIDTx(tx, m.betas, l, 0, m.dim))
		vertexSplits[k].newB = attribute.Key(CellIDTx(tx, m.betas, r, 0, m.dim))
		edgeSplits[k].newA = attribute.Key(CellIDTx(tx, m.betas, l, 1, m.dim))
		edgeSplits[k].newB = attribute.Key(CellIDTx(tx, m.betas, r, 1, m.dim))
	}

	splitDeduped := func(policy attribute.BindPolicy, splits []veSplit) error {
		seen := make(map[attribute.Key]bool, len(splits))
		for _, s := range splits {
			if s.newA == s.newB || seen[s.src] {
				continue
			}
			seen[s.src] = true
			if err := m.Attrs.SplitByPolicy(policy, tx, s.newA, s.newB, s.src); err != nil {
				return err
			}
		}
		return nil
	}
	if err := splitDeduped(attribute.Edge, edgeSplits); err != nil {
		return err
	}
	if err := splitDeduped(attribute.Vertex, vertexSplits); err != nil {
		return err
	}

	newFaceA := attribute.Key(minDart(sideA))
	newFaceB := attribute.Key(minDart(sideB))
	if newFaceA != newFaceB {
		if err := m.Attrs.SplitByPolicy(attribute.Face, tx, newFaceA, newFaceB, srcFace); err != nil {
			return err
		}
	}
	return nil
}
