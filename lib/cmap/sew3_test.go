package cmap

import (
	"testing"

	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

type sumLaws[T ~int] struct{ attribute.NoIncomplete[T] }

func (sumLaws[T]) Merge(a, b T) (T, error)   { return a + b, nil }
func (sumLaws[T]) Split(v T) (T, T, error) { return v, 0, nil }

type edgeWeight int
type faceWeight int

// twoTriangles builds two independent 3-dart triangular faces (a1->a2->a3
// and b1->b2->b3, each a β1 cycle) with no β2 structure at all: just
// enough to exercise Sew3Tx's pairing and its Edge/Face attribute
// dispatch. It is not a well-formed closed volume (that would need each
// face's darts β2-linked to neighboring faces within the same volume).
// The tests built on it write Vertex coordinates only so that the
// alignment check runs; they assert on the β3 pairing and the Edge and
// Face attributes, not on Vertex values.
func twoTriangles(t *testing.T) (m *Map, a, b [3]DartID) {
	t.Helper()
	m = NewMap(3)
	d := m.AddDarts(6)
	copy(a[:], d[:3])
	copy(b[:], d[3:])

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		for i := 0; i < 3; i++ {
			if err := Link1(tx, m, a[i], a[(i+1)%3]); err != nil {
				return err
			}
		}
		for i := 0; i < 3; i++ {
			if err := Link1(tx, m, b[i], b[(i+1)%3]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("building two triangles: %v", err)
	}
	return m, a, b
}

func TestSew3LinksEveryCorrespondingDartPair(t *testing.T) {
	m, a, b := twoTriangles(t)

	vtx := attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})
	edgeAttr := attribute.Register[edgeWeight](m.Attrs, attribute.Edge, sumLaws[edgeWeight]{})
	faceAttr := attribute.Register[faceWeight](m.Attrs, attribute.Face, sumLaws[faceWeight]{})

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		vtx.Write(tx, attribute.Key(a[0]), geom.Vertex{X: 0, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(a[1]), geom.Vertex{X: 1, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(b[0]), geom.Vertex{X: 0, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(b[1]), geom.Vertex{X: -1, Y: 0, Z: 0})

		faceAttr.Write(tx, attribute.Key(a[0]), 3)
		faceAttr.Write(tx, attribute.Key(b[0]), 4)
		edgeAttr.Write(tx, attribute.Key(a[0]), 10)
		edgeAttr.Write(tx, attribute.Key(b[0]), 20)
		return nil
	})

	if err := ForceSew(m, 3, a[0], b[0]); err != nil {
		t.Fatalf("sew<3>(%d,%d): %v", a[0], b[0], err)
	}

	for _, d := range a[:] {
		if m.Beta(3, d) == NullDart {
			t.Fatalf("dart %d still 3-free after sew<3>", d)
		}
		partner := m.Beta(3, d)
		if m.Beta(3, partner) != d {
			t.Fatalf("beta[3] not involutive for %d/%d", d, partner)
		}
	}

	faceVal, err := stm.AtomicallyR(func(tx *stm.Transaction) (faceWeight, error) {
		v, _ := faceAttr.Read(tx, attribute.Key(m.CellIDTx(tx, 2, a[0])))
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if faceVal != 7 {
		t.Fatalf("merged face attribute = %d, want 7", faceVal)
	}

	edgeVal, err := stm.AtomicallyR(func(tx *stm.Transaction) (edgeWeight, error) {
		v, _ := edgeAttr.Read(tx, attribute.Key(m.CellIDTx(tx, 1, a[0])))
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if edgeVal != 30 {
		t.Fatalf("merged edge attribute at the seed pair = %d, want 30", edgeVal)
	}

	if err := ForceSew(m, 3, a[0], b[0]); err != nil {
		t.Fatalf("re-sew<3> of an already-sewn pair should be a no-op, got error: %v", err)
	}

	if err := ForceUnsew(m, 3, a[0]); err != nil {
		t.Fatalf("unsew<3>(%d): %v", a[0], err)
	}
	for _, d := range a[:] {
		if m.Beta(3, d) != NullDart {
			t.Fatalf("dart %d still 3-linked after unsew<3>", d)
		}
	}
}

func TestSew3RejectsMisalignedFaces(t *testing.T) {
	m, a, b := twoTriangles(t)
	vtx := attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		// both triangles' leading edge points the same way: folding, not
		// gluing back to back.
		vtx.Write(tx, attribute.Key(a[0]), geom.Vertex{X: 0, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(a[1]), geom.Vertex{X: 1, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(b[0]), geom.Vertex{X: 0, Y: 0, Z: 0})
		vtx.Write(tx, attribute.Key(b[1]), geom.Vertex{X: 1, Y: 0, Z: 0})
		return nil
	})

	if err := ForceSew(m, 3, a[0], b[0]); !IsKind(err, ErrLinkError) {
		t.Fatalf("sew<3> of two same-facing triangles: got %v, want ErrLinkError", err)
	}
	if m.Beta(3, a[0]) != NullDart {
		t.Fatalf("beta[3] mutated despite rejected alignment check")
	}
}
