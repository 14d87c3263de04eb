package cmap

import (
	"sync"
	"testing"

	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

// TestConcurrentSewsSerializeWithoutCorruption has many goroutines
// 1-sew disjoint dart pairs of a pre-allocated strip of darts at the
// same time, and asserts afterward that every pair is linked with
// β[1] and β[0] inverse to each other (P2). No two goroutines sew the
// same dart, so no pair is contested.
func TestConcurrentSewsSerializeWithoutCorruption(t *testing.T) {
	const n = 64
	m := NewMap(1)
	d := m.AddDarts(2 * n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		a, b := d[2*i], d[2*i+1]
		wg.Add(1)
		go func(a, b DartID) {
			defer wg.Done()
			if err := ForceSew(m, 1, a, b); err != nil {
				t.Errorf("force_sew<1>(%d,%d): %v", a, b, err)
			}
		}(a, b)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		a, b := d[2*i], d[2*i+1]
		if m.Beta(1, a) != b || m.Beta(0, b) != a {
			t.Fatalf("pair %d: beta[1](%d)=%d beta[0](%d)=%d, want %d and %d", i, a, m.Beta(1, a), b, m.Beta(0, b), b, a)
		}
	}
}

// TestConcurrentVertexRelaxation runs a scaled-down scenario 3 on a
// strip of vertices: many goroutines each atomically read their two
// neighbor vertex positions and write their own position to the mean,
// for several rounds. It asserts that the two endpoints did not move
// and that the middle vertex ends within 1 of its place on the line
// between them.
func TestConcurrentVertexRelaxation(t *testing.T) {
	const n = 32
	const rounds = 20

	m := NewMap(1)
	d := m.AddDarts(n)
	vtx := attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		for i, dt := range d {
			vtx.Write(tx, attribute.Key(dt), geom.Vertex{X: float64(i), Y: 0})
		}
		return nil
	})

	for r := 0; r < rounds; r++ {
		var wg sync.WaitGroup
		for i := 1; i < n-1; i++ {
			left, right, self := d[i-1], d[i+1], d[i]
			wg.Add(1)
			go func(left, right, self DartID) {
				defer wg.Done()
				_ = stm.Atomically(func(tx *stm.Transaction) error {
					lv, _ := vtx.Read(tx, attribute.Key(left))
					rv, _ := vtx.Read(tx, attribute.Key(right))
					vtx.Write(tx, attribute.Key(self), geom.Average(lv, rv))
					return nil
				})
			}(left, right, self)
		}
		wg.Wait()
	}

	// after enough relaxation rounds, interior vertices converge toward
	// a line between the two fixed endpoints.
	first, _ := stm.AtomicallyR(func(tx *stm.Transaction) (geom.Vertex, error) {
		v, _ := vtx.Read(tx, attribute.Key(d[0]))
		return v, nil
	})
	last, _ := stm.AtomicallyR(func(tx *stm.Transaction) (geom.Vertex, error) {
		v, _ := vtx.Read(tx, attribute.Key(d[n-1]))
		return v, nil
	})
	if first.X != 0 || last.X != float64(n-1) {
		t.Fatalf("endpoints moved: first=%v last=%v", first, last)
	}

	mid, _ := stm.AtomicallyR(func(tx *stm.Transaction) (geom.Vertex, error) {
		v, _ := vtx.Read(tx, attribute.Key(d[n/2]))
		return v, nil
	})
	want := float64(n / 2)
	if diff := mid.X - want; diff > 1 || diff < -1 {
		t.Fatalf("midpoint x = %v, want close to %v", mid.X, want)
	}
}
