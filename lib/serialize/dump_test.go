package serialize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/cmap"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

func buildUnitSquare(t *testing.T) *cmap.Map {
	t.Helper()
	m := cmap.NewMap(2)
	d := m.AddDarts(4)

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		for i := 0; i < 4; i++ {
			if err := cmap.Link1(tx, m, d[i], d[(i+1)%4]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	vtx := attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})
	_ = stm.Atomically(func(tx *stm.Transaction) error {
		vtx.Write(tx, attribute.Key(d[0]), geom.Vertex{X: 0, Y: 0})
		vtx.Write(tx, attribute.Key(d[1]), geom.Vertex{X: 1, Y: 0})
		vtx.Write(tx, attribute.Key(d[2]), geom.Vertex{X: 1, Y: 1})
		vtx.Write(tx, attribute.Key(d[3]), geom.Vertex{X: 0, Y: 1})
		return nil
	})
	return m
}

// TestDumpLoadRoundTrip is scenario 4.
func TestDumpLoadRoundTrip(t *testing.T) {
	m := buildUnitSquare(t)

	var buf bytes.Buffer
	if err := Dump(m, &buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	m2, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m2.Dim() != m.Dim() {
		t.Fatalf("dim = %d, want %d", m2.Dim(), m.Dim())
	}
	if m2.NDarts() != m.NDarts() {
		t.Fatalf("n_darts = %d, want %d", m2.NDarts(), m.NDarts())
	}
	for i := uint8(0); i <= m.Dim(); i++ {
		for d := 1; d < m.NDarts(); d++ {
			if m2.Beta(i, cmap.DartID(d)) != m.Beta(i, cmap.DartID(d)) {
				t.Fatalf("beta[%d](%d) = %d, want %d", i, d, m2.Beta(i, cmap.DartID(d)), m.Beta(i, cmap.DartID(d)))
			}
		}
	}
	if len(m2.UnusedDarts()) != len(m.UnusedDarts()) {
		t.Fatalf("unused set size = %d, want %d", len(m2.UnusedDarts()), len(m.UnusedDarts()))
	}
}

func TestDumpCompressedRoundTrip(t *testing.T) {
	m := buildUnitSquare(t)

	var buf bytes.Buffer
	if err := DumpCompressed(m, &buf); err != nil {
		t.Fatalf("DumpCompressed: %v", err)
	}
	m2, err := LoadCompressed(&buf)
	if err != nil {
		t.Fatalf("LoadCompressed: %v", err)
	}
	if m2.NDarts() != m.NDarts() {
		t.Fatalf("n_darts = %d, want %d", m2.NDarts(), m.NDarts())
	}
}

func TestLoadRejectsBrokenInvolution(t *testing.T) {
	const broken = `[META]
1 1 2

[BETAS]
0 2 0
0 0 0
`
	_, err := Load(strings.NewReader(broken))
	if err == nil {
		t.Fatal("expected an error for a non-involutive beta[1]/beta[0] pair")
	}
}

func TestLoadRejectsColumnCountMismatch(t *testing.T) {
	const broken = `[META]
1 1 3

[BETAS]
0 0 0
0 0 0
`
	_, err := Load(strings.NewReader(broken))
	if err == nil {
		t.Fatal("expected an error for a column-count mismatch against n_darts")
	}
}
