package attribute

import (
	"strings"
	"testing"

	"github.com/vkolb/gocomb/stm"
)

// concatLaws is a round-trip-safe law: merge concatenates, split
// reverses the concatenation exactly, so it satisfies P4 generically
// (split(merge(a,b)) == (a,b)) without any domain-specific bookkeeping.
type concatLaws struct{ NoIncomplete[string] }

func (concatLaws) Merge(a, b string) (string, error) {
	return a + "|" + b, nil
}

func (concatLaws) Split(v string) (string, string, error) {
	parts := strings.SplitN(v, "|", 2)
	if len(parts) != 2 {
		return "", "", errSplitShape
	}
	return parts[0], parts[1], nil
}

var errSplitShape = &shapeError{"concatLaws: value has no merge delimiter"}

type shapeError struct{ msg string }

func (e *shapeError) Error() string { return e.msg }

func TestSparseVecMergeSplitRoundTrip(t *testing.T) {
	sv := NewSparseVec[string](Vertex, concatLaws{})
	sv.Extend(8)

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		sv.Write(tx, 1, "five")
		sv.Write(tx, 2, "six")
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		return sv.Merge(tx, 1, 1, 2)
	}); err != nil {
		t.Fatal(err)
	}

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		got, ok := sv.Read(tx, 1)
		if !ok || got != "five|six" {
			t.Errorf("expected merged value five|six, got %q ok=%v", got, ok)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		return sv.Split(tx, 1, 2, 1)
	}); err != nil {
		t.Fatal(err)
	}

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		a, aok := sv.Read(tx, 1)
		b, bok := sv.Read(tx, 2)
		if !aok || a != "five" {
			t.Errorf("expected restored value five at cell 1, got %q ok=%v", a, aok)
		}
		if !bok || b != "six" {
			t.Errorf("expected restored value six at cell 2, got %q ok=%v", b, bok)
		}
		return nil
	})
}

func TestSparseVecMergeIncomplete(t *testing.T) {
	sv := NewSparseVec[string](Vertex, concatLaws{})
	sv.Extend(4)

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		sv.Write(tx, 1, "only")
		return nil
	})

	if err := stm.Atomically(func(tx *stm.Transaction) error {
		return sv.Merge(tx, 1, 1, 2)
	}); err == nil {
		t.Fatal("expected ErrIncomplete since concatLaws embeds NoIncomplete")
	}
}

type rejectingLaws struct{ NoIncomplete[int] }

func (rejectingLaws) Merge(a, b int) (int, error) {
	if a+b < 0 {
		return 0, errSplitShape
	}
	return a + b, nil
}
func (rejectingLaws) Split(v int) (int, int, error) { return v / 2, v - v/2, nil }

func TestMergeRejectionLeavesStateUnchanged(t *testing.T) {
	sv := NewSparseVec[int](Vertex, rejectingLaws{})
	sv.Extend(4)

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		sv.Write(tx, 1, -10)
		sv.Write(tx, 2, 1)
		return nil
	})

	err := stm.Atomically(func(tx *stm.Transaction) error {
		return sv.Merge(tx, 1, 1, 2)
	})
	if !IsMergeError(err) {
		t.Fatalf("expected a merge error, got %v", err)
	}

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		a, _ := sv.Read(tx, 1)
		b, _ := sv.Read(tx, 2)
		if a != -10 || b != 1 {
			t.Errorf("rejected merge must not mutate state, got a=%d b=%d", a, b)
		}
		return nil
	})
}

func TestManagerDispatchesByAffectTable(t *testing.T) {
	m := NewManager()
	// the manager keeps one storage per Go type, so the two columns use
	// distinct value types.
	vtx := Register[string](m, Vertex, concatLaws{})
	edge := Register[int](m, Edge, rejectingLaws{})
	m.Extend(8)

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		vtx.Write(tx, 1, "v1")
		vtx.Write(tx, 2, "v2")
		edge.Write(tx, 1, 10)
		edge.Write(tx, 2, 20)
		return nil
	})

	// a dim-1 sew only affects Vertex, not Edge.
	if err := stm.Atomically(func(tx *stm.Transaction) error {
		return m.MergeAllAtDim(1, tx, 1, 1, 2)
	}); err != nil {
		t.Fatal(err)
	}

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		if v, _ := vtx.Read(tx, 1); v != "v1|v2" {
			t.Errorf("expected vertex merge to run at dim 1, got %q", v)
		}
		if e, _ := edge.Read(tx, 1); e != 10 {
			t.Errorf("expected edge merge to be skipped at dim 1, got %d", e)
		}
		return nil
	})
}

func TestHashMapStorageRoundTrip(t *testing.T) {
	hm := NewHashMapStorage[string](Custom, concatLaws{})

	_ = stm.Atomically(func(tx *stm.Transaction) error {
		hm.Write(tx, 100, "a")
		hm.Write(tx, 200, "b")
		return nil
	})
	if err := stm.Atomically(func(tx *stm.Transaction) error {
		return hm.Merge(tx, 100, 100, 200)
	}); err != nil {
		t.Fatal(err)
	}
	_ = stm.Atomically(func(tx *stm.Transaction) error {
		v, ok := hm.Read(tx, 100)
		if !ok || v != "a|b" {
			t.Errorf("expected a|b, got %q ok=%v", v, ok)
		}
		return nil
	})
	if n := hm.NAttributes(); n != 1 {
		t.Errorf("expected 1 populated key after merge, got %d", n)
	}
}
