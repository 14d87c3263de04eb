package stm

import (
	"sync"
	"testing"
)

func TestReadWriteRoundTrip(t *testing.T) {
	tv := NewTVar(41)

	err := Atomically(func(tx *Transaction) error {
		v := Read(tx, tv)
		Write(tx, tv, v+1)
		return nil
	})
	if err != nil {
		t.Fatalf("Atomically returned error: %v", err)
	}

	got := Read(newTransaction(), tv)
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestReadYourOwnWrites(t *testing.T) {
	tv := NewTVar("a")

	_ = Atomically(func(tx *Transaction) error {
		Write(tx, tv, "b")
		if got := Read(tx, tv); got != "b" {
			t.Errorf("expected read-your-own-write to see %q, got %q", "b", got)
		}
		return nil
	})
}

func TestAtomicallyAbortsOnLogicError(t *testing.T) {
	tv := NewTVar(1)
	sentinel := errConflict{} // reuse an error value distinct from nil

	err := Atomically(func(tx *Transaction) error {
		Write(tx, tv, 999)
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	if got := Read(newTransaction(), tv); got != 1 {
		t.Errorf("write from an aborted transaction must not be visible, got %d", got)
	}
}

func TestTryAtomicallyReportsConflict(t *testing.T) {
	tv := NewTVar(0)

	var wg sync.WaitGroup
	start := make(chan struct{})
	conflicts := 0
	var mu sync.Mutex

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := TryAtomically(func(tx *Transaction) error {
				v := Read(tx, tv)
				Write(tx, tv, v+1)
				return nil
			})
			if err == ErrTransactionConflict {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	// Some attempts may lose the race; we only assert that the winners'
	// writes and conflict accounting are consistent with each other.
	final := Read(newTransaction(), tv)
	if final < 1 || final > 8 {
		t.Errorf("final value %d out of expected range", final)
	}
	if final != 8-conflicts {
		t.Errorf("final value %d, want one increment per non-conflicting attempt (%d)", final, 8-conflicts)
	}
}

func TestConcurrentCommitsAreSerializable(t *testing.T) {
	tv := NewTVar(0)

	var wg sync.WaitGroup
	const n = 200
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = Atomically(func(tx *Transaction) error {
				v := Read(tx, tv)
				Write(tx, tv, v+1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := Read(newTransaction(), tv); got != n {
		t.Errorf("expected %d increments to be serialized without loss, got %d", n, got)
	}
}
