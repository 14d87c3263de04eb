// Package internal provides the write-back event queue that decouples a
// committed attribute write from its durable persistence.
//
// Grounded on the teacher's LockFreeMPSC queue (lib/db/util/lockfreempsc.go):
// the same lock-free singly-linked-list append with exponential backoff
// is reused here, adapted into a narrower single-purpose queue carrying
// persistence events instead of a general-purpose MPSC primitive.
package internal

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// EventKind distinguishes a durable upsert from a durable delete.
type EventKind int

const (
	EventPut EventKind = iota
	EventDelete
)

// WriteEvent is one pending durable mutation of a persistent column.
type WriteEvent struct {
	Kind  EventKind
	Key   uint32
	Value []byte
}

type eventNode struct {
	ev   *WriteEvent
	next atomic.Pointer[eventNode]
}

// WriteBackQueue is an unbounded, lock-free multi-producer
// single-consumer queue of WriteEvents draining into a durable sink.
//
// Thread-safety: Enqueue may be called from any number of goroutines;
// the queue spawns exactly one internal consumer goroutine.
type WriteBackQueue struct {
	head, tail atomic.Pointer[eventNode]
	out        chan *WriteEvent
	closed     atomic.Bool

	mu   sync.Mutex
	cond *sync.Cond
}

// NewWriteBackQueue creates a queue and starts its consumer goroutine.
func NewWriteBackQueue() *WriteBackQueue {
	sentinel := &eventNode{}
	q := &WriteBackQueue{out: make(chan *WriteEvent)}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	go q.drain()
	return q
}

// Enqueue appends ev for asynchronous persistence. It returns false if
// the queue has been closed.
func (q *WriteBackQueue) Enqueue(ev *WriteEvent) bool {
	if ev == nil || q.closed.Load() {
		return false
	}

	newNode := &eventNode{ev: ev}
	var backoff uint8

	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if next == nil {
			if tail.next.CompareAndSwap(nil, newNode) {
				q.tail.CompareAndSwap(tail, newNode)
				q.cond.Signal()
				return true
			}
		} else {
			q.tail.CompareAndSwap(tail, next)
		}

		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

func (q *WriteBackQueue) drain() {
	defer close(q.out)

	for {
		progressed := false
		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			progressed = true
			ev := next.ev
			q.head.Store(next)
			q.out <- ev
			next.ev = nil
		}

		if !progressed && q.closed.Load() {
			return
		}
		if !progressed {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Events exposes the queue's consumer side.
func (q *WriteBackQueue) Events() <-chan *WriteEvent { return q.out }

// Close stops accepting new events; events already queued still drain.
func (q *WriteBackQueue) Close() {
	q.closed.Store(true)
	q.cond.Signal()
}
