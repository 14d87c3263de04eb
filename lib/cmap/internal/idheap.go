// Package internal provides the unused-dart-id priority queue backing
// the dart store's allocator, and other small helpers private to cmap.
//
// IDHeap combines a binary heap with a hash map so the allocator can
// both pop the smallest free id (to keep cell ids stable, see I5 in the
// attached design notes) and, independently, remove an arbitrary id by
// value when a dart is reused out of order.
package internal

import "container/heap"

type idItem struct {
	id    uint32
	index int
}

// IDHeap is a min-heap of dart ids with O(1) membership testing.
//
// Thread-safety: this type is not thread-safe; callers (the dart store)
// guard it with their own coarse lock.
type IDHeap struct {
	items []*idItem
	byID  map[uint32]*idItem
}

// NewIDHeap creates an empty heap.
func NewIDHeap() *IDHeap {
	h := &IDHeap{byID: make(map[uint32]*idItem)}
	heap.Init(h)
	return h
}

func (h *IDHeap) Len() int            { return len(h.items) }
func (h *IDHeap) Less(i, j int) bool  { return h.items[i].id < h.items[j].id }
func (h *IDHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *IDHeap) Push(x any) {
	it := x.(*idItem)
	it.index = len(h.items)
	h.items = append(h.items, it)
	h.byID[it.id] = it
}

func (h *IDHeap) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	h.items = old[:n-1]
	delete(h.byID, it.id)
	return it
}

// Add inserts id into the free set. It is a no-op if id is already free.
func (h *IDHeap) Add(id uint32) {
	if _, exists := h.byID[id]; exists {
		return
	}
	heap.Push(h, &idItem{id: id})
}

// PopMin removes and returns the smallest free id. ok is false if the
// set is empty.
func (h *IDHeap) PopMin() (id uint32, ok bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	it := heap.Pop(h).(*idItem)
	return it.id, true
}

// Remove deletes id from the free set, e.g. when a caller is about to
// hand out a specific id outside of PopMin. ok is false if id was not
// free.
func (h *IDHeap) Remove(id uint32) (ok bool) {
	it, exists := h.byID[id]
	if !exists {
		return false
	}
	heap.Remove(h, it.index)
	return true
}

// Contains reports whether id is currently in the free set.
func (h *IDHeap) Contains(id uint32) bool {
	_, exists := h.byID[id]
	return exists
}
