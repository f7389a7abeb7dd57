package engine

import (
	"iter"

	"github.com/roach88/clinicflow/internal/patient"
)

// HeapCapacity is the fixed number of slots in the priority heap.
const HeapCapacity = 20

// PriorityHeap is a fixed-capacity binary max-heap keyed by age.
//
// Slots hold aliases into registry records, never copies: a prioritized
// patient is still a registry patient who now also needs urgent attention.
// Ages are read through the alias at rebuild time, so an age edited in the
// registry takes effect at the next insert or extract.
//
// Ties are broken by array position only; the heap is not stable.
type PriorityHeap struct {
	slots [HeapCapacity]Alias
	n     int
}

// NewPriorityHeap creates an empty heap.
func NewPriorityHeap() *PriorityHeap {
	return &PriorityHeap{}
}

// Insert stores alias in the next free slot and rebuilds the heap.
// The whole array is re-heapified on every insert; with 20 slots that is
// cheaper to reason about than a sift-up path.
func (h *PriorityHeap) Insert(alias Alias) error {
	if !alias.Valid() {
		return opError("heap.insert", "", ErrNotFound)
	}
	if h.n >= HeapCapacity {
		return opError("heap.insert", alias.rec.Name, ErrFull)
	}
	h.slots[h.n] = alias
	h.n++
	h.build()
	return nil
}

// ExtractMax removes the root (the oldest patient) and returns the aliased
// record's current value.
//
// The root slot is consumed even when its record has since been removed
// from the registry; in that case ErrNotFound is returned and the caller may
// extract again.
func (h *PriorityHeap) ExtractMax() (patient.Record, error) {
	if h.n == 0 {
		return patient.Record{}, opError("heap.extract", "", ErrEmpty)
	}

	root := h.slots[0]
	h.slots[0] = h.slots[h.n-1]
	h.slots[h.n-1] = Alias{}
	h.n--
	h.build()

	rec, err := root.Resolve()
	if err != nil {
		return patient.Record{}, opError("heap.extract", root.rec.Name, ErrNotFound)
	}
	return *rec, nil
}

// PeekAll yields the live records in storage order. This is NOT priority
// order beyond the root. Aliases whose record left the registry are skipped.
func (h *PriorityHeap) PeekAll() iter.Seq[patient.Record] {
	return func(yield func(patient.Record) bool) {
		for i := 0; i < h.n; i++ {
			rec, err := h.slots[i].Resolve()
			if err != nil {
				continue
			}
			if !yield(*rec) {
				return
			}
		}
	}
}

// Len returns the number of occupied slots, dangling aliases included.
func (h *PriorityHeap) Len() int {
	return h.n
}

// Cap returns HeapCapacity.
func (h *PriorityHeap) Cap() int {
	return HeapCapacity
}

// Clear empties every slot.
func (h *PriorityHeap) Clear() {
	h.slots = [HeapCapacity]Alias{}
	h.n = 0
}

// build restores the max-heap property over the whole array, sifting down
// from the last internal node to the root.
func (h *PriorityHeap) build() {
	for i := h.n/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

// siftDown swaps slot i with its strictly older child, preferring the left
// child on equal ages, and recurses into the swapped subtree.
func (h *PriorityHeap) siftDown(i int) {
	largest := i
	left, right := 2*i+1, 2*i+2

	if left < h.n && h.slots[left].age() > h.slots[largest].age() {
		largest = left
	}
	if right < h.n && h.slots[right].age() > h.slots[largest].age() {
		largest = right
	}
	if largest != i {
		h.slots[i], h.slots[largest] = h.slots[largest], h.slots[i]
		h.siftDown(largest)
	}
}
