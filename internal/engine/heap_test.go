package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fillRegistry admits one patient per age and returns aliases to them.
func fillRegistry(t *testing.T, r *Registry, ages ...int) []Alias {
	t.Helper()
	aliases := make([]Alias, 0, len(ages))
	for i, age := range ages {
		name := fmt.Sprintf("P%02d", i)
		r.Add(testRecord(name, age, fmt.Sprint(i)))
		a, err := r.Alias(name)
		require.NoError(t, err)
		aliases = append(aliases, a)
	}
	return aliases
}

// assertHeapProperty checks every parent is at least as old as its children.
func assertHeapProperty(t *testing.T, h *PriorityHeap) {
	t.Helper()
	for i := 0; i < h.n; i++ {
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < h.n {
				assert.GreaterOrEqual(t, h.slots[i].age(), h.slots[c].age(), "slot %d vs child %d", i, c)
			}
		}
	}
}

func TestPriorityHeap_ExtractNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 25; round++ {
		r := NewRegistry()
		h := NewPriorityHeap()

		n := 1 + rng.IntN(HeapCapacity)
		ages := make([]int, n)
		for i := range ages {
			ages[i] = rng.IntN(100)
		}
		for _, a := range fillRegistry(t, r, ages...) {
			require.NoError(t, h.Insert(a))
			assertHeapProperty(t, h)
		}

		var got []int
		for h.Len() > 0 {
			rec, err := h.ExtractMax()
			require.NoError(t, err)
			got = append(got, rec.Age)
			assertHeapProperty(t, h)
		}

		want := slices.Clone(ages)
		slices.Sort(want)
		slices.Reverse(want)
		assert.Equal(t, want, got, "round %d", round)
	}
}

func TestPriorityHeap_FullOnTwentyFirstInsert(t *testing.T) {
	r := NewRegistry()
	h := NewPriorityHeap()

	ages := make([]int, HeapCapacity+1)
	for i := range ages {
		ages[i] = i
	}
	aliases := fillRegistry(t, r, ages...)

	for i := 0; i < HeapCapacity; i++ {
		require.NoError(t, h.Insert(aliases[i]), "insert %d", i+1)
	}
	err := h.Insert(aliases[HeapCapacity])
	require.ErrorIs(t, err, ErrFull)
	assert.Equal(t, HeapCapacity, h.Len())
	assert.Equal(t, HeapCapacity, h.Cap())
}

func TestPriorityHeap_ExtractEmpty(t *testing.T) {
	h := NewPriorityHeap()
	_, err := h.ExtractMax()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestPriorityHeap_InsertRejectsInvalidAlias(t *testing.T) {
	h := NewPriorityHeap()
	assert.ErrorIs(t, h.Insert(Alias{}), ErrNotFound)
	assert.Equal(t, 0, h.Len())
}

func TestPriorityHeap_HoldsAliasesNotCopies(t *testing.T) {
	r := NewRegistry()
	aliases := fillRegistry(t, r, 30, 40)
	h := NewPriorityHeap()
	for _, a := range aliases {
		require.NoError(t, h.Insert(a))
	}

	// P00 becomes the oldest; the next rebuild sees it.
	require.NoError(t, r.Update("0", "age", "50"))
	extra := fillRegistry(t, NewRegistry(), 10)
	require.NoError(t, h.Insert(extra[0]))

	rec, err := h.ExtractMax()
	require.NoError(t, err)
	assert.Equal(t, "P00", rec.Name)
	assert.Equal(t, 50, rec.Age)
}

func TestPriorityHeap_DanglingAliasReportsNotFound(t *testing.T) {
	r := NewRegistry()
	aliases := fillRegistry(t, r, 80, 20)
	h := NewPriorityHeap()
	for _, a := range aliases {
		require.NoError(t, h.Insert(a))
	}

	require.NoError(t, r.Remove("P00"))

	_, err := h.ExtractMax()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, h.Len(), "dangling slot is consumed")

	rec, err := h.ExtractMax()
	require.NoError(t, err)
	assert.Equal(t, "P01", rec.Name)
}

func TestPriorityHeap_PeekAll_StorageOrder(t *testing.T) {
	r := NewRegistry()
	aliases := fillRegistry(t, r, 10, 30, 20)
	h := NewPriorityHeap()
	for _, a := range aliases {
		require.NoError(t, h.Insert(a))
	}

	var ages []int
	for rec := range h.PeekAll() {
		ages = append(ages, rec.Age)
	}
	// Insert 10 -> [10]; 30 -> [30 10]; 20 -> [30 10 20].
	assert.Equal(t, []int{30, 10, 20}, ages)

	require.NoError(t, r.Remove("P01"))
	assert.Equal(t, []string{"P00", "P02"}, names(h.PeekAll()), "dangling aliases are skipped")
}

func TestPriorityHeap_EqualAgeChildDoesNotDisplaceRoot(t *testing.T) {
	r := NewRegistry()
	aliases := fillRegistry(t, r, 10, 50, 50)
	h := NewPriorityHeap()
	for _, a := range aliases {
		require.NoError(t, h.Insert(a))
	}

	rec, err := h.ExtractMax()
	require.NoError(t, err)
	assert.Equal(t, "P01", rec.Name)
}

func TestPriorityHeap_Clear(t *testing.T) {
	r := NewRegistry()
	h := NewPriorityHeap()
	for _, a := range fillRegistry(t, r, 1, 2, 3) {
		require.NoError(t, h.Insert(a))
	}
	h.Clear()
	assert.Equal(t, 0, h.Len())
	_, err := h.ExtractMax()
	assert.ErrorIs(t, err, ErrEmpty)
}
