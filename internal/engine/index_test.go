package engine

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinicflow/internal/patient"
)

func ages(seq []patient.Record) []int {
	out := make([]int, len(seq))
	for i, r := range seq {
		out[i] = r.Age
	}
	return out
}

func TestSearchIndex_AgeOrder(t *testing.T) {
	ix := NewSearchIndex(patient.ByAge)
	for i, age := range []int{30, 10, 50, 10} {
		ix.Insert(testRecord(string(rune('a'+i)), age, "1"))
	}

	got := slices.Collect(ix.InOrder())
	assert.Equal(t, []int{10, 10, 30, 50}, ages(got))
	assert.Equal(t, 4, ix.Len())
}

func TestSearchIndex_EqualKeysDescendLeft(t *testing.T) {
	ix := NewSearchIndex(patient.ByAge)
	// a=30 root; b=10 left of a; c=50 right of a; d=10 goes left of b.
	for i, age := range []int{30, 10, 50, 10} {
		ix.Insert(testRecord(string(rune('a'+i)), age, "1"))
	}

	assert.Equal(t, []string{"d", "b", "a", "c"}, names(ix.InOrder()),
		"later equal keys come out first, not in insertion order")
}

func TestSearchIndex_Empty(t *testing.T) {
	ix := NewSearchIndex(patient.ByYear)
	assert.Empty(t, slices.Collect(ix.InOrder()))
}

func TestSearchIndex_EarlyStop(t *testing.T) {
	ix := NewSearchIndex(patient.ByAge)
	for _, age := range []int{5, 3, 8, 1, 4} {
		ix.Insert(testRecord("x", age, "1"))
	}

	var seen []int
	for rec := range ix.InOrder() {
		seen = append(seen, rec.Age)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 3}, seen)
}

func TestBuildIndex_EachKey(t *testing.T) {
	recs := []patient.Record{
		patient.New("A", 40, "1", patient.Date{Day: 20, Month: 1, Year: 2022}),
		patient.New("B", 20, "2", patient.Date{Day: 5, Month: 12, Year: 2024}),
		patient.New("C", 60, "3", patient.Date{Day: 12, Month: 6, Year: 2020}),
	}

	tests := []struct {
		key  patient.SortKey
		want []string
	}{
		{patient.SortByYear, []string{"C", "A", "B"}},
		{patient.SortByMonth, []string{"A", "C", "B"}},
		{patient.SortByDay, []string{"B", "C", "A"}},
		{patient.SortByAge, []string{"B", "A", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			ix, err := BuildIndex(slices.Values(recs), tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(ix.InOrder()))
		})
	}
}

func TestBuildIndex_UnknownKey(t *testing.T) {
	_, err := BuildIndex(slices.Values([]patient.Record{}), patient.SortKey(0))
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestSearchIndex_HoldsCopies(t *testing.T) {
	r := NewRegistry()
	handle := r.Add(testRecord("Ana", 30, "111"))

	ix, err := BuildIndex(r.List(), patient.SortByAge)
	require.NoError(t, err)
	handle.Age = 99

	got := slices.Collect(ix.InOrder())
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].Age)
}

func TestSearchIndex_ExtremeAges(t *testing.T) {
	ix := NewSearchIndex(patient.ByAge)
	for _, age := range []int{math.MaxInt, math.MinInt, 0} {
		ix.Insert(testRecord("x", age, "1"))
	}
	assert.Equal(t, []int{math.MinInt, 0, math.MaxInt}, ages(slices.Collect(ix.InOrder())))
}
