package patient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparators(t *testing.T) {
	a := Record{Age: 30, Entry: Date{Day: 10, Month: 3, Year: 2020}}
	b := Record{Age: 50, Entry: Date{Day: 5, Month: 7, Year: 2019}}

	assert.Positive(t, ByYear(a, b))
	assert.Negative(t, ByMonth(a, b))
	assert.Positive(t, ByDay(a, b))
	assert.Negative(t, ByAge(a, b))
	assert.Zero(t, ByAge(a, a))
}

func TestComparators_ExtremeValues(t *testing.T) {
	lo := Record{Age: math.MinInt, Entry: Date{Day: math.MinInt, Month: math.MinInt, Year: math.MinInt}}
	hi := Record{Age: math.MaxInt, Entry: Date{Day: math.MaxInt, Month: math.MaxInt, Year: math.MaxInt}}

	for name, c := range map[string]Comparator{"year": ByYear, "month": ByMonth, "day": ByDay, "age": ByAge} {
		assert.Equal(t, -1, c(lo, hi), name)
		assert.Equal(t, 1, c(hi, lo), name)
		assert.Equal(t, 0, c(hi, hi), name)
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"year":  SortByYear,
		"MONTH": SortByMonth,
		" day ": SortByDay,
		"age":   SortByAge,
		"1":     SortByYear,
		"4":     SortByAge,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseSortKey(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.NotNil(t, got.Compare())
		})
	}

	_, err := ParseSortKey("name")
	assert.Error(t, err)
	_, err = ParseSortKey("5")
	assert.Error(t, err)
}

func TestSortKey_String(t *testing.T) {
	assert.Equal(t, "age", SortByAge.String())
	assert.Equal(t, "SortKey(9)", SortKey(9).String())
	assert.Nil(t, SortKey(9).Compare())
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{
		"name": FieldName, "1": FieldName,
		"age": FieldAge, "2": FieldAge,
		"id": FieldID, "RG": FieldID, "3": FieldID,
		"entry": FieldEntry, "date": FieldEntry, "4": FieldEntry,
	} {
		got, err := ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseField("weight")
	assert.Error(t, err)
}
