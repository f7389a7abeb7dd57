package patient

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Comparator is a three-way ordering over records: negative when a sorts
// before b, zero when equal, positive otherwise. Results are -1, 0 or +1, so
// extreme field values cannot overflow.
type Comparator func(a, b Record) int

// ByYear orders by entry year.
func ByYear(a, b Record) int { return cmp.Compare(a.Entry.Year, b.Entry.Year) }

// ByMonth orders by entry month, ignoring the year.
func ByMonth(a, b Record) int { return cmp.Compare(a.Entry.Month, b.Entry.Month) }

// ByDay orders by entry day, ignoring month and year.
func ByDay(a, b Record) int { return cmp.Compare(a.Entry.Day, b.Entry.Day) }

// ByAge orders by age.
func ByAge(a, b Record) int { return cmp.Compare(a.Age, b.Age) }

// SortKey selects one of the report orderings.
type SortKey int

const (
	SortByYear SortKey = iota + 1
	SortByMonth
	SortByDay
	SortByAge
)

var sortKeyNames = map[SortKey]string{
	SortByYear:  "year",
	SortByMonth: "month",
	SortByDay:   "day",
	SortByAge:   "age",
}

// SortKeys lists the accepted key names in menu order.
var SortKeys = []string{"year", "month", "day", "age"}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// Compare returns the comparator for the key, or nil for an unknown key.
func (k SortKey) Compare() Comparator {
	switch k {
	case SortByYear:
		return ByYear
	case SortByMonth:
		return ByMonth
	case SortByDay:
		return ByDay
	case SortByAge:
		return ByAge
	}
	return nil
}

// ParseSortKey accepts a key name or its menu number (1-4).
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= int(SortByYear) && n <= int(SortByAge) {
		return SortKey(n), nil
	}
	for k, name := range sortKeyNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown sort key %q: must be one of %v", s, SortKeys)
}

// Field names a mutable record field.
type Field string

const (
	FieldName  Field = "name"
	FieldAge   Field = "age"
	FieldID    Field = "id"
	FieldEntry Field = "entry"
)

// ParseField accepts a field name or its menu number (1-4).
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "1":
		return FieldName, nil
	case "age", "2":
		return FieldAge, nil
	case "id", "rg", "3":
		return FieldID, nil
	case "entry", "date", "4":
		return FieldEntry, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}
