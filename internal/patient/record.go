package patient

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Date is a patient's entry date. Fields are plain calendar integers and are
// never validated against a real calendar.
type Date struct {
	Day   int `json:"day" yaml:"day"`
	Month int `json:"month" yaml:"month"`
	Year  int `json:"year" yaml:"year"`
}

// String renders the date as dd/mm/yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// ParseDate accepts "dd/mm/yyyy" or "dd mm yyyy".
// Only the shape is checked; 31/02/2024 parses fine.
func ParseDate(s string) (Date, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("date %q: want dd/mm/yyyy", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("date %q: %w", s, err)
		}
		nums[i] = n
	}
	return Date{Day: nums[0], Month: nums[1], Year: nums[2]}, nil
}

// Record is a single patient. Copying a Record copies its entry date, so a
// copy never shares state with the original.
type Record struct {
	Name  string `json:"name" yaml:"name"`
	Age   int    `json:"age" yaml:"age"`
	ID    string `json:"id" yaml:"id"`
	Entry Date   `json:"entry" yaml:"entry"`
}

// New builds a record with its name normalized.
func New(name string, age int, id string, entry Date) Record {
	return Record{
		Name:  NormalizeName(name),
		Age:   age,
		ID:    strings.TrimSpace(id),
		Entry: entry,
	}
}

// String renders the record the way every listing shows it.
func (r Record) String() string {
	return fmt.Sprintf("Nome: %s; Idade: %d; RG: %s; Entrada: %s", r.Name, r.Age, r.ID, r.Entry)
}

// NormalizeID keeps only the ASCII digits of an identifier, so "12.345-6"
// and "123456" normalize to the same value.
func NormalizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		if c := id[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SameID reports whether two identifiers match after digit normalization.
func SameID(a, b string) bool {
	return NormalizeID(a) == NormalizeID(b)
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC.
// Name matching stays exact; this only makes "José" typed with a combining
// accent equal to the precomposed form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
