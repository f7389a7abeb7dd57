package engine

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/roach88/clinicflow/internal/patient"
)

// regNode is a cell of the registry's singly linked list.
type regNode struct {
	rec  *patient.Record
	next *regNode
}

// Registry is the canonical, owning catalog of admitted patients.
//
// Records are kept in a singly linked list with head insertion, so traversal
// yields the most recently admitted patient first. The registry hands out
// *patient.Record handles for in-place edits and Alias values for the
// priority heap. A record leaves the live set when it is removed or when
// Restore replaces the contents; aliases check the live set on every access.
type Registry struct {
	head  *regNode
	count int
	live  map[*patient.Record]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[*patient.Record]struct{})}
}

// Add inserts a copy of rec at the front of the list and returns the owned
// handle. Duplicate names and identifiers are allowed.
func (r *Registry) Add(rec patient.Record) *patient.Record {
	owned := new(patient.Record)
	*owned = rec

	r.head = &regNode{rec: owned, next: r.head}
	r.count++
	r.live[owned] = struct{}{}
	return owned
}

// FindByName returns the first record whose name equals name exactly
// (after NFC normalization of the query).
func (r *Registry) FindByName(name string) (*patient.Record, error) {
	name = patient.NormalizeName(name)
	for n := r.head; n != nil; n = n.next {
		if n.rec.Name == name {
			return n.rec, nil
		}
	}
	return nil, opError("registry.find", name, ErrNotFound)
}

// FindByID returns the first record whose identifier matches id after both
// are reduced to digits.
func (r *Registry) FindByID(id string) (*patient.Record, error) {
	for n := r.head; n != nil; n = n.next {
		if patient.SameID(n.rec.ID, id) {
			return n.rec, nil
		}
	}
	return nil, opError("registry.find", id, ErrNotFound)
}

// Update locates a record by identifier and overwrites one field in place.
//
// Age must parse as an integer and the entry date as dd/mm/yyyy; either
// failure is ErrInvalidField and leaves the record untouched. No range
// checks are applied to the parsed values.
func (r *Registry) Update(id string, field patient.Field, value string) error {
	rec, err := r.FindByID(id)
	if err != nil {
		return opError("registry.update", id, ErrNotFound)
	}

	switch field {
	case patient.FieldName:
		rec.Name = patient.NormalizeName(value)
	case patient.FieldAge:
		age, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return opError("registry.update", id, fmt.Errorf("%w: age %q", ErrInvalidField, value))
		}
		rec.Age = age
	case patient.FieldID:
		rec.ID = strings.TrimSpace(value)
	case patient.FieldEntry:
		d, err := patient.ParseDate(value)
		if err != nil {
			return opError("registry.update", id, fmt.Errorf("%w: %v", ErrInvalidField, err))
		}
		rec.Entry = d
	default:
		return opError("registry.update", id, fmt.Errorf("%w: %q", ErrInvalidField, field))
	}
	return nil
}

// Remove unlinks the first record named name. The record leaves the live
// set, so any heap alias to it resolves to ErrNotFound from now on.
func (r *Registry) Remove(name string) error {
	name = patient.NormalizeName(name)

	var prev *regNode
	for n := r.head; n != nil; prev, n = n, n.next {
		if n.rec.Name != name {
			continue
		}
		if prev == nil {
			r.head = n.next
		} else {
			prev.next = n.next
		}
		n.next = nil
		delete(r.live, n.rec)
		r.count--
		return nil
	}
	return opError("registry.remove", name, ErrNotFound)
}

// List yields copies of every record, most recently added first.
// Each call starts a fresh traversal.
func (r *Registry) List() iter.Seq[patient.Record] {
	return func(yield func(patient.Record) bool) {
		for n := r.head; n != nil; n = n.next {
			if !yield(*n.rec) {
				return
			}
		}
	}
}

// Len returns the number of registered patients.
func (r *Registry) Len() int {
	return r.count
}

// Alias returns a non-owning reference to the record named name.
func (r *Registry) Alias(name string) (Alias, error) {
	rec, err := r.FindByName(name)
	if err != nil {
		return Alias{}, err
	}
	return Alias{rec: rec, owner: r}, nil
}

// Snapshot returns copies of all records in List order.
func (r *Registry) Snapshot() []patient.Record {
	out := make([]patient.Record, 0, r.count)
	for rec := range r.List() {
		out = append(out, rec)
	}
	return out
}

// Restore replaces the registry contents with records, keeping their order:
// List after Restore(s) yields s. Every previously held record is detached.
func (r *Registry) Restore(records []patient.Record) {
	r.Reset()
	for i := len(records) - 1; i >= 0; i-- {
		r.Add(records[i])
	}
}

// Reset detaches every record and empties the list.
func (r *Registry) Reset() {
	for n := r.head; n != nil; {
		next := n.next
		n.next = nil
		n = next
	}
	r.head = nil
	r.count = 0
	clear(r.live)
}

func (r *Registry) owns(rec *patient.Record) bool {
	_, ok := r.live[rec]
	return ok
}

// Alias is a non-owning reference into a Registry record.
//
// The aliased record may be edited in place through the registry; the heap
// observes those edits. Once the record leaves the registry, Resolve fails
// with ErrNotFound instead of handing back a stale record.
type Alias struct {
	rec   *patient.Record
	owner *Registry
}

// Valid reports whether the alias still refers to a live registry record.
func (a Alias) Valid() bool {
	return a.rec != nil && a.owner != nil && a.owner.owns(a.rec)
}

// Resolve returns the aliased record.
func (a Alias) Resolve() (*patient.Record, error) {
	if !a.Valid() {
		name := ""
		if a.rec != nil {
			name = a.rec.Name
		}
		return nil, opError("alias.resolve", name, ErrNotFound)
	}
	return a.rec, nil
}

// age reads the aliased record's current age for heap ordering. Detached
// records keep their last value so ordering stays deterministic.
func (a Alias) age() int {
	if a.rec == nil {
		return -1
	}
	return a.rec.Age
}
