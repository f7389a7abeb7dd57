package engine

import (
	"fmt"
	"iter"

	"github.com/roach88/clinicflow/internal/patient"
)

// OpKind distinguishes reversible queue operations.
type OpKind int

const (
	// OpEnqueued records a patient copied onto the queue tail.
	OpEnqueued OpKind = iota + 1
	// OpDequeued records a patient detached from the queue head.
	OpDequeued
)

func (k OpKind) String() string {
	switch k {
	case OpEnqueued:
		return "Enqueued"
	case OpDequeued:
		return "Dequeued"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON output.
func (k OpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Operation is a read-only view of an operation log entry.
type Operation struct {
	Kind    OpKind         `json:"kind"`
	Patient patient.Record `json:"patient"`
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%s)", o.Kind, o.Patient.Name)
}

// opEntry pairs an operation with the exact record instance the queue held.
// For OpDequeued the instance is the detached one, so undo can put it back.
type opEntry struct {
	kind OpKind
	rec  *patient.Record
}

func (e opEntry) view() Operation {
	return Operation{Kind: e.kind, Patient: *e.rec}
}

// OperationLog is the LIFO stack of reversible queue operations.
// Depth equals the number of net reversible actions since start (or since
// the last Clear); undo drains it strictly in reverse chronological order.
type OperationLog struct {
	entries []opEntry
}

// NewOperationLog creates an empty log.
func NewOperationLog() *OperationLog {
	return &OperationLog{}
}

func (l *OperationLog) push(kind OpKind, rec *patient.Record) {
	l.entries = append(l.entries, opEntry{kind: kind, rec: rec})
}

func (l *OperationLog) pop() (opEntry, bool) {
	n := len(l.entries)
	if n == 0 {
		return opEntry{}, false
	}
	e := l.entries[n-1]
	// Release the record pointer held by the vacated slot.
	l.entries[n-1] = opEntry{}
	l.entries = l.entries[:n-1]
	return e, true
}

// Len returns the log depth.
func (l *OperationLog) Len() int {
	return len(l.entries)
}

// All yields the log from most recent to oldest. Restartable.
func (l *OperationLog) All() iter.Seq[Operation] {
	return func(yield func(Operation) bool) {
		for i := len(l.entries) - 1; i >= 0; i-- {
			if !yield(l.entries[i].view()) {
				return
			}
		}
	}
}

// Clear drops every entry.
func (l *OperationLog) Clear() {
	clear(l.entries)
	l.entries = l.entries[:0]
}
