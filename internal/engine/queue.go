package engine

import (
	"iter"

	"github.com/roach88/clinicflow/internal/patient"
)

// queueNode is a cell of the attendance queue's doubly linked list.
type queueNode struct {
	prev *queueNode
	next *queueNode
	rec  *patient.Record
}

// AttendanceQueue is the first-come-first-served queue for today's visits.
//
// Each entry is an independent copy of a registry record taken at enqueue
// time: registry edits after that point do not reach the queue, and queue
// edits never reach the registry. Every mutation is pushed onto the
// OperationLog so it can be undone.
//
// Not safe for concurrent use; the owning Clinic serializes all calls.
type AttendanceQueue struct {
	head  *queueNode
	tail  *queueNode
	count int
	log   *OperationLog
}

// NewAttendanceQueue creates an empty queue that records into log.
func NewAttendanceQueue(log *OperationLog) *AttendanceQueue {
	return &AttendanceQueue{log: log}
}

// Enqueue copies the handle's current field values onto the tail and
// records Enqueued(copy). Returns the copy's value.
func (q *AttendanceQueue) Enqueue(handle *patient.Record) patient.Record {
	cp := new(patient.Record)
	*cp = *handle

	q.pushTail(cp)
	q.log.push(OpEnqueued, cp)
	return *cp
}

// Dequeue detaches the head and records Dequeued(record). The record
// instance survives in the log entry so undo can restore it intact.
func (q *AttendanceQueue) Dequeue() (patient.Record, error) {
	rec := q.popHead()
	if rec == nil {
		return patient.Record{}, opError("dequeue", "", ErrEmptyQueue)
	}
	q.log.push(OpDequeued, rec)
	return *rec, nil
}

// UndoLast reverses the most recent logged operation.
//
// Enqueued is reversed by dropping the current tail. That is only the
// enqueued copy when no other queue mutation happened after it; callers
// rely on LIFO discipline and no reconciliation is attempted.
// Dequeued is reversed by putting the same record instance back at the head.
//
// Returns ErrNoHistory when the log is empty. If an Enqueued entry is popped
// while the queue is already empty the entry is still consumed and
// ErrEmptyQueue is returned.
func (q *AttendanceQueue) UndoLast() (Operation, error) {
	e, ok := q.log.pop()
	if !ok {
		return Operation{}, opError("undo", "", ErrNoHistory)
	}

	switch e.kind {
	case OpEnqueued:
		if q.popTail() == nil {
			return e.view(), opError("undo", e.rec.Name, ErrEmptyQueue)
		}
	case OpDequeued:
		q.pushHead(e.rec)
	}
	return e.view(), nil
}

// History yields logged operations, most recent first.
func (q *AttendanceQueue) History() iter.Seq[Operation] {
	return q.log.All()
}

// Entries yields copies of the queued records from head to tail.
func (q *AttendanceQueue) Entries() iter.Seq[patient.Record] {
	return func(yield func(patient.Record) bool) {
		for n := q.head; n != nil; n = n.next {
			if !yield(*n.rec) {
				return
			}
		}
	}
}

// Len returns the number of queued patients.
func (q *AttendanceQueue) Len() int {
	return q.count
}

// Head returns the next patient to be attended.
func (q *AttendanceQueue) Head() (patient.Record, bool) {
	if q.head == nil {
		return patient.Record{}, false
	}
	return *q.head.rec, true
}

// Tail returns the most recently queued patient.
func (q *AttendanceQueue) Tail() (patient.Record, bool) {
	if q.tail == nil {
		return patient.Record{}, false
	}
	return *q.tail.rec, true
}

// Clear empties the queue without touching the log.
func (q *AttendanceQueue) Clear() {
	for n := q.head; n != nil; {
		next := n.next
		n.prev, n.next, n.rec = nil, nil, nil
		n = next
	}
	q.head, q.tail, q.count = nil, nil, 0
}

func (q *AttendanceQueue) pushTail(rec *patient.Record) {
	n := &queueNode{rec: rec, prev: q.tail}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.count++
}

func (q *AttendanceQueue) pushHead(rec *patient.Record) {
	n := &queueNode{rec: rec, next: q.head}
	if q.head == nil {
		q.tail = n
	} else {
		q.head.prev = n
	}
	q.head = n
	q.count++
}

// popHead unlinks the head node and returns its record, or nil when empty.
// The node is dropped; the record is not.
func (q *AttendanceQueue) popHead() *patient.Record {
	n := q.head
	if n == nil {
		return nil
	}
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	} else {
		q.head.prev = nil
	}
	q.count--
	n.next = nil
	return n.rec
}

func (q *AttendanceQueue) popTail() *patient.Record {
	n := q.tail
	if n == nil {
		return nil
	}
	q.tail = n.prev
	if q.tail == nil {
		q.head = nil
	} else {
		q.tail.next = nil
	}
	q.count--
	n.prev = nil
	return n.rec
}
