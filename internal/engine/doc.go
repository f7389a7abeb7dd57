// Package engine implements the clinic's in-memory patient-flow engine.
//
// Four structures share patient records under different ownership rules:
//
//   - Registry: singly linked catalog, the source of truth. Owns records.
//   - AttendanceQueue: doubly linked FIFO of independent copies. Every
//     mutation is pushed onto an OperationLog for single-level LIFO undo.
//   - PriorityHeap: fixed-capacity (20) max-heap by age over aliases into
//     registry records. No copies, no ownership.
//   - SearchIndex: binary search tree of copies, rebuilt per report under
//     one of four orderings and discarded afterwards.
//
// Clinic wires them together and is the only type callers normally use.
//
// SINGLE THREAD OF CONTROL:
// Every operation is synchronous and runs to completion before the next one
// starts. Nothing here locks; a Clinic must not be shared between
// goroutines.
//
// ALIAS SAFETY:
// A heap alias is checked against the registry's live set on every access.
// A record removed from the registry (or replaced by Restore) is reported as
// ErrNotFound instead of being returned stale.
//
// UNDO PRECONDITION:
// Undoing an enqueue drops the current queue tail. That is correct only when
// no other queue mutation happened between the enqueue and its undo, which
// holds as long as undo is the only way entries leave the log.
package engine
