package engine

import (
	"io"
	"iter"
	"log/slog"

	"github.com/roach88/clinicflow/internal/patient"
)

// Clinic owns the four patient-flow structures and is the single entry
// point for every operation on them.
//
// A Clinic is created once per process (or per test), passed by reference
// to whoever drives it, and torn down with Close. It is not safe for
// concurrent use: all operations run to completion on the caller's
// goroutine and nothing is locked.
//
// Ownership:
//   - registry owns every admitted record
//   - queue holds independent copies (taken at enqueue)
//   - log references the same instances the queue holds
//   - heap holds aliases into registry records
//   - search indexes are built per report from registry copies
type Clinic struct {
	registry *Registry
	log      *OperationLog
	queue    *AttendanceQueue
	heap     *PriorityHeap

	session string
	logger  *slog.Logger
}

// Option configures a Clinic.
type Option func(*clinicOptions)

type clinicOptions struct {
	tokens SessionTokenGenerator
	logger *slog.Logger
}

// WithTokenGenerator sets the session token source.
// Default: UUIDv7Generator.
func WithTokenGenerator(gen SessionTokenGenerator) Option {
	return func(o *clinicOptions) {
		o.tokens = gen
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *clinicOptions) {
		o.logger = logger
	}
}

// DiscardLogger returns a logger that drops everything. Used by tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// New creates a Clinic with empty structures.
func New(opts ...Option) *Clinic {
	o := clinicOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tokens == nil {
		o.tokens = UUIDv7Generator{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	log := NewOperationLog()
	session := o.tokens.Generate()
	return &Clinic{
		registry: NewRegistry(),
		log:      log,
		queue:    NewAttendanceQueue(log),
		heap:     NewPriorityHeap(),
		session:  session,
		logger:   o.logger.With("session", session),
	}
}

// SessionToken returns the token generated for this Clinic.
func (c *Clinic) SessionToken() string {
	return c.session
}

// Close releases every structure. The Clinic is empty afterwards and may be
// reused.
func (c *Clinic) Close() {
	c.heap.Clear()
	c.queue.Clear()
	c.log.Clear()
	c.registry.Reset()
	c.logger.Debug("clinic closed")
}

// ---- Registry ----

// Admit registers a new patient.
func (c *Clinic) Admit(rec patient.Record) patient.Record {
	owned := c.registry.Add(rec)
	c.logger.Info("patient admitted", "patient", owned.Name, "registry_len", c.registry.Len())
	return *owned
}

// FindByName looks a patient up by exact name.
func (c *Clinic) FindByName(name string) (patient.Record, error) {
	rec, err := c.registry.FindByName(name)
	if err != nil {
		return patient.Record{}, err
	}
	return *rec, nil
}

// FindByID looks a patient up by digit-normalized identifier.
func (c *Clinic) FindByID(id string) (patient.Record, error) {
	rec, err := c.registry.FindByID(id)
	if err != nil {
		return patient.Record{}, err
	}
	return *rec, nil
}

// Update edits one field of the registry record identified by id.
// Queued copies are not affected; heap aliases are.
func (c *Clinic) Update(id string, field patient.Field, value string) error {
	if err := c.registry.Update(id, field, value); err != nil {
		c.logger.Debug("update failed", "id", id, "field", field, "error", err)
		return err
	}
	c.logger.Info("patient updated", "id", id, "field", field)
	return nil
}

// Discharge removes the patient named name from the registry.
func (c *Clinic) Discharge(name string) error {
	if err := c.registry.Remove(name); err != nil {
		return err
	}
	c.logger.Info("patient removed", "patient", name, "registry_len", c.registry.Len())
	return nil
}

// Patients yields registry records, most recently admitted first.
func (c *Clinic) Patients() iter.Seq[patient.Record] {
	return c.registry.List()
}

// RegistryLen returns the number of registered patients.
func (c *Clinic) RegistryLen() int {
	return c.registry.Len()
}

// ---- Attendance queue ----

// Enqueue copies the registry patient named name onto the attendance queue.
func (c *Clinic) Enqueue(name string) (patient.Record, error) {
	handle, err := c.registry.FindByName(name)
	if err != nil {
		return patient.Record{}, opError("enqueue", name, ErrNotFound)
	}
	cp := c.queue.Enqueue(handle)
	c.logger.Info("patient enqueued", "patient", cp.Name, "queue_len", c.queue.Len())
	return cp, nil
}

// Attend dequeues the head of the attendance queue: the returned patient is
// now being attended.
func (c *Clinic) Attend() (patient.Record, error) {
	rec, err := c.queue.Dequeue()
	if err != nil {
		return patient.Record{}, err
	}
	c.logger.Info("patient attended", "patient", rec.Name, "queue_len", c.queue.Len())
	return rec, nil
}

// Undo reverses the most recent queue operation.
func (c *Clinic) Undo() (Operation, error) {
	op, err := c.queue.UndoLast()
	if err != nil {
		c.logger.Debug("undo failed", "error", err)
		return op, err
	}
	c.logger.Info("operation undone", "op", op.Kind, "patient", op.Patient.Name, "queue_len", c.queue.Len())
	return op, nil
}

// History yields the operation log, most recent first.
func (c *Clinic) History() iter.Seq[Operation] {
	return c.queue.History()
}

// Waiting yields the attendance queue from head to tail.
func (c *Clinic) Waiting() iter.Seq[patient.Record] {
	return c.queue.Entries()
}

// QueueLen returns the attendance queue length.
func (c *Clinic) QueueLen() int {
	return c.queue.Len()
}

// ---- Priority heap ----

// Prioritize adds an alias to the registry patient named name to the
// priority heap.
func (c *Clinic) Prioritize(name string) (patient.Record, error) {
	alias, err := c.registry.Alias(name)
	if err != nil {
		return patient.Record{}, opError("prioritize", name, ErrNotFound)
	}
	if err := c.heap.Insert(alias); err != nil {
		c.logger.Warn("priority heap rejected patient", "patient", name, "error", err)
		return patient.Record{}, err
	}
	c.logger.Info("patient prioritized", "patient", alias.rec.Name, "heap_len", c.heap.Len())
	return *alias.rec, nil
}

// AttendPriority extracts the oldest prioritized patient.
func (c *Clinic) AttendPriority() (patient.Record, error) {
	rec, err := c.heap.ExtractMax()
	if err != nil {
		if IsNotFound(err) {
			c.logger.Warn("prioritized patient no longer registered", "error", err)
		}
		return patient.Record{}, err
	}
	c.logger.Info("priority patient attended", "patient", rec.Name, "age", rec.Age, "heap_len", c.heap.Len())
	return rec, nil
}

// PriorityEntries yields the heap contents in storage order, which is not
// priority order.
func (c *Clinic) PriorityEntries() iter.Seq[patient.Record] {
	return c.heap.PeekAll()
}

// PriorityLen returns the number of occupied heap slots.
func (c *Clinic) PriorityLen() int {
	return c.heap.Len()
}

// ---- Reports ----

// Report builds a fresh search index over the current registry and returns
// its in-order traversal.
func (c *Clinic) Report(key patient.SortKey) (iter.Seq[patient.Record], error) {
	ix, err := BuildIndex(c.registry.List(), key)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("report built", "key", key, "records", ix.Len())
	return ix.InOrder(), nil
}

// ---- Persistence boundary ----

// Snapshot returns copies of every registry record in List order.
func (c *Clinic) Snapshot() []patient.Record {
	return c.registry.Snapshot()
}

// Restore replaces the registry with records. Heap aliases to the replaced
// records become dangling; the queue and log are untouched.
func (c *Clinic) Restore(records []patient.Record) {
	c.registry.Restore(records)
	c.logger.Info("registry restored", "registry_len", c.registry.Len())
}
