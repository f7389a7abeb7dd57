package harness

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/patient"
	"github.com/roach88/clinicflow/internal/store"
)

// Step outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// TraceEvent records one flow step and the structure sizes right after it.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Subject string `json:"subject,omitempty"`
	Outcome string `json:"outcome"`

	// Detail is the returned patient, undone operation or report order on
	// success, and the error code on failure.
	Detail string `json:"detail,omitempty"`

	Queue int `json:"queue"`
	Heap  int `json:"heap"`
	Log   int `json:"log"`
}

// String renders the event as one transcript line.
func (e TraceEvent) String() string {
	head := fmt.Sprintf("%03d %s", e.Seq, e.Op)
	if e.Subject != "" {
		head += " " + e.Subject
	}
	outcome := e.Outcome
	if e.Detail != "" {
		outcome += " " + e.Detail
	}
	return fmt.Sprintf("%s -> %s | queue=%d heap=%d log=%d", head, outcome, e.Queue, e.Heap, e.Log)
}

// FinalState is the engine state captured after the flow.
type FinalState struct {
	Registry []patient.Record   `json:"registry"`
	Queue    []patient.Record   `json:"queue"`
	History  []engine.Operation `json:"history"`
	Priority []patient.Record   `json:"priority"`

	// HeapLen counts occupied slots, including dangling ones.
	HeapLen int `json:"heap_len"`

	// Stored is the registry as read back from the store.
	Stored store.Snapshot `json:"stored"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`
	Session  string `json:"session"`

	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	State FinalState `json:"state"`
}

// NewResult creates a new passing result.
func NewResult(scenario, session string) *Result {
	return &Result{
		Scenario: scenario,
		Session:  session,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Transcript renders the trace and final state as deterministic text.
// Golden files hold exactly this output.
func (r *Result) Transcript() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&b, "session: %s\n", r.Session)
	for _, ev := range r.Trace {
		b.WriteString(ev.String())
		b.WriteByte('\n')
	}

	s := r.State
	b.WriteString("--- final state\n")
	fmt.Fprintf(&b, "registry: %s\n", joinList(recordNames(s.Registry)))
	fmt.Fprintf(&b, "queue: %s\n", joinList(recordNames(s.Queue)))

	history := make([]string, len(s.History))
	for i, op := range s.History {
		history[i] = op.String()
	}
	fmt.Fprintf(&b, "history: %s\n", joinList(history))
	fmt.Fprintf(&b, "priority: %s (%d/%d)\n", joinList(recordNames(s.Priority)), s.HeapLen, engine.HeapCapacity)
	fmt.Fprintf(&b, "stored: #%d %s\n", s.Stored.Seq, joinList(recordNames(s.Stored.Patients)))
	return b.Bytes()
}

func recordNames(recs []patient.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func seqNames(seq iter.Seq[patient.Record]) []string {
	out := []string{}
	for r := range seq {
		out = append(out, r.Name)
	}
	return out
}

func joinList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
