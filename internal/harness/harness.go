package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/patient"
	"github.com/roach88/clinicflow/internal/store"
	"github.com/roach88/clinicflow/internal/testutil"
)

// Harness drives one scenario against a fresh clinic and store.
type Harness struct {
	clinic *engine.Clinic
	store  *store.Store
	steps  *testutil.StepCounter
}

// stepOutcome is what a successful step produced.
type stepOutcome struct {
	patient string
	names   []string
	detail  string
}

// Run executes a scenario and returns the result.
//
// A failed expectation or assertion is reported in the result, not as an
// error. The error return is for harness failures: the store could not be
// opened or a setup patient could not be built.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for the store round trip.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clinic := engine.New(
		engine.WithTokenGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		engine.WithLogger(engine.DiscardLogger()),
	)
	defer clinic.Close()

	h := &Harness{
		clinic: clinic,
		store:  st,
		steps:  &testutil.StepCounter{},
	}

	if err := h.executeSetup(scenario.Setup); err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name, clinic.SessionToken())
	for i, step := range scenario.Flow {
		h.executeStep(i, step, result)
	}

	state, err := h.captureState(ctx)
	if err != nil {
		return nil, err
	}
	result.State = state

	for i, a := range scenario.Assertions {
		if err := h.evaluate(a, result); err != nil {
			result.AddError("assertions[%d] %s: %v", i, a.Type, err)
		}
	}
	return result, nil
}

func (h *Harness) executeSetup(setup []PatientSpec) error {
	for i, p := range setup {
		rec, err := buildRecord(p.Name, p.Age, p.ID, p.Entry)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		h.clinic.Admit(rec)
	}
	return nil
}

func buildRecord(name string, age int, id, entry string) (patient.Record, error) {
	if entry == "" {
		return testutil.Patient(name, age, id), nil
	}
	date, err := patient.ParseDate(entry)
	if err != nil {
		return patient.Record{}, err
	}
	return patient.New(name, age, id, date), nil
}

func (h *Harness) executeStep(i int, step FlowStep, result *Result) {
	ev := TraceEvent{
		Seq:     h.steps.Next(),
		Op:      step.Op,
		Subject: subjectOf(step),
	}

	out, err := h.apply(step)
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Detail = string(engine.CodeOf(err))
	} else {
		ev.Outcome = OutcomeOK
		ev.Detail = out.detail
	}
	ev.Queue = h.clinic.QueueLen()
	ev.Heap = h.clinic.PriorityLen()
	ev.Log = countOps(h.clinic)
	result.Trace = append(result.Trace, ev)

	checkExpect(i, step, out, err, result)
}

func subjectOf(step FlowStep) string {
	switch step.Op {
	case OpFindID:
		return step.ID
	case OpUpdate:
		return fmt.Sprintf("%s %s=%s", step.ID, step.Field, step.Value)
	case OpReport:
		return step.Key
	}
	return step.Name
}

func (h *Harness) apply(step FlowStep) (stepOutcome, error) {
	c := h.clinic
	switch step.Op {
	case OpAdmit:
		rec, err := buildRecord(step.Name, step.Age, step.ID, step.Entry)
		if err != nil {
			return stepOutcome{}, fmt.Errorf("%w: %v", engine.ErrInvalidField, err)
		}
		return patientOutcome(c.Admit(rec)), nil

	case OpFind:
		rec, err := c.FindByName(step.Name)
		return patientOutcome(rec), err

	case OpFindID:
		rec, err := c.FindByID(step.ID)
		return patientOutcome(rec), err

	case OpUpdate:
		field, err := patient.ParseField(step.Field)
		if err != nil {
			return stepOutcome{}, fmt.Errorf("%w: %v", engine.ErrInvalidField, err)
		}
		return stepOutcome{}, c.Update(step.ID, field, step.Value)

	case OpRemove:
		return stepOutcome{}, c.Discharge(step.Name)

	case OpEnqueue:
		rec, err := c.Enqueue(step.Name)
		return patientOutcome(rec), err

	case OpAttend:
		rec, err := c.Attend()
		return patientOutcome(rec), err

	case OpUndo:
		op, err := c.Undo()
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{patient: op.Patient.Name, detail: op.String()}, nil

	case OpPrioritize:
		rec, err := c.Prioritize(step.Name)
		return patientOutcome(rec), err

	case OpAttendPriority:
		rec, err := c.AttendPriority()
		return patientOutcome(rec), err

	case OpReport:
		key, err := patient.ParseSortKey(step.Key)
		if err != nil {
			return stepOutcome{}, fmt.Errorf("%w: %v", engine.ErrInvalidField, err)
		}
		seq, err := c.Report(key)
		if err != nil {
			return stepOutcome{}, err
		}
		names := seqNames(seq)
		return stepOutcome{names: names, detail: "[" + strings.Join(names, ", ") + "]"}, nil
	}
	return stepOutcome{}, fmt.Errorf("unknown op %q", step.Op)
}

func patientOutcome(rec patient.Record) stepOutcome {
	return stepOutcome{patient: rec.Name, detail: rec.Name}
}

func countOps(c *engine.Clinic) int {
	n := 0
	for range c.History() {
		n++
	}
	return n
}

func checkExpect(i int, step FlowStep, out stepOutcome, err error, result *Result) {
	prefix := fmt.Sprintf("flow[%d] %s", i, step.Op)
	want := step.Expect
	if want == nil {
		want = &ExpectClause{}
	}

	if want.Error != "" {
		if err == nil {
			result.AddError("%s: expected error %s, got success", prefix, want.Error)
			return
		}
		if got := string(engine.CodeOf(err)); got != want.Error {
			result.AddError("%s: expected error %s, got %s (%v)", prefix, want.Error, got, err)
		}
		return
	}

	if err != nil {
		result.AddError("%s: unexpected error: %v", prefix, err)
		return
	}
	if want.Patient != "" && want.Patient != out.patient {
		result.AddError("%s: expected patient %q, got %q", prefix, want.Patient, out.patient)
	}
	if want.Names != nil && !slices.Equal(want.Names, out.names) {
		result.AddError("%s: expected order %v, got %v", prefix, want.Names, out.names)
	}
}

// captureState records the final engine state and round-trips the registry
// through the store.
func (h *Harness) captureState(ctx context.Context) (FinalState, error) {
	c := h.clinic
	state := FinalState{
		Registry: slices.Collect(c.Patients()),
		Queue:    slices.Collect(c.Waiting()),
		History:  slices.Collect(c.History()),
		Priority: slices.Collect(c.PriorityEntries()),
		HeapLen:  c.PriorityLen(),
	}

	info, err := h.store.WriteSnapshot(ctx, c.SessionToken(), c.Snapshot())
	if err != nil {
		return FinalState{}, fmt.Errorf("failed to write snapshot: %w", err)
	}
	state.Stored, err = h.store.ReadSnapshot(ctx, info.ID)
	if err != nil {
		return FinalState{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return state, nil
}
