package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/clinicflow/internal/patient"
)

// Scenario describes one patient-flow run and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Session is the fixed session token. Empty means the testutil default.
	Session string `yaml:"session,omitempty"`

	// Setup lists patients admitted before the flow, in admission order.
	// Setup admissions are not traced.
	Setup []PatientSpec `yaml:"setup,omitempty"`

	// Flow is the main sequence of operations.
	Flow []FlowStep `yaml:"flow"`

	// Assertions are checked against the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// PatientSpec is a patient as written in a scenario.
type PatientSpec struct {
	Name string `yaml:"name"`
	Age  int    `yaml:"age"`
	ID   string `yaml:"id"`
	// Entry is dd/mm/yyyy. Empty means testutil.FixtureEntry.
	Entry string `yaml:"entry,omitempty"`
}

// FlowStep is one operation. Which fields apply depends on Op.
type FlowStep struct {
	Op    string `yaml:"op"`
	Name  string `yaml:"name,omitempty"`
	Age   int    `yaml:"age,omitempty"`
	ID    string `yaml:"id,omitempty"`
	Entry string `yaml:"entry,omitempty"`
	Field string `yaml:"field,omitempty"`
	Value string `yaml:"value,omitempty"`
	Key   string `yaml:"key,omitempty"`

	// Expect checks the step outcome. If nil the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected error code (e.g. "NOT_FOUND").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Patient is the name of the patient the step returns
	// (find, find_id, enqueue, attend, undo, prioritize, attend_priority).
	Patient string `yaml:"patient,omitempty"`

	// Names is the expected report order.
	Names []string `yaml:"names,omitempty"`
}

// Flow operations.
const (
	OpAdmit          = "admit"
	OpFind           = "find"
	OpFindID         = "find_id"
	OpUpdate         = "update"
	OpRemove         = "remove"
	OpEnqueue        = "enqueue"
	OpAttend         = "attend"
	OpUndo           = "undo"
	OpPrioritize     = "prioritize"
	OpAttendPriority = "attend_priority"
	OpReport         = "report"
)

// Assertion checks one aspect of the final state.
type Assertion struct {
	// Type selects the check:
	// - "registry_count": registry holds exactly Count patients
	// - "registry_contains": a patient named Name is registered
	// - "queue_order": queue holds Names, head first
	// - "history": operation log renders as Entries, most recent first
	// - "heap_size": priority heap holds exactly Count slots
	// - "report_order": report by Key lists Names
	// - "snapshot_roundtrip": the stored snapshot matches the registry
	Type string `yaml:"type"`

	Count   int      `yaml:"count,omitempty"`
	Name    string   `yaml:"name,omitempty"`
	Names   []string `yaml:"names,omitempty"`
	Entries []string `yaml:"entries,omitempty"`
	Key     string   `yaml:"key,omitempty"`
}

// Assertion type constants.
const (
	AssertRegistryCount     = "registry_count"
	AssertRegistryContains  = "registry_contains"
	AssertQueueOrder        = "queue_order"
	AssertHistory           = "history"
	AssertHeapSize          = "heap_size"
	AssertReportOrder       = "report_order"
	AssertSnapshotRoundtrip = "snapshot_roundtrip"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, p := range s.Setup {
		if err := validatePatient(p.Name, p.ID, p.Entry); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(&step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(&a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validatePatient(name, id, entry string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if entry != "" {
		if _, err := patient.ParseDate(entry); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step *FlowStep) error {
	switch step.Op {
	case OpAdmit:
		return validatePatient(step.Name, step.ID, step.Entry)
	case OpFind, OpRemove, OpEnqueue, OpPrioritize:
		if step.Name == "" {
			return fmt.Errorf("name is required for %s", step.Op)
		}
	case OpFindID:
		if step.ID == "" {
			return fmt.Errorf("id is required for %s", step.Op)
		}
	case OpUpdate:
		if step.ID == "" || step.Field == "" {
			return fmt.Errorf("id and field are required for %s", step.Op)
		}
	case OpReport:
		if step.Key == "" {
			return fmt.Errorf("key is required for %s", step.Op)
		}
	case OpAttend, OpUndo, OpAttendPriority:
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateAssertion(a *Assertion) error {
	switch a.Type {
	case AssertRegistryCount, AssertHeapSize:
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for %s", a.Type)
		}
	case AssertRegistryContains:
		if a.Name == "" {
			return fmt.Errorf("name is required for %s", a.Type)
		}
	case AssertReportOrder:
		if a.Key == "" {
			return fmt.Errorf("key is required for %s", a.Type)
		}
		if _, err := patient.ParseSortKey(a.Key); err != nil {
			return err
		}
	case AssertQueueOrder, AssertHistory, AssertSnapshotRoundtrip:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
