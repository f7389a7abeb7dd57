package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/clinicflow/internal/patient"
)

// evaluate checks one assertion against the captured state. Only
// report_order consults the live clinic, since a report is built on demand.
func (h *Harness) evaluate(a Assertion, result *Result) error {
	s := result.State
	switch a.Type {
	case AssertRegistryCount:
		if got := len(s.Registry); got != a.Count {
			return fmt.Errorf("expected %d patients, got %d", a.Count, got)
		}

	case AssertRegistryContains:
		name := patient.NormalizeName(a.Name)
		if !slices.ContainsFunc(s.Registry, func(r patient.Record) bool { return r.Name == name }) {
			return fmt.Errorf("patient %q not registered", a.Name)
		}

	case AssertQueueOrder:
		return compareNames("queue", a.Names, recordNames(s.Queue))

	case AssertHistory:
		got := make([]string, len(s.History))
		for i, op := range s.History {
			got[i] = op.String()
		}
		return compareNames("history", a.Entries, got)

	case AssertHeapSize:
		if s.HeapLen != a.Count {
			return fmt.Errorf("expected %d heap slots, got %d", a.Count, s.HeapLen)
		}

	case AssertReportOrder:
		key, err := patient.ParseSortKey(a.Key)
		if err != nil {
			return err
		}
		seq, err := h.clinic.Report(key)
		if err != nil {
			return err
		}
		return compareNames("report by "+key.String(), a.Names, seqNames(seq))

	case AssertSnapshotRoundtrip:
		if !slices.Equal(s.Registry, s.Stored.Patients) {
			return fmt.Errorf("stored snapshot %v differs from registry %v",
				recordNames(s.Stored.Patients), recordNames(s.Registry))
		}
		if s.Stored.Session != result.Session {
			return fmt.Errorf("stored session %q, want %q", s.Stored.Session, result.Session)
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func compareNames(what string, want, got []string) error {
	if len(want) == 0 && len(got) == 0 {
		return nil
	}
	if !slices.Equal(want, got) {
		return fmt.Errorf("%s: expected %v, got %v", what, want, got)
	}
	return nil
}
