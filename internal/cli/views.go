package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/patient"
	"github.com/roach88/clinicflow/internal/store"
)

// notice is a one-line result with optional structured context for JSON.
type notice struct {
	Message  string              `json:"message"`
	Patient  *patient.Record     `json:"patient,omitempty"`
	Snapshot *store.SnapshotInfo `json:"snapshot,omitempty"`
	File     string              `json:"file,omitempty"`
	Count    int                 `json:"count,omitempty"`
	Undone   *engine.Operation   `json:"undone,omitempty"`
}

func (n notice) String() string { return n.Message }

// patientList renders as a numbered listing, one patient per line.
type patientList struct {
	Patients []patient.Record `json:"patients"`
	empty    string
}

func newPatientList(recs []patient.Record, empty string) patientList {
	if recs == nil {
		recs = []patient.Record{}
	}
	return patientList{Patients: recs, empty: empty}
}

func (l patientList) String() string {
	if len(l.Patients) == 0 {
		return l.empty
	}
	var b strings.Builder
	for i, r := range l.Patients {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, r)
	}
	return b.String()
}

// priorityList shows the live heap entries in storage order. Slots also
// counts entries whose patient was removed after being prioritized; they
// still occupy capacity until extracted.
type priorityList struct {
	Patients []patient.Record `json:"patients"`
	Slots    int              `json:"slots"`
	Capacity int              `json:"capacity"`
}

func (p priorityList) String() string {
	if p.Slots == 0 {
		return "(priority queue is empty)"
	}
	var b strings.Builder
	for i, r := range p.Patients {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	fmt.Fprintf(&b, "(%d live / %d slots)", len(p.Patients), p.Slots)
	return b.String()
}

type historyList struct {
	Operations []engine.Operation `json:"operations"`
}

func (h historyList) String() string {
	if len(h.Operations) == 0 {
		return "(no history)"
	}
	var b strings.Builder
	for i, op := range h.Operations {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, op)
	}
	return b.String()
}

type snapshotList struct {
	Snapshots []store.SnapshotInfo `json:"snapshots"`
}

func (s snapshotList) String() string {
	if len(s.Snapshots) == 0 {
		return "(no snapshots)"
	}
	var b strings.Builder
	for i, info := range s.Snapshots {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d %s session=%s patients=%d", info.Seq, info.ID, info.Session, info.PatientCount)
	}
	return b.String()
}
