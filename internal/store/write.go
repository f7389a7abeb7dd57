package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/clinicflow/internal/patient"
)

// Snapshot is one saved copy of the registry.
type Snapshot struct {
	ID       string           `json:"id"`
	Seq      int64            `json:"seq"`
	Session  string           `json:"session"`
	Patients []patient.Record `json:"patients"`
}

// SnapshotInfo describes a snapshot without its patients.
type SnapshotInfo struct {
	ID           string `json:"id"`
	Seq          int64  `json:"seq"`
	Session      string `json:"session"`
	PatientCount int    `json:"patient_count"`
}

// WriteSnapshot saves records as a new snapshot in a single transaction and
// returns its metadata. The snapshot id is a fresh UUIDv7 and seq is one
// past the highest stored seq.
//
// records are stored in the given order and read back in the same order.
func (s *Store) WriteSnapshot(ctx context.Context, session string, records []patient.Record) (SnapshotInfo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, unavailable("write snapshot", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return SnapshotInfo{}, unavailable("write snapshot: next seq", err)
	}

	info := SnapshotInfo{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Seq:          seq,
		Session:      session,
		PatientCount: len(records),
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, seq, session, patient_count)
		VALUES (?, ?, ?, ?)
	`, info.ID, info.Seq, info.Session, info.PatientCount); err != nil {
		return SnapshotInfo{}, unavailable("write snapshot", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO patients
		(snapshot_id, position, name, age, rg, entry_day, entry_month, entry_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return SnapshotInfo{}, unavailable("write snapshot: prepare", err)
	}
	defer stmt.Close()

	for pos, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			info.ID, pos, rec.Name, rec.Age, rec.ID,
			rec.Entry.Day, rec.Entry.Month, rec.Entry.Year,
		); err != nil {
			return SnapshotInfo{}, unavailable(fmt.Sprintf("write snapshot: patient %d", pos), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, unavailable("write snapshot: commit", err)
	}
	return info, nil
}
