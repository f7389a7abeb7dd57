package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/clinicflow/internal/patient"
)

// ErrNoSnapshot is returned when a requested snapshot does not exist,
// including LatestSnapshot on an empty store.
var ErrNoSnapshot = errors.New("no snapshot")

// LatestSnapshot returns the snapshot with the highest seq.
func (s *Store) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM snapshots ORDER BY seq DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, unavailable("latest snapshot", err)
	}
	return s.ReadSnapshot(ctx, id)
}

// ReadSnapshot returns the snapshot with the given id and its patients in
// stored order.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	snap := Snapshot{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, session FROM snapshots WHERE id = ?
	`, id).Scan(&snap.Seq, &snap.Session)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, ErrNoSnapshot)
	}
	if err != nil {
		return Snapshot{}, unavailable("read snapshot", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, age, rg, entry_day, entry_month, entry_year
		FROM patients
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return Snapshot{}, unavailable("query patients", err)
	}
	defer rows.Close()

	snap.Patients = []patient.Record{}
	for rows.Next() {
		var rec patient.Record
		if err := rows.Scan(&rec.Name, &rec.Age, &rec.ID,
			&rec.Entry.Day, &rec.Entry.Month, &rec.Entry.Year); err != nil {
			return Snapshot{}, unavailable("scan patient", err)
		}
		snap.Patients = append(snap.Patients, rec)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, unavailable("iterate patients", err)
	}
	return snap, nil
}

// ListSnapshots returns metadata for every snapshot, oldest first.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, session, patient_count
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, unavailable("query snapshots", err)
	}
	defer rows.Close()

	infos := []SnapshotInfo{}
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Seq, &info.Session, &info.PatientCount); err != nil {
			return nil, unavailable("scan snapshot", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate snapshots", err)
	}
	return infos, nil
}
