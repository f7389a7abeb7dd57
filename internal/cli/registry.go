package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/clinicflow/internal/flatfile"
	"github.com/roach88/clinicflow/internal/patient"
	"github.com/roach88/clinicflow/internal/store"
)

// latestPatients returns the registry from the latest snapshot, or nil when
// the database holds none yet.
func latestPatients(cmd *cobra.Command, st *store.Store) ([]patient.Record, error) {
	snap, err := st.LatestSnapshot(commandContext(cmd))
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Patients, nil
}

// fail prints err through the formatter and converts it to an ExitError.
func fail(f *OutputFormatter, message string, err error) error {
	_ = f.Fail(err)
	return WrapExitError(exitCodeFor(err), message, err)
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patients in the latest snapshot",
		Long: `List every patient in the latest saved registry snapshot, most
recently admitted first.

Example:
  clinicflow list --db ./clinicflow.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore()
			if err != nil {
				return fail(f, "failed to open database", err)
			}
			defer st.Close()

			recs, err := latestPatients(cmd, st)
			if err != nil {
				return fail(f, "failed to read snapshot", err)
			}
			return f.Success(newPatientList(recs, "(registry is empty)"))
		},
	}
}

// NewReportCommand creates the report command.
func NewReportCommand(opts *RootOptions) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the latest snapshot sorted by a key",
		Long: `Print the latest saved registry sorted ascending by entry year,
entry month, entry day or age.

Examples:
  clinicflow report --by age
  clinicflow report --by 1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			key, err := patient.ParseSortKey(by)
			if err != nil {
				_ = f.Error(CodeUsage, err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid sort key", err)
			}

			st, err := opts.openStore()
			if err != nil {
				return fail(f, "failed to open database", err)
			}
			defer st.Close()

			recs, err := latestPatients(cmd, st)
			if err != nil {
				return fail(f, "failed to read snapshot", err)
			}

			c := opts.newClinic()
			defer c.Close()
			c.Restore(recs)

			seq, err := c.Report(key)
			if err != nil {
				return fail(f, "failed to build report", err)
			}
			return f.Success(newPatientList(slices.Collect(seq), "(registry is empty)"))
		},
	}

	cmd.Flags().StringVar(&by, "by", "age", "sort key: year, month, day, age (or 1-4)")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Save a flat file as a new snapshot",
		Long: `Read a flat patient file and save its contents as a new registry
snapshot. The file's line order is kept.

Example:
  clinicflow import dbPacientes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			recs, err := flatfile.LoadFile(args[0])
			if err != nil {
				return fail(f, "failed to read file", err)
			}

			st, err := opts.openStore()
			if err != nil {
				return fail(f, "failed to open database", err)
			}
			defer st.Close()

			c := opts.newClinic()
			defer c.Close()
			c.Restore(recs)

			info, err := st.WriteSnapshot(commandContext(cmd), c.SessionToken(), c.Snapshot())
			if err != nil {
				return fail(f, "failed to save snapshot", err)
			}
			return f.Success(notice{
				Message:  fmt.Sprintf("Imported %d patients from %s as snapshot #%d", info.PatientCount, args[0], info.Seq),
				Snapshot: &info,
				File:     args[0],
				Count:    info.PatientCount,
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the latest snapshot to a flat file",
		Long: `Write the latest saved registry to a flat patient file, one patient
per line, replacing the file.

Example:
  clinicflow export dbPacientes.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore()
			if err != nil {
				return fail(f, "failed to open database", err)
			}
			defer st.Close()

			recs, err := latestPatients(cmd, st)
			if err != nil {
				return fail(f, "failed to read snapshot", err)
			}
			if err := flatfile.SaveFile(args[0], slices.Values(recs)); err != nil {
				return fail(f, "failed to write file", err)
			}
			return f.Success(notice{
				Message: fmt.Sprintf("Exported %d patients to %s", len(recs), args[0]),
				File:    args[0],
				Count:   len(recs),
			})
		},
	}
}

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List saved registry snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore()
			if err != nil {
				return fail(f, "failed to open database", err)
			}
			defer st.Close()

			infos, err := st.ListSnapshots(commandContext(cmd))
			if err != nil {
				return fail(f, "failed to list snapshots", err)
			}
			return f.Success(snapshotList{Snapshots: infos})
		},
	}
}
