package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/flatfile"
	"github.com/roach88/clinicflow/internal/patient"
	"github.com/roach88/clinicflow/internal/store"
)

const prompt = "clinicflow> "

var errShellOperator = errors.New("shell operators are not supported; quote the argument")

// NewSessionCommand creates the interactive session command.
func NewSessionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive front desk",
		Long: `Run an interactive session over one in-memory clinic.

Each input line is one command. Words are split on whitespace; use quotes
for names with spaces. Lines starting with # are ignored.

Registry:
  add NAME --age N --id RG [--entry dd/mm/yyyy]
  find NAME | find-id RG | update RG FIELD VALUE | remove NAME | list
Attendance queue:
  enqueue NAME | attend | queue | undo | history
Priority (oldest first, at most 20):
  priority add NAME | priority next | priority show
Reports:
  report year|month|day|age
Storage:
  save | load              registry snapshot in the SQLite database
  export [FILE] | import [FILE]   flat file (default from --data-file)
  quit

Example:
  printf 'add Ana --age 30 --id 111\nenqueue Ana\nattend\n' | clinicflow session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.newClinic()
			defer c.Close()

			s := &session{
				opts:   opts,
				clinic: c,
				out:    opts.formatter(cmd),
				ctx:    commandContext(cmd),
				now:    time.Now,
			}
			defer s.closeStore()

			opts.logger().Debug("session started", "session", c.SessionToken())
			return s.run(cmd.InOrStdin())
		},
	}
}

// session is one interactive run bound to a single Clinic.
type session struct {
	opts   *RootOptions
	clinic *engine.Clinic
	out    *OutputFormatter
	ctx    context.Context
	now    func() time.Time

	// store is opened on the first save or load.
	store *store.Store
	done  bool
}

func (s *session) run(in io.Reader) error {
	interactive := isTerminal(in)
	sc := bufio.NewScanner(in)
	for !s.done {
		if interactive {
			fmt.Fprint(s.out.GetErrWriter(), prompt)
		}
		if !sc.Scan() {
			break
		}
		s.exec(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// exec runs one input line. Errors are reported and never end the session.
func (s *session) exec(line string) {
	if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	words, err := splitWords(line)
	if err != nil {
		_ = s.out.Error(CodeUsage, err.Error(), nil)
		return
	}
	if len(words) == 0 {
		return
	}

	cmd := s.commands()
	cmd.SetArgs(words)
	cmd.SetOut(s.out.Writer)
	cmd.SetErr(s.out.GetErrWriter())
	if err := cmd.ExecuteContext(s.ctx); err != nil {
		s.reportError(err)
	}
}

// splitWords splits a line into words with shell quoting rules and no
// expansion. Shell operators (; & | < >) would silently cut the line short,
// so they are rejected.
func splitWords(line string) ([]string, error) {
	p := shellwords.NewParser()
	words, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("cannot parse line: %w", err)
	}
	if p.Position >= 0 {
		return nil, errShellOperator
	}
	return words, nil
}

func (s *session) reportError(err error) {
	code := errorCode(err)
	if code == string(engine.CodeUnknown) {
		// cobra argument and flag errors
		code = CodeUsage
	}
	_ = s.out.Error(code, err.Error(), nil)
}

func (s *session) openStore() (*store.Store, error) {
	if s.store != nil {
		return s.store, nil
	}
	st, err := s.opts.openStore()
	if err != nil {
		return nil, err
	}
	s.store = st
	return st, nil
}

func (s *session) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.opts.logger().Error("error closing database", "error", err)
	}
}

// commands builds a fresh command tree for one line, so flag values never
// leak from one line to the next.
func (s *session) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "clinicflow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		s.addCommand(),
		s.lineCommand("find NAME", 1, s.find),
		s.lineCommand("find-id RG", 1, s.findID),
		s.lineCommand("update RG FIELD VALUE", 3, s.update),
		s.lineCommand("remove NAME", 1, s.remove),
		s.lineCommand("list", 0, s.list),
		s.lineCommand("enqueue NAME", 1, s.enqueue),
		s.lineCommand("attend", 0, s.attend),
		s.lineCommand("queue", 0, s.queue),
		s.lineCommand("undo", 0, s.undo),
		s.lineCommand("history", 0, s.history),
		s.priorityCommand(),
		s.lineCommand("report KEY", 1, s.sortedReport),
		s.lineCommand("save", 0, s.save),
		s.lineCommand("load", 0, s.load),
		s.fileCommand("export [FILE]", s.export),
		s.fileCommand("import [FILE]", s.importFile),
		s.quitCommand(),
	)
	return root
}

// lineCommand wraps a handler that takes exactly n positional args and
// returns a value to print.
func (s *session) lineCommand(use string, n int, run func(args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:  use,
		Args: cobra.ExactArgs(n),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.emit(run(args))
		},
	}
}

func (s *session) fileCommand(use string, run func(path string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:  use,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.opts.DataFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = flatfile.DefaultFile
			}
			return s.emit(run(path))
		},
	}
}

func (s *session) emit(v any, err error) error {
	if err != nil {
		return err
	}
	return s.out.Success(v)
}

// ---- Registry ----

func (s *session) addCommand() *cobra.Command {
	var (
		age   int
		id    string
		entry string
	)
	cmd := &cobra.Command{
		Use:  "add NAME",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := todayDate(s.now())
			if entry != "" {
				d, err := patient.ParseDate(entry)
				if err != nil {
					return fmt.Errorf("add: %w: %v", engine.ErrInvalidField, err)
				}
				date = d
			}
			rec := s.clinic.Admit(patient.New(args[0], age, id, date))
			return s.out.Success(notice{Message: "Admitted: " + rec.String(), Patient: &rec})
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&id, "id", "", "identity document number (RG)")
	cmd.Flags().StringVar(&entry, "entry", "", "entry date dd/mm/yyyy (default today)")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func todayDate(t time.Time) patient.Date {
	return patient.Date{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}
}

func (s *session) find(args []string) (any, error) {
	rec, err := s.clinic.FindByName(args[0])
	if err != nil {
		return nil, err
	}
	return notice{Message: rec.String(), Patient: &rec}, nil
}

func (s *session) findID(args []string) (any, error) {
	rec, err := s.clinic.FindByID(args[0])
	if err != nil {
		return nil, err
	}
	return notice{Message: rec.String(), Patient: &rec}, nil
}

func (s *session) update(args []string) (any, error) {
	id, value := args[0], args[2]
	field, err := patient.ParseField(args[1])
	if err != nil {
		return nil, fmt.Errorf("update %q: %w: %v", id, engine.ErrInvalidField, err)
	}
	if err := s.clinic.Update(id, field, value); err != nil {
		return nil, err
	}
	return notice{Message: fmt.Sprintf("Updated RG %s: %s = %s", id, field, value)}, nil
}

func (s *session) remove(args []string) (any, error) {
	if err := s.clinic.Discharge(args[0]); err != nil {
		return nil, err
	}
	return notice{Message: "Removed: " + patient.NormalizeName(args[0])}, nil
}

func (s *session) list([]string) (any, error) {
	return newPatientList(slices.Collect(s.clinic.Patients()), "(registry is empty)"), nil
}

// ---- Attendance queue ----

func (s *session) enqueue(args []string) (any, error) {
	rec, err := s.clinic.Enqueue(args[0])
	if err != nil {
		return nil, err
	}
	return notice{
		Message: fmt.Sprintf("Enqueued: %s (queue length %d)", rec.Name, s.clinic.QueueLen()),
		Patient: &rec,
	}, nil
}

func (s *session) attend([]string) (any, error) {
	rec, err := s.clinic.Attend()
	if err != nil {
		return nil, err
	}
	return notice{Message: "Attending: " + rec.String(), Patient: &rec}, nil
}

func (s *session) queue([]string) (any, error) {
	return newPatientList(slices.Collect(s.clinic.Waiting()), "(queue is empty)"), nil
}

func (s *session) undo([]string) (any, error) {
	op, err := s.clinic.Undo()
	if err != nil {
		return nil, err
	}
	return notice{
		Message: fmt.Sprintf("Undone: %s (queue length %d)", op, s.clinic.QueueLen()),
		Undone:  &op,
	}, nil
}

func (s *session) history([]string) (any, error) {
	ops := slices.Collect(s.clinic.History())
	if ops == nil {
		ops = []engine.Operation{}
	}
	return historyList{Operations: ops}, nil
}

// ---- Priority heap ----

func (s *session) priorityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority",
		Short: "Priority attendance by age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("priority: want one of add, next, show")
		},
	}
	cmd.AddCommand(
		s.lineCommand("add NAME", 1, s.prioritize),
		s.lineCommand("next", 0, s.attendPriority),
		s.lineCommand("show", 0, s.showPriority),
	)
	return cmd
}

func (s *session) prioritize(args []string) (any, error) {
	rec, err := s.clinic.Prioritize(args[0])
	if err != nil {
		return nil, err
	}
	return notice{
		Message: fmt.Sprintf("Prioritized: %s, age %d (%d/%d)", rec.Name, rec.Age, s.clinic.PriorityLen(), engine.HeapCapacity),
		Patient: &rec,
	}, nil
}

func (s *session) attendPriority([]string) (any, error) {
	rec, err := s.clinic.AttendPriority()
	if err != nil {
		return nil, err
	}
	return notice{Message: "Attending: " + rec.String(), Patient: &rec}, nil
}

func (s *session) showPriority([]string) (any, error) {
	live := slices.Collect(s.clinic.PriorityEntries())
	if live == nil {
		live = []patient.Record{}
	}
	return priorityList{
		Patients: live,
		Slots:    s.clinic.PriorityLen(),
		Capacity: engine.HeapCapacity,
	}, nil
}

// ---- Reports ----

func (s *session) sortedReport(args []string) (any, error) {
	key, err := patient.ParseSortKey(args[0])
	if err != nil {
		return nil, fmt.Errorf("report: %w: %v", engine.ErrInvalidField, err)
	}
	seq, err := s.clinic.Report(key)
	if err != nil {
		return nil, err
	}
	return newPatientList(slices.Collect(seq), "(registry is empty)"), nil
}

// ---- Storage ----

func (s *session) save([]string) (any, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	info, err := st.WriteSnapshot(s.ctx, s.clinic.SessionToken(), s.clinic.Snapshot())
	if err != nil {
		return nil, err
	}
	return notice{
		Message:  fmt.Sprintf("Saved snapshot #%d (%d patients)", info.Seq, info.PatientCount),
		Snapshot: &info,
		Count:    info.PatientCount,
	}, nil
}

func (s *session) load([]string) (any, error) {
	st, err := s.openStore()
	if err != nil {
		return nil, err
	}
	snap, err := st.LatestSnapshot(s.ctx)
	if err != nil {
		return nil, err
	}
	s.clinic.Restore(snap.Patients)
	info := store.SnapshotInfo{ID: snap.ID, Seq: snap.Seq, Session: snap.Session, PatientCount: len(snap.Patients)}
	return notice{
		Message:  fmt.Sprintf("Loaded snapshot #%d (%d patients)", info.Seq, info.PatientCount),
		Snapshot: &info,
		Count:    info.PatientCount,
	}, nil
}

func (s *session) export(path string) (any, error) {
	if err := flatfile.SaveFile(path, s.clinic.Patients()); err != nil {
		return nil, err
	}
	n := s.clinic.RegistryLen()
	return notice{Message: fmt.Sprintf("Exported %d patients to %s", n, path), File: path, Count: n}, nil
}

func (s *session) importFile(path string) (any, error) {
	recs, err := flatfile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.clinic.Restore(recs)
	return notice{Message: fmt.Sprintf("Imported %d patients from %s", len(recs), path), File: path, Count: len(recs)}, nil
}

func (s *session) quitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.done = true
			return s.out.Success(notice{Message: "Bye."})
		},
	}
}
