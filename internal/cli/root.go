package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/clinicflow/internal/config"
	"github.com/roach88/clinicflow/internal/engine"
	"github.com/roach88/clinicflow/internal/store"
)

// RootOptions holds global flags for all commands and the configuration
// resolved from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string
	DataFile   string

	// Config is resolved in PersistentPreRunE.
	Config *config.Config

	// Logger writes structured diagnostics to the command's stderr.
	Logger *slog.Logger

	// Tokens overrides the session token generator (for testing).
	// If nil, defaults to engine.UUIDv7Generator.
	Tokens engine.SessionTokenGenerator
}

// NewRootCommand creates the root command for the clinicflow CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinicflow",
		Short: "clinicflow - patient flow for a small clinic",
		Long: `clinicflow keeps a patient registry, an attendance queue with undo,
a priority queue by age and sorted reports.

Use "clinicflow session" for the interactive front desk. The one-shot
commands work on the latest registry snapshot saved in the database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "clinicflow.db", "path to SQLite snapshot database")
	cmd.PersistentFlags().StringVar(&opts.DataFile, "data-file", "dbPacientes.txt", "flat file used by session import/export")

	cmd.AddCommand(NewSessionCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewSnapshotsCommand(opts))

	return cmd
}

// resolve loads configuration, applies it back onto the options and sets
// up logging.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
	if err != nil {
		// The formatter depends on the configuration, so report in plain text.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: invalid configuration: %v\n", err)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	opts.Config = cfg
	opts.Format = cfg.Format
	opts.Database = cfg.DB
	opts.DataFile = cfg.DataFile

	level, _ := cfg.Level()
	opts.Logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// formatter builds an OutputFormatter bound to cmd's writers.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newClinic creates a Clinic with the configured logger and token source.
func (opts *RootOptions) newClinic() *engine.Clinic {
	tokens := opts.Tokens
	if tokens == nil {
		tokens = engine.UUIDv7Generator{}
	}
	return engine.New(engine.WithTokenGenerator(tokens), engine.WithLogger(opts.logger()))
}

func (opts *RootOptions) logger() *slog.Logger {
	if opts.Logger == nil {
		return slog.Default()
	}
	return opts.Logger
}

// openStore opens the configured snapshot database.
func (opts *RootOptions) openStore() (*store.Store, error) {
	opts.logger().Debug("opening database", "path", opts.Database)
	return store.Open(opts.Database)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
