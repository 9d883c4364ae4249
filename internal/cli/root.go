package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/roach88/pharmstock/internal/config"
	"github.com/roach88/pharmstock/internal/logger"
	"github.com/roach88/pharmstock/internal/runid"
	"github.com/roach88/pharmstock/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	DBPath   string // overrides the db setting when non-empty
	LogLevel string // overrides the log_level setting when non-empty

	// RunIDs generates the run id; UUIDv7 when nil.
	RunIDs runid.Generator

	// Resolved on first use by resolve.
	Config *config.Config
	Log    zerolog.Logger
	RunID  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pharmstock CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pharmstock",
		Short: "Pharmacy stock tracker",
		Long: `Track pharmacy products and their stock movements in a local SQLite file.

Products are declared with a name and a quantity. Each OUT movement
rewrites the product's quantity to what remains of the declared amount.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (default from config, then inventory.db)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (trace|debug|info|warn|error|disabled)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewMovementCommand(opts))
	cmd.AddCommand(NewInventoryCommand(opts))
	cmd.AddCommand(NewRemainingCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// resolve loads configuration and builds the logger once per invocation.
// Flags win over env vars and the config file.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if o.Config != nil {
		return nil
	}

	v := config.New()
	if o.DBPath != "" {
		v.Set(config.KeyDB, o.DBPath)
	}
	if o.LogLevel != "" {
		v.Set(config.KeyLogLevel, o.LogLevel)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level := cfg.LogLevel
	if o.Verbose && o.LogLevel == "" {
		level = "debug"
	}

	o.Config = cfg
	if o.RunIDs == nil {
		o.RunIDs = runid.UUIDv7{}
	}
	o.RunID = o.RunIDs.Generate()
	o.Log = logger.New(logger.Config{
		Env:   cfg.Env,
		Level: level,
		Out:   cmd.ErrOrStderr(),
	}).With().Str("run_id", o.RunID).Logger()

	return nil
}

// openStore resolves configuration and opens the configured database.
// Failure to open is a command error (exit 2).
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	if err := o.resolve(cmd); err != nil {
		return nil, err
	}

	st, err := store.Open(o.Config.DBPath, store.WithLogger(o.Log))
	if err != nil {
		o.Log.Error().Err(err).Str("db", o.Config.DBPath).Msg("open database failed")
		if o.Format == "json" {
			_ = o.formatter(cmd).Error(ErrCodeDatabase, "cannot open database", err.Error())
		}
		return nil, WrapExitError(ExitCommandError, "cannot open database", err)
	}
	o.Log.Debug().Str("db", o.Config.DBPath).Msg("database opened")
	return st, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
