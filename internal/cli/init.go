package cli

import (
	"github.com/spf13/cobra"
)

// InitResult is the json payload of the init command.
type InitResult struct {
	DBPath        string `json:"db"`
	SchemaVersion int    `json:"schema_version"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the database",
		Long: `Create the database file and its tables if they do not exist, and
upgrade a database written by an older version in place.

Safe to run any number of times.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := opts.formatter(cmd)

	version, err := st.SchemaVersion(cmd.Context())
	if err != nil {
		return formatter.ReportError(err)
	}

	formatter.VerboseLog("schema version %d", version)
	return formatter.Done(
		InitResult{DBPath: opts.Config.DBPath, SchemaVersion: version},
		"database ready: %s", opts.Config.DBPath,
	)
}
