package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigFile string
	EnvFile    string
	DBPath     string
	RemoteURL  string
	Drain      string
	Offline    bool

	// LookupEnv overrides the process environment (for testing).
	LookupEnv func(key string) (string, bool)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the moacafe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "moacafe",
		Short: "moacafe - table ordering that keeps working offline",
		Long: `Order-taking client for a café floor.

Customers order from their table, staff move orders through
pending → preparing → delivered and keep the menu and event settings
current. Everything is cached in a local SQLite file; orders placed while
the remote document store is out of reach are queued and sent when it
comes back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "CUE config file unified with the defaults")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file with MOACAFE_* settings")
	flags.StringVar(&opts.DBPath, "db", "", "path to the local SQLite cache (overrides config)")
	flags.StringVar(&opts.RemoteURL, "remote", "", "base URL of the remote document store (overrides config)")
	flags.StringVar(&opts.Drain, "drain", "", "offline queue drain strategy: probe|sequential (overrides config)")
	flags.BoolVar(&opts.Offline, "offline", false, "start with the platform offline; no remote requests are made")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewMenuCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewLangCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewDevstoreCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
