package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default menu and clear local orders",
		Long: `Restore the default menu and event settings and clear local orders, the
offline queue and language preferences. Only this device is affected;
nothing is deleted from the remote store, so the next sync brings remote
data back.

Queued orders that were never sent are lost.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "reset discards local data; pass --yes to confirm")
			}

			s, err := rootOpts.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.app.Reset(commandContext(cmd))
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(map[string]int{"menu": len(s.app.Menu()), "orders": len(s.app.Orders())})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Local data reset: %d menu items, no orders\n", len(s.app.Menu()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
