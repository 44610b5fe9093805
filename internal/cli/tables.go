package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the QR payload for every table",
		Long: `Print the payload to encode in each table's QR code. The number of
tables follows the event configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			payloads := s.app.Tables()
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(payloads)
			}
			for i, p := range payloads {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, p)
			}
			return nil
		},
	}
}
