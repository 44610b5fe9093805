package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/ir"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the sales summary",
		Long: `Show total sales and order counts by status.
Cancelled orders are counted but not included in total sales.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			summary := s.app.Summary()
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(summary)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total sales: %s\n", FormatPrice(summary.TotalSales))
			fmt.Fprintf(w, "Orders:      %d\n", summary.OrderCount)
			for _, st := range []ir.OrderStatus{ir.StatusPending, ir.StatusPreparing, ir.StatusDelivered, ir.StatusCancelled} {
				fmt.Fprintf(w, "  %-10s %d\n", st, summary.ByStatus[st])
			}
			return nil
		},
	}
}
