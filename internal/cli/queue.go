package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/engine"
)

// NewQueueCommand creates the queue command group.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect or flush the offline queue",
	}
	cmd.AddCommand(newQueueShowCommand(rootOpts))
	cmd.AddCommand(newQueueDrainCommand(rootOpts))
	return cmd
}

func newQueueShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "List orders waiting to be sent",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			queued := s.app.Queue()
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(queued)
			}

			w := cmd.OutOrStdout()
			if len(queued) == 0 {
				fmt.Fprintln(w, "Offline queue is empty.")
				return nil
			}
			fmt.Fprintf(w, "%d order(s) queued, oldest first:\n", len(queued))
			for _, o := range queued {
				fmt.Fprintf(w, "  %-12s table %-3d %-10s %12s\n", o.ID, o.TableNumber, o.Status, FormatPrice(o.TotalAmount))
			}
			return nil
		},
	}
}

func newQueueDrainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Send queued orders to the remote store",
		Long: `Connect to the remote store and send queued orders using the
configured drain strategy (--drain probe|sequential).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			report := s.engine.Drain(commandContext(cmd))
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(report)
			}
			printDrainReport(cmd, report, s.engine.Connectivity())
			return nil
		},
	}
}

func printDrainReport(cmd *cobra.Command, report engine.DrainReport, state engine.Connectivity) {
	w := cmd.OutOrStdout()
	if !report.Attempted {
		if report.Remaining == 0 {
			fmt.Fprintln(w, "Offline queue is empty.")
			return
		}
		fmt.Fprintf(w, "Not connected (%s); %d order(s) still queued\n", state.DB, report.Remaining)
		return
	}
	fmt.Fprintf(w, "Drain (%s): %d sent, %d failed, %d still queued\n",
		report.Strategy, len(report.Sent), len(report.Failed), report.Remaining)
	for _, id := range report.Failed {
		fmt.Fprintf(w, "  failed: %s\n", id)
	}
}
