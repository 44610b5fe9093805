package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/ir"
)

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	var table int
	var status string

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders, newest first",
		Long: `List orders, newest first.

Orders still waiting in the offline queue are listed too and marked
"queued".

Examples:
  moacafe orders
  moacafe orders --table 3
  moacafe orders --status pending --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !ir.ValidStatuses[ir.OrderStatus(status)] {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown status %q", status))
			}

			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			orders := s.app.Orders()
			if table > 0 {
				orders = s.app.TableOrders(table)
			}
			filtered := make([]ir.Order, 0, len(orders))
			for _, o := range orders {
				if status == "" || o.Status == ir.OrderStatus(status) {
					filtered = append(filtered, o)
				}
			}

			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(filtered)
			}
			printOrders(cmd, filtered, s.engine.Queue().Contains)
			return nil
		},
	}

	cmd.Flags().IntVar(&table, "table", 0, "only orders from this table")
	cmd.Flags().StringVar(&status, "status", "", "only orders with this status")
	return cmd
}

func printOrders(cmd *cobra.Command, orders []ir.Order, queued func(id string) bool) {
	w := cmd.OutOrStdout()
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders.")
		return
	}
	for _, o := range orders {
		mark := ""
		if queued(o.ID) {
			mark = "  queued"
		}
		placed := time.UnixMilli(o.Timestamp).Format("15:04")
		fmt.Fprintf(w, "%-12s table %-3d %-10s %12s  %s %s%s\n",
			o.ID, o.TableNumber, o.Status, FormatPrice(o.TotalAmount), placed, o.PaymentMethod, mark)
		for _, line := range o.Items {
			fmt.Fprintf(w, "    %dx %s%s\n", line.Quantity, line.NameEN, lineOptions(line))
		}
	}
}

func lineOptions(line ir.CartItem) string {
	if !line.Category.IsDrink() {
		if line.Notes != "" {
			return " (" + line.Notes + ")"
		}
		return ""
	}
	opts := []string{"sugar " + string(line.SugarLevel), "ice " + string(line.IceLevel)}
	if line.ExtraShot {
		opts = append(opts, "extra shot")
	}
	if line.Notes != "" {
		opts = append(opts, line.Notes)
	}
	return " (" + strings.Join(opts, ", ") + ")"
}
