package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/app"
	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/ir"
)

// PlacedOrder is the result of order place.
type PlacedOrder struct {
	Order  ir.Order `json:"order"`
	Queued bool     `json:"queued"`
}

// NewOrderCommand creates the order command group.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place an order or move one along",
	}
	cmd.AddCommand(newOrderPlaceCommand(rootOpts))
	cmd.AddCommand(newOrderStatusCommand(rootOpts))
	cmd.AddCommand(newOrderCancelCommand(rootOpts))
	return cmd
}

func newOrderPlaceCommand(rootOpts *RootOptions) *cobra.Command {
	var table, payment string
	var items []string

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Check out a cart for a table",
		Long: `Check out a cart for a table.

Each --item is a menu id, optionally followed by *quantity and
/-separated options:

  sugar=0%|25%|50%|75%|100%   ice=No Ice|Less|Normal|Extra
  shot                        notes=<free text>

Drink options are ignored for snacks. The table is a number or the
MOA_TABLE_<n> payload printed on the table's QR code. When the remote
store is out of reach the order is queued locally and sent later.

Examples:
  moacafe order place --table 3 --item 'c2*2/sugar=50%/ice=Less' --item s1
  moacafe order place --table MOA_TABLE_7 --payment qris --item 'c1/shot'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := make([]itemSpec, 0, len(items))
			for _, raw := range items {
				spec, err := parseItemSpec(raw)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			n, err := s.app.ParseTable(table)
			if err != nil {
				return f.Fail(err)
			}
			cart, err := fillCart(s.app, specs)
			if err != nil {
				return f.Fail(err)
			}
			order, err := s.app.Checkout(commandContext(cmd), cart, n, ir.PaymentMethod(payment))
			if err != nil {
				return f.Fail(err)
			}

			placed := PlacedOrder{Order: order, Queued: s.engine.Queue().Contains(order.ID)}
			if f.Format == "json" {
				return f.Success(placed)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Order %s for table %d: %s\n", order.ID, order.TableNumber, FormatPrice(order.TotalAmount))
			if placed.Queued {
				fmt.Fprintln(w, "Remote store unreachable; the order is queued and will be sent on the next sync.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table number or QR payload (required)")
	cmd.Flags().StringVar(&payment, "payment", string(ir.PaymentCash), "payment method (cash|qris)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "menu item, repeatable (see above)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

// itemSpec is one parsed --item value.
type itemSpec struct {
	ID       string
	Quantity int
	Options  app.LineOptions
}

// parseItemSpec parses id[*qty][/opt...].
func parseItemSpec(raw string) (itemSpec, error) {
	parts := strings.Split(raw, "/")
	head := strings.TrimSpace(parts[0])
	spec := itemSpec{ID: head, Quantity: 1}

	if id, qty, ok := strings.Cut(head, "*"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 1 {
			return itemSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("item %q: quantity must be a positive number", raw))
		}
		spec.ID = strings.TrimSpace(id)
		spec.Quantity = n
	}
	if spec.ID == "" {
		return itemSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("item %q: missing menu id", raw))
	}

	for _, opt := range parts[1:] {
		key, value, _ := strings.Cut(opt, "=")
		switch strings.TrimSpace(key) {
		case "sugar":
			spec.Options.Sugar = ir.SugarLevel(value)
		case "ice":
			spec.Options.Ice = ir.IceLevel(value)
		case "shot":
			spec.Options.ExtraShot = true
		case "notes":
			spec.Options.Notes = value
		default:
			return itemSpec{}, NewExitError(ExitCommandError, fmt.Sprintf("item %q: unknown option %q", raw, opt))
		}
	}
	return spec, nil
}

// fillCart adds every spec to a fresh cart.
func fillCart(a *app.App, specs []itemSpec) (*app.Cart, error) {
	menu := a.Menu()
	cart := a.NewCart()
	for _, spec := range specs {
		i := ir.FindMenuItem(menu, spec.ID)
		if i < 0 {
			return nil, &engine.Error{Code: engine.ErrCodeUnknownMenuItem, ItemID: spec.ID, Message: "not on the menu"}
		}
		line, err := cart.Add(menu[i], spec.Options)
		if err != nil {
			return nil, err
		}
		if spec.Quantity > 1 {
			if _, err := cart.UpdateQuantity(line.CartID, spec.Quantity-1); err != nil {
				return nil, err
			}
		}
	}
	return cart, nil
}

func newOrderStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <preparing|delivered|cancelled>",
		Short: "Move an order to its next status",
		Long: `Move an order along pending → preparing → delivered.
Only pending orders can be cancelled.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setOrderStatus(rootOpts, cmd, args[0], ir.OrderStatus(args[1]))
		},
	}
}

func newOrderCancelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "cancel <order-id>",
		Short:         "Cancel a pending order",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setOrderStatus(rootOpts, cmd, args[0], ir.StatusCancelled)
		},
	}
}

func setOrderStatus(opts *RootOptions, cmd *cobra.Command, id string, status ir.OrderStatus) error {
	s, err := opts.openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()
	f := opts.formatter(cmd)

	ctx := commandContext(cmd)
	if status == ir.StatusCancelled {
		err = s.app.CancelOrder(ctx, id)
	} else {
		err = s.app.UpdateOrderStatus(ctx, id, status)
	}
	if err != nil {
		return f.Fail(err)
	}

	order, _ := s.app.Order(id)
	if f.Format == "json" {
		return f.Success(order)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", id, order.Status)
	return nil
}
