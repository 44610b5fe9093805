package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/moacafe/internal/app"
	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/ir"
	"github.com/roach88/moacafe/internal/store"
)

// NewMenuCommand creates the menu command group.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List and edit the menu",
	}
	cmd.AddCommand(newMenuListCommand(rootOpts))
	cmd.AddCommand(newMenuAddCommand(rootOpts))
	cmd.AddCommand(newMenuDeleteCommand(rootOpts))
	cmd.AddCommand(newMenuAvailabilityCommand(rootOpts))
	cmd.AddCommand(newMenuPriceCommand(rootOpts))
	return cmd
}

func newMenuListCommand(rootOpts *RootOptions) *cobra.Command {
	var category, lang string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the menu",
		Long: `Show the menu, optionally one category tab.

Names are shown in the customer language unless --lang is given.
The "Best Seller" tab also lists every coffee.

Examples:
  moacafe menu list
  moacafe menu list --category Snacks --lang id`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			items := s.app.Menu()
			if category != "" {
				c := ir.Category(category)
				if !ir.ValidCategories[c] {
					return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", category))
				}
				items = s.app.MenuByCategory(c)
			}
			if items == nil {
				items = []ir.MenuItem{}
			}

			tag := s.app.Language(commandContext(cmd), store.RoleCustomer)
			if lang != "" {
				if tag, err = app.ParseLanguage(lang); err != nil {
					return f.Fail(err)
				}
			}

			if f.Format == "json" {
				return f.Success(items)
			}
			printMenu(cmd, items, tag)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only this category tab")
	cmd.Flags().StringVar(&lang, "lang", "", "language for item names (en|id)")
	return cmd
}

func printMenu(cmd *cobra.Command, items []ir.MenuItem, tag language.Tag) {
	w := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(w, "No menu items.")
		return
	}
	for _, item := range items {
		status := ""
		if !item.IsAvailable {
			status = "  (sold out)"
		}
		fmt.Fprintf(w, "%-6s %-28s %-11s %12s%s\n",
			item.ID, app.ItemName(item, tag), item.Category, FormatPrice(item.Price), status)
	}
}

func newMenuAddCommand(rootOpts *RootOptions) *cobra.Command {
	var draft app.MenuDraft
	var category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item",
		Long: `Add a menu item from the new-item form.

Unset fields take the form defaults: the Indonesian name copies the
English one, the category is Coffee and a placeholder image is used.

Example:
  moacafe menu add --name "Opening Cold Brew" --price 28000 --category Event`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			draft.Category = ir.Category(category)
			item, err := s.app.AddMenuItem(commandContext(cmd), draft)
			if err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				return f.Success(item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s (%s)\n", item.ID, item.NameEN, FormatPrice(item.Price))
			return nil
		},
	}

	cmd.Flags().StringVar(&draft.ID, "id", "", "item id (generated when empty)")
	cmd.Flags().StringVar(&draft.NameEN, "name", "", "English name (required)")
	cmd.Flags().StringVar(&draft.NameID, "name-id", "", "Indonesian name")
	cmd.Flags().Int64Var(&draft.Price, "price", 0, "price in rupiah (required)")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&draft.Description, "description", "", "description")
	cmd.Flags().StringVar(&draft.Image, "image", "", "image URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newMenuDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove a menu item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			if err := s.app.DeleteMenuItem(commandContext(cmd), args[0]); err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				return f.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newMenuAvailabilityCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "availability <id> <on|off>",
		Short: "Mark an item orderable or sold out",
		Example: `  moacafe menu availability s2 off
  moacafe menu availability s2 on`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := parseSwitch(args[1])
			if err != nil {
				return err
			}

			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			if err := s.app.SetAvailability(commandContext(cmd), args[0], available); err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				return f.Success(map[string]any{"id": args[0], "isAvailable": available})
			}
			state := "available"
			if !available {
				state = "sold out"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", args[0], state)
			return nil
		},
	}
}

func newMenuPriceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price <id> <amount>",
		Short: "Change an item's price",
		Long: `Change an item's price. Orders already placed keep the total they
were placed with.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid price %q", args[1]))
			}

			s, err := rootOpts.openSession(cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			menu := s.app.Menu()
			i := ir.FindMenuItem(menu, args[0])
			if i < 0 {
				return f.Fail(&engine.Error{Code: engine.ErrCodeUnknownMenuItem, ItemID: args[0], Message: "no such menu item"})
			}
			item := menu[i]
			item.Price = price
			if err := s.app.UpdateMenuItem(commandContext(cmd), item); err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				return f.Success(item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now costs %s\n", item.ID, FormatPrice(item.Price))
			return nil
		},
	}
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, NewExitError(ExitCommandError, fmt.Sprintf("expected on or off, got %q", s))
}
