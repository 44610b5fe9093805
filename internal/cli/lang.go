package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/store"
)

// NewLangCommand creates the lang command group.
func NewLangCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Get or set the interface language",
		Long: `Get or set the interface language. Customers and staff keep separate
preferences (--role customer|admin). English and Indonesian are supported;
regional tags such as id-ID are accepted.`,
	}
	cmd.PersistentFlags().StringVar(&role, "role", string(store.RoleCustomer), "whose preference (customer|admin)")

	cmd.AddCommand(&cobra.Command{
		Use:           "get",
		Short:         "Show the stored language",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkRole(role); err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			tag := s.app.Language(commandContext(cmd), store.Role(role))
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(map[string]string{"role": role, "lang": tag.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tag.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "set <tag>",
		Short:         "Store the language",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkRole(role); err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()
			f := rootOpts.formatter(cmd)

			tag, err := s.app.SetLanguage(commandContext(cmd), store.Role(role), args[0])
			if err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				return f.Success(map[string]string{"role": role, "lang": tag.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Language for %s set to %s\n", role, tag.String())
			return nil
		},
	})
	return cmd
}

func checkRole(role string) error {
	switch store.Role(role) {
	case store.RoleCustomer, store.RoleAdmin:
		return nil
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("unknown role %q (want customer or admin)", role))
}
