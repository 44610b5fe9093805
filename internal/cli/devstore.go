package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/docstore"
	"github.com/roach88/moacafe/internal/ir"
)

// DevstoreOptions holds flags for the devstore command.
type DevstoreOptions struct {
	*RootOptions
	Addr string
	Seed bool
	Deny bool
}

// NewDevstoreCommand creates the devstore command.
func NewDevstoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DevstoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "devstore",
		Short: "Serve an in-memory document store for development",
		Long: `Serve an in-memory document store speaking the same REST dialect as
the hosted one (GET/PUT/PATCH on <path>.json). Data is lost on exit.

--seed loads the configured menu and event settings so clients bootstrap
against a populated store; without it the first client seeds the store.
--deny answers every request with 401, as locked security rules do.

Example:
  moacafe devstore --addr 127.0.0.1:8787 --seed
  moacafe --remote http://127.0.0.1:8787 sync`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevstore(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8787", "listen address")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "seed the configured menu and event settings")
	cmd.Flags().BoolVar(&opts.Deny, "deny", false, "reject every request with 401")
	return cmd
}

func runDevstore(opts *DevstoreOptions, cmd *cobra.Command) error {
	opts.installLogger(cmd.ErrOrStderr(), slog.LevelInfo)

	docs := docstore.New()
	docs.SetDeny(opts.Deny)
	if opts.Seed {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		if err := seedDevstore(docs, cfg.Menu, cfg.Event); err != nil {
			return WrapExitError(ExitCommandError, "failed to seed store", err)
		}
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	srv := &http.Server{
		Handler:           docs.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("document store shutdown failed", "error", err)
		}
	}()

	slog.Info("document store listening", "addr", ln.Addr().String(), "seeded", opts.Seed, "deny", opts.Deny)
	fmt.Fprintf(cmd.OutOrStdout(), "Document store listening on http://%s\n", ln.Addr())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "document store error", err)
	}
	slog.Info("document store stopped", "requests", len(docs.Requests()))
	return nil
}

// seedDevstore writes the menu keyed by id and the event settings.
func seedDevstore(docs *docstore.Server, menu []ir.MenuItem, event ir.EventConfig) error {
	byID := make(map[string]ir.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID] = item
	}
	if err := docs.Seed("menu", byID); err != nil {
		return err
	}
	return docs.Seed("eventConfig", event)
}
