package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the background sync loop",
		Long: `Keep the local cache in sync with the remote document store.

Bootstraps once, then polls orders and event settings every poll interval,
retries bootstrap while the store is unreachable and drains the offline
queue whenever it is connected. Platform connectivity follows a TCP dial
to the remote host every poll interval, so an unreachable host reads as
disconnected rather than permission denied. --offline pins the platform
offline. Stops on Ctrl-C.

Example:
  moacafe run --db ./moacafe.db --remote http://127.0.0.1:8787
  moacafe run --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(rootOpts, cmd)
		},
	}
	return cmd
}

func runEngine(opts *RootOptions, cmd *cobra.Command) error {
	s, err := opts.openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()
	opts.installLogger(cmd.ErrOrStderr(), slog.LevelInfo)

	unsubscribe := s.app.Subscribe(func(c engine.Change) {
		slog.Info("state changed", "kind", c.Kind, "rev", c.Rev)
	})
	defer unsubscribe()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if !opts.Offline {
		go s.gateway.WatchHost(ctx, s.cfg.PollInterval, s.engine.SetOnline)
	}

	slog.Info("sync loop starting", "db", s.cfg.DBPath, "remote", s.cfg.RemoteURL)
	fmt.Fprintln(cmd.OutOrStdout(), "Sync engine started.")
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if err := s.engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "sync engine error", err)
	}

	slog.Info("sync engine stopped gracefully", "queued", s.engine.Queue().Len())
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, or when
// the command's own context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(commandContext(cmd))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
