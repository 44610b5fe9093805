package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/moacafe/internal/app"
	"github.com/roach88/moacafe/internal/config"
	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/remote"
	"github.com/roach88/moacafe/internal/store"
)

// session is the client stack one command works against.
type session struct {
	cfg     *config.Config
	db      *store.Store
	snaps   *store.Snapshots
	gateway *remote.Gateway
	engine  *engine.Engine
	app     *app.App
}

// loadConfig resolves the config layers and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: o.ConfigFile,
		EnvFile:    o.EnvFile,
		LookupEnv:  o.LookupEnv,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.RemoteURL != "" {
		cfg.RemoteURL = o.RemoteURL
	}
	if o.Drain != "" {
		cfg.Drain = o.Drain
	}
	return cfg, nil
}

// installLogger routes slog to w. Verbose lowers the level to Debug.
func (o *RootOptions) installLogger(w io.Writer, level slog.Level) {
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// openSession wires config, local store, gateway, engine and facade. When
// connect is set and the platform is online, it bootstraps before
// returning so the command sees the remote state.
func (o *RootOptions) openSession(cmd *cobra.Command, connect bool) (*session, error) {
	o.installLogger(cmd.ErrOrStderr(), slog.LevelWarn)

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	drain, err := engine.ParseDrainStrategy(cfg.Drain)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	snaps := store.NewSnapshots(db)

	gw := remote.New(cfg.RemoteURL,
		remote.WithTimeout(cfg.Timeout),
		remote.WithAuthToken(cfg.AuthToken),
	)
	eng := engine.New(commandContext(cmd), gw, snaps,
		engine.WithPollInterval(cfg.PollInterval),
		engine.WithDrainStrategy(drain),
		engine.WithDefaultMenu(cfg.Menu),
		engine.WithDefaultEventConfig(cfg.Event),
		engine.WithInitialOnline(!o.Offline),
	)

	s := &session{
		cfg:     cfg,
		db:      db,
		snaps:   snaps,
		gateway: gw,
		engine:  eng,
		app:     app.New(eng, snaps),
	}
	if connect && !o.Offline {
		state := eng.Bootstrap(commandContext(cmd))
		slog.Debug("session connected", "remote", cfg.RemoteURL, "db_status", state.DB)
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
