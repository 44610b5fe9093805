package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sort"
	"time"

	"github.com/roach88/moacafe/internal/app"
	"github.com/roach88/moacafe/internal/config"
	"github.com/roach88/moacafe/internal/docstore"
	"github.com/roach88/moacafe/internal/engine"
	"github.com/roach88/moacafe/internal/remote"
	"github.com/roach88/moacafe/internal/store"
	"github.com/roach88/moacafe/internal/testutil"
)

// ScenarioStart is the wall-clock time of the first order in every
// scenario. Each later order is one minute newer.
var ScenarioStart = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// Harness runs one scenario against a real client stack: the SQLite local
// store, the sync engine, the app facade and the HTTP gateway talking to an
// in-process document store.
type Harness struct {
	docs   *docstore.Server
	snaps  *store.Snapshots
	engine *engine.Engine
	app    *app.App
	logger *slog.Logger

	seq    int64
	traced int // docstore requests already copied into the trace
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes harness and engine logs to logger. By default they are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database and an empty
// remote store. Order ids, cart line ids and timestamps are deterministic,
// so the trace is reproducible and can be compared with a golden file.
//
// An error is returned only when the scenario itself is broken (bad
// arguments, seeding failure). Unmet expectations are reported in the
// result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	ro := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&ro)
	}

	// The engine logs through the default logger.
	prev := slog.Default()
	slog.SetDefault(ro.logger)
	defer slog.SetDefault(prev)

	ctx := context.Background()

	cfg, err := config.Default()
	if err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	docs := docstore.New()
	if err := seedRemote(docs, scenario.Remote); err != nil {
		return nil, err
	}
	srv := httptest.NewServer(docs.Handler())
	defer srv.Close()

	db, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer db.Close()

	strategy := engine.DrainProbe
	if scenario.Drain != "" {
		strategy = engine.DrainStrategy(scenario.Drain)
	}

	snaps := store.NewSnapshots(db)
	eng := engine.New(ctx, remote.New(srv.URL, remote.WithTimeout(2*time.Second)), snaps,
		engine.WithDefaultMenu(cfg.Menu),
		engine.WithDefaultEventConfig(cfg.Event),
		engine.WithDrainStrategy(strategy),
		engine.WithInitialOnline(!scenario.StartOffline),
	)

	h := &Harness{
		docs:   docs,
		snaps:  snaps,
		engine: eng,
		app: app.New(eng, snaps,
			app.WithOrderIDs(testutil.NewSequenceIDs("ORD")),
			app.WithCartIDs(testutil.NewSequenceIDs("line-")),
			app.WithTimeSource(testutil.NewSteppingTime(ScenarioStart, time.Minute)),
		),
		logger: ro.logger,
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, err
	}

	state, err := h.finalState()
	if err != nil {
		return nil, err
	}
	result.State = state

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeFlow runs the steps in order. Each step contributes a step event,
// the requests the remote store received while it ran, and an outcome.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		run, ok := actions[step.Action]
		if !ok {
			return fmt.Errorf("flow step %d: unknown action %q", i, step.Action)
		}

		result.AddStepTrace(step.Action, step.Args, h.next())

		out, err := run(h, ctx, step.Args)
		var argErr *argError
		if errors.As(err, &argErr) {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Action, err)
		}

		h.traceRequests(result)

		outcomeCase := CaseOK
		if err != nil {
			outcomeCase = errorCase(err)
			if outcomeCase == "" {
				return fmt.Errorf("flow step %d (%s): %w", i, step.Action, err)
			}
		}
		result.AddOutcomeTrace(outcomeCase, out, h.next())

		h.logger.Info("flow step completed",
			"step", i,
			"action", step.Action,
			"case", outcomeCase,
		)

		if step.Expect == nil {
			if outcomeCase != CaseOK {
				result.AddError(fmt.Sprintf("flow step %d (%s): unexpected %s: %v", i, step.Action, outcomeCase, err))
			}
			continue
		}
		if step.Expect.Case != outcomeCase {
			result.AddError(fmt.Sprintf("flow step %d (%s): expected case %s, got %s",
				i, step.Action, step.Expect.Case, outcomeCase))
			continue
		}
		if field, ok := matchSubset(out, step.Expect.Result); !ok {
			result.AddError(fmt.Sprintf("flow step %d (%s): result field %q = %v, expected %v",
				i, step.Action, field, out[field], step.Expect.Result[field]))
		}
	}
	return nil
}

// traceRequests copies requests logged since the last call into the trace.
func (h *Harness) traceRequests(result *Result) {
	reqs := h.docs.Requests()
	for _, r := range reqs[h.traced:] {
		result.AddRequestTrace(r.Method, r.Path, r.Status, h.next())
	}
	h.traced = len(reqs)
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

// errorCase maps an error to its outcome case, or "" when the error is not
// a domain refusal.
func errorCase(err error) string {
	var appErr *app.Error
	if errors.As(err, &appErr) {
		return string(appErr.Code)
	}
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return string(engErr.Code)
	}
	return ""
}

func seedRemote(docs *docstore.Server, seed map[string]any) error {
	paths := make([]string, 0, len(seed))
	for p := range seed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := docs.Seed(p, seed[p]); err != nil {
			return fmt.Errorf("seed remote %s: %w", p, err)
		}
	}
	return nil
}
