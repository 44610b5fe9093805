package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/roach88/moacafe/internal/ir"
)

const eventPath = "/eventConfig.json"

// DefaultEventConfig is returned when the remote path holds nothing.
func DefaultEventConfig() ir.EventConfig {
	return ir.EventConfig{
		IsActive:           false,
		EventName:          "Event",
		TableCount:         10,
		DiscountPercentage: 0,
	}
}

// EventResult is the outcome of FetchEventConfig. Config is set whenever the
// store was reachable.
type EventResult struct {
	Outcome Outcome
	Config  ir.EventConfig
}

// FetchEventConfig reads the event configuration singleton.
// An empty path yields DefaultEventConfig with OutcomeEmpty. A stored value
// outside the allowed bounds is unavailable so the local config is kept.
func (g *Gateway) FetchEventConfig(ctx context.Context) EventResult {
	res := g.Do(ctx, http.MethodGet, eventPath, nil)
	switch res.Outcome {
	case OutcomeEmpty:
		return EventResult{Outcome: OutcomeEmpty, Config: DefaultEventConfig()}
	case OutcomeUnavailable:
		return EventResult{Outcome: OutcomeUnavailable}
	}

	var cfg ir.EventConfig
	if err := json.Unmarshal(res.Data, &cfg); err != nil {
		slog.Warn("remote event config malformed", "error", err)
		return EventResult{Outcome: OutcomeUnavailable}
	}
	if err := cfg.Validate(); err != nil {
		slog.Warn("remote event config out of bounds; keeping local config", "error", err)
		return EventResult{Outcome: OutcomeUnavailable}
	}
	return EventResult{Outcome: OutcomeOK, Config: cfg}
}

// ReplaceEventConfig overwrites the event configuration singleton.
func (g *Gateway) ReplaceEventConfig(ctx context.Context, cfg ir.EventConfig) Outcome {
	return g.Do(ctx, http.MethodPut, eventPath, cfg).Outcome
}
