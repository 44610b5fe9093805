package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/moacafe/internal/engine"
)

// Scenario is a scripted session against a fresh client and remote store.
// Steps run one at a time; the background sync loop is not started, so
// bootstrap, poll and drain happen exactly where the flow says.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains the behavior the scenario pins down.
	Description string `yaml:"description"`

	// StartOffline starts the client with the platform reporting offline.
	StartOffline bool `yaml:"start_offline,omitempty"`

	// Drain selects the drain strategy ("probe" when empty).
	Drain string `yaml:"drain,omitempty"`

	// Remote seeds the remote store before the flow, keyed by path
	// (e.g. "orders/X1"). Seeding is not traced.
	Remote map[string]any `yaml:"remote,omitempty"`

	// Flow is the ordered list of steps.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FlowStep is one action of the flow.
type FlowStep struct {
	// Action names the step (see the Action constants).
	Action string `yaml:"action"`

	// Args are the action arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect, when set, is checked against the step's outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Case is "ok" or the error code the step fails with.
	Case string `yaml:"case"`

	// Result is a subset match against the step's result fields.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Action and Args are used by trace_contains and trace_count.
	Action string         `yaml:"action,omitempty"`
	Args   map[string]any `yaml:"args,omitempty"`

	// Actions is the expected step order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Method and Path select remote requests (request_count).
	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path,omitempty"`

	// Count is the expected number of occurrences.
	Count int `yaml:"count,omitempty"`

	// Table names a final state view (final_state).
	Table string `yaml:"table,omitempty"`

	// Where selects one element of a list view by field equality.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect is a subset match against the selected element.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Len, when set, is the expected length of a list view.
	Len *int `yaml:"len,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRequestCount  = "request_count"
	AssertFinalState    = "final_state"
)

var validAssertions = map[string]bool{
	AssertTraceContains: true,
	AssertTraceOrder:    true,
	AssertTraceCount:    true,
	AssertRequestCount:  true,
	AssertFinalState:    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file of dir in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, s)
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Drain != "" {
		if _, err := engine.ParseDrainStrategy(s.Drain); err != nil {
			return err
		}
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if step.Action == "" {
			return fmt.Errorf("flow[%d]: action is required", i)
		}
		if _, ok := actions[step.Action]; !ok {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Action)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d]: expect.case is required", i)
		}
	}

	for i, a := range s.Assertions {
		if !validAssertions[a.Type] {
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
		switch a.Type {
		case AssertTraceContains, AssertTraceCount:
			if a.Action == "" {
				return fmt.Errorf("assertions[%d]: %s requires action", i, a.Type)
			}
		case AssertTraceOrder:
			if len(a.Actions) < 2 {
				return fmt.Errorf("assertions[%d]: trace_order requires at least two actions", i)
			}
		case AssertRequestCount:
			if a.Path == "" {
				return fmt.Errorf("assertions[%d]: request_count requires path", i)
			}
		case AssertFinalState:
			if a.Table == "" {
				return fmt.Errorf("assertions[%d]: final_state requires table", i)
			}
		}
	}
	return nil
}
