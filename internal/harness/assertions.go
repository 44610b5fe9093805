package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Final state views available to final_state assertions.
const (
	TableMenu         = "menu"
	TableOrders       = "orders"
	TableQueue        = "queue"
	TableEvent        = "event"
	TableConnectivity = "connectivity"
	TablePending      = "pending"
	TableStoredOrders = "stored_orders"
	TableStoredQueue  = "stored_queue"
	TableRemoteMenu   = "remote_menu"
	TableRemoteOrders = "remote_orders"
	TableRemoteEvent  = "remote_event"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			switch event.Type {
			case EventStep:
				fmt.Fprintf(&buf, "  [%d] %s %v\n", event.Seq, event.Action, event.Args)
			case EventRequest:
				fmt.Fprintf(&buf, "  [%d]   %s %s -> %d\n", event.Seq, event.Method, event.Path, event.Status)
			case EventOutcome:
				fmt.Fprintf(&buf, "  [%d]   = %s %v\n", event.Seq, event.Case, event.Result)
			}
		}
	}
	return buf.String()
}

// assertTraceContains checks if the trace contains a step matching the
// specified action and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == EventStep && event.Action == assertion.Action {
			if _, ok := matchSubset(event.Args, assertion.Args); ok {
				return nil
			}
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the actions appear
// in the given order. Intervening steps are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type != EventStep {
			continue
		}
		if _, seen := positions[event.Action]; !seen {
			positions[event.Action] = i + 1
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev, curr := assertion.Actions[i-1], assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the step appears exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventStep && event.Action == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertRequestCount checks how many requests the remote store received on
// a path. An empty method matches any method.
func assertRequestCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type != EventRequest || event.Path != assertion.Path {
			continue
		}
		if assertion.Method == "" || strings.EqualFold(event.Method, assertion.Method) {
			count++
		}
	}
	if count != assertion.Count {
		method := assertion.Method
		if method == "" {
			method = "*"
		}
		return &AssertionError{
			Type:     AssertRequestCount,
			Expected: fmt.Sprintf("%d requests %s %s", assertion.Count, method, assertion.Path),
			Actual:   fmt.Sprintf("%d requests", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks one final state view. List views are filtered by
// Where and must leave exactly one element unless only Len is asserted;
// object views ignore Where.
func assertFinalState(state map[string]any, assertion Assertion) error {
	view, ok := state[assertion.Table]
	if !ok {
		return fmt.Errorf("final_state: unknown table %q", assertion.Table)
	}

	list, isList := view.([]any)
	if !isList {
		if field, ok := matchSubset(asObject(view), assertion.Expect); !ok {
			return stateMismatch(assertion, field, asObject(view)[field])
		}
		return nil
	}

	if assertion.Len != nil && len(list) != *assertion.Len {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s has %d entries", assertion.Table, *assertion.Len),
			Actual:   fmt.Sprintf("%d entries", len(list)),
		}
	}
	if len(assertion.Where) == 0 && len(assertion.Expect) == 0 {
		return nil
	}

	var matches []map[string]any
	for _, elem := range list {
		obj := asObject(elem)
		if _, ok := matchSubset(obj, assertion.Where); ok {
			matches = append(matches, obj)
		}
	}
	switch len(matches) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhere(assertion.Where)),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhere(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	if field, ok := matchSubset(matches[0], assertion.Expect); !ok {
		return stateMismatch(assertion, field, matches[0][field])
	}
	return nil
}

func stateMismatch(assertion Assertion, field string, actual any) error {
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%s.%s = %v", assertion.Table, field, assertion.Expect[field]),
		Actual:   fmt.Sprintf("%s.%s = %v", assertion.Table, field, actual),
	}
}

// formatWhere creates a human-readable description of the filter.
func formatWhere(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// matchSubset reports whether every expected field equals the actual one
// after both are normalized through JSON. On mismatch it returns the first
// failing field in key order.
func matchSubset(actual, expected map[string]any) (string, bool) {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := actual[k]
		if !ok || !reflect.DeepEqual(normalize(got), normalize(expected[k])) {
			return k, false
		}
	}
	return "", true
}

// normalize maps a value to what encoding/json would decode it as, so that
// YAML ints, Go int64 and JSON float64 compare equal.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func asObject(v any) map[string]any {
	obj, _ := normalize(v).(map[string]any)
	return obj
}

// EvaluateAssertions evaluates all assertions against the result and
// returns a message for each failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertRequestCount:
			err = assertRequestCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// finalState collects every view final_state assertions can address.
// Views are normalized to generic JSON values.
func (h *Harness) finalState() (map[string]any, error) {
	ctx := context.Background()
	s := h.engine.Snapshot()

	views := map[string]any{
		TableMenu:         s.Menu,
		TableOrders:       s.Orders,
		TableQueue:        s.Queue,
		TableEvent:        s.Event,
		TableConnectivity: s.Connectivity,
		TablePending:      s.Pending,
		TableStoredOrders: h.snaps.LoadOrders(ctx),
		TableStoredQueue:  h.snaps.LoadQueue(ctx),
	}

	for table, path := range map[string]string{TableRemoteMenu: "menu", TableRemoteOrders: "orders"} {
		var raw any
		if err := json.Unmarshal(h.docs.Value(path), &raw); err != nil {
			return nil, fmt.Errorf("read remote %s: %w", path, err)
		}
		views[table] = collection(raw)
	}
	var event any
	if err := json.Unmarshal(h.docs.Value("eventConfig"), &event); err != nil {
		return nil, fmt.Errorf("read remote eventConfig: %w", err)
	}
	views[TableRemoteEvent] = event

	out := make(map[string]any, len(views))
	for k, v := range views {
		n := normalize(v)
		if n == nil {
			if _, isList := collectionTables[k]; isList {
				n = []any{}
			}
		}
		out[k] = n
	}
	return out, nil
}

var collectionTables = map[string]struct{}{
	TableMenu: {}, TableOrders: {}, TableQueue: {},
	TableStoredOrders: {}, TableStoredQueue: {},
	TableRemoteMenu: {}, TableRemoteOrders: {},
}

// collection flattens a remote collection (object keyed by id, or array
// with holes) into a list ordered by key.
func collection(raw any) []any {
	switch v := raw.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, elem := range v {
			if elem != nil {
				out = append(out, elem)
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, v[k])
		}
		return out
	default:
		return []any{}
	}
}
