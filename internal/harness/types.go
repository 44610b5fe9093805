package harness

// Trace event types.
const (
	EventStep    = "step"
	EventRequest = "request"
	EventOutcome = "outcome"
)

// Outcome case reported for a step that returned no error.
const CaseOK = "ok"

// TraceEvent is one entry of a scenario trace: a step being run, a request
// the remote store received while it ran, or the step's outcome.
type TraceEvent struct {
	Type   string         `json:"type"`
	Seq    int64          `json:"seq"`
	Action string         `json:"action,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	Status int            `json:"status,omitempty"`
	Case   string         `json:"case,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists steps, remote requests and outcomes in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// State holds the final converged views, keyed by the names
	// final_state assertions use.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace records a step about to run.
func (r *Result) AddStepTrace(action string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventStep,
		Action: action,
		Args:   args,
		Seq:    seq,
	})
}

// AddRequestTrace records a request received by the remote store.
func (r *Result) AddRequestTrace(method, path string, status int, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventRequest,
		Method: method,
		Path:   path,
		Status: status,
		Seq:    seq,
	})
}

// AddOutcomeTrace records how a step ended.
func (r *Result) AddOutcomeTrace(outcomeCase string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventOutcome,
		Case:   outcomeCase,
		Result: result,
		Seq:    seq,
	})
}

// Requests returns the request events of the trace.
func (r *Result) Requests() []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type == EventRequest {
			out = append(out, ev)
		}
	}
	return out
}
