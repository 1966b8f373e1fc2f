package harness

// TraceEvent is one delivery to a scenario listener.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Listener string `json:"listener"`
	Type     string `json:"type"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
	Prior    any    `json:"prior,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists every delivery in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// State is the whole database after the last step.
	State any `json:"state"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Received returns the trace entries delivered to the named listener.
func (r *Result) Received(listener string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Listener == listener {
			out = append(out, ev)
		}
	}
	return out
}
