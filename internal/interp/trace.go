package interp

// Event records the observable outcome of one executed step.
type Event struct {
	// Step is the 1-based index of the scenario step, or 0 for the
	// synthetic end-of-scope events appended after the last step.
	Step int `json:"step"`

	// Op is the operation that ran, as written in the scenario.
	Op string `json:"op"`

	// Target and From mirror the step fields that applied.
	Target string `json:"target,omitempty"`
	From   string `json:"from,omitempty"`

	// Alloc is the allocation name the event's counts refer to.
	Alloc string `json:"alloc,omitempty"`

	// Strong and Weak are the allocation's counts after the step.
	// Meaningful only when HasCounts is true (count events and every
	// event touching a live allocation).
	Strong    int  `json:"strong,omitempty"`
	Weak      int  `json:"weak,omitempty"`
	HasCounts bool `json:"hasCounts"`

	// Note carries informational outcomes: failed upgrades, finalized
	// allocations, end-of-scope releases.
	Note string `json:"note,omitempty"`

	// Violation is the borrow-conflict message when the step was
	// rejected by the cell's borrow checker. Empty otherwise.
	Violation string `json:"violation,omitempty"`
}

// Trace is the full record of a scenario run.
type Trace struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Events are in execution order, end-of-scope events last.
	Events []Event `json:"events"`

	// Leaked names the allocations still alive after end-of-scope, in
	// allocation order. Non-empty means a strong cycle.
	Leaked []string `json:"leaked,omitempty"`

	// Freed names the allocations whose finalizer ran, in the order
	// they died.
	Freed []string `json:"freed,omitempty"`
}

// Violations returns all borrow-conflict events in the trace.
func (t *Trace) Violations() []Event {
	var out []Event
	for _, e := range t.Events {
		if e.Violation != "" {
			out = append(out, e)
		}
	}
	return out
}

// HasLeaks reports whether any allocation survived end-of-scope.
func (t *Trace) HasLeaks() bool {
	return len(t.Leaked) > 0
}
