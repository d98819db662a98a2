package harness

import (
	"github.com/roach88/storefront/internal/command"
	"github.com/roach88/storefront/internal/storefront"
)

// Trace entry types.
const (
	TraceTypeCommand = "command"
	TraceTypeEvent   = "event"
)

// TraceEvent is one entry of a scenario trace: either a step's command with
// its outcome, or a hook event fired while that step ran.
type TraceEvent struct {
	Type string `json:"type"` // "command" or "event"
	Step int    `json:"step"` // index into Scenario.Steps

	// Command entries.
	Op     string         `json:"op,omitempty"`
	Args   command.Args   `json:"args,omitempty"`
	Status command.Status `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`

	// Event entries.
	Seq      int64                `json:"seq,omitempty"`
	Kind     storefront.EventKind `json:"kind,omitempty"`
	Category string               `json:"category,omitempty"`
	Key      string               `json:"key,omitempty"`

	Instance string `json:"instance"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds step commands and fired events in order. Each command
	// entry precedes the events its step fired.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds a snapshot of every instance left after the last step.
	State map[string]storefront.InstanceView `json:"state,omitempty"`

	// SessionID is the journal session the events were written to, if any.
	SessionID string `json:"session_id,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]storefront.InstanceView),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Events returns only the event entries of the trace.
func (r *Result) Events() []TraceEvent {
	return eventsOf(r.Trace)
}

// addCommandTrace appends a command entry and returns its index so the
// outcome can be filled in after the command ran.
func (r *Result) addCommandTrace(step int, cmd command.Command) int {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     TraceTypeCommand,
		Step:     step,
		Op:       cmd.Op,
		Instance: cmd.Instance,
		Args:     cmd.Args,
	})
	return len(r.Trace) - 1
}

// addEventTrace appends a hook event fired during step.
func (r *Result) addEventTrace(step int, ev storefront.Event) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     TraceTypeEvent,
		Step:     step,
		Seq:      ev.Seq,
		Kind:     ev.Kind,
		Instance: ev.Instance,
		Category: ev.Category,
		Key:      ev.Key,
	})
}

func eventsOf(trace []TraceEvent) []TraceEvent {
	out := make([]TraceEvent, 0, len(trace))
	for _, e := range trace {
		if e.Type == TraceTypeEvent {
			out = append(out, e)
		}
	}
	return out
}
