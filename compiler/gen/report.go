package gen

import (
	"fmt"
	"strings"
)

// Action is the outcome of one step of a run.
type Action string

// Actions reported while generating and rolling back.
const (
	ActionCreated     Action = "created"
	ActionOverwritten Action = "overwritten"
	ActionSkipped     Action = "skipped"
	ActionBackedUp    Action = "backed up"
	ActionRestored    Action = "restored"
	ActionDeleted     Action = "deleted"
	ActionFailed      Action = "failed"
	ActionWarning     Action = "warning"
)

// Event is one reported state transition.
type Event struct {
	Action   Action
	Entity   string
	Artifact Artifact
	Path     string
	Message  string
	Err      error
}

// String returns a one line description of the event.
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(string(e.Action))
	if e.Artifact != "" {
		fmt.Fprintf(&b, " %s", e.Artifact)
	}
	if e.Entity != "" {
		fmt.Fprintf(&b, " of %s", e.Entity)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Reporter receives events as they happen.
type Reporter interface {
	Report(Event)
}

// The ReporterFunc type is an adapter to allow the use of ordinary
// functions as Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

// Report is the audit trail of a run.
type Report struct {
	// Backup is the id of the backup taken before writing, if any.
	Backup string
	Events []Event
	sink   Reporter
}

// NewReport creates a report forwarding every event to sink, which may be nil.
func NewReport(sink Reporter) *Report {
	return &Report{sink: sink}
}

// Add records an event.
func (r *Report) Add(e Event) {
	r.Events = append(r.Events, e)
	if r.sink != nil {
		r.sink.Report(e)
	}
}

// Warn records a warning.
func (r *Report) Warn(entity string, format string, args ...any) {
	r.Add(Event{Action: ActionWarning, Entity: entity, Message: fmt.Sprintf(format, args...)})
}

// Count returns the number of events with the given action.
func (r *Report) Count(a Action) int {
	n := 0
	for _, e := range r.Events {
		if e.Action == a {
			n++
		}
	}
	return n
}

// Written returns the paths created or overwritten, in order.
func (r *Report) Written() []string {
	var paths []string
	for _, e := range r.Events {
		if e.Action == ActionCreated || e.Action == ActionOverwritten {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Warnings returns the messages of warning events.
func (r *Report) Warnings() []string {
	var msgs []string
	for _, e := range r.Events {
		if e.Action == ActionWarning {
			msgs = append(msgs, e.String())
		}
	}
	return msgs
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool { return r.Count(ActionFailed) > 0 }

// Summary returns the end-of-run counts.
func (r *Report) Summary() string {
	parts := make([]string, 0, 5)
	for _, a := range []Action{ActionCreated, ActionOverwritten, ActionSkipped, ActionFailed, ActionWarning} {
		if n := r.Count(a); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, a))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}
