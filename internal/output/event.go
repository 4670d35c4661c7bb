package output

import "doctrinecheck/internal/rules"

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - target.started
// - rule.result
// - target.finished
// - run.finished
//
// JSON mode remains an aggregate of rules.Result values.
type Event struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	*rules.Result
	Targets int `json:"targets,omitempty"`
	Rules   int `json:"rules,omitempty"`
	// ExitCode is a pointer so run.finished always carries exit_code, a clean
	// run included, while the other event types omit it.
	ExitCode *int `json:"exit_code,omitempty"`
}

func eventFromResult(r rules.Result) Event {
	return Event{Type: "rule.result", Target: r.Target, Result: &r}
}
