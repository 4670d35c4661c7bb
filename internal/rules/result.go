package rules

// Status is the outcome of evaluating one rule against one target.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusWarn Status = "WARN"
	StatusSkip Status = "SKIP"
)

// Severity expresses requirement strength in RFC 2119 terms. A violated MUST
// rule fails the run; a violated SHOULD rule only warns.
type Severity string

const (
	SeverityMust   Severity = "MUST"
	SeverityShould Severity = "SHOULD"
	SeverityMay    Severity = "MAY"
)

type Result struct {
	RuleID   string   `json:"rule_id"`
	Target   string   `json:"target"`
	Status   Status   `json:"status"`
	Severity Severity `json:"severity,omitempty"`
	Message  string   `json:"message,omitempty"`
	// File is the path of the offending file, relative to the target root.
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	// Evidence contains simple key-value string pairs supporting the result.
	Evidence map[string]string `json:"evidence,omitempty"`
}
