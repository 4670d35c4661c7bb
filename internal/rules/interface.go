package rules

import (
	"context"

	"doctrinecheck/internal/snapshot"
)

type Rule interface {
	ID() string
	Title() string
	Description() string

	// Severity states the requirement strength. The engine maps a violated
	// MUST rule to FAIL and a violated SHOULD rule to WARN via the result
	// helpers; MAY rules are advisory only.
	Severity() Severity

	// Evaluate runs rule logic using only the snapshot.
	// Rules MUST NOT touch the filesystem, the network, or the clock.
	Evaluate(ctx context.Context, snap *snapshot.Snapshot) (Result, error)
}

type Option struct {
	Name        string
	Description string
	Default     string
}

type ConfigurableRule interface {
	Rule
	Options() []Option
	Configure(opts map[string]string) error
}
