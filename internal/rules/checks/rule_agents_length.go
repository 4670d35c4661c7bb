package checks

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

const (
	defaultWarnLines = 500
	defaultMaxLines  = 1000
)

type AgentsLengthRule struct {
	warnLines int
	maxLines  int
}

func (r *AgentsLengthRule) ID() string {
	return "R3"
}

func (r *AgentsLengthRule) Title() string {
	return "AGENTS.md Length Within Bounds"
}

func (r *AgentsLengthRule) Description() string {
	return "Verifies that AGENTS.md stays within the documented length bounds. Exceeding max_lines (default 1000) is a violation; exceeding warn_lines (default 500) is a warning. A file of exactly warn_lines passes."
}

func (r *AgentsLengthRule) Severity() rules.Severity {
	return rules.SeverityMust
}

func (r *AgentsLengthRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "warn_lines",
			Description: "Line count above which AGENTS.md draws a warning.",
			Default:     strconv.Itoa(defaultWarnLines),
		},
		{
			Name:        "max_lines",
			Description: "Line count above which AGENTS.md fails the rule.",
			Default:     strconv.Itoa(defaultMaxLines),
		},
	}
}

func (r *AgentsLengthRule) Configure(opts map[string]string) error {
	if val, ok := opts["warn_lines"]; ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return errors.Errorf("warn_lines must be a positive integer, got %q", val)
		}
		r.warnLines = n
	}
	if val, ok := opts["max_lines"]; ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return errors.Errorf("max_lines must be a positive integer, got %q", val)
		}
		r.maxLines = n
	}
	if r.effectiveWarn() > r.effectiveMax() {
		return errors.Errorf("warn_lines (%d) must not exceed max_lines (%d)", r.effectiveWarn(), r.effectiveMax())
	}
	return nil
}

func (r *AgentsLengthRule) effectiveWarn() int {
	if r.warnLines > 0 {
		return r.warnLines
	}
	return defaultWarnLines
}

func (r *AgentsLengthRule) effectiveMax() int {
	if r.maxLines > 0 {
		return r.maxLines
	}
	return defaultMaxLines
}

func (r *AgentsLengthRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	f, ok := snap.FileAtRoot(snapshot.NameAgents)
	if !ok {
		return rules.SkipResult(r, snap.Root, "AGENTS.md not present"), nil
	}

	lines := f.LineCount()
	warn := r.effectiveWarn()
	max := r.effectiveMax()

	switch {
	case lines > max:
		res := rules.ViolationResult(r, snap.Root, fmt.Sprintf("AGENTS.md has %d lines, above the hard limit of %d", lines, max))
		res.File = f.RelPath
		return res, nil
	case lines > warn:
		res := rules.NewResult(r, snap.Root, rules.StatusWarn, fmt.Sprintf("AGENTS.md has %d lines, above the recommended %d", lines, warn))
		res.File = f.RelPath
		return res, nil
	default:
		return rules.PassResultWithMessage(r, snap.Root, fmt.Sprintf("AGENTS.md has %d lines", lines)), nil
	}
}

func init() {
	rules.Register(&AgentsLengthRule{})
}
