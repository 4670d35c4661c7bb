package checks

import (
	"context"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

type GeminiSymlinkRule struct{}

func (r *GeminiSymlinkRule) ID() string {
	return "R7"
}

func (r *GeminiSymlinkRule) Title() string {
	return "GEMINI.md Is a Symlink to AGENTS.md"
}

func (r *GeminiSymlinkRule) Description() string {
	return "Verifies that GEMINI.md, when present at the repository root, is a filesystem symlink whose target resolves to the root AGENTS.md."
}

func (r *GeminiSymlinkRule) Severity() rules.Severity {
	return rules.SeverityShould
}

func (r *GeminiSymlinkRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	return evaluateSymlinkConvention(r, snap, snapshot.NameGemini), nil
}

func init() {
	rules.Register(&GeminiSymlinkRule{})
}
