package checks

import (
	"context"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

type ClaudeSymlinkRule struct{}

func (r *ClaudeSymlinkRule) ID() string {
	return "R2"
}

func (r *ClaudeSymlinkRule) Title() string {
	return "CLAUDE.md Is a Symlink to AGENTS.md"
}

func (r *ClaudeSymlinkRule) Description() string {
	return "Verifies that CLAUDE.md, when present at the repository root, is a filesystem symlink whose target resolves to the root AGENTS.md. Keeping tool-specific names as symlinks to one canonical file prevents content drift."
}

func (r *ClaudeSymlinkRule) Severity() rules.Severity {
	return rules.SeverityMust
}

func (r *ClaudeSymlinkRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	return evaluateSymlinkConvention(r, snap, snapshot.NameClaude), nil
}

func init() {
	rules.Register(&ClaudeSymlinkRule{})
}
