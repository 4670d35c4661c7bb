package checks

import (
	"context"
	"strings"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

type CursorrulesPointerRule struct{}

func (r *CursorrulesPointerRule) ID() string {
	return "R8"
}

func (r *CursorrulesPointerRule) Title() string {
	return ".cursorrules Points at AGENTS.md"
}

func (r *CursorrulesPointerRule) Description() string {
	return "Verifies that .cursorrules, when present at the repository root, names AGENTS.md as the canonical source of project context instead of restating it."
}

func (r *CursorrulesPointerRule) Severity() rules.Severity {
	return rules.SeverityShould
}

func (r *CursorrulesPointerRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	f, ok := snap.FileAtRoot(snapshot.NameCursorrules)
	if !ok {
		return rules.SkipResult(r, snap.Root, ".cursorrules not present"), nil
	}

	if len(strings.TrimSpace(string(f.Content))) == 0 {
		res := rules.ViolationResult(r, snap.Root, ".cursorrules is empty")
		res.File = f.RelPath
		return res, nil
	}

	if !strings.Contains(string(f.Content), snapshot.NameAgents) {
		res := rules.ViolationResult(r, snap.Root, ".cursorrules does not reference AGENTS.md as the canonical source")
		res.File = f.RelPath
		return res, nil
	}

	return rules.PassResultWithMessage(r, snap.Root, ".cursorrules references AGENTS.md"), nil
}

func init() {
	rules.Register(&CursorrulesPointerRule{})
}
