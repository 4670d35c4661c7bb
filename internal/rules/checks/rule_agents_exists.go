package checks

import (
	"context"
	"fmt"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

type AgentsExistsRule struct{}

func (r *AgentsExistsRule) ID() string {
	return "R1"
}

func (r *AgentsExistsRule) Title() string {
	return "AGENTS.md Exists at Repository Root"
}

func (r *AgentsExistsRule) Description() string {
	return "Verifies that an AGENTS.md file exists at the repository root. The file must use the canonical name AGENTS.md; casing variants are reported as violations."
}

func (r *AgentsExistsRule) Severity() rules.Severity {
	return rules.SeverityMust
}

func (r *AgentsExistsRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	if _, ok := snap.FileAtRoot(snapshot.NameAgents); ok {
		return rules.PassResultWithMessage(r, snap.Root, "AGENTS.md present at repository root"), nil
	}

	if f, ok := snap.RootMatch(snapshot.NameAgents); ok {
		res := rules.ViolationResult(r, snap.Root, fmt.Sprintf("found %s at repository root, expected the canonical name AGENTS.md", f.Name))
		res.File = f.RelPath
		return res, nil
	}

	for i := range snap.Files {
		f := &snap.Files[i]
		if f.Name == snapshot.NameAgents {
			res := rules.ViolationResult(r, snap.Root, fmt.Sprintf("AGENTS.md found but not at repository root (found %s)", f.RelPath))
			res.File = f.RelPath
			return res, nil
		}
	}

	return rules.ViolationResult(r, snap.Root, "AGENTS.md not found at repository root"), nil
}

func init() {
	rules.Register(&AgentsExistsRule{})
}
