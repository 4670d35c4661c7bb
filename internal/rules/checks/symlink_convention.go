package checks

import (
	"fmt"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

// evaluateSymlinkConvention implements the shared logic for the symlink
// convention rules: a tool-specific file (CLAUDE.md, GEMINI.md), when present
// at the root, must be a symlink whose chain resolves to the root AGENTS.md.
// The file being absent is not a violation; those rules skip.
func evaluateSymlinkConvention(r rules.Rule, snap *snapshot.Snapshot, name string) rules.Result {
	f, ok := snap.FileAtRoot(name)
	if !ok {
		if m, found := snap.RootMatch(name); found {
			res := rules.ViolationResult(r, snap.Root, fmt.Sprintf("found %s at repository root, expected the canonical name %s", m.Name, name))
			res.File = m.RelPath
			return res
		}
		return rules.SkipResult(r, snap.Root, fmt.Sprintf("%s not present", name))
	}

	if !f.IsSymlink {
		res := rules.ViolationResult(r, snap.Root, fmt.Sprintf("%s is a regular file; expected a symlink to %s", name, snapshot.NameAgents))
		res.File = f.RelPath
		return res
	}

	if !f.LinkResolves {
		res := rules.ViolationResultWithEvidence(r, snap.Root,
			fmt.Sprintf("%s symlink is broken (target: %s)", name, f.LinkTarget),
			map[string]string{"link_target": f.LinkTarget})
		res.File = f.RelPath
		return res
	}

	if !snap.ResolvesToRootFile(f, snapshot.NameAgents) {
		res := rules.ViolationResultWithEvidence(r, snap.Root,
			fmt.Sprintf("%s symlink resolves to %s, expected the root %s", name, f.LinkTarget, snapshot.NameAgents),
			map[string]string{"link_target": f.LinkTarget, "resolved_target": f.ResolvedTarget})
		res.File = f.RelPath
		return res
	}

	return rules.PassResultWithMessage(r, snap.Root, fmt.Sprintf("%s is a symlink resolving to %s", name, snapshot.NameAgents))
}
