package checks

import (
	"context"
	"strings"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

// keepAChangelogMarker is the preamble phrase the Keep a Changelog convention
// puts near the top of every conforming changelog.
const keepAChangelogMarker = "keep a changelog"

// changelogPreambleWindow bounds how far into the file the marker may appear.
const changelogPreambleWindow = 2048

type ChangelogPreambleRule struct{}

func (r *ChangelogPreambleRule) ID() string {
	return "R6"
}

func (r *ChangelogPreambleRule) Title() string {
	return "CHANGELOG.md Follows Keep a Changelog"
}

func (r *ChangelogPreambleRule) Description() string {
	return "Verifies that a CHANGELOG.md exists at the repository root and that its preamble carries the Keep a Changelog marker."
}

func (r *ChangelogPreambleRule) Severity() rules.Severity {
	return rules.SeverityShould
}

func (r *ChangelogPreambleRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	f, ok := snap.FileAtRoot(snapshot.NameChangelog)
	if !ok {
		if m, found := snap.RootMatch(snapshot.NameChangelog); found {
			res := rules.ViolationResult(r, snap.Root, "found "+m.Name+" at repository root, expected the canonical name CHANGELOG.md")
			res.File = m.RelPath
			return res, nil
		}
		return rules.ViolationResult(r, snap.Root, "CHANGELOG.md not found at repository root"), nil
	}

	preamble := f.Content
	if len(preamble) > changelogPreambleWindow {
		preamble = preamble[:changelogPreambleWindow]
	}
	if !strings.Contains(strings.ToLower(string(preamble)), keepAChangelogMarker) {
		res := rules.ViolationResult(r, snap.Root, "CHANGELOG.md preamble does not reference Keep a Changelog")
		res.File = f.RelPath
		return res, nil
	}

	return rules.PassResultWithMessage(r, snap.Root, "CHANGELOG.md present with Keep a Changelog preamble"), nil
}

func init() {
	rules.Register(&ChangelogPreambleRule{})
}
