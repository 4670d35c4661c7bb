package checks

import (
	"context"
	"fmt"
	"strings"

	"doctrinecheck/internal/markdown"
	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

const standardsSectionTitle = "Standards"

type StandardsSectionRule struct{}

func (r *StandardsSectionRule) ID() string {
	return "R5"
}

func (r *StandardsSectionRule) Title() string {
	return "AGENTS.md References a Doctrine Source"
}

func (r *StandardsSectionRule) Description() string {
	return "Verifies that AGENTS.md declares where its standards come from: a Standards section linking to an external doctrine source, or a doctrine key in YAML frontmatter."
}

func (r *StandardsSectionRule) Severity() rules.Severity {
	return rules.SeverityShould
}

func (r *StandardsSectionRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	f, ok := snap.FileAtRoot(snapshot.NameAgents)
	if !ok || len(f.Content) == 0 {
		return rules.SkipResult(r, snap.Root, "AGENTS.md not present"), nil
	}

	doc, err := markdown.Parse(f.Content)
	if err != nil {
		return rules.Result{}, err
	}

	if source, ok := doc.FrontmatterString("doctrine"); ok && source != "" {
		return rules.PassResultWithMessage(r, snap.Root, fmt.Sprintf("doctrine source declared in frontmatter (%s)", source)), nil
	}

	section, found := doc.Section(standardsSectionTitle)
	if !found {
		res := rules.ViolationResult(r, snap.Root, "AGENTS.md has no Standards section referencing a doctrine source")
		res.File = f.RelPath
		return res, nil
	}

	for _, link := range section.Links {
		if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
			return rules.PassResultWithMessage(r, snap.Root, fmt.Sprintf("Standards section links to %s", link)), nil
		}
	}

	res := rules.ViolationResult(r, snap.Root, "Standards section in AGENTS.md does not link to an external doctrine source")
	res.File = f.RelPath
	return res, nil
}

func init() {
	rules.Register(&StandardsSectionRule{})
}
