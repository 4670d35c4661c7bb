package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

type secretPattern struct {
	kind string
	re   *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"stripe secret key", regexp.MustCompile(`\bsk_(?:live|test)_[A-Za-z0-9]{20,}`)},
	{"aws access key id", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"github token", regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`)},
	{"private key block", regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`)},
}

var passwordAssignment = regexp.MustCompile(`(?i)\bpassword\s*=\s*(\S+)`)

// placeholderValue matches values that are obviously not real credentials:
// angle-bracket templates, environment references, masked runs, and the usual
// documentation stand-ins.
// The angle-bracket alternative tolerates a missing closing bracket because
// the captured value stops at the first whitespace ("<your password here>"
// captures as "<your").
var placeholderValue = regexp.MustCompile(`(?i)^["']?(<[^>]*>?|\$\{?[A-Za-z_][A-Za-z0-9_]*\}?|x{3,}|\*{3,}|changeme|example|placeholder|your[-_][A-Za-z0-9_-]+)["']?[.,;]?$`)

type secretFinding struct {
	file string
	line int
	kind string
}

type AgentsSecretsRule struct{}

func (r *AgentsSecretsRule) ID() string {
	return "R4"
}

func (r *AgentsSecretsRule) Title() string {
	return "No Committed Secrets in Doctrine Files"
}

func (r *AgentsSecretsRule) Description() string {
	return "Verifies that AGENTS.md and .cursorrules contain no patterns resembling committed secrets: provider API key prefixes, PEM private key headers, and password assignments outside obvious placeholder values."
}

func (r *AgentsSecretsRule) Severity() rules.Severity {
	return rules.SeverityMust
}

func (r *AgentsSecretsRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	var findings []secretFinding
	checked := 0

	for i := range snap.Files {
		f := &snap.Files[i]
		if f.Name != snapshot.NameAgents && f.Name != snapshot.NameCursorrules {
			continue
		}
		// An empty file trivially contains no secrets; it still counts as
		// checked.
		checked++
		findings = append(findings, scanForSecrets(f)...)
	}

	if checked == 0 {
		return rules.SkipResult(r, snap.Root, "no doctrine files to check"), nil
	}

	if len(findings) == 0 {
		return rules.PassResultWithMessage(r, snap.Root, fmt.Sprintf("no secret-resembling patterns in %d file(s)", checked)), nil
	}

	first := findings[0]
	evidence := make(map[string]string, len(findings))
	for _, fd := range findings {
		evidence[fmt.Sprintf("%s:%d", fd.file, fd.line)] = fd.kind
	}
	res := rules.ViolationResultWithEvidence(r, snap.Root,
		fmt.Sprintf("%d secret-resembling pattern(s) found; first is a %s at %s:%d", len(findings), first.kind, first.file, first.line),
		evidence)
	res.File = first.file
	res.Line = first.line
	return res, nil
}

func scanForSecrets(f *snapshot.File) []secretFinding {
	var findings []secretFinding
	for i, line := range strings.Split(string(f.Content), "\n") {
		for _, p := range secretPatterns {
			if p.re.MatchString(line) {
				findings = append(findings, secretFinding{file: f.RelPath, line: i + 1, kind: p.kind})
			}
		}
		if m := passwordAssignment.FindStringSubmatch(line); m != nil {
			if !placeholderValue.MatchString(m[1]) {
				findings = append(findings, secretFinding{file: f.RelPath, line: i + 1, kind: "password assignment"})
			}
		}
	}
	return findings
}

func init() {
	rules.Register(&AgentsSecretsRule{})
}
