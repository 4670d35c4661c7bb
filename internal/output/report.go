package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"doctrinecheck/internal/rules"
)

// ReportSink writes a Markdown report on Close. The report carries no
// timestamps so that repeated runs against an unchanged tree produce
// byte-identical files.
type ReportSink struct {
	path    string
	command string
	file    *os.File
	mu      sync.Mutex
	results []rules.Result
	targets map[string]struct{}
}

type targetStats struct {
	Target  string
	Pass    int
	Fail    int
	Warn    int
	Skip    int
	Results []rules.Result
}

// NewReportSink creates a report sink. command is the reproducibility command
// line printed at the end of the report; empty omits the section.
func NewReportSink(path string, command string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path:    path,
		command: command,
		file:    f,
		targets: make(map[string]struct{}),
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case rules.Result:
		s.results = append(s.results, t)
		if t.Target != "" {
			s.targets[t.Target] = struct{}{}
		}
	case Event:
		if t.Target != "" {
			s.targets[t.Target] = struct{}{}
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var targets []string
	for t := range s.targets {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	perTarget := make(map[string]*targetStats)
	for _, t := range targets {
		perTarget[t] = &targetStats{Target: t}
	}
	for _, r := range s.results {
		ts, ok := perTarget[r.Target]
		if !ok {
			ts = &targetStats{Target: r.Target}
			perTarget[r.Target] = ts
			targets = append(targets, r.Target)
			sort.Strings(targets)
		}
		ts.Results = append(ts.Results, r)
		switch r.Status {
		case rules.StatusPass:
			ts.Pass++
		case rules.StatusFail:
			ts.Fail++
		case rules.StatusWarn:
			ts.Warn++
		case rules.StatusSkip:
			ts.Skip++
		}
	}

	var b strings.Builder
	b.WriteString("# Doctrine Check Report\n\n")

	b.WriteString("## Summary\n\n")
	if len(targets) == 0 {
		b.WriteString("No targets were checked.\n\n")
	} else {
		b.WriteString("| Target | Pass | Fail | Warn | Skip |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, t := range targets {
			ts := perTarget[t]
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n", ts.Target, ts.Pass, ts.Fail, ts.Warn, ts.Skip)
		}
		b.WriteString("\n")
	}

	wroteFindings := false
	for _, t := range targets {
		ts := perTarget[t]
		var findings []rules.Result
		for _, r := range ts.Results {
			if r.Status == rules.StatusFail || r.Status == rules.StatusWarn {
				findings = append(findings, r)
			}
		}
		if len(findings) == 0 {
			continue
		}
		if !wroteFindings {
			b.WriteString("## Findings\n\n")
			wroteFindings = true
		}
		fmt.Fprintf(&b, "### %s\n\n", ts.Target)
		for _, r := range findings {
			fmt.Fprintf(&b, "- **%s** %s (%s)", r.RuleID, r.Status, r.Severity)
			if r.Message != "" {
				fmt.Fprintf(&b, ": %s", r.Message)
			}
			if r.File != "" {
				if r.Line > 0 {
					fmt.Fprintf(&b, " (`%s:%d`)", r.File, r.Line)
				} else {
					fmt.Fprintf(&b, " (`%s`)", r.File)
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if !wroteFindings && len(targets) > 0 {
		b.WriteString("## Findings\n\nNo findings.\n\n")
	}

	if s.command != "" {
		b.WriteString("## Reproduce\n\n")
		b.WriteString("```\n")
		b.WriteString(s.command)
		b.WriteString("\n```\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
