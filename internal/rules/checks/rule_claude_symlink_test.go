package checks

import (
	"context"
	"strings"
	"testing"

	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

func TestClaudeSymlinkRule(t *testing.T) {
	rule := &ClaudeSymlinkRule{}
	agents := regularFile("AGENTS.md", "# Project\n")

	tests := []struct {
		name       string
		snap       *snapshot.Snapshot
		wantStatus rules.Status
		wantInMsg  string
	}{
		{
			name:       "absent skips",
			snap:       snapWithFiles(agents),
			wantStatus: rules.StatusSkip,
			wantInMsg:  "not present",
		},
		{
			name:       "regular file fails",
			snap:       snapWithFiles(agents, regularFile("CLAUDE.md", "copied content\n")),
			wantStatus: rules.StatusFail,
			wantInMsg:  "regular file",
		},
		{
			name:       "symlink to AGENTS.md passes",
			snap:       snapWithFiles(agents, symlinkTo("CLAUDE.md", "AGENTS.md", testRoot+"/AGENTS.md")),
			wantStatus: rules.StatusPass,
		},
		{
			name:       "broken symlink fails",
			snap:       snapWithFiles(agents, symlinkTo("CLAUDE.md", "missing.md", "")),
			wantStatus: rules.StatusFail,
			wantInMsg:  "broken",
		},
		{
			name:       "symlink to the wrong file fails",
			snap:       snapWithFiles(agents, symlinkTo("CLAUDE.md", "README.md", testRoot+"/README.md")),
			wantStatus: rules.StatusFail,
			wantInMsg:  "expected the root AGENTS.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rule.Evaluate(context.Background(), tt.snap)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if res.Status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s (%s)", tt.wantStatus, res.Status, res.Message)
			}
			if tt.wantInMsg != "" && !strings.Contains(res.Message, tt.wantInMsg) {
				t.Errorf("Expected message containing %q, got %q", tt.wantInMsg, res.Message)
			}
		})
	}
}
