package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"doctrinecheck/internal/config"
	"doctrinecheck/internal/output"
	"doctrinecheck/internal/rules"
	_ "doctrinecheck/internal/rules/checks"
	"doctrinecheck/internal/snapshot"
)

func writeTreeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

// runToJSON runs the engine against the given targets with a JSON file sink
// and returns the exit code plus the decoded results.
func runToJSON(t *testing.T, paths ...string) (int, []rules.Result) {
	t.Helper()
	outPath := filepath.Join(t.TempDir(), "results.json")

	cfg := config.New()
	cfg.Targeting.Paths = paths
	cfg.Output.NoConsole = true
	cfg.Output.Out = outPath
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	code := NewEngine().Run(context.Background(), cfg)

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var results []rules.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, raw)
	}
	return code, results
}

func resultFor(results []rules.Result, ruleID string) (rules.Result, bool) {
	for _, r := range results {
		if r.RuleID == ruleID {
			return r, true
		}
	}
	return rules.Result{}, false
}

func TestRunEmptyDirectory(t *testing.T) {
	code, results := runToJSON(t, t.TempDir())

	if code != 1 {
		t.Errorf("Expected exit code 1 for a missing AGENTS.md, got %d", code)
	}
	if r, ok := resultFor(results, "R1"); !ok || r.Status != rules.StatusFail {
		t.Errorf("Expected R1 FAIL, got %+v (ok=%v)", r, ok)
	}
	if r, ok := resultFor(results, "R2"); !ok || r.Status != rules.StatusSkip {
		t.Errorf("Expected R2 SKIP when CLAUDE.md is absent, got %+v (ok=%v)", r, ok)
	}
}

func TestRunMinimalConformingTree(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "AGENTS.md", strings.Repeat("line\n", 10))

	code, results := runToJSON(t, root)

	if code != 0 {
		t.Errorf("Expected exit code 0, got %d; results: %+v", code, results)
	}
	for _, id := range []string{"R1", "R3", "R4"} {
		if r, ok := resultFor(results, id); !ok || r.Status != rules.StatusPass {
			t.Errorf("Expected %s PASS, got %+v (ok=%v)", id, r, ok)
		}
	}
	// A missing Standards section is advisory only.
	if r, ok := resultFor(results, "R5"); !ok || r.Status != rules.StatusWarn {
		t.Errorf("Expected R5 WARN, got %+v (ok=%v)", r, ok)
	}
}

func TestRunDetectsSecret(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "AGENTS.md", "# Project\n\nUse sk_live_abcdefghijklmnopqrstuv for payments.\n")

	code, results := runToJSON(t, root)

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	r, ok := resultFor(results, "R4")
	if !ok || r.Status != rules.StatusFail {
		t.Fatalf("Expected R4 FAIL, got %+v (ok=%v)", r, ok)
	}
	if r.File != "AGENTS.md" || r.Line != 3 {
		t.Errorf("Expected the finding located at AGENTS.md:3, got %s:%d", r.File, r.Line)
	}
}

func TestRunJSONOutputShape(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "AGENTS.md", "# Project\n\nBuild with make.\n")

	outPath := filepath.Join(t.TempDir(), "results.json")
	cfg := config.New()
	cfg.Targeting.Paths = []string{root}
	cfg.Output.NoConsole = true
	cfg.Output.Out = outPath
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	NewEngine().Run(context.Background(), cfg)

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(raw), `"rule_id": "R5"`) {
		t.Errorf("Expected an R5 entry in the JSON output:\n%s", raw)
	}

	var generic []map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	for _, entry := range generic {
		if entry["rule_id"] == "R5" && entry["status"] != "WARN" {
			t.Errorf("Expected R5 reported as WARN, got %v", entry["status"])
		}
	}
}

func TestRunOutputIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "AGENTS.md", "# Project\n")
	writeTreeFile(t, root, "CHANGELOG.md", "# Changelog\n")

	run := func(outPath string) []byte {
		cfg := config.New()
		cfg.Targeting.Paths = []string{root}
		cfg.Output.NoConsole = true
		cfg.Output.Out = outPath
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		NewEngine().Run(context.Background(), cfg)
		raw, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("Failed to read output: %v", err)
		}
		return raw
	}

	dir := t.TempDir()
	first := run(filepath.Join(dir, "a.json"))
	second := run(filepath.Join(dir, "b.json"))
	if string(first) != string(second) {
		t.Errorf("Expected byte-identical output across runs:\n%s\n---\n%s", first, second)
	}
}

// TestTextAndJSONReportsAgree feeds one evaluation run to a text sink and a
// JSON sink and checks that both report the same (rule_id, status) pairs.
func TestTextAndJSONReportsAgree(t *testing.T) {
	color.NoColor = true

	root := t.TempDir()
	writeTreeFile(t, root, "AGENTS.md", "# Project\n\nBuild with make.\n")
	writeTreeFile(t, root, ".cursorrules", "See AGENTS.md for project context.\n")

	snap, err := snapshot.NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var textBuf, jsonBuf bytes.Buffer
	mgr := output.NewManager()
	if err := mgr.AddSink(output.NewConsoleSink(&textBuf, "text", nil)); err != nil {
		t.Fatalf("AddSink failed: %v", err)
	}
	if err := mgr.AddSink(output.NewConsoleSink(&jsonBuf, "json", nil)); err != nil {
		t.Fatalf("AddSink failed: %v", err)
	}

	tp := TargetPlan{Path: root, Rules: rules.List()}
	evaluateTarget(context.Background(), tp, snap, mgr)
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Text lines render as "[STATUS] RuleID Target: message"; the last line
	// is the summary.
	textPairs := make(map[string]string)
	lines := strings.Split(strings.TrimRight(textBuf.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("Unexpected text output:\n%s", textBuf.String())
	}
	for _, line := range lines[:len(lines)-1] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			t.Fatalf("Unparseable result line: %q", line)
		}
		textPairs[fields[1]] = strings.Trim(fields[0], "[]")
	}

	var decoded []rules.Result
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output is invalid: %v\n%s", err, jsonBuf.String())
	}
	jsonPairs := make(map[string]string)
	for _, r := range decoded {
		jsonPairs[r.RuleID] = string(r.Status)
	}

	if len(jsonPairs) == 0 {
		t.Fatal("Expected results in the JSON output")
	}
	if len(textPairs) != len(jsonPairs) {
		t.Fatalf("Text and JSON report different rule sets: text=%v json=%v", textPairs, jsonPairs)
	}
	for id, status := range jsonPairs {
		if textPairs[id] != status {
			t.Errorf("Rule %s: text reports %q, JSON reports %q", id, textPairs[id], status)
		}
	}
}

func TestRunMultipleTargetsKeepArgumentOrder(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeTreeFile(t, rootA, "AGENTS.md", "# A\n")
	writeTreeFile(t, rootB, "AGENTS.md", "# B\n")

	_, results := runToJSON(t, rootB, rootA)

	var order []string
	for _, r := range results {
		if len(order) == 0 || order[len(order)-1] != r.Target {
			order = append(order, r.Target)
		}
	}
	if len(order) != 2 || order[0] != rootB || order[1] != rootA {
		t.Errorf("Expected results grouped in argument order [%s %s], got %v", rootB, rootA, order)
	}
}

func TestRunMissingTargetIsFatal(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.Paths = []string{filepath.Join(t.TempDir(), "nope")}
	cfg.Output.NoConsole = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if code := NewEngine().Run(context.Background(), cfg); code != 2 {
		t.Errorf("Expected exit code 2 for an unusable target, got %d", code)
	}
}

func TestRunUnknownRuleSelectorIsFatal(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.Paths = []string{t.TempDir()}
	cfg.Rules.Selector = "R99"
	cfg.Output.NoConsole = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if code := NewEngine().Run(context.Background(), cfg); code != 2 {
		t.Errorf("Expected exit code 2 for an unknown rule, got %d", code)
	}
}

type collectingSink struct {
	writes []any
}

func (s *collectingSink) Write(v any) error {
	s.writes = append(s.writes, v)
	return nil
}

func (s *collectingSink) Close() error { return nil }

type panicRule struct{}

func (r *panicRule) ID() string               { return "RX" }
func (r *panicRule) Title() string            { return "Panic fixture" }
func (r *panicRule) Description() string      { return "Panics on evaluation." }
func (r *panicRule) Severity() rules.Severity { return rules.SeverityMust }
func (r *panicRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	panic("predicate exploded")
}

type passRule struct{}

func (r *passRule) ID() string               { return "RY" }
func (r *passRule) Title() string            { return "Pass fixture" }
func (r *passRule) Description() string      { return "Always passes." }
func (r *passRule) Severity() rules.Severity { return rules.SeverityMust }
func (r *passRule) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (rules.Result, error) {
	return rules.Result{Status: rules.StatusPass, Message: "ok"}, nil
}

func TestEvaluateTargetIsolatesPanics(t *testing.T) {
	sink := &collectingSink{}
	mgr := output.NewManager()
	if err := mgr.AddSink(sink); err != nil {
		t.Fatalf("AddSink failed: %v", err)
	}

	tp := TargetPlan{Path: "/repo", Rules: []rules.Rule{&panicRule{}, &passRule{}}}
	snap := &snapshot.Snapshot{Root: "/repo", AbsRoot: "/repo"}

	hasFailures := evaluateTarget(context.Background(), tp, snap, mgr)
	if hasFailures {
		t.Error("A panicking rule must not count as a failure")
	}

	var results []rules.Result
	for _, w := range sink.writes {
		if r, ok := w.(rules.Result); ok {
			results = append(results, r)
		}
	}
	if len(results) != 2 {
		t.Fatalf("Expected both rules to produce results, got %d", len(results))
	}
	if results[0].RuleID != "RX" || results[0].Status != rules.StatusSkip {
		t.Errorf("Expected the panicking rule reported as SKIP, got %+v", results[0])
	}
	if !strings.Contains(results[0].Message, "Rule evaluation failed") {
		t.Errorf("Expected a failure message, got %q", results[0].Message)
	}
	if results[1].RuleID != "RY" || results[1].Status != rules.StatusPass {
		t.Errorf("Expected the next rule to still run, got %+v", results[1])
	}
	if results[1].Target != "/repo" {
		t.Errorf("Expected the target backfilled, got %q", results[1].Target)
	}
}

func TestExitCodeForRun(t *testing.T) {
	tests := []struct {
		fatal    bool
		failures bool
		want     int
	}{
		{false, false, 0},
		{false, true, 1},
		{true, false, 2},
		{true, true, 2},
	}
	for _, tt := range tests {
		if got := exitCodeForRun(tt.fatal, tt.failures); got != tt.want {
			t.Errorf("exitCodeForRun(%v, %v) = %d, want %d", tt.fatal, tt.failures, got, tt.want)
		}
	}
}

func TestBuildReproducibilityCommand(t *testing.T) {
	cfg := config.New()
	cfg.Targeting.Paths = []string{"a", "b"}
	cfg.Targeting.Exclude = []string{"examples/**"}
	cfg.Rules.Selector = "R1,R4"
	cfg.Rules.Set = []string{"R3.warn_lines=200"}
	cfg.Output.Out = "results.json"
	cfg.Output.Report = "report.md"
	cfg.Runtime.Timeout = time.Minute

	got := buildReproducibilityCommand(cfg)
	want := "doctrine-check a b --rules R1,R4 --set R3.warn_lines=200 --exclude examples/**"
	if got != want {
		t.Errorf("buildReproducibilityCommand = %q, want %q", got, want)
	}
}
