package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doctrinecheck/internal/rules"
)

func TestFileSinkJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	for _, r := range sampleResults() {
		if err := sink.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	exitCode := 1
	if err := sink.Write(Event{Type: "run.finished", ExitCode: &exitCode}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var decoded []rules.Result
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, raw)
	}
	if len(decoded) != 4 {
		t.Errorf("Expected 4 results, lifecycle events excluded, got %d", len(decoded))
	}
}

func TestFileSinkJSONEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	sink, err := NewFileSink(path, "json")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != "[]" {
		t.Errorf("Expected an empty array, got %q", got)
	}
}

func TestFileSinkNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.ndjson")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	if err := sink.Write(Event{Type: "run.started", Targets: 1}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sink.Write(sampleResults()[0]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 NDJSON lines, got %d:\n%s", len(lines), raw)
	}
	for i, line := range lines {
		var v map[string]any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", i+1, err)
		}
	}
}

func TestFileSinkCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "results.json")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the output file to exist: %v", err)
	}
}

func TestFileSinkRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileSink(filepath.Join(dir, "results.txt"), ""); err == nil {
		t.Error("Expected an error for an uninferable extension")
	}
	if _, err := NewFileSink(filepath.Join(dir, "results.json"), "xml"); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
	if _, err := NewFileSink("", "json"); err == nil {
		t.Error("Expected an error for an empty path")
	}
}
