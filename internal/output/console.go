package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"doctrinecheck/internal/rules"
)

// statusOrder is the rendering order for text mode: violations first, then
// warnings, then what was skipped, then the passes.
var statusOrder = []rules.Status{rules.StatusFail, rules.StatusWarn, rules.StatusSkip, rules.StatusPass}

var statusColors = map[rules.Status]*color.Color{
	rules.StatusFail: color.New(color.FgRed, color.Bold),
	rules.StatusWarn: color.New(color.FgYellow),
	rules.StatusSkip: color.New(color.Faint),
	rules.StatusPass: color.New(color.FgGreen),
}

// ConsoleSink renders results for humans (text) or machines (json/ndjson).
//
// Text mode buffers results and renders them grouped by status on Close, with
// a trailing summary line. The summary always counts every result, even when
// a status filter hides some lines.
type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	results         []rules.Result
	allowedStatuses map[string]bool
}

func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:  w,
		format:  format,
		results: make([]rules.Result, 0),
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			s.allowedStatuses[strings.ToUpper(st)] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "text", "json":
		r, ok := v.(rules.Result)
		if !ok {
			// Ignore lifecycle events in aggregate modes.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case rules.Result:
			if !s.statusAllowed(t.Status) {
				return nil
			}
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		filtered := make([]rules.Result, 0, len(s.results))
		for _, r := range s.results {
			if s.statusAllowed(r.Status) {
				filtered = append(filtered, r)
			}
		}
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(filtered); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		return s.renderText()
	case "ndjson":
		return nil
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) renderText() error {
	counts := make(map[rules.Status]int)
	for _, r := range s.results {
		counts[r.Status]++
	}

	for _, status := range statusOrder {
		for _, r := range s.results {
			if r.Status != status || !s.statusAllowed(r.Status) {
				continue
			}
			if err := s.printResult(r); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(s.writer, "%d passed, %d failed, %d warnings, %d skipped\n",
		counts[rules.StatusPass], counts[rules.StatusFail], counts[rules.StatusWarn], counts[rules.StatusSkip])
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) printResult(r rules.Result) error {
	label := fmt.Sprintf("[%s]", r.Status)
	if c, ok := statusColors[r.Status]; ok {
		label = c.Sprintf("[%s]", r.Status)
	}
	if _, err := fmt.Fprintf(s.writer, "%s %s %s", label, r.RuleID, r.Target); err != nil {
		return err
	}
	if r.Message != "" {
		if _, err := fmt.Fprintf(s.writer, ": %s", r.Message); err != nil {
			return err
		}
	}
	if r.File != "" {
		loc := r.File
		if r.Line > 0 {
			loc = fmt.Sprintf("%s:%d", r.File, r.Line)
		}
		if _, err := fmt.Fprintf(s.writer, " (%s)", loc); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(s.writer)
	return err
}

func (s *ConsoleSink) statusAllowed(status rules.Status) bool {
	if len(s.allowedStatuses) == 0 {
		return true
	}
	return s.allowedStatuses[string(status)]
}
