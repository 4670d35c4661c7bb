package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect check
	// behavior, keep these in sync:
	// - CLI flags in internal/cli/root.go
	// - report reproducibility command in internal/output/report.go
	Targeting Targeting
	Rules     Rules
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Paths is the list of target directories to check, in argument order.
	// Empty means the current directory.
	Paths []string

	// Exclude adds scanner exclude patterns on top of the built-in directory
	// denylist (see --exclude). Patterns use doublestar syntax and match
	// slash-separated paths relative to the target root.
	Exclude []string
}

type Rules struct {
	// Selector selects which rules to run.
	// Empty means all rules; otherwise a comma-separated list of rule IDs (see --rules).
	Selector string

	// Set provides per-rule option overrides from the CLI.
	// Entries are of the form ruleID.option=value (repeatable; comma-separated accepted; see --set).
	Set []string
}

type Output struct {
	// Format controls the console sink format (see --format).
	// Allowed values: text, json, ndjson.
	Format string

	// FilterStatus filters console output by result status (see --filter-status).
	// Allowed values: PASS, FAIL, WARN, SKIP.
	FilterStatus []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --out/--report for machine-readable output.
	NoConsole bool
}

type Runtime struct {
	// Concurrency controls parallelism for target scanning (see --concurrency).
	// Must be >= 1. Rule evaluation stays sequential per target either way.
	Concurrency int

	// Timeout is the global timeout for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables debug diagnostics on stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Output: Output{
			Format: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			Timeout:     2 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Exclude = splitCommaList(c.Targeting.Exclude)
	c.Rules.Set = splitCommaList(c.Rules.Set)
	c.Output.FilterStatus = splitCommaList(c.Output.FilterStatus)

	if len(c.Targeting.Paths) == 0 {
		c.Targeting.Paths = []string{"."}
	}
	for _, p := range c.Targeting.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("target path must not be empty")
		}
	}

	for _, pat := range c.Targeting.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid --exclude pattern %q", pat)
		}
	}

	// Output validation
	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Output.Format != "text" && c.Output.Format != "json" && c.Output.Format != "ndjson" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json, ndjson)", c.Output.Format)
	}

	for i, st := range c.Output.FilterStatus {
		v := strings.ToUpper(strings.TrimSpace(st))
		if v != "PASS" && v != "FAIL" && v != "WARN" && v != "SKIP" {
			return fmt.Errorf("unsupported --filter-status value: %s (must be one of: PASS, FAIL, WARN, SKIP)", st)
		}
		c.Output.FilterStatus[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	// Rule option syntax validation (rule.option=value)
	if len(c.Rules.Set) > 0 {
		if _, err := ParseRuleOptionAssignments(c.Rules.Set); err != nil {
			return err
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ParseRuleOptionAssignments parses values of the form "ruleID.option=value".
//
// Notes:
// - Entries may be provided via repeated flags and/or comma-delimited lists.
// - This validates syntax only (no validation of rule IDs or option names).
// - Empty values are allowed ("rule.option=").
func ParseRuleOptionAssignments(values []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, raw := range splitCommaList(values) {
		left, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected rule.option=value", raw)
		}
		left = strings.TrimSpace(left)
		value = strings.TrimSpace(value)
		ruleID, opt, ok := strings.Cut(left, ".")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected rule.option=value", raw)
		}
		ruleID = strings.TrimSpace(ruleID)
		opt = strings.TrimSpace(opt)
		if ruleID == "" || opt == "" {
			return nil, fmt.Errorf("invalid --set entry %q: expected non-empty rule and option", raw)
		}
		if _, ok := out[ruleID]; !ok {
			out[ruleID] = make(map[string]string)
		}
		out[ruleID][opt] = value
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
