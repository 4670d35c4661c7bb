package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"doctrinecheck/internal/snapshot"
)

// Waivers handles common waiver logic for rules. A waived violation is
// reported as PASS with an explanatory message rather than being dropped,
// so waived findings stay visible in every output mode.
//
// Waivers come from two places: the target's .doctrine.yml (per rule id, with
// a reason) and the per-rule "waive.paths" option (doublestar patterns matched
// against the target path).
type Waivers struct {
	Paths []string
}

// Options returns the standard configuration options for waiving.
func (w *Waivers) Options() []Option {
	return []Option{
		{
			Name:        "waive.paths",
			Description: "Comma-separated doublestar patterns of target paths for which this rule's violations are waived (e.g. */sandbox-*, tmp/**).",
		},
	}
}

// Configure parses the configuration options to populate the Waivers.
func (w *Waivers) Configure(opts map[string]string) {
	w.Paths = nil
	if val, ok := opts["waive.paths"]; ok && val != "" {
		for _, s := range strings.Split(val, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				w.Paths = append(w.Paths, s)
			}
		}
	}
}

// IsWaived checks whether the rule's violations are waived for this target.
// It returns true and a human-readable source description when waived.
func (w *Waivers) IsWaived(ruleID string, snap *snapshot.Snapshot) (bool, string) {
	if snap == nil {
		return false, ""
	}

	if wv, ok := snap.Config.WaiverFor(ruleID); ok {
		if wv.Reason != "" {
			return true, fmt.Sprintf(".doctrine.yml: %s", wv.Reason)
		}
		return true, ".doctrine.yml"
	}

	target := filepath.ToSlash(snap.Root)
	for _, pattern := range w.Paths {
		if matched, _ := doublestar.Match(pattern, target); matched {
			return true, "waive.paths"
		}
		if matched, _ := doublestar.Match(pattern, filepath.ToSlash(snap.AbsRoot)); matched {
			return true, "waive.paths"
		}
	}

	return false, ""
}

// CheckResult applies waiver logic to an evaluated result. Violations (FAIL
// or WARN) convert to PASS when the target is waived for this rule.
func (w *Waivers) CheckResult(snap *snapshot.Snapshot, result Result) Result {
	if result.Status != StatusFail && result.Status != StatusWarn {
		return result
	}
	if waived, source := w.IsWaived(result.RuleID, snap); waived {
		waivedRes := result
		waivedRes.Status = StatusPass
		waivedRes.Message = fmt.Sprintf("Waived violation: %s (waived by %s)", result.Message, source)
		return waivedRes
	}
	return result
}
