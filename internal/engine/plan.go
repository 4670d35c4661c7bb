package engine

import (
	"fmt"

	"doctrinecheck/internal/rules"
)

// CheckPlan is the ordered set of targets to check and the rules to apply.
// Target order is argument order; it fixes the order of the emitted results.
type CheckPlan struct {
	Targets []TargetPlan
}

type TargetPlan struct {
	// Index is the position of the target in the original argument list.
	Index int
	Path  string
	Rules []rules.Rule
}

func NewCheckPlan(paths []string, selectedRules []rules.Rule) (*CheckPlan, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one target path is required")
	}
	plan := &CheckPlan{}
	for i, p := range paths {
		plan.Targets = append(plan.Targets, TargetPlan{
			Index: i,
			Path:  p,
			Rules: selectedRules,
		})
	}
	return plan, nil
}
