package rules

import (
	"context"

	"doctrinecheck/internal/snapshot"
)

// WaiverWrapper wraps a Rule to provide automatic waiver functionality.
type WaiverWrapper struct {
	Rule
	waivers Waivers
}

// ID returns the inner rule's ID.
func (w *WaiverWrapper) ID() string {
	return w.Rule.ID()
}

// Title returns the inner rule's Title.
func (w *WaiverWrapper) Title() string {
	return w.Rule.Title()
}

// Description returns the inner rule's Description.
func (w *WaiverWrapper) Description() string {
	return w.Rule.Description()
}

// Severity returns the inner rule's Severity.
func (w *WaiverWrapper) Severity() Severity {
	return w.Rule.Severity()
}

// Evaluate calls the inner rule's Evaluate and then applies the waiver logic.
func (w *WaiverWrapper) Evaluate(ctx context.Context, snap *snapshot.Snapshot) (Result, error) {
	result, err := w.Rule.Evaluate(ctx, snap)
	if err != nil {
		return result, err
	}
	return w.waivers.CheckResult(snap, result), nil
}

// Options returns the combined options of the waivers and the inner rule (if configurable).
func (w *WaiverWrapper) Options() []Option {
	opts := w.waivers.Options()
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		opts = append(opts, cr.Options()...)
	}
	return opts
}

// Configure configures the waivers and the inner rule (if configurable).
func (w *WaiverWrapper) Configure(opts map[string]string) error {
	w.waivers.Configure(opts)
	if cr, ok := w.Rule.(ConfigurableRule); ok {
		return cr.Configure(opts)
	}
	return nil
}
