package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"doctrinecheck/internal/config"
	"doctrinecheck/internal/flags"
	"doctrinecheck/internal/logger"
	"doctrinecheck/internal/output"
	"doctrinecheck/internal/rules"
	"doctrinecheck/internal/snapshot"
)

func exitCodeForRun(fatal, failures bool) int {
	// Exit code contract:
	// 0 = clean run, no MUST violations
	// 1 = at least one MUST violation (FAIL result)
	// 2 = fatal error (check did not complete)
	// WARN and SKIP results never change the exit code.
	if fatal {
		return 2
	}
	if failures {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.Format, cfg.Output.FilterStatus)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report, buildReproducibilityCommand(cfg))
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

func applyRuleOptionsIfAny(cfg *config.Config) error {
	// applyRuleOptionsIfAny applies per-rule configuration supplied via repeated
	// --set flags.
	//
	// --set values are parsed as "ruleID.option=value" and routed to the matching
	// rule's Configure method (only rules that implement rules.ConfigurableRule).
	//
	// Example:
	//   doctrine-check --set R3.warn_lines=200 .

	if len(cfg.Rules.Set) == 0 {
		return nil
	}

	assignments, err := config.ParseRuleOptionAssignments(cfg.Rules.Set)
	if err != nil {
		return err
	}

	all := rules.List()
	byID := make(map[string]rules.Rule, len(all))
	for _, r := range all {
		byID[r.ID()] = r
	}

	for ruleID, opts := range assignments {
		r, ok := byID[ruleID]
		if !ok {
			return fmt.Errorf("unknown rule ID %q", ruleID)
		}
		cr, ok := r.(rules.ConfigurableRule)
		if !ok {
			return fmt.Errorf("rule %q does not support options", ruleID)
		}

		allowed := make(map[string]struct{})
		for _, opt := range cr.Options() {
			allowed[opt.Name] = struct{}{}
		}
		for name := range opts {
			if _, ok := allowed[name]; !ok {
				return fmt.Errorf("unknown option %q for rule %q", name, ruleID)
			}
		}

		if err := cr.Configure(opts); err != nil {
			return fmt.Errorf("configure rule %q: %w", ruleID, err)
		}
	}

	return nil
}

// buildReproducibilityCommand renders a command line that reproduces this
// run's findings. Output flags are intentionally omitted.
func buildReproducibilityCommand(cfg *config.Config) string {
	parts := []string{"doctrine-check"}
	parts = append(parts, cfg.Targeting.Paths...)
	if cfg.Rules.Selector != "" {
		parts = append(parts, "--"+flags.FlagRules, cfg.Rules.Selector)
	}
	for _, set := range cfg.Rules.Set {
		parts = append(parts, "--"+flags.FlagSet, set)
	}
	for _, pat := range cfg.Targeting.Exclude {
		parts = append(parts, "--"+flags.FlagExclude, pat)
	}
	return strings.Join(parts, " ")
}

type Engine struct {
	// schedulerExecute is a test seam for streaming execution.
	// If nil, Engine uses the real scanner + scheduler.
	schedulerExecute func(ctx context.Context, cfg *config.Config, plan *CheckPlan) <-chan TargetExecutionResult
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) executePlanStream(ctx context.Context, cfg *config.Config, plan *CheckPlan) <-chan TargetExecutionResult {
	if e.schedulerExecute != nil {
		return e.schedulerExecute(ctx, cfg, plan)
	}

	sc := snapshot.NewScanner(cfg.Targeting.Exclude...)
	scheduler, err := NewScheduler(sc, cfg.Runtime.Concurrency)
	if err != nil {
		out := make(chan TargetExecutionResult, 1)
		out <- TargetExecutionResult{Err: err}
		close(out)
		return out
	}
	return scheduler.Execute(ctx, plan)
}

// safeEvaluate runs one rule with fault isolation: a panicking predicate is a
// defect in the tool, not a repository finding, so it is converted into an
// error here and reported as SKIP by the caller instead of crashing the run.
func safeEvaluate(ctx context.Context, r rules.Rule, snap *snapshot.Snapshot) (res rules.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("rule %s panicked: %v", r.ID(), p)
		}
	}()
	return r.Evaluate(ctx, snap)
}

// evaluateTarget applies every planned rule to the snapshot in catalog order
// and forwards results to the sinks. It reports whether any FAIL was seen.
func evaluateTarget(ctx context.Context, tp TargetPlan, snap *snapshot.Snapshot, outMgr *output.Manager) (hasFailures bool) {
	_ = outMgr.Write(output.Event{Type: "target.started", Target: tp.Path})

	for _, rule := range tp.Rules {
		res, err := safeEvaluate(ctx, rule, snap)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("rule", rule.ID()).Warn("rule evaluation failed")
			res = rules.Result{
				RuleID:   rule.ID(),
				Target:   tp.Path,
				Status:   rules.StatusSkip,
				Severity: rule.Severity(),
				Message:  fmt.Sprintf("Rule evaluation failed: %v", err),
			}
		}

		// Backfill identifiers so output stays consistent and well-formed.
		// Rules usually care about status + message/evidence; the engine
		// already knows the target and rule ID, so stamp them here.
		if res.Target == "" {
			res.Target = tp.Path
		}
		if res.RuleID == "" {
			res.RuleID = rule.ID()
		}

		if res.Status == rules.StatusFail {
			hasFailures = true
		}
		_ = outMgr.Write(res)
	}

	_ = outMgr.Write(output.Event{Type: "target.finished", Target: tp.Path})
	return hasFailures
}

func resolveAndConfigureRules(cfg *config.Config) ([]rules.Rule, error) {
	selectedRules, err := rules.Resolve(cfg.Rules.Selector)
	if err != nil {
		return nil, err
	}
	if err := applyRuleOptionsIfAny(cfg); err != nil {
		return nil, err
	}
	return selectedRules, nil
}

// Run executes the full pipeline and returns the process exit code.
// Fatal errors print a single actionable line to stderr.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	selectedRules, err := resolveAndConfigureRules(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	plan, err := NewCheckPlan(cfg.Targeting.Paths, selectedRules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeForRun(true, false)
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false)
	}
	defer outMgr.Close()

	runCtx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	_ = outMgr.Write(output.Event{Type: "run.started", Targets: len(plan.Targets), Rules: len(selectedRules)})

	resCh := e.executePlanStream(runCtx, cfg, plan)

	hasFailures := false
	var fatalErr error
	for res := range resCh {
		if fatalErr != nil {
			continue // drain; the run is already aborting
		}
		if res.Err != nil {
			fatalErr = res.Err
			continue
		}
		if evaluateTarget(runCtx, plan.Targets[res.Index], res.Snapshot, outMgr) {
			hasFailures = true
		}
	}

	if fatalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", fatalErr)
		return exitCodeForRun(true, false)
	}

	code := exitCodeForRun(false, hasFailures)
	_ = outMgr.Write(output.Event{Type: "run.finished", ExitCode: &code})
	return code
}
