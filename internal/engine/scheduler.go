package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"doctrinecheck/internal/snapshot"
)

// TargetExecutionResult is the outcome of scanning a single target tree.
// Err is fatal for the whole run; non-conformance never appears here.
type TargetExecutionResult struct {
	Index    int
	Path     string
	Snapshot *snapshot.Snapshot
	Err      error
}

// Scheduler scans targets concurrently but delivers results in plan order,
// so downstream output stays deterministic regardless of which scan finishes
// first.
type Scheduler struct {
	scanner     *snapshot.Scanner
	concurrency int
}

func NewScheduler(sc *snapshot.Scanner, concurrency int) (*Scheduler, error) {
	if sc == nil {
		return nil, errors.New("scanner is nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{scanner: sc, concurrency: concurrency}, nil
}

// Execute streams one TargetExecutionResult per planned target, in plan
// order. Every target produces exactly one result; cancellation surfaces as
// a result with Err set. The returned channel is closed when all results
// have been delivered.
func (s *Scheduler) Execute(ctx context.Context, plan *CheckPlan) <-chan TargetExecutionResult {
	out := make(chan TargetExecutionResult)

	if plan == nil || len(plan.Targets) == 0 {
		close(out)
		return out
	}

	// One buffered slot per target; scan goroutines never block on delivery
	// and the forwarder reads the slots in order.
	slots := make([]chan TargetExecutionResult, len(plan.Targets))
	for i := range slots {
		slots[i] = make(chan TargetExecutionResult, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	go func() {
		for i := range plan.Targets {
			i := i
			tp := plan.Targets[i]
			g.Go(func() error {
				res := TargetExecutionResult{Index: tp.Index, Path: tp.Path}
				if err := gctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Snapshot, res.Err = s.scanner.Scan(gctx, tp.Path)
				}
				slots[i] <- res
				// A scan failure cancels the remaining scans; the run is
				// aborting anyway.
				return res.Err
			})
		}
		_ = g.Wait()
	}()

	go func() {
		defer close(out)
		for i := range slots {
			out <- <-slots[i]
		}
	}()

	return out
}
