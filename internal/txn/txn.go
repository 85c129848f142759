// Package txn sequences dependent writes against a store that only offers
// atomic single-round batches. It approximates "all succeed or all are undone"
// by compensating completed steps in reverse order when a later step fails.
//
// This is optimistic, best-effort compensation, not ACID: concurrent writers
// can still interleave between steps. Hard invariants stay with the store's
// uniqueness constraints; txn only cleans up partial sequences.
package txn

import (
	"context"

	"go.uber.org/zap"
)

// Step is one write in a dependent sequence. Run executes the write; Rollback,
// when set, undoes it. Rollback is only invoked for steps whose Run completed.
type Step struct {
	Desc     string
	Run      func(ctx context.Context) error
	Rollback func(ctx context.Context) error
}

type completed struct {
	desc     string
	rollback func(ctx context.Context) error
}

// RunSteps executes steps strictly in order. On the first failure it invokes
// the rollbacks of all completed steps in reverse order and returns the
// original error. Rollback failures are logged and never mask that error.
func RunSteps(ctx context.Context, steps []Step) error {
	stack := make([]completed, 0, len(steps))

	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			unwind(ctx, stack)
			return err
		}
		if step.Rollback != nil {
			stack = append(stack, completed{desc: step.Desc, rollback: step.Rollback})
		}
	}

	return nil
}

func unwind(ctx context.Context, stack []completed) {
	for i := len(stack) - 1; i >= 0; i-- {
		c := stack[i]
		if err := c.rollback(ctx); err != nil {
			zap.L().Error("rollback step failed",
				zap.String("step", c.desc),
				zap.Error(err),
			)
		}
	}
}
