package comments

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Strategy is one way of carrying out a step.
type Strategy struct {
	Name string
	Do   func(ctx context.Context, d Driver) error
}

// Step is a single UI interaction. Strategies are tried in order until one
// succeeds. When a Critical step fails the rest of the comment is skipped.
type Step struct {
	Name       string
	Critical   bool
	Strategies []Strategy
	// After is waited once the step succeeds.
	After time.Duration
}

// StepError reports a step whose strategies all failed.
type StepError struct {
	Step     string
	Critical bool
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run tries each strategy in order and returns nil on the first success.
func (s Step) Run(ctx context.Context, d Driver) error {
	var errs []error
	for _, strategy := range s.Strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := strategy.Do(ctx, d)
		if err == nil {
			return sleep(ctx, s.After)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name, err))
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no strategies"))
	}
	return &StepError{Step: s.Name, Critical: s.Critical, Err: errors.Join(errs...)}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
