// Package fanout runs independent fallible operations concurrently and
// collects every outcome.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrTimeout is wrapped into a Result when a task exceeds its timeout.
var ErrTimeout = errors.New("operation timed out")

// Task is one named operation.
type Task[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Result is the outcome of one Task. Exactly one of Value or Err is meaningful.
type Result[T any] struct {
	Name     string
	Value    T
	Err      error
	Duration time.Duration
}

// TimedOut reports whether the task was abandoned after its timeout.
func (r Result[T]) TimedOut() bool {
	return errors.Is(r.Err, ErrTimeout)
}

// Run starts every task at once and waits for all of them. Each task is raced
// against timeout; a failing or slow task never cancels its siblings.
// Results are returned in task order. A non-positive timeout disables the race.
func Run[T any](ctx context.Context, timeout time.Duration, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = runOne(ctx, timeout, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Succeeded returns the values of successful results in order.
func Succeeded[T any](results []Result[T]) []T {
	var out []T
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}

// Failed returns the failing results in order.
func Failed[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

type outcome[T any] struct {
	value T
	err   error
}

func runOne[T any](ctx context.Context, timeout time.Duration, task Task[T]) Result[T] {
	start := time.Now()
	res := Result[T]{Name: task.Name}

	taskCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Buffered so an abandoned task can finish without blocking.
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome[T]{err: fmt.Errorf("%s panicked: %v", task.Name, p)}
			}
		}()
		v, err := task.Run(taskCtx)
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case o := <-done:
		res.Value, res.Err = o.value, o.err
		if res.Err != nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			res.Err = fmt.Errorf("%s: %w after %v: %v", task.Name, ErrTimeout, timeout, res.Err)
		}
	case <-taskCtx.Done():
		if ctx.Err() != nil {
			res.Err = ctx.Err()
		} else {
			res.Err = fmt.Errorf("%s: %w after %v", task.Name, ErrTimeout, timeout)
		}
	}

	res.Duration = time.Since(start)
	return res
}
