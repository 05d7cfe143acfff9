// Package core implements the bounded-concurrency, dependency-ordered task
// scheduler: given a set of SchedulerTasks, it dispatches each only
// after its declared dependencies have completed, runs at most Concurrency
// of them at once, and — in fail-fast mode — cancels everything still
// pending as soon as one task fails.
package core

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SchedulerTask is a single unit of work submitted to the scheduler. Deps
// names that don't correspond to any task in the same Run call are
// tolerated as already-satisfied — this lets callers compose partial task
// sets.
type SchedulerTask struct {
	Name string
	Deps []string
	Run  func() error
}

// Status classifies how a SchedulerTask's Run call ended.
type Status int

const (
	// Completed means the thunk ran and returned nil.
	Completed Status = iota
	// Failed means the thunk ran and returned an error, or panicked.
	Failed
	// Cancelled means the task never ran, because fail-fast was engaged
	// by an earlier failure.
	Cancelled
)

// Result reports the outcome of a single SchedulerTask.
type Result struct {
	Name   string
	Status Status
	Err    error
}

// Options configures a Run call.
type Options struct {
	// Concurrency bounds the number of thunks executing at once. Zero
	// means the host's available hardware parallelism.
	Concurrency int
	// FailFast, when true (the default), cancels every still-pending
	// task as soon as one task fails.
	FailFast bool
}

// DefaultOptions returns the scheduler's documented defaults: hardware
// parallelism, fail-fast enabled.
func DefaultOptions() Options {
	return Options{Concurrency: runtime.NumCPU(), FailFast: true}
}

// Run executes every task in tasks, respecting dependency order and the
// concurrency bound, and returns one Result per task. The order of the
// returned slice is completion order, not input order. With FailFast off,
// the dependents of a failed task are never dispatched and Run does not
// return.
func Run(tasks []SchedulerTask, opts Options) []Result {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}

	byName := make(map[string]SchedulerTask, len(tasks))
	pending := make(map[string]SchedulerTask, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
		pending[t.Name] = t
	}
	completed := make(map[string]struct{}, len(tasks))

	var mu sync.Mutex
	var failed bool

	resultCh := make(chan Result, len(tasks)+1)
	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	ctx := context.Background()

	results := make([]Result, 0, len(tasks))
	received := 0

	depsSatisfied := func(t SchedulerTask) bool {
		for _, dep := range t.Deps {
			if _, present := byName[dep]; !present {
				continue // unknown dependency: tolerated as satisfied
			}
			if _, done := completed[dep]; !done {
				return false
			}
		}
		return true
	}

	dispatch := func(t SchedulerTask) {
		delete(pending, t.Name)
		go func() {
			mu.Lock()
			alreadyFailed := opts.FailFast && failed
			mu.Unlock()
			if alreadyFailed {
				resultCh <- Result{Name: t.Name, Status: Cancelled}
				return
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				resultCh <- Result{Name: t.Name, Status: Failed, Err: err}
				return
			}
			defer sem.Release(1)

			mu.Lock()
			alreadyFailed = opts.FailFast && failed
			mu.Unlock()
			if alreadyFailed {
				resultCh <- Result{Name: t.Name, Status: Cancelled}
				return
			}

			err := runThunk(t.Run)
			if err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
				resultCh <- Result{Name: t.Name, Status: Failed, Err: err}
				return
			}
			resultCh <- Result{Name: t.Name, Status: Completed}
		}()
	}

	dispatchReady := func() {
		var ready []SchedulerTask
		for _, t := range pending {
			if depsSatisfied(t) {
				ready = append(ready, t)
			}
		}
		for _, t := range ready {
			dispatch(t)
		}
	}

	dispatchReady()

	for received < len(tasks) {
		res := <-resultCh
		received++
		results = append(results, res)

		switch res.Status {
		case Completed:
			completed[res.Name] = struct{}{}
		case Failed:
			mu.Lock()
			failed = true
			mu.Unlock()
		}

		if opts.FailFast {
			mu.Lock()
			isFailed := failed
			mu.Unlock()
			if isFailed && len(pending) > 0 {
				for name := range pending {
					delete(pending, name)
					results = append(results, Result{Name: name, Status: Cancelled})
					received++
				}
			}
		}

		dispatchReady()
	}

	return results
}

// runThunk recovers a panicking thunk into an error: a task fails if its
// thunk returns an error or panics.
func runThunk(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return run()
}
