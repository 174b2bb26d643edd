// Package concurrency implements Hemlock's structured-concurrency
// primitives: OS-thread-backed tasks with join/detach, and bounded
// channels with blocking send/receive (spec §4.6, §4.7, §5).
//
// Grounded on the teacher's worker/pool machinery (sentra/internal/
// concurrency/concurrency.go: WorkerPool, Worker, Job/JobResult, Semaphore)
// which already models a goroutine-per-unit-of-work scheduler with
// sync.WaitGroup and channel-mediated completion; adapted here from a
// fixed worker pool executing arbitrary Jobs to a one-goroutine-per-spawn
// Task with the Running/Completed/Failed state machine spec §4.6 requires.
package concurrency

import (
	"sync"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

type TaskState uint8

const (
	TaskRunning TaskState = iota
	TaskCompleted
	TaskFailed
)

// ConcurrencyError covers the task/channel error kinds of spec §7: double
// join, join of a detached task, send to a closed channel, spawn of a
// non-async function.
type ConcurrencyError struct{ Msg string }

func (e *ConcurrencyError) Error() string { return e.Msg }

// TaskObj is a unit of concurrent execution on its own goroutine (spec's
// "OS thread" — Go's scheduler multiplexes goroutines onto OS threads,
// which is the natural idiomatic-Go reading of "parallel OS threads" in
// §5; a blocking syscall or cgo call still parks a real OS thread, same
// as the spec's model).
type TaskObj struct {
	value.Header

	mu       sync.Mutex
	cond     *sync.Cond
	state    TaskState
	result   value.Value
	err      error
	joined   bool
	detached bool
	reg      *value.FreedRegistry
}

// NewTask allocates a task and starts fn on a new goroutine immediately;
// spawn() in the evaluator is responsible for checking fn.IsAsync before
// calling this.
func NewTask(reg *value.FreedRegistry, fn func() (value.Value, error)) *TaskObj {
	t := &TaskObj{Header: value.NewHeader(), state: TaskRunning, reg: reg}
	t.cond = sync.NewCond(&t.mu)
	go t.run(fn)
	return t
}

func (t *TaskObj) run(fn func() (value.Value, error)) {
	result, err := fn()
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.state = TaskFailed
		t.err = err
	} else {
		value.Retain(result)
		t.state = TaskCompleted
		t.result = result
	}
	t.cond.Broadcast()
}

// Destroy releases the task's held result if it was never consumed by a
// join (spec §7: "a throw inside a task that is never joined is lost").
func (t *TaskObj) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TaskCompleted && !t.joined {
		value.Release(t.reg, t.result)
	}
}

// Join blocks until the task reaches a terminal state, then returns its
// value or re-raises its error. A second join fails (spec §4.6, §8 #7).
func (t *TaskObj) Join() (value.Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.detached {
		return value.Null, &ConcurrencyError{Msg: "cannot join a detached task"}
	}
	if t.joined {
		return value.Null, &ConcurrencyError{Msg: "task handle already joined"}
	}
	for t.state == TaskRunning {
		t.cond.Wait()
	}
	t.joined = true
	if t.state == TaskFailed {
		return value.Null, t.err
	}
	// Ownership of the one retained reference transfers to the caller;
	// Destroy() must not release it again since joined is now true.
	return t.result, nil
}

// Detach marks the task ownerless; a subsequent Join fails.
func (t *TaskObj) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detached = true
}

func (t *TaskObj) State() TaskState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
