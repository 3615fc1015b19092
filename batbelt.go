// Package batbelt is a small utility belt: a background task worker here at
// the root, plus iteration, map, and ordered-set helpers in the seq, dict,
// and orderedset subpackages.
//
// This is the public API entry point for the worker. Implementation lives
// in internal/core.
package batbelt

import (
	"github.com/sametmax/batbelt/internal/core"
)

// Task is the unit of work a Worker runs: one input in, one output or an
// error out.
type Task[In, Out any] = core.Task[In, Out]

// Result carries one task outcome across the worker's output queue.
type Result[Out any] = core.Result[Out]

// Method selects the isolation mechanism for the background executor.
type Method = core.Method

// Isolation modes.
const (
	// Subprocess runs the task in a re-executed copy of the current binary.
	Subprocess = core.Subprocess
	// Goroutine runs the task in a goroutine inside the calling process.
	Goroutine = core.Goroutine
)

// Option configures a Worker.
type Option = core.Option

// WithMethod selects the isolation mode. The default is Subprocess.
func WithMethod(m Method) Option {
	return core.WithMethod(m)
}

// Worker wraps a task so its invocations run outside the caller's control
// flow, behind a pair of unbounded FIFO queues.
type Worker[In, Out any] = core.Worker[In, Out]

// NewWorker wraps task as a backgroundable unit of work. Nothing runs until
// Start.
func NewWorker[In, Out any](task Task[In, Out], options ...Option) *Worker[In, Out] {
	return core.NewWorker(task, options...)
}

// Handle is the caller's side of a started worker, exposing Put, Get, and
// Stop.
type Handle[In, Out any] = core.Handle[In, Out]

// Register makes task spawnable in a worker subprocess under name. An empty
// name registers the task under its runtime function name.
func Register[In, Out any](name string, task Task[In, Out]) {
	core.Register(name, task)
}

// WorkerMain hands control to the registered task's serve loop when this
// process was spawned as a worker subprocess, then exits. It returns
// immediately in the parent process. Call it at the top of main, or in
// TestMain for test binaries that start subprocess workers.
func WorkerMain() {
	core.WorkerMain()
}

// Detach runs fn in a new goroutine and returns a handle to join it.
func Detach(fn func()) *Detached {
	return core.Detach(fn)
}

// Detached joins a goroutine started by Detach.
type Detached = core.Detached

// Timer abstracts time-based operations for testability.
type Timer = core.Timer

// Errors.
var (
	// ErrWorkerDone reports a Get on a worker that has stopped after every
	// result was drained.
	ErrWorkerDone = core.ErrWorkerDone
	// ErrAlreadyStopped reports a second Stop on the same worker.
	ErrAlreadyStopped = core.ErrAlreadyStopped
	// ErrTaskPanicked wraps the value a task panicked with.
	ErrTaskPanicked = core.ErrTaskPanicked
	// ErrTaskFailed wraps a task error that crossed the subprocess boundary.
	ErrTaskFailed = core.ErrTaskFailed
	// ErrUnregisteredTask reports a Subprocess worker built from a task that
	// was never passed to Register.
	ErrUnregisteredTask = core.ErrUnregisteredTask
	// ErrGetTimeout reports a GetTimeout that gave up waiting.
	ErrGetTimeout = core.ErrGetTimeout
)
