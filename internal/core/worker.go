package core

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Task is the unit of work a Worker runs: one input in, one output or an
// error out.
type Task[In, Out any] func(In) (Out, error)

// Result carries one task outcome across the output queue.
type Result[Out any] struct {
	Value Out
	Err   error
}

// Method selects the isolation mechanism for the background executor.
type Method int

const (
	// Subprocess runs the task in a re-executed copy of the current binary.
	// The task must be registered with Register, and the host program must
	// call WorkerMain at the top of its main function.
	Subprocess Method = iota
	// Goroutine runs the task in a goroutine inside the calling process.
	Goroutine
)

type settings struct {
	method Method
}

// Option configures a Worker.
type Option func(*settings)

// WithMethod selects the isolation mode. The default is Subprocess.
func WithMethod(m Method) Option {
	return func(s *settings) { s.method = m }
}

// Worker wraps a task so its invocations run outside the caller's control
// flow: exactly one background executor, fed through an unbounded input
// queue and drained through an unbounded output queue, both FIFO.
type Worker[In, Out any] struct {
	task     Task[In, Out]
	settings settings
}

// NewWorker wraps task as a backgroundable unit of work. Nothing runs until
// Start.
func NewWorker[In, Out any](task Task[In, Out], options ...Option) *Worker[In, Out] {
	s := settings{method: Subprocess}
	for _, option := range options {
		option(&s)
	}

	return &Worker[In, Out]{task: task, settings: s}
}

// Start spawns exactly one background executor and returns the handle used
// to feed and drain it. In Subprocess mode, Start fails if the task was
// never registered.
func (w *Worker[In, Out]) Start() (*Handle[In, Out], error) {
	handle := &Handle[In, Out]{
		in:  NewQueue[In](),
		out: NewQueue[Result[Out]](),
	}

	switch w.settings.method {
	case Goroutine:
		handle.runner = &goroutineRunner[In, Out]{task: w.task, in: handle.in, out: handle.out}
	case Subprocess:
		name, err := registeredName(w.task)
		if err != nil {
			return nil, err
		}

		handle.runner = &subprocessRunner[In, Out]{taskName: name, in: handle.in, out: handle.out}
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownMethod, w.settings.method)
	}

	if err := handle.runner.start(); err != nil {
		return nil, err
	}

	return handle, nil
}

// runner abstracts the isolation mechanism behind a started worker: one
// implementation per method, instead of a runtime branch inside the loop.
type runner interface {
	// start spawns the executor and returns once it is feeding from the
	// input queue.
	start() error
	// wait blocks until the executor has drained the input queue and shut
	// down. Only meaningful after the input queue is closed.
	wait() error
}

// Handle is the caller's side of a started worker.
type Handle[In, Out any] struct {
	in     *Queue[In]
	out    *Queue[Result[Out]]
	runner runner

	mu      sync.Mutex
	stopped bool
}

// Put enqueues v for processing. It never blocks; the input queue is
// unbounded. Put panics after Stop.
func (h *Handle[In, Out]) Put(v In) {
	h.in.Put(v)
}

// Get blocks until the next result is available. Results come back in the
// order their inputs were submitted. A task failure, or a recovered task
// panic, comes back as the error. Once the worker has stopped and every
// result has been drained, Get returns ErrWorkerDone.
func (h *Handle[In, Out]) Get() (Out, error) {
	res, ok := h.out.Get()
	if !ok {
		var zero Out

		return zero, ErrWorkerDone
	}

	return res.Value, res.Err
}

// GetTimeout behaves like Get but gives up after d with ErrGetTimeout.
func (h *Handle[In, Out]) GetTimeout(d time.Duration) (Out, error) {
	res, err := h.out.GetTimeout(d)
	if err != nil {
		var zero Out

		if errors.Is(err, ErrQueueClosed) {
			return zero, ErrWorkerDone
		}

		return zero, err
	}

	return res.Value, res.Err
}

// Stop closes the input side, waits for the executor to drain everything
// already enqueued and shut down, then seals the output side. Results not
// yet drained remain available to Get. A second Stop returns
// ErrAlreadyStopped.
func (h *Handle[In, Out]) Stop() error {
	h.mu.Lock()

	if h.stopped {
		h.mu.Unlock()

		return ErrAlreadyStopped
	}

	h.stopped = true
	h.mu.Unlock()

	h.in.Close()
	err := h.runner.wait()
	h.out.Close()

	return err
}

// goroutineRunner executes the task loop in a goroutine of the calling
// process.
type goroutineRunner[In, Out any] struct {
	task Task[In, Out]
	in   *Queue[In]
	out  *Queue[Result[Out]]
	done chan struct{}
}

func (r *goroutineRunner[In, Out]) start() error {
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		for {
			v, ok := r.in.Get()
			if !ok {
				return
			}

			r.out.Put(runTask(r.task, v))
		}
	}()

	return nil
}

func (r *goroutineRunner[In, Out]) wait() error {
	<-r.done

	return nil
}

// runTask invokes the task with panic recovery, so a crashing task surfaces
// as an error on the output queue instead of tearing the executor down.
func runTask[In, Out any](task Task[In, Out], v In) (res Result[Out]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[Out]{Err: fmt.Errorf("%w: %v", ErrTaskPanicked, p)}
		}
	}()

	out, err := task(v)

	return Result[Out]{Value: out, Err: err}
}

// Errors.
var (
	ErrWorkerDone       = errors.New("worker stopped and all results drained")
	ErrAlreadyStopped   = errors.New("worker already stopped")
	ErrTaskPanicked     = errors.New("task panicked")
	ErrTaskFailed       = errors.New("task failed in worker subprocess")
	ErrUnregisteredTask = errors.New("task is not registered for subprocess execution")
	errUnknownMethod    = errors.New("unknown worker method")
)
