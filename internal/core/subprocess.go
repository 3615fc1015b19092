package core

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// subprocessRunner executes the task loop in a re-executed copy of the
// current binary, isolating it from the caller's process. Inputs and result
// envelopes travel over the child's stdin and stdout as gob streams.
type subprocessRunner[In, Out any] struct {
	taskName string
	in       *Queue[In]
	out      *Queue[Result[Out]]

	cmd  *exec.Cmd
	done chan struct{}
}

func (r *subprocessRunner[In, Out]) start() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating own binary for the worker subprocess: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), taskEnv+"="+r.taskName)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening the worker subprocess input pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening the worker subprocess output pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting the worker subprocess: %w", err)
	}

	r.cmd = cmd
	r.done = make(chan struct{})

	go r.pumpInputs(stdin)
	go r.collectResults(stdout)

	return nil
}

// pumpInputs feeds queued inputs into the child one at a time. Closing the
// child's stdin after the queue drains is what tells it to exit.
func (r *subprocessRunner[In, Out]) pumpInputs(stdin io.WriteCloser) {
	defer stdin.Close()

	encoder := gob.NewEncoder(stdin)

	for {
		v, ok := r.in.Get()
		if !ok {
			return
		}

		if err := encoder.Encode(v); err != nil {
			r.out.Put(Result[Out]{Err: fmt.Errorf("sending input to the worker subprocess: %w", err)})

			return
		}
	}
}

// collectResults reads result envelopes back in submission order and moves
// them onto the output queue.
func (r *subprocessRunner[In, Out]) collectResults(stdout io.Reader) {
	defer close(r.done)

	decoder := gob.NewDecoder(stdout)

	for {
		var envelope resultEnvelope[Out]

		err := decoder.Decode(&envelope)
		if errors.Is(err, io.EOF) {
			return
		}

		if err != nil {
			r.out.Put(Result[Out]{Err: fmt.Errorf("reading result from the worker subprocess: %w", err)})

			return
		}

		r.out.Put(envelope.result())
	}
}

func (r *subprocessRunner[In, Out]) wait() error {
	<-r.done

	if err := r.cmd.Wait(); err != nil {
		return fmt.Errorf("worker subprocess exited: %w", err)
	}

	return nil
}

// resultEnvelope is the gob wire form of one task outcome. Errors cross the
// process boundary as their message string.
type resultEnvelope[Out any] struct {
	Value  Out
	ErrMsg string
	Failed bool
}

func (e resultEnvelope[Out]) result() Result[Out] {
	if e.Failed {
		return Result[Out]{Err: fmt.Errorf("%w: %s", ErrTaskFailed, e.ErrMsg)}
	}

	return Result[Out]{Value: e.Value}
}
