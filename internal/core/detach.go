package core

import "fmt"

// Detach runs fn in a new goroutine and returns a handle to join it.
func Detach(fn func()) *Detached {
	d := &Detached{done: make(chan struct{})}

	go func() {
		defer close(d.done)
		defer func() {
			if p := recover(); p != nil {
				d.panicErr = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
			}
		}()

		fn()
	}()

	return d
}

// Detached joins a goroutine started by Detach.
type Detached struct {
	done     chan struct{}
	panicErr error
}

// Wait blocks until the detached function finishes, reporting a recovered
// panic as an error.
func (d *Detached) Wait() error {
	<-d.done

	return d.panicErr
}
