package batbelt_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/sametmax/batbelt"
)

// TestWorker_Goroutine_FIFO_Property proves outputs come back in submission
// order for any number of inputs in goroutine mode.
func TestWorker_Goroutine_FIFO_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		inputs := rapid.SliceOf(rapid.Int()).Draw(rt, "inputs")

		worker := batbelt.NewWorker(double, batbelt.WithMethod(batbelt.Goroutine))

		handle, err := worker.Start()
		if err != nil {
			rt.Fatalf("start: %v", err)
		}

		for _, v := range inputs {
			handle.Put(v)
		}

		for i, v := range inputs {
			got, err := handle.Get()
			if err != nil {
				rt.Fatalf("get %d: %v", i, err)
			}

			if got != v*2 {
				rt.Fatalf("result %d: got %d, want %d", i, got, v*2)
			}
		}

		if err := handle.Stop(); err != nil {
			rt.Fatalf("stop: %v", err)
		}

		if _, err := handle.Get(); !errors.Is(err, batbelt.ErrWorkerDone) {
			rt.Fatalf("get after stop and drain: %v, want ErrWorkerDone", err)
		}
	})
}

// TestWorker_Goroutine_StopDrainsBacklog verifies Stop lets the executor
// finish everything already enqueued, with results still gettable after.
func TestWorker_Goroutine_StopDrainsBacklog(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(double, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	for i := range 5 {
		handle.Put(i)
	}

	g.Expect(handle.Stop()).To(Succeed())

	for i := range 5 {
		got, err := handle.Get()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(got).To(Equal(i * 2))
	}

	_, err = handle.Get()
	g.Expect(err).To(MatchError(batbelt.ErrWorkerDone))
}

// TestWorker_Goroutine_TaskErrorSurfaces verifies a task error comes back
// from Get in position, without disturbing neighboring results.
func TestWorker_Goroutine_TaskErrorSurfaces(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(reject, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	handle.Put(1)
	handle.Put(-1)
	handle.Put(3)

	got, err := handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(1))

	_, err = handle.Get()
	g.Expect(err).To(MatchError(ContainSubstring("negative input -1")))

	got, err = handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(3))

	g.Expect(handle.Stop()).To(Succeed())
}

// TestWorker_Goroutine_TaskPanicRecovered verifies a panicking task surfaces
// as ErrTaskPanicked instead of tearing the executor down.
func TestWorker_Goroutine_TaskPanicRecovered(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	explode := func(n int) (int, error) {
		if n == 13 {
			panic("unlucky")
		}

		return n, nil
	}

	handle, err := batbelt.NewWorker(explode, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	handle.Put(13)
	handle.Put(14)

	_, err = handle.Get()
	g.Expect(err).To(MatchError(batbelt.ErrTaskPanicked))
	g.Expect(err.Error()).To(ContainSubstring("unlucky"))

	got, err := handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(14))

	g.Expect(handle.Stop()).To(Succeed())
}

// TestWorker_GetTimeout_NoResult gives up with ErrGetTimeout while the task
// is still running.
func TestWorker_GetTimeout_NoResult(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	release := make(chan struct{})
	slow := func(n int) (int, error) {
		<-release

		return n, nil
	}

	handle, err := batbelt.NewWorker(slow, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	handle.Put(1)

	_, err = handle.GetTimeout(10 * time.Millisecond)
	g.Expect(err).To(MatchError(batbelt.ErrGetTimeout))

	close(release)

	got, err := handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(1))

	g.Expect(handle.Stop()).To(Succeed())
}

// TestWorker_StopTwice_Errors verifies the second Stop reports
// ErrAlreadyStopped.
func TestWorker_StopTwice_Errors(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(double, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(handle.Stop()).To(Succeed())
	g.Expect(handle.Stop()).To(MatchError(batbelt.ErrAlreadyStopped))
}

// TestWorker_PutAfterStop_Panics verifies the programmer-error contract.
func TestWorker_PutAfterStop_Panics(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(double, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(handle.Stop()).To(Succeed())

	g.Expect(func() { handle.Put(1) }).To(PanicWith(ContainSubstring("closed queue")))
}

// TestWorker_Goroutine_StringTask exercises a non-numeric task type through
// the same generic machinery.
func TestWorker_Goroutine_StringTask(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	itoa := func(n int) (string, error) { return strconv.Itoa(n), nil }

	handle, err := batbelt.NewWorker(itoa, batbelt.WithMethod(batbelt.Goroutine)).Start()
	g.Expect(err).NotTo(HaveOccurred())

	handle.Put(42)

	got, err := handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal("42"))

	g.Expect(handle.Stop()).To(Succeed())
}
