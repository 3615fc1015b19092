package batbelt_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/sametmax/batbelt"
)

// The tasks behind these tests are registered in TestMain, which also calls
// WorkerMain so the re-executed test binary serves them.

// TestWorker_Subprocess_FIFO verifies outputs come back in submission order
// across the process boundary.
func TestWorker_Subprocess_FIFO(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(double).Start()
	g.Expect(err).NotTo(HaveOccurred())

	const n = 20

	for i := range n {
		handle.Put(i)
	}

	for i := range n {
		got, err := handle.Get()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(got).To(Equal(i * 2))
	}

	g.Expect(handle.Stop()).To(Succeed())
}

// TestWorker_Subprocess_ZeroInputs starts and stops cleanly with nothing to
// do.
func TestWorker_Subprocess_ZeroInputs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(double).Start()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(handle.Stop()).To(Succeed())

	_, err = handle.Get()
	g.Expect(err).To(MatchError(batbelt.ErrWorkerDone))
}

// TestWorker_Subprocess_TaskErrorCrossesBoundary verifies a task error
// comes back wrapped in ErrTaskFailed with its message intact.
func TestWorker_Subprocess_TaskErrorCrossesBoundary(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	handle, err := batbelt.NewWorker(reject).Start()
	g.Expect(err).NotTo(HaveOccurred())

	handle.Put(5)
	handle.Put(-5)

	got, err := handle.Get()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(5))

	_, err = handle.Get()
	g.Expect(err).To(MatchError(batbelt.ErrTaskFailed))
	g.Expect(err.Error()).To(ContainSubstring("negative input -5"))

	g.Expect(handle.Stop()).To(Succeed())
}

// TestWorker_Subprocess_UnregisteredTask_FailsStart verifies Start refuses
// to spawn a child that could never find the task.
func TestWorker_Subprocess_UnregisteredTask_FailsStart(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	unregistered := func(n int) (int, error) { return n, nil }

	_, err := batbelt.NewWorker(unregistered).Start()

	g.Expect(err).To(MatchError(batbelt.ErrUnregisteredTask))
}
