package batbelt_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/sametmax/batbelt"
)

// Tasks exercised by the subprocess-mode tests. They must be registered
// before WorkerMain so the re-executed test binary can find them by name.

func double(n int) (int, error) {
	return n * 2, nil
}

func reject(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative input %d", n)
	}

	return n, nil
}

// TestMain lets this test binary double as its own worker subprocess:
// WorkerMain serves and exits in the child, and is a no-op in the parent.
func TestMain(m *testing.M) {
	batbelt.Register("double", double)
	batbelt.Register("reject", reject)
	batbelt.WorkerMain()

	os.Exit(m.Run())
}
