package core

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// taskEnv is the environment variable a worker subprocess is spawned with.
// Its value names the registered task the child should serve.
const taskEnv = "BATBELT_WORKER_TASK"

// Register makes task spawnable in a worker subprocess under name. An empty
// name registers the task under its runtime function name. Registering a
// taken name panics; that's a programming error, not something a caller can
// recover from at runtime.
func Register[In, Out any](name string, task Task[In, Out]) {
	if name == "" {
		name = funcName(task)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, taken := tasksByName[name]; taken {
		panic(fmt.Sprintf("batbelt: task %q is already registered", name))
	}

	tasksByName[name] = serveLoop(task)
	namesByPointer[reflect.ValueOf(task).Pointer()] = name
}

// WorkerMain hands control to the registered task's serve loop when this
// process was spawned as a worker subprocess, then exits. In the parent the
// spawn variable is absent and WorkerMain returns immediately. Call it at
// the top of main, or in TestMain for test binaries that start subprocess
// workers, after all Register calls have run.
func WorkerMain() {
	name, spawned := os.LookupEnv(taskEnv)
	if !spawned {
		return
	}

	registryMu.Lock()
	serve, ok := tasksByName[name]
	registryMu.Unlock()

	if !ok {
		fmt.Fprintf(os.Stderr, "batbelt worker: task %q is not registered in this binary\n", name)
		os.Exit(1)
	}

	if err := serve(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "batbelt worker: %v\n", err)
		os.Exit(1)
	}

	os.Exit(0)
}

// registeredName finds the registry name for a task previously passed to
// Register, so callers don't have to repeat it when building a worker.
func registeredName[In, Out any](task Task[In, Out]) (string, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name, ok := namesByPointer[reflect.ValueOf(task).Pointer()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnregisteredTask, funcName(task))
	}

	return name, nil
}

// funcName resolves a task's runtime function name.
func funcName(task any) string {
	name := runtime.FuncForPC(uintptr(reflect.ValueOf(task).UnsafePointer())).Name()
	// method values grow a -fm suffix, which is noise for registry purposes
	return strings.TrimSuffix(name, "-fm")
}

// serveFunc runs a task's decode-compute-encode loop against the parent's
// pipes until the input side reaches EOF.
type serveFunc func(in io.Reader, out io.Writer) error

// serveLoop builds the child-side loop for one task: gob-decode an input,
// run the task, gob-encode the result envelope, repeat. Pipe ordering is
// what keeps subprocess results FIFO.
func serveLoop[In, Out any](task Task[In, Out]) serveFunc {
	return func(in io.Reader, out io.Writer) error {
		decoder := gob.NewDecoder(in)
		encoder := gob.NewEncoder(out)

		for {
			var v In

			err := decoder.Decode(&v)
			if errors.Is(err, io.EOF) {
				return nil
			}

			if err != nil {
				return fmt.Errorf("decoding worker input: %w", err)
			}

			res := runTask(task, v)

			envelope := resultEnvelope[Out]{Value: res.Value}
			if res.Err != nil {
				envelope = resultEnvelope[Out]{ErrMsg: res.Err.Error(), Failed: true}
			}

			if err := encoder.Encode(envelope); err != nil {
				return fmt.Errorf("encoding worker result: %w", err)
			}
		}
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional: the
	// child process must find tasks by the name in its environment.
	tasksByName = make(map[string]serveFunc)
	//nolint:gochecknoglobals // Reverse index so workers can find the name
	// a task was registered under.
	namesByPointer = make(map[uintptr]string)
	//nolint:gochecknoglobals // Mutex for the registry maps
	registryMu sync.Mutex
)
