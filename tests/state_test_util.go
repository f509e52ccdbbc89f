// Package tests provides the scenario/fixture harness the engine
// package's end-to-end tests drive: a Scenario names a sequence of
// dispatcher Steps and the expected outcome of each, and Run executes
// them against a live engine under synchronous waiting — the same
// "describe a fixture once, execute it against a live system and
// diff the observed outcome" shape this package used to apply to
// Ethereum state tests, now aimed at the dispatcher's op surface
// instead of EVM transaction execution.
package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Step is one dispatcher call plus an assertion against its callback
// result. submit is expected to invoke done exactly once, synchronously
// or asynchronously — Run blocks until it does (with a generous
// timeout, since writer/reader executors hop goroutines).
type Step struct {
	Name   string
	Submit func(done func(err error))
	Check  func(t *testing.T)
}

// Scenario is a named, ordered list of Steps — the unit §8's S1..S6
// concrete end-to-end cases are expressed as.
type Scenario struct {
	Name  string
	Steps []Step
}

// stepTimeout bounds how long Run waits for a single Step's callback;
// generous enough for the writer/reader executors' goroutine hops but
// short enough that a genuinely deadlocked dispatcher fails the test
// instead of hanging the suite.
const stepTimeout = 5 * time.Second

// Run executes every Step in order, failing the test immediately if a
// Step's submit call never completes in time, and always calling Check
// after the callback fires, whether or not it reported an error. Run
// itself does not inspect the error passed to done; a Step that cares
// about it must capture it in its own Submit closure.
func Run(t *testing.T, s Scenario) {
	t.Helper()
	for _, step := range s.Steps {
		step := step
		t.Run(step.Name, func(t *testing.T) {
			doneCh := make(chan error, 1)
			step.Submit(func(err error) { doneCh <- err })
			select {
			case <-doneCh:
			case <-time.After(stepTimeout):
				require.Fail(t, "step timed out", step.Name)
			}
			if step.Check != nil {
				step.Check(t)
			}
		})
	}
}
