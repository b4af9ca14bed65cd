// Package testutil holds small helpers shared by this module's tests.
package testutil

import (
	"runtime"
	"testing"
	"time"
)

// CheckNumGoroutines snapshots the current goroutine count and returns a
// function to be deferred; when called, it polls runtime.NumGoroutine
// until it drops back to (at most) the snapshot, failing the test if it
// hasn't within timeout. Mirrors the teacher's microbatch tests' use of
// this pattern to assert a pool shuts its goroutines down cleanly.
func CheckNumGoroutines(timeout time.Duration) func(t *testing.T) {
	before := runtime.NumGoroutine()
	return func(t *testing.T) {
		t.Helper()
		deadline := time.Now().Add(timeout)
		for {
			after := runtime.NumGoroutine()
			if after <= before {
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("testutil: goroutine leak: before=%d after=%d", before, after)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
