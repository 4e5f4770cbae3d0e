// Package executortest provides executors for tests.
package executortest

import (
	"testing"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/hostfunc"
)

// Registry returns a registry with the clock and an in-memory key-value
// store.
func Registry() *hostfunc.Registry {
	r := hostfunc.NewRegistry()
	hostfunc.RegisterClock(r)
	hostfunc.NewKV(hostfunc.NewMemoryBackend()).Register(r)
	return r
}

// New returns an executor over [Registry] that is closed when tb finishes.
func New(tb testing.TB, opts ...executor.ExecutorOption) *executor.Executor {
	tb.Helper()
	exec, err := executor.New(Registry(), opts...)
	if err != nil {
		tb.Fatalf("failed to create executor: %v", err)
	}
	tb.Cleanup(func() { exec.Close() })
	return exec
}
