// Package job provides demo and benchmark work generators: small task
// bodies used by the CLI's demo subcommands and by tests that need a
// task shape heavier than a bare closure (sleeping, spinning, counting).
package job

import (
	"sync/atomic"
	"time"

	"loom/internal/sched"
)

// SleepWork returns a task that sleeps for d and then returns. Useful
// for exercising shutdown draining: a batch of these submitted just
// before Shutdown lets the caller observe that every one still ran.
func SleepWork(d time.Duration) sched.Task {
	return func() {
		time.Sleep(d)
	}
}

// SpinWork returns a task that blocks until release is closed. Used
// to hold a worker occupied deterministically (unlike SleepWork, it
// does not return until explicitly told to), which is what the
// priority-preemption scenario needs: every worker must be pinned down
// at the instant the priority-ordered tasks are submitted.
func SpinWork(release <-chan struct{}) sched.Task {
	return func() {
		<-release
	}
}

// CounterWork returns a task that atomically increments counter by one.
// The simplest possible "did this run" probe, used by the smoke test
// and by demo subcommands that just want to show throughput.
func CounterWork(counter *atomic.Int64) sched.Task {
	return func() {
		counter.Add(1)
	}
}

// BitSetWork returns the per-index task body BulkSchedule's decomposed
// chunks end up invoking: set bits[i] to mark index i as visited.
func BitSetWork(bits []atomic.Bool) func(i int) {
	return func(i int) {
		bits[i].Store(true)
	}
}
