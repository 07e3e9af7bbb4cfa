package sched

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(threads int) Config {
	cfg := defaultConfig()
	cfg.Threads = threads
	cfg.IdleSleepUS = 10
	return cfg.sanitize()
}

// Scenario 1: Smoke. 10,000 tasks each incrementing a shared counter.
func TestSmokeTenThousandTasks(t *testing.T) {
	s := New(testConfig(4))
	var counter atomic.Int64
	for i := 0; i < 10_000; i++ {
		s.Schedule(func() { counter.Add(1) })
	}
	s.Shutdown()
	require.Equal(t, int64(10_000), counter.Load())
}

// Scenario 2: Priority preemption. Hold all workers busy with spinning
// tasks, submit LOW then CRITICAL onto the same queue, release the
// spinners, assert CRITICAL finishes before LOW.
func TestPriorityPreemption(t *testing.T) {
	const n = 4
	s := New(testConfig(n))
	defer s.Shutdown()

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(n)
	for i := 0; i < n; i++ {
		s.Schedule(func() {
			started.Done()
			<-release
		})
	}
	started.Wait()

	var order []string
	var mu sync.Mutex
	var done sync.WaitGroup
	done.Add(2)

	s.ScheduleToQueue(0, func() {
		mu.Lock()
		order = append(order, "low")
		mu.Unlock()
		done.Done()
	}, Low)
	s.ScheduleToQueue(0, func() {
		mu.Lock()
		order = append(order, "critical")
		mu.Unlock()
		done.Done()
	}, Critical)

	close(release)
	waitWithTimeout(t, &done, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"critical", "low"}, order)
}

// Scenario 3: Bulk decomposition sets every bit of a 1000-bit vector.
func TestBulkDecompositionCoversAllIndices(t *testing.T) {
	s := New(testConfig(4))
	defer s.Shutdown()

	var bits [1000]atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1000)
	s.BulkSchedule(1000, func(i int) {
		bits[i].Store(true)
		wg.Done()
	})
	waitWithTimeout(t, &wg, 5*time.Second)

	for i := range bits {
		require.Truef(t, bits[i].Load(), "bit %d never set", i)
	}
}

// Scenario 4: Stealing. All tasks land on queue 0 via the test hook;
// assert at least two distinct workers execute tasks and all complete.
func TestStealingDistributesAcrossWorkers(t *testing.T) {
	s := New(testConfig(4))
	defer s.Shutdown()

	var completed atomic.Int64
	var running, maxRunning atomic.Int32

	for i := 0; i < 1000; i++ {
		s.ScheduleToQueue(0, func() {
			r := running.Add(1)
			for m := maxRunning.Load(); r > m && !maxRunning.CompareAndSwap(m, r); m = maxRunning.Load() {
			}
			time.Sleep(50 * time.Microsecond)
			running.Add(-1)
			completed.Add(1)
		})
	}

	deadline := time.Now().Add(5 * time.Second)
	for completed.Load() < 1000 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, int64(1000), completed.Load())

	// A worker runs one task at a time, so two tasks running at the same
	// moment were necessarily run by two distinct workers.
	require.GreaterOrEqual(t, maxRunning.Load(), int32(2), "tasks never ran on more than one worker at once")
}

// Scenario 5: Shutdown draining. 100 tasks sleeping 1ms; Shutdown blocks
// until all have run.
func TestShutdownDrainsPendingTasks(t *testing.T) {
	s := New(testConfig(4))
	var completed atomic.Int64
	for i := 0; i < 100; i++ {
		s.Schedule(func() {
			time.Sleep(time.Millisecond)
			completed.Add(1)
		})
	}
	s.Shutdown()
	require.Equal(t, int64(100), completed.Load())
}

// Scenario 6: Post-stop drop. SetStopped then submit; none should run.
func TestPostStopDropsSubmissions(t *testing.T) {
	s := New(testConfig(2))
	s.SetStopped()

	var ran atomic.Bool
	for i := 0; i < 10; i++ {
		s.Schedule(func() { ran.Store(true) })
	}
	s.Shutdown()
	require.False(t, ran.Load())
}

func TestEqualAlwaysTrue(t *testing.T) {
	s1 := New(testConfig(1))
	defer s1.Shutdown()
	s2 := New(testConfig(1))
	defer s2.Shutdown()
	require.True(t, s1.Equal(s2))
	require.True(t, s2.Equal(s1))
}

func TestTaskPanicReportedNotFatal(t *testing.T) {
	s := New(testConfig(2))
	defer s.Shutdown()

	var ran atomic.Bool
	s.Schedule(func() { panic("boom") })
	s.Schedule(func() { ran.Store(true) })

	deadline := time.Now().Add(2 * time.Second)
	for (!ran.Load() || s.LastError() == nil) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, ran.Load())
	require.Error(t, s.LastError())
}

func TestBulkScheduleModeCoarseProducesFewChunks(t *testing.T) {
	cfg := testConfig(2)
	cfg.BulkScheduleMode = BulkScheduleCoarse
	s := New(cfg)
	defer s.Shutdown()

	// Hold both workers busy so every chunk task stays queued and can be
	// counted: coarse mode submits min(2*8, 1000) = 16 chunks.
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	for i := 0; i < 2; i++ {
		s.Schedule(func() {
			started.Done()
			<-release
		})
	}
	started.Wait()

	var count atomic.Int64
	s.BulkSchedule(1000, func(i int) { count.Add(1) })
	depth := s.Stats().TotalQueueDepth
	close(release)
	require.Equal(t, 16, depth)

	deadline := time.Now().Add(5 * time.Second)
	for count.Load() < 1000 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, int64(1000), count.Load())
}

func waitWithTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("timed out waiting for completion")
	}
}
