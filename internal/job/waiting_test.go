package job

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSleepWorkBlocksForDuration(t *testing.T) {
	task := SleepWork(10 * time.Millisecond)
	start := time.Now()
	task()
	require.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSpinWorkBlocksUntilReleased(t *testing.T) {
	release := make(chan struct{})
	task := SpinWork(release)

	done := make(chan struct{})
	go func() {
		task()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("SpinWork returned before release was closed")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SpinWork did not return after release was closed")
	}
}

func TestCounterWorkIncrements(t *testing.T) {
	var counter atomic.Int64
	task := CounterWork(&counter)
	task()
	task()
	require.Equal(t, int64(2), counter.Load())
}

func TestBitSetWorkSetsIndex(t *testing.T) {
	bits := make([]atomic.Bool, 10)
	fn := BitSetWork(bits)
	fn(3)
	require.True(t, bits[3].Load())
	require.False(t, bits[4].Load())
}
