// internal/sched/scheduler.go

package sched

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/google/uuid"

	"loom/internal/numa"
	"loom/internal/pqueue"
	"loom/internal/worker"
)

// Scheduler is a fixed-size pool of worker goroutines distributing
// priority-classified task closures across per-worker work-stealing
// queues. Construction spawns every worker immediately; Shutdown stops
// and joins them all.
type Scheduler struct {
	id       string
	priority atomic.Int32 // Priority, advisory nominal level

	queues       []*pqueue.MultiPriorityQueue
	activeQueues *hashset.Set // indices currently accepting Push, for introspection

	stopFlag          atomic.Bool
	nextQueue         atomic.Uint64
	idleCount         atomic.Uint32
	activeThreadCount atomic.Uint32
	minThreads        int
	maxThreads        int

	bulkMode BulkScheduleMode

	workers []*worker.Worker
	wg      sync.WaitGroup

	telemetry *telemetry

	errMu     sync.Mutex
	lastError error
}

// New builds N MultiPriorityQueues and N workers (N from cfg.Threads,
// defaulting to runtime.NumCPU()), assigns NUMA nodes round-robin, and
// spawns every worker before returning.
func New(cfg Config) *Scheduler {
	cfg = cfg.sanitize()
	n := cfg.threads()

	s := &Scheduler{
		id:       uuid.NewString(),
		queues:   make([]*pqueue.MultiPriorityQueue, n),
		workers:  make([]*worker.Worker, n),
		bulkMode: cfg.BulkScheduleMode,
	}
	s.priority.Store(int32(parsePriority(cfg.Priority)))
	s.minThreads = n
	s.maxThreads = n
	s.activeThreadCount.Store(uint32(n))

	s.activeQueues = hashset.New()
	for i := 0; i < n; i++ {
		s.queues[i] = pqueue.NewWithCapacity(cfg.InitialCapacity)
		s.activeQueues.Add(i)
	}

	s.telemetry = newTelemetry(s.id, cfg.CSVPath)

	nodes := numa.AssignRoundRobin(n)
	qs := worker.Queues(s.queues)
	for i := 0; i < n; i++ {
		node := 0
		if cfg.NUMAEnabled {
			node = nodes[i]
		}
		s.workers[i] = worker.New(i, qs, node, cfg.idleSleep(), s.workerError, s.workerSteal, s.workerIdle, &s.idleCount, &s.stopFlag)
	}

	for _, w := range s.workers {
		s.wg.Add(1)
		go func(w *worker.Worker) {
			defer s.wg.Done()
			if cfg.NUMAEnabled {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				_ = numa.PinCurrentThread(w.NUMANode())
			}
			w.Run()
		}(w)
	}

	return s
}

// workerError is the worker.ErrorSink passed to every worker: a
// recovered task panic is forwarded here, recorded, and surfaced as an
// EventError.
func (s *Scheduler) workerError(workerIndex int, err error) {
	s.errMu.Lock()
	s.lastError = err
	s.errMu.Unlock()
	s.telemetry.emit(Event{Time: time.Now(), Kind: EventError, WorkerIdx: workerIndex, Detail: err.Error()})
}

// workerSteal is the worker.StealSink passed to every worker: a
// successful steal is forwarded here and surfaced as an EventSteal.
func (s *Scheduler) workerSteal(workerIndex int, fromPeer int) {
	s.telemetry.emit(Event{
		Time:      time.Now(),
		Kind:      EventSteal,
		WorkerIdx: workerIndex,
		Detail:    fmt.Sprintf("stole from worker %d", fromPeer),
	})
}

// workerIdle is the worker.IdleSink passed to every worker: entering the
// idle-sleep state is forwarded here and surfaced as an EventIdle.
func (s *Scheduler) workerIdle(workerIndex int) {
	s.telemetry.emit(Event{Time: time.Now(), Kind: EventIdle, WorkerIdx: workerIndex, Detail: "idle"})
}

// Priority returns the scheduler's current nominal priority. Advisory
// only: it does not affect per-task priorities already submitted.
func (s *Scheduler) Priority() Priority {
	return Priority(s.priority.Load())
}

// SetPriority mutates the scheduler's nominal priority.
func (s *Scheduler) SetPriority(p Priority) {
	s.priority.Store(int32(p))
}

// Schedule enqueues task at the given priority (Normal if omitted) onto
// a round-robin-selected queue, skipping any queue that has been
// deactivated. Never blocks, never panics across this call boundary. A
// no-op once the scheduler has been stopped.
func (s *Scheduler) Schedule(task Task, priority ...Priority) {
	defer recoverSilently()

	if s.stopFlag.Load() {
		return
	}

	p := Normal
	if len(priority) > 0 {
		p = priority[0]
	}

	n := uint64(len(s.queues))
	chosen := s.nextQueue.Add(1) % n
	for i := uint64(0); i < n; i++ {
		idx := (chosen + i) % n
		if s.queues[idx].Active() {
			s.queues[idx].Push(p, task)
			s.telemetry.emit(Event{Time: time.Now(), Kind: EventSubmit, WorkerIdx: int(idx), Detail: p.String()})
			return
		}
	}
	// Every queue is deactivated; drop silently, matching the
	// submission-after-shutdown contract.
}

// BulkSchedule decomposes [0, n) into chunks and submits each chunk as a
// single task invoking fn(i) for every i in the chunk, each chunk
// dispatched through Schedule and therefore subject to round-robin
// placement. Chunk sizes differ by at most one.
//
// The chunk count formula depends on the scheduler's configured
// BulkScheduleMode: BulkScheduleObserved (default) reproduces the
// source's max(activeThreads*8, n), which degenerates to one task per
// element for n >> activeThreads; BulkScheduleCoarse uses
// min(activeThreads*8, n) instead. See REDESIGN FLAGS in SPEC_FULL.md.
func (s *Scheduler) BulkSchedule(n int, fn func(int), priority ...Priority) {
	if n <= 0 {
		return
	}

	active := int(s.ActiveThreadCount())
	chunks := active * 8
	switch s.bulkMode {
	case BulkScheduleCoarse:
		if n < chunks {
			chunks = n
		}
	default:
		if n > chunks {
			chunks = n
		}
	}
	if chunks <= 0 {
		chunks = 1
	}

	chunkSize := n / chunks
	remainder := n % chunks

	for c := 0; c < chunks; c++ {
		start := c*chunkSize + minInt(c, remainder)
		end := start + chunkSize
		if c < remainder {
			end++
		}
		if start >= end {
			continue
		}
		s.Schedule(func() {
			for i := start; i < end; i++ {
				fn(i)
			}
		}, priority...)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SetStopped latches the stop flag. Idempotent; subsequent Schedule
// calls become no-ops. Already-queued tasks still run to completion.
func (s *Scheduler) SetStopped() {
	if !s.stopFlag.CompareAndSwap(false, true) {
		return
	}
	s.telemetry.emit(Event{Time: time.Now(), Kind: EventStop, WorkerIdx: -1, Detail: "scheduler stopped"})
}

// SetError reports err to the scheduler's error sink (stderr, plus the
// optional CSV telemetry sink).
func (s *Scheduler) SetError(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	s.lastError = err
	s.errMu.Unlock()
	s.telemetry.emit(Event{Time: time.Now(), Kind: EventError, WorkerIdx: -1, Detail: err.Error()})
}

// LastError returns the most recently reported error, or nil.
func (s *Scheduler) LastError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastError
}

// ActiveThreadCount returns the current worker count.
func (s *Scheduler) ActiveThreadCount() uint32 {
	return s.activeThreadCount.Load()
}

// Equal always returns true: the source's operator== treats every
// scheduler pair as equivalent dispatchers. Surprising, but preserved
// intentionally rather than silently "fixed" to identity comparison —
// see DESIGN.md Open Questions.
func (s *Scheduler) Equal(other *Scheduler) bool {
	return true
}

// ID returns this scheduler's instance identifier, surfaced in
// telemetry lines.
func (s *Scheduler) ID() string { return s.id }

// DeactivateQueue quarantines queue idx: it stops accepting Push (from
// Schedule's round-robin selection or from ScheduleToQueue) while
// remaining poppable/stealable so it can still be drained.
func (s *Scheduler) DeactivateQueue(idx int) {
	if idx < 0 || idx >= len(s.queues) {
		return
	}
	s.queues[idx].Deactivate()
	s.activeQueues.Remove(idx)
}

// ActiveQueueIndices returns the indices of queues currently accepting
// Push, for introspection and tests.
func (s *Scheduler) ActiveQueueIndices() []int {
	values := s.activeQueues.Values()
	indices := make([]int, 0, len(values))
	for _, v := range values {
		indices = append(indices, v.(int))
	}
	sort.Ints(indices)
	return indices
}

// ScheduleToQueue submits task directly to queue idx, bypassing
// round-robin selection. This is a test hook (see spec.md §8 scenario 4,
// "bypass round-robin via a test hook") for exercising work-stealing
// under a deliberately skewed initial distribution; production callers
// should use Schedule.
func (s *Scheduler) ScheduleToQueue(idx int, task Task, priority ...Priority) {
	defer recoverSilently()

	if s.stopFlag.Load() || idx < 0 || idx >= len(s.queues) {
		return
	}
	p := Normal
	if len(priority) > 0 {
		p = priority[0]
	}
	s.queues[idx].Push(p, task)
	s.telemetry.emit(Event{Time: time.Now(), Kind: EventSubmit, WorkerIdx: idx, Detail: p.String()})
}

// Shutdown sets the stop flag and joins every worker goroutine, then
// drains the telemetry sink. Workers observe the flag on their next idle
// cycle and exit only once their own queue and every peer's queue are
// empty, guaranteeing drain: after Shutdown returns, no queue holds a
// task.
func (s *Scheduler) Shutdown() {
	s.SetStopped()
	s.wg.Wait()
	s.telemetry.stop()
}

func recoverSilently() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "loom: recovered from panic at submission boundary: %v\n", r)
	}
}
