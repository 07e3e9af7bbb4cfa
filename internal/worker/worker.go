// Package worker implements the scheduler's per-thread dispatch loop:
// pop from the worker's own queue, fall back to stealing from peers, and
// sleep briefly when idle.
package worker

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/lists/arraylist"

	"loom/internal/pqueue"
)

// ErrorSink receives a recovered task panic, converted to an error, so
// the scheduler can forward it to its configured error handler. Stealing
// and idling never produce errors; only a task body can.
type ErrorSink func(workerIndex int, err error)

// StealSink is notified every time this worker successfully steals a
// task from a peer, so the scheduler can surface it as telemetry.
type StealSink func(workerIndex int, fromPeer int)

// IdleSink is notified every time this worker's own pop and its steal
// attempts on every active peer all miss and it is about to sleep, so
// the scheduler can surface it as telemetry.
type IdleSink func(workerIndex int)

// Queues is the read-only view a Worker needs of its siblings: its own
// queue index into the shared slice, and the full slice to steal from.
type Queues []*pqueue.MultiPriorityQueue

// Worker owns exactly one MultiPriorityQueue (by index into the shared
// Queues slice) and loops popping from it, stealing from peers on a
// miss, and sleeping briefly when both fail.
type Worker struct {
	index     int
	queues    Queues
	numaNode  int
	idleSleep time.Duration
	errorSink ErrorSink
	stealSink StealSink
	idleSink  IdleSink
	idleCount *atomic.Uint32
	stopFlag  *atomic.Bool
	peerList  *arraylist.List
	rng       *mathrand.Rand
}

// New creates a Worker bound to queues[index]. idleSleep is the sleep
// duration on a full miss (pop and every steal attempt failed);
// stopFlag/idleCount are shared scheduler-wide atomics the Worker reads
// and updates respectively. stealSink/idleSink are nil-checked before
// use, so either may be omitted when the caller doesn't want telemetry.
func New(index int, queues Queues, numaNode int, idleSleep time.Duration, errorSink ErrorSink, stealSink StealSink, idleSink IdleSink, idleCount *atomic.Uint32, stopFlag *atomic.Bool) *Worker {
	peers := arraylist.New()
	for i := range queues {
		if i != index {
			peers.Add(i)
		}
	}
	return &Worker{
		index:     index,
		queues:    queues,
		numaNode:  numaNode,
		idleSleep: idleSleep,
		errorSink: errorSink,
		stealSink: stealSink,
		idleSink:  idleSink,
		idleCount: idleCount,
		stopFlag:  stopFlag,
		peerList:  peers,
		rng:       mathrand.New(mathrand.NewSource(seed())),
	}
}

// seed draws a nondeterministic per-worker seed from crypto/rand, so
// each worker's steal-order shuffle is independent of the others even
// when many workers start in the same instant.
func seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// Run executes the worker loop until the exit predicate is satisfied:
// stopFlag is set AND every queue (this worker's and all peers') is
// empty. Intended to run on its own goroutine; the caller is
// responsible for runtime.LockOSThread + NUMA pinning before calling
// Run, if pinning is desired.
func (w *Worker) Run() {
	own := w.queues[w.index]
	for {
		if task, ok := own.Pop(); ok {
			w.invoke(task)
			continue
		}

		if task, ok := w.stealFromPeers(); ok {
			w.invoke(task)
			continue
		}

		if w.idleSink != nil {
			w.idleSink(w.index)
		}
		w.idleCount.Add(1)
		time.Sleep(w.idleSleep)
		w.idleCount.Add(^uint32(0)) // atomic decrement

		if w.stopFlag.Load() && w.allQueuesEmpty() {
			return
		}
	}
}

// stealFromPeers shuffles the peer-index list with the worker-local RNG
// and attempts a steal against each active peer in turn, stopping at the
// first success.
func (w *Worker) stealFromPeers() (pqueue.Task, bool) {
	w.shufflePeers()
	for i := 0; i < w.peerList.Size(); i++ {
		v, _ := w.peerList.Get(i)
		idx := v.(int)
		peer := w.queues[idx]
		if !peer.Active() {
			continue
		}
		if task, ok := peer.Steal(); ok {
			if w.stealSink != nil {
				w.stealSink(w.index, idx)
			}
			return task, true
		}
	}
	return nil, false
}

// shufflePeers performs an in-place Fisher-Yates shuffle of the peer
// index list using the worker-local RNG.
func (w *Worker) shufflePeers() {
	n := w.peerList.Size()
	for i := n - 1; i > 0; i-- {
		j := w.rng.Intn(i + 1)
		w.peerList.Swap(i, j)
	}
}

// invoke runs task, recovering any panic and forwarding it to the
// scheduler's error sink rather than letting it escape the worker
// goroutine.
func (w *Worker) invoke(task pqueue.Task) {
	defer func() {
		if r := recover(); r != nil {
			if w.errorSink != nil {
				w.errorSink(w.index, panicToError(r))
			}
		}
	}()
	task()
}

func (w *Worker) allQueuesEmpty() bool {
	for _, q := range w.queues {
		if !q.Empty() {
			return false
		}
	}
	return true
}

// Index returns this worker's own queue index.
func (w *Worker) Index() int { return w.index }

// NUMANode returns the NUMA node this worker was assigned at startup.
func (w *Worker) NUMANode() int { return w.numaNode }
