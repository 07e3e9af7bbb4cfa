// Package pqueue bundles four LockFreeDeques, one per Priority level,
// into a single per-worker work queue with priority-ordered pop/steal.
package pqueue

import (
	"sync/atomic"

	"loom/internal/deque"
)

// Task is re-exported from deque for callers that only need pqueue.
type Task = deque.Task

// MultiPriorityQueue holds one LockFreeDeque per Priority and an active
// flag. While active is false, Push is a silent no-op (the queue is
// "quarantined"), but Pop/Steal/draining still work so a retiring queue
// can still be emptied by its owner or by thieves.
type MultiPriorityQueue struct {
	deques [NumPriorities]*deque.Deque
	active atomic.Bool
}

// New creates a MultiPriorityQueue with all four deques active, each at
// deque.DefaultCapacity.
func New() *MultiPriorityQueue {
	return NewWithCapacity(deque.DefaultCapacity)
}

// NewWithCapacity creates a MultiPriorityQueue with all four deques
// active, each initialized with the given per-deque capacity.
func NewWithCapacity(capacity int) *MultiPriorityQueue {
	q := &MultiPriorityQueue{}
	for i := range q.deques {
		q.deques[i] = deque.NewWithCapacity(capacity)
	}
	q.active.Store(true)
	return q
}

// Push enqueues task at the given priority. Owner-only (delegates to the
// owner-only Deque.Push). A no-op once the queue has been deactivated.
func (q *MultiPriorityQueue) Push(priority Priority, task Task) {
	if !q.active.Load() {
		return
	}
	q.deques[clamp(priority)].Push(task)
}

// Pop scans priorities Critical down to Low, returning the first
// successful owner-side pop. Owner-only.
func (q *MultiPriorityQueue) Pop() (Task, bool) {
	for p := Critical; p >= Low; p-- {
		if task, ok := q.deques[p].Pop(); ok {
			return task, true
		}
	}
	return nil, false
}

// Steal scans priorities Critical down to Low, returning the first
// successful steal. Safe for any non-owner goroutine.
func (q *MultiPriorityQueue) Steal() (Task, bool) {
	for p := Critical; p >= Low; p-- {
		if task, ok := q.deques[p].Steal(); ok {
			return task, true
		}
	}
	return nil, false
}

// Empty reports whether every priority's deque appeared empty.
func (q *MultiPriorityQueue) Empty() bool {
	for _, d := range q.deques {
		if !d.Empty() {
			return false
		}
	}
	return true
}

// Size aggregates the approximate size across all four deques.
func (q *MultiPriorityQueue) Size() int {
	total := 0
	for _, d := range q.deques {
		total += d.Size()
	}
	return total
}

// Active reports whether the queue currently accepts pushes.
func (q *MultiPriorityQueue) Active() bool {
	return q.active.Load()
}

// Deactivate quarantines the queue: no further Push calls will succeed,
// though existing residents remain poppable/stealable until drained.
func (q *MultiPriorityQueue) Deactivate() {
	q.active.Store(false)
}
