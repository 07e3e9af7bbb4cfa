package sched

import "loom/internal/pqueue"

// Task is a nullary, single-shot unit of work submitted to the
// scheduler. Owned by exactly one deque slot from push until the
// instant before invocation; ownership transfers to the executing
// worker, which drops the closure after the call.
type Task = pqueue.Task

// Priority is a total order over four scheduling classes:
// Low < Normal < High < Critical. Strictly preferred over FIFO/LIFO age.
type Priority = pqueue.Priority

const (
	Low      = pqueue.Low
	Normal   = pqueue.Normal
	High     = pqueue.High
	Critical = pqueue.Critical
)
