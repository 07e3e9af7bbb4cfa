package sched

import "fmt"

// Stats is a point-in-time snapshot of scheduler occupancy, useful for
// the CLI's status output and for tests that assert on queue depth.
type Stats struct {
	ID                string
	ActiveThreadCount uint32
	IdleCount         uint32
	TotalQueueDepth   int
	Priority          Priority
	Stopped           bool
}

// Stats returns a snapshot of current scheduler occupancy. Collected
// without locks, so values may be momentarily inconsistent under
// concurrent submission/execution — adequate for monitoring, not for
// exactness.
func (s *Scheduler) Stats() Stats {
	depth := 0
	for _, q := range s.queues {
		depth += q.Size()
	}
	return Stats{
		ID:                s.id,
		ActiveThreadCount: s.ActiveThreadCount(),
		IdleCount:         s.idleCount.Load(),
		TotalQueueDepth:   depth,
		Priority:          s.Priority(),
		Stopped:           s.stopFlag.Load(),
	}
}

// String renders Stats using humanized counts, matching the CLI's
// status-line formatting.
func (st Stats) String() string {
	return fmt.Sprintf(
		"scheduler %s: %s workers active, %s idle, %s tasks queued, priority=%s, stopped=%v",
		st.ID,
		humanizeCount(uint64(st.ActiveThreadCount)),
		humanizeCount(uint64(st.IdleCount)),
		humanizeCount(uint64(st.TotalQueueDepth)),
		st.Priority,
		st.Stopped,
	)
}
