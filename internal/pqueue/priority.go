package pqueue

// Priority is a total order over four scheduling classes. Strictly
// preferred over FIFO/LIFO age: higher-priority work always preempts
// lower-priority work on the next dispatch decision. No aging or boost is
// applied, so starvation of Low under sustained Critical load is an
// accepted trade-off, not a bug.
type Priority int32

const (
	Low Priority = iota
	Normal
	High
	Critical
)

// NumPriorities is the number of distinct Priority levels, and therefore
// the number of deques a MultiPriorityQueue holds.
const NumPriorities = int(Critical) + 1

func (p Priority) String() string {
	switch p {
	case Low:
		return "LOW"
	case Normal:
		return "NORMAL"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// clamp keeps a Priority within the legal [Low, Critical] range, mirroring
// the clamps the teacher applied to CFS priorities in NewTask.
func clamp(p Priority) Priority {
	if p < Low {
		return Low
	}
	if p > Critical {
		return Critical
	}
	return p
}
