// internal/sched/schedulerEvent.go

package sched

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// EventKind represents the type of scheduler lifecycle event.
type EventKind int

const (
	EventSubmit EventKind = iota
	EventSteal
	EventIdle
	EventError
	EventStop
)

// Event is emitted on scheduler lifecycle transitions: a task submitted,
// a worker stealing from a peer, a worker going idle, a task error, or
// the scheduler being stopped.
type Event struct {
	Time      time.Time
	Kind      EventKind
	WorkerIdx int
	Detail    string
}

func (ek EventKind) String() string {
	switch ek {
	case EventSubmit:
		return "Submit"
	case EventSteal:
		return "Steal"
	case EventIdle:
		return "Idle"
	case EventError:
		return "Error"
	case EventStop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// telemetry consumes Events from a buffered channel, printing one line
// per non-trivial event and optionally mirroring it to a CSV file. It is
// the direct generalization of the teacher's Run/handleEvent consumer
// loop, retargeted at scheduler lifecycle events instead of CFS ticks.
type telemetry struct {
	ch        chan Event
	csvFile   *os.File
	csvWriter *csv.Writer
	id        string
	done      chan struct{}
	stopOnce  sync.Once
}

func newTelemetry(id string, csvPath string) *telemetry {
	t := &telemetry{
		ch:   make(chan Event, 256),
		id:   id,
		done: make(chan struct{}),
	}
	if csvPath != "" {
		if f, err := os.Create(csvPath); err == nil {
			w := csv.NewWriter(f)
			w.Write([]string{"timestamp", "scheduler_id", "event", "worker", "detail"})
			w.Flush()
			t.csvFile = f
			t.csvWriter = w
		}
	}
	go t.run()
	return t
}

func (t *telemetry) emit(ev Event) {
	select {
	case t.ch <- ev:
	default:
		// Telemetry is best-effort; a full buffer drops the event rather
		// than blocking the submitter or worker that raised it.
	}
}

func (t *telemetry) run() {
	defer close(t.done)
	for ev := range t.ch {
		t.handle(ev)
	}
	if t.csvFile != nil {
		t.csvWriter.Flush()
		t.csvFile.Close()
	}
}

func (t *telemetry) handle(ev Event) {
	// Idle events are frequent and low-value; skip printing them, same
	// as the teacher skipped StatusTick in handleEvent.
	if ev.Kind != EventIdle {
		fmt.Fprintf(os.Stderr, "%s [%s] scheduler=%s worker=%d %s\n",
			ev.Time.Format("Jan 02 15:04:05.000"),
			ev.Kind.String(),
			t.id,
			ev.WorkerIdx,
			ev.Detail,
		)
	}

	if t.csvWriter != nil {
		rec := []string{
			ev.Time.Format(time.RFC3339Nano),
			t.id,
			ev.Kind.String(),
			strconv.Itoa(ev.WorkerIdx),
			ev.Detail,
		}
		t.csvWriter.Write(rec)
		t.csvWriter.Flush()
	}
}

// stop is idempotent: Shutdown may be called more than once on the same
// Scheduler (directly and via a deferred call, say), and only the first
// call should close the channel.
func (t *telemetry) stop() {
	t.stopOnce.Do(func() {
		close(t.ch)
		<-t.done
	})
}

// humanizeCount renders a count using go-humanize, for Stats.String().
func humanizeCount(n uint64) string {
	return humanize.Comma(int64(n))
}
