package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/job"
	"loom/internal/sched"
)

var (
	runConfigPath string
	runTaskCount  int
	runTaskMS     int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a batch of demo tasks to a scheduler and report completion stats",
		RunE:  runDemo,
	}
	cmd.Flags().StringVar(&runConfigPath, "config", "", "Path to a YAML config file (defaults applied if omitted)")
	cmd.Flags().IntVar(&runTaskCount, "tasks", 10_000, "Number of demo tasks to submit")
	cmd.Flags().IntVar(&runTaskMS, "sleep-ms", 0, "Each task sleeps this many milliseconds before completing")
	return cmd
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := sched.Load(runConfigPath)
	s := sched.New(cfg)

	var completed atomic.Int64
	start := time.Now()

	for i := 0; i < runTaskCount; i++ {
		if runTaskMS > 0 {
			sleepTask := job.SleepWork(time.Duration(runTaskMS) * time.Millisecond)
			s.Schedule(func() {
				sleepTask()
				completed.Add(1)
			})
			continue
		}
		s.Schedule(job.CounterWork(&completed))
	}

	s.Shutdown()
	elapsed := time.Since(start)

	fmt.Fprintln(cmd.OutOrStdout(), s.Stats().String())
	fmt.Fprintf(cmd.OutOrStdout(), "completed %d/%d tasks in %s\n", completed.Load(), runTaskCount, elapsed)
	return nil
}
