package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"loom/internal/bench"
	"loom/internal/sched"
)

var benchSize int

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Multiply two size x size matrices across the scheduler's worker pool",
		RunE:  runBench,
	}
	cmd.Flags().IntVar(&benchSize, "size", 500, "Matrix dimension (size x size)")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchSize <= 0 {
		return fmt.Errorf("size must be positive, got %d", benchSize)
	}

	cfg := sched.Load("")
	s := sched.New(cfg)
	defer s.Shutdown()

	a := bench.NewFilledMatrix(benchSize, benchSize, 1)
	b := bench.NewFilledMatrix(benchSize, benchSize, 1)

	start := time.Now()
	result := bench.Multiply(s, a, b)
	elapsed := time.Since(start)

	fmt.Fprintf(cmd.OutOrStdout(), "multiplied %dx%d matrices in %s using %s\n",
		benchSize, benchSize, elapsed, s.Stats().String())
	printTopLeft(cmd, result.C, 5, 5)
	return nil
}

func printTopLeft(cmd *cobra.Command, m bench.Matrix, maxRows, maxCols int) {
	fmt.Fprintln(cmd.OutOrStdout(), "result (top-left corner):")
	for i := 0; i < maxRows && i < len(m); i++ {
		for j := 0; j < maxCols && j < len(m[i]); j++ {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t", m[i][j])
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
