// Package bench provides a scheduler-driven matrix multiplication
// workload, used by the CLI's "bench" subcommand to demonstrate
// BulkSchedule decomposition under a realistic compute-bound task.
package bench

import (
	"math"
	"sync"

	"loom/internal/sched"
)

// Matrix is a dense row-major square (or rectangular) integer matrix.
type Matrix [][]int

// NewFilledMatrix returns a rows x cols Matrix with every entry set to
// fill.
func NewFilledMatrix(rows, cols, fill int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		row := make([]int, cols)
		for j := range row {
			row[j] = fill
		}
		m[i] = row
	}
	return m
}

// MultiplyResult holds the product matrix plus wall-clock-independent
// bookkeeping useful for the CLI's summary output.
type MultiplyResult struct {
	C    Matrix
	Rows int
	Cols int
}

// Multiply computes C = A*B using the scheduler's BulkSchedule to
// decompose the row range across the worker pool, mirroring the
// row-block-per-thread structure of the HPX reference this benchmark
// is modeled on. Per-element accumulation uses a sin(a)-weighted term,
// matching that reference's accumulation shape, to keep each cell's
// work floating-point heavy enough to be representative of real compute
// cost rather than trivial integer multiply-add.
//
// Multiply blocks until every row has been computed: the scheduler
// itself exposes no per-submission completion signal, so the caller
// supplies its own sync.WaitGroup around the BulkSchedule call.
func Multiply(s *sched.Scheduler, a, b Matrix) MultiplyResult {
	rowsA := len(a)
	if rowsA == 0 {
		return MultiplyResult{}
	}
	colsA := len(a[0])
	colsB := 0
	if len(b) > 0 {
		colsB = len(b[0])
	}

	c := make(Matrix, rowsA)
	for i := range c {
		c[i] = make([]int, colsB)
	}

	var wg sync.WaitGroup
	wg.Add(rowsA)
	s.BulkSchedule(rowsA, func(i int) {
		defer wg.Done()
		for j := 0; j < colsB; j++ {
			var sum float64
			for k := 0; k < colsA; k++ {
				term := float64(a[i][k]) * float64(b[k][j]) * math.Sin(float64(a[i][k]))
				sum += term
			}
			c[i][j] = int(sum)
		}
	}, sched.Normal)
	wg.Wait()

	return MultiplyResult{C: c, Rows: rowsA, Cols: colsB}
}
