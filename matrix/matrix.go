/*
Package matrix builds the symmetric N×N pairwise dimer interaction matrix
for a set of encoded primers, in parallel, over disjoint chunks of the
upper-triangle index set.

Determinism matters here: pair_score is a pure function of two primers'
sequences, so the finished matrix must be bitwise-identical regardless of
how many workers built it or how chunks were scheduled. Each worker owns
a disjoint slice of (i,j) pairs and stores each pair's score once via
mat.SymDense.SetSym; SymDense keeps a single cell for (i,j) and (j,i), so
no post-pass or cross-worker synchronization is needed to maintain
symmetry.
*/
package matrix

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/TimothyStiles/primerpool/dimer"
	"github.com/TimothyStiles/primerpool/primer"
)

// minCellsPerChunk is the rule-of-thumb floor from the design: a few
// hundred cells per chunk amortizes goroutine scheduling overhead.
const minCellsPerChunk = 256

// InteractionMatrix is a read-only, symmetric N×N matrix of non-negative
// pairwise dimer interaction scores, including self-interaction (i==i)
// cells.
type InteractionMatrix struct {
	n    int
	data *mat.SymDense
}

// N returns the matrix dimension.
func (m *InteractionMatrix) N() int { return m.n }

// At returns M[i,j]. Symmetric by construction: At(i,j) == At(j,i).
func (m *InteractionMatrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// RawSymmetric exposes the underlying gonum matrix for callers (e.g. the
// DE optimizer) that want to use gonum's linear-algebra routines directly.
func (m *InteractionMatrix) RawSymmetric() *mat.SymDense {
	return m.data
}

// BuildFailedError reports an unrecoverable failure scoring a specific
// pair during matrix construction. No partial matrix is returned
// alongside it.
type BuildFailedError struct {
	I, J  int
	Cause error
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("matrix build failed scoring pair (%d,%d): %v", e.I, e.J, e.Cause)
}

func (e *BuildFailedError) Unwrap() error { return e.Cause }

type cell struct{ i, j int }

// Build computes the symmetric interaction matrix for primers, dispatching
// disjoint chunks of the upper-triangle index set across a worker pool
// sized to GOMAXPROCS. It checks ctx for cancellation between chunks; a
// cancelled build returns ctx.Err() with no matrix.
func Build(ctx context.Context, primers []primer.EncodedPrimer) (*InteractionMatrix, error) {
	n := len(primers)
	data := mat.NewSymDense(n, nil)
	if n == 0 {
		return &InteractionMatrix{n: 0, data: data}, nil
	}

	cells := make([]cell, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cells = append(cells, cell{i, j})
		}
	}

	chunkSize := minCellsPerChunk
	workers := runtime.GOMAXPROCS(0)
	if byWorker := (len(cells) + workers - 1) / workers; byWorker > chunkSize {
		chunkSize = byWorker
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(cells); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(cells) {
			end = len(cells)
		}
		chunk := cells[start:end]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, c := range chunk {
				score, err := safePairScore(primers[c.i], primers[c.j])
				if err != nil {
					return &BuildFailedError{I: c.i, J: c.j, Cause: err}
				}
				data.SetSym(c.i, c.j, float64(score))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &InteractionMatrix{n: n, data: data}, nil
}

// safePairScore wraps dimer.PairScore so that a panic on a malformed pair
// (e.g. mismatched encoding invariants) surfaces as a BuildFailedError
// cause instead of crashing the whole process.
func safePairScore(a, b primer.EncodedPrimer) (score int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic scoring pair: %v", r)
		}
	}()
	score = dimer.PairScore(a.FwdCodes, a.RevCodes, b.FwdCodes, b.RevCodes)
	return score, nil
}
