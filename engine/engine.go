/*
Package engine is the primer-pooling optimization engine's facade: the
one entry point a caller needs. It wires the Encoder, Matrix Builder,
Cost Evaluator, Fast Binner, and DE Optimizer together, validating input
up front and assembling the documented output contract.
*/
package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"lukechampine.com/blake3"

	"github.com/TimothyStiles/primerpool/binner"
	"github.com/TimothyStiles/primerpool/matrix"
	"github.com/TimothyStiles/primerpool/optimize"
	"github.com/TimothyStiles/primerpool/pool"
	"github.com/TimothyStiles/primerpool/primer"
)

// InvalidInputError is returned when the job cannot even be attempted:
// an empty primer list, K < 2, cap < 1, or a malformed sequence (the
// offending primer's id is surfaced via Cause).
type InvalidInputError struct {
	Reason string
	Cause  error
}

func (e *InvalidInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Cause }

// InfeasibleCapacityError is returned before any optimization work when
// cap*K < N: no assignment can possibly satisfy the capacity invariant.
type InfeasibleCapacityError struct {
	N, K, Cap int
}

func (e *InfeasibleCapacityError) Error() string {
	return fmt.Sprintf("infeasible capacity: %d primers cannot fit in %d pools of capacity %d (max %d)", e.N, e.K, e.Cap, e.K*e.Cap)
}

// Params are the optimize-job parameters exposed to callers, mirroring
// spec.md §6's parameter contract. It wraps optimize.Params directly so
// the facade doesn't duplicate field definitions.
type Params = optimize.Params

// DefaultParams returns the documented defaults for n_pools K and
// max_primers_per_pool cap.
func DefaultParams(k, cap int) Params {
	return optimize.DefaultParams(k, cap)
}

// Preview is FastPreview's result: an assignment produced by the O(N log
// N) fast binner, with no interaction matrix and no search.
type Preview struct {
	Assignment pool.Assignment
	Pools      []pool.Report
	Metrics    pool.Metrics
}

// Result is Optimize's result: the output contract of spec.md §6.
type Result struct {
	Assignment        pool.Assignment
	Pools             []pool.Report
	Metrics           pool.Metrics
	DurationSeconds   float64
	NoImprovement     bool
	Cancelled         bool
	TimeBudgetExhausted bool
}

func validate(primers []primer.Primer, k, cap int) error {
	if len(primers) == 0 {
		return &InvalidInputError{Reason: "primer list is empty"}
	}
	if k < 2 {
		return &InvalidInputError{Reason: fmt.Sprintf("n_pools must be >= 2, got %d", k)}
	}
	if cap < 1 {
		return &InvalidInputError{Reason: fmt.Sprintf("max_primers_per_pool must be >= 1, got %d", cap)}
	}
	seen := make(map[string]bool, len(primers))
	for _, p := range primers {
		if seen[p.ID] {
			return &InvalidInputError{Reason: fmt.Sprintf("duplicate primer id %q", p.ID)}
		}
		seen[p.ID] = true
	}
	return nil
}

func checkCapacity(n, k, cap int) error {
	if cap*k < n {
		return &InfeasibleCapacityError{N: n, K: k, Cap: cap}
	}
	return nil
}

// FastPreview produces an immediate, matrix-free assignment via the fast
// binner, for interactive feedback while a full Optimize call may still
// be running. It returns InvalidInputError under the same input checks as
// Optimize; it takes no capacity cap and never returns
// InfeasibleCapacityError. It does not build an interaction matrix at
// all, so MaxDimerPerPool/CompatibilityScore fields in the result are
// left at zero.
func FastPreview(primers []primer.Primer, k int) (Preview, error) {
	if err := validate(primers, k, 1); err != nil {
		return Preview{}, err
	}

	encoded, err := primer.Encode(primers)
	if err != nil {
		return Preview{}, &InvalidInputError{Reason: "malformed sequence", Cause: err}
	}

	avgTm := make([]float64, len(encoded))
	for i, e := range encoded {
		avgTm[i] = e.AvgTm
	}

	assignment := binner.Assign(avgTm, k)
	reports, metrics := buildPreviewReports(assignment, encoded, k)
	return Preview{Assignment: assignment, Pools: reports, Metrics: metrics}, nil
}

// buildPreviewReports mirrors pool.BuildReports but without an
// InteractionMatrix (FastPreview never builds one), so dimer-dependent
// fields are zero.
func buildPreviewReports(a pool.Assignment, encoded []primer.EncodedPrimer, k int) ([]pool.Report, pool.Metrics) {
	members := make([][]int, k)
	for i, p := range a {
		members[p] = append(members[p], i)
	}

	reports := make([]pool.Report, k)
	metrics := pool.Metrics{
		PoolSizes:      make([]int, k),
		AvgTmPerPool:   make([]float64, k),
		TmRangePerPool: make([]float64, k),
		MaxDimerPerPool: make([]float64, k),
	}

	for p := 0; p < k; p++ {
		ids := members[p]
		report := pool.Report{Pool: p, Size: len(ids)}
		memberReports := make([]pool.MemberReport, len(ids))
		for idx, i := range ids {
			e := encoded[i]
			memberReports[idx] = pool.MemberReport{
				ID:        e.ID,
				Gene:      e.Gene,
				Forward:   e.Forward,
				Reverse:   e.Reverse,
				FwdTm:     e.FwdTm,
				RevTm:     e.RevTm,
				AvgTm:     e.AvgTm,
				GCContent: e.GCContent,
			}
		}
		report.Members = memberReports
		if len(ids) > 0 {
			tms := make([]float64, len(ids))
			for idx, i := range ids {
				tms[idx] = encoded[i].AvgTm
			}
			report.AvgTm = floats.Sum(tms) / float64(len(ids))
			report.TmRange = floats.Max(tms) - floats.Min(tms)
		}
		reports[p] = report
		metrics.PoolSizes[p] = report.Size
		metrics.AvgTmPerPool[p] = report.AvgTm
		metrics.TmRangePerPool[p] = report.TmRange
	}
	return reports, metrics
}

// Optimize runs the full pipeline: validate, encode, build the
// interaction matrix, run the DE optimizer, and assemble the output
// contract. ctx cancellation and params.TimeBudget are honored
// cooperatively by the DE optimizer; a cancelled or budget-exhausted run
// still returns the best assignment found so far, with the
// corresponding flag set on Result.
func Optimize(ctx context.Context, primers []primer.Primer, params Params) (Result, error) {
	start := time.Now()

	if err := validate(primers, params.K, params.Cap); err != nil {
		return Result{}, err
	}
	if err := checkCapacity(len(primers), params.K, params.Cap); err != nil {
		return Result{}, err
	}

	encoded, err := primer.Encode(primers)
	if err != nil {
		return Result{}, &InvalidInputError{Reason: "malformed sequence", Cause: err}
	}

	avgTm := make([]float64, len(encoded))
	for i, e := range encoded {
		avgTm[i] = e.AvgTm
	}

	m, err := matrix.Build(ctx, encoded)
	if err != nil {
		return Result{}, err
	}

	outcome, runErr := optimize.Run(ctx, m, avgTm, params)
	// optimize.Run only ever returns a non-nil error alongside a populated
	// outcome (InfeasibleError); Cancelled/TimeBudgetExhausted are carried
	// as flags on outcome with a nil error. Either way, assemble and
	// return the best-so-far result per spec.md §7's never-swallow policy.
	reports, metrics := pool.BuildReports(outcome.Best.Assignment, encoded, m, params.K, outcome.Best.Cost.Total)
	return Result{
		Assignment:          outcome.Best.Assignment,
		Pools:               reports,
		Metrics:             metrics,
		DurationSeconds:     time.Since(start).Seconds(),
		NoImprovement:       outcome.NoImprovement,
		Cancelled:           outcome.Cancelled,
		TimeBudgetExhausted: outcome.TimeBudgetExhausted,
	}, runErr
}

// Fingerprint hashes the normalized primer set (ids and sequences, in
// order) into a stable 128-bit digest for log correlation and golden
// test fixture naming. It is additive: not part of the required output
// contract.
func Fingerprint(primers []primer.Primer) string {
	hasher := blake3.New(16, nil)
	for _, p := range primers {
		var length [8]byte
		binary.LittleEndian.PutUint64(length[:], uint64(len(p.ID)))
		hasher.Write(length[:])
		hasher.Write([]byte(p.ID))
		hasher.Write([]byte(strings.ToUpper(strings.TrimSpace(p.Forward))))
		hasher.Write([]byte(strings.ToUpper(strings.TrimSpace(p.Reverse))))
	}
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
