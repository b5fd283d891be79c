/*
Package pool implements the assignment cost function and per-pool
reporting for the primer-pooling engine: given an assignment of primers
to pools, it scores how good that assignment is and summarizes what each
pool looks like.

The total cost is a weighted sum of four non-negative penalties: dimer
interaction within a pool, Tm variance within a pool, pool-size balance
across all pools, and a steep soft penalty for exceeding the pool
capacity cap. A soft, differentiable-ish capacity penalty is used instead
of a hard filter because a hard filter would create discontinuities the
DE optimizer's neighborhood search cannot traverse.
*/
package pool

import (
	"gonum.org/v1/gonum/stat"

	"github.com/TimothyStiles/primerpool/matrix"
)

// PenaltyLarge scales the capacity-violation penalty so it dominates any
// realistic combination of the other three penalties.
const PenaltyLarge = 1e6

// Assignment maps each primer index to a pool index in [0,K).
type Assignment []int

// Weights are the non-negative multipliers on the dimer, Tm-variance, and
// balance penalties. The capacity penalty is always weighted by
// PenaltyLarge and is not user-tunable.
type Weights struct {
	Dimer   float64
	Tm      float64
	Balance float64
}

// DefaultWeights reproduces the reference behavior's defaults.
func DefaultWeights() Weights {
	return Weights{Dimer: 1.0, Tm: 1.0, Balance: 0.5}
}

// CostBreakdown is the scalar cost of an assignment, decomposed into its
// four penalty terms. All fields are non-negative; Total is their
// weighted sum.
type CostBreakdown struct {
	Dimer      float64
	TmVar      float64
	Balance    float64
	Constraint float64
	Total      float64
}

// Evaluate computes the CostBreakdown for assignment a against the
// interaction matrix m and per-primer average melting temperatures,
// given k pools and a per-pool capacity cap.
//
// Summation order is fixed at ascending primer index within each pool so
// that floating-point results are reproducible regardless of worker
// count or scheduling upstream (determinism guarantee, spec.md §5).
func Evaluate(a Assignment, m *matrix.InteractionMatrix, avgTm []float64, k, cap int, w Weights) CostBreakdown {
	members := make([][]int, k)
	for i, p := range a {
		members[p] = append(members[p], i)
	}

	var dimer float64
	var tmVar float64
	sizes := make([]float64, k)
	for p := 0; p < k; p++ {
		ids := members[p]
		sizes[p] = float64(len(ids))
		for ii := 0; ii < len(ids); ii++ {
			i := ids[ii]
			for jj := ii; jj < len(ids); jj++ {
				j := ids[jj]
				dimer += m.At(i, j)
			}
		}
		if len(ids) > 0 {
			tms := make([]float64, len(ids))
			for idx, i := range ids {
				tms[idx] = avgTm[i]
			}
			tmVar += populationVariance(tms)
		}
	}

	balance := populationVariance(sizes)

	var constraint float64
	for _, s := range sizes {
		if over := s - float64(cap); over > 0 {
			constraint += over * over * PenaltyLarge
		}
	}

	total := w.Dimer*dimer + w.Tm*tmVar + w.Balance*balance + constraint
	return CostBreakdown{
		Dimer:      dimer,
		TmVar:      tmVar,
		Balance:    balance,
		Constraint: constraint,
		Total:      total,
	}
}

// populationVariance computes the population (not sample) variance of x.
// gonum's stat.Variance computes the unbiased *sample* variance (Bessel's
// correction, dividing by n-1); population variance is recovered with the
// standard (n-1)/n adjustment. This resolves the Open Question in
// spec.md §9: population variance is used throughout.
func populationVariance(x []float64) float64 {
	n := len(x)
	if n <= 1 {
		return 0
	}
	sampleVar := stat.Variance(x, nil)
	return sampleVar * float64(n-1) / float64(n)
}

// MaxPoolSize returns the largest pool size in a, used by callers to
// check the capacity invariant post hoc.
func MaxPoolSize(a Assignment, k int) int {
	sizes := make([]int, k)
	for _, p := range a {
		sizes[p]++
	}
	max := 0
	for _, s := range sizes {
		if s > max {
			max = s
		}
	}
	return max
}
