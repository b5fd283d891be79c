/*
Package binner implements the fast, deterministic preview assignment used
for interactive feedback: no interaction matrix, no search, just a sorted
snake-order distribution by melting temperature. It trades optimality for
sub-50ms latency on up to a couple thousand primers.
*/
package binner

import (
	"sort"

	"github.com/TimothyStiles/primerpool/pool"
)

// Assign sorts primer indices by ascending avgTm and distributes them
// round-robin into k pools using a snake ordering that reverses direction
// every k items, which keeps each pool's Tm spread close to every other
// pool's rather than concentrating low-Tm primers in pool 0 and high-Tm
// primers in the last pool.
func Assign(avgTm []float64, k int) pool.Assignment {
	n := len(avgTm)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return avgTm[idx[i]] < avgTm[idx[j]] })

	assignment := make(pool.Assignment, n)
	for pos, primerIdx := range idx {
		cycle := pos / k
		offset := pos % k
		var poolIdx int
		if cycle%2 == 0 {
			poolIdx = offset
		} else {
			poolIdx = k - 1 - offset
		}
		assignment[primerIdx] = poolIdx
	}
	return assignment
}
