/*
Package dimer scores how likely two encoded primer sequences are to form a
primer dimer: an unwanted duplex between two primers via complementary
base pairing.

Complementarity under the A=0,C=1,G=2,T=3 encoding collapses to a single
XOR check (A<->T is 0<->3, C<->G is 1<->2; both pairs XOR to 3), which is
exploited here for speed across the O(N^2) matrix build.
*/
package dimer

// complementary reports whether base codes x and y pair up (A-T or C-G)
// under the A=0,C=1,G=2,T=3 encoding.
func complementary(x, y byte) bool {
	return x^y == 3
}

// Score returns the maximum complementary-run alignment score between
// sequences s and t, scanning every offset at which the two overlap.
// A run of L consecutive complementary bases contributes L(L+1)/2 to its
// alignment's score, so longer contiguous complementary stretches are
// weighted super-linearly: that is what actually primes dimer formation.
func Score(s, t []byte) int {
	best := 0
	// d ranges over every offset where s and t overlap by at least one
	// base: from -(len(t)-1) (t slides fully left of s) to len(s)-1 (t
	// slides fully right of s).
	for d := -(len(t) - 1); d <= len(s)-1; d++ {
		score := 0
		run := 0
		lo := d
		if lo < 0 {
			lo = 0
		}
		hi := d + len(t) - 1
		if hi > len(s)-1 {
			hi = len(s) - 1
		}
		for i := lo; i <= hi; i++ {
			j := i - d
			if complementary(s[i], t[j]) {
				run++
			} else {
				run = 0
			}
			score += run
		}
		if score > best {
			best = score
		}
	}
	return best
}

// PairScore computes the pairwise interaction score between two encoded
// primers by taking the maximum dimer Score across all four orientation
// combinations: forward-forward, reverse-reverse, forward-reverse, and
// reverse-forward. Called with the same primer on both sides, it also
// flags self-dimers and hairpin-like fwd/rev complementarity.
func PairScore(aFwd, aRev, bFwd, bRev []byte) int {
	scores := [4]int{
		Score(aFwd, bFwd),
		Score(aRev, bRev),
		Score(aFwd, bRev),
		Score(aRev, bFwd),
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}
	return best
}
