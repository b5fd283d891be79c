/*
Package checks provides utilities to check for certain properties of a
short unambiguous DNA sequence.
*/
package checks

import (
	"strings"

	"github.com/TimothyStiles/primerpool/transform"
)

// IsPalindromic reports whether sequence is self-complementary, i.e. equal
// to its own reverse complement. More here:
// https://en.wikipedia.org/wiki/Palindromic_sequence
func IsPalindromic(sequence string) bool {
	return sequence == transform.ReverseComplement(sequence)
}

// GcContent returns the percentage (0-100) of G and C bases in sequence.
func GcContent(sequence string) float64 {
	sequence = strings.ToUpper(sequence)
	guanineCount := strings.Count(sequence, "G")
	cytosineCount := strings.Count(sequence, "C")
	return 100 * float64(guanineCount+cytosineCount) / float64(len(sequence))
}

// IsDNA reports whether every character of seq is one of A, C, G, T.
func IsDNA(seq string) bool {
	for _, base := range seq {
		switch base {
		case 'A', 'C', 'T', 'G':
			continue
		default:
			return false
		}
	}
	return true
}
