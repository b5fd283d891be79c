/*
Package transform provides base-level transformations of unambiguous DNA
sequences.

Complement takes the complement of a sequence (A<->T, C<->G).

Reverse reverses a sequence.

ReverseComplement reverses a sequence and complements it, the orientation
primers bind in on the opposite strand.
*/
package transform

import "strings"

// complementBaseRuneMap provides a 1:1 mapping between bases and their
// complements. Restricted to A/C/G/T since every sequence reaching this
// package has already been normalized to the four-letter alphabet.
var complementBaseRuneMap = map[rune]rune{
	'A': 'T',
	'C': 'G',
	'G': 'C',
	'T': 'A',
}

// ComplementBase accepts a base and returns its complement base.
func ComplementBase(base rune) rune {
	return complementBaseRuneMap[base]
}

// Complement takes the complement of a sequence.
func Complement(sequence string) string {
	return strings.Map(ComplementBase, sequence)
}

// Reverse reverses a sequence.
func Reverse(sequence string) string {
	runes := []rune(sequence)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ReverseComplement takes the reverse complement of a sequence.
func ReverseComplement(sequence string) string {
	return Reverse(Complement(sequence))
}
