/*
Package primer holds the primer-pooling engine's input types and the
Encoder: it turns raw forward/reverse primer sequences into the compact
numeric form the rest of the engine (dimer scoring, matrix building, cost
evaluation) operates on.

Encoding uses the 2-bit base codes A=0, C=1, G=2, T=3. Melting temperature
is estimated with the Wallace rule, which is cheap and good enough when
every primer is short (typically 18-25 nt) and the cost function only
cares about relative Tm dispersion between primers, not absolute accuracy.
*/
package primer

import (
	"fmt"
	"strings"

	"github.com/TimothyStiles/primerpool/checks"
)

// minimumLength is the shortest sequence the encoder will accept. Below
// this, Tm estimates and dimer scoring become unreliable.
const minimumLength = 6

// Primer is a forward/reverse primer pair as supplied by the caller.
type Primer struct {
	ID      string
	Gene    string
	Forward string
	Reverse string
}

// EncodedPrimer is the immutable, numeric form of a Primer produced by
// Encode. FwdCodes and RevCodes mirror Forward and Reverse 1:1 under the
// A=0,C=1,G=2,T=3 mapping.
type EncodedPrimer struct {
	ID                string
	Gene              string
	Forward           string
	Reverse           string
	FwdCodes          []byte
	RevCodes          []byte
	FwdTm             float64
	RevTm             float64
	AvgTm             float64
	GCContent         float64
	Length            int
	SelfComplementary bool
}

// InvalidSequenceError is returned when a primer's forward or reverse
// sequence contains a character outside {A,C,G,T} (after normalization)
// or is shorter than the minimum usable primer length.
type InvalidSequenceError struct {
	PrimerID string
	Strand   string
	Reason   string
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("primer %s: invalid %s sequence: %s", e.PrimerID, e.Strand, e.Reason)
}

var baseCode = map[byte]byte{
	'A': 0,
	'C': 1,
	'G': 2,
	'T': 3,
}

// normalize uppercases and strips whitespace, matching the input
// contract (sequences are ASCII, case-insensitive, trimmed).
func normalize(sequence string) string {
	return strings.ToUpper(strings.TrimSpace(sequence))
}

// encodeStrand converts a normalized sequence into base codes, computing
// its Wallace-rule melting temperature along the way.
func encodeStrand(primerID, strand, sequence string) ([]byte, float64, error) {
	if len(sequence) < minimumLength {
		return nil, 0, &InvalidSequenceError{PrimerID: primerID, Strand: strand, Reason: "length below minimum of 6"}
	}
	codes := make([]byte, len(sequence))
	var at, gc int
	for i := 0; i < len(sequence); i++ {
		code, ok := baseCode[sequence[i]]
		if !ok {
			return nil, 0, &InvalidSequenceError{PrimerID: primerID, Strand: strand, Reason: fmt.Sprintf("unexpected character %q", sequence[i])}
		}
		codes[i] = code
		if code == 0 || code == 3 {
			at++
		} else {
			gc++
		}
	}
	tm := 2*float64(at) + 4*float64(gc)
	return codes, tm, nil
}

// Encode converts a slice of Primer records into EncodedPrimer records,
// preserving order. It fails fast on the first invalid sequence found.
func Encode(primers []Primer) ([]EncodedPrimer, error) {
	encoded := make([]EncodedPrimer, len(primers))
	for i, p := range primers {
		fwd := normalize(p.Forward)
		rev := normalize(p.Reverse)

		fwdCodes, fwdTm, err := encodeStrand(p.ID, "forward", fwd)
		if err != nil {
			return nil, err
		}
		revCodes, revTm, err := encodeStrand(p.ID, "reverse", rev)
		if err != nil {
			return nil, err
		}

		gcContent := (checks.GcContent(fwd) + checks.GcContent(rev)) / 2
		encoded[i] = EncodedPrimer{
			ID:                p.ID,
			Gene:              p.Gene,
			Forward:           fwd,
			Reverse:           rev,
			FwdCodes:          fwdCodes,
			RevCodes:          revCodes,
			FwdTm:             fwdTm,
			RevTm:             revTm,
			AvgTm:             (fwdTm + revTm) / 2,
			GCContent:         gcContent,
			Length:            len(fwd),
			SelfComplementary: checks.IsPalindromic(fwd),
		}
	}
	return encoded, nil
}

// DecodeStrand reverses the integer encoding back to a base string,
// reproducing the normalized input sequence exactly. Used by tests and
// by callers that only retained codes.
func DecodeStrand(codes []byte) string {
	const bases = "ACGT"
	out := make([]byte, len(codes))
	for i, c := range codes {
		out[i] = bases[c]
	}
	return string(out)
}
