package matrix

import (
	"context"
	"testing"

	"github.com/TimothyStiles/primerpool/primer"
)

func mustEncode(t *testing.T, primers []primer.Primer) []primer.EncodedPrimer {
	t.Helper()
	encoded, err := primer.Encode(primers)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	return encoded
}

func TestBuildSymmetric(t *testing.T) {
	encoded := mustEncode(t, []primer.Primer{
		{ID: "a", Forward: "AAAAAAAAAA", Reverse: "TTTTTTTTTT"},
		{ID: "b", Forward: "ACGTACGTAC", Reverse: "GTACGTACGT"},
		{ID: "c", Forward: "GGGGGCCCCC", Reverse: "GGGGGCCCCC"},
	})
	m, err := Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for i := 0; i < m.N(); i++ {
		for j := 0; j < m.N(); j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Errorf("M[%d,%d]=%v != M[%d,%d]=%v", i, j, m.At(i, j), j, i, m.At(j, i))
			}
		}
	}
}

func TestBuildNonNegative(t *testing.T) {
	encoded := mustEncode(t, []primer.Primer{
		{ID: "a", Forward: "AAAAAAAAAA", Reverse: "TTTTTTTTTT"},
		{ID: "b", Forward: "ACGTACGTAC", Reverse: "GTACGTACGT"},
	})
	m, err := Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for i := 0; i < m.N(); i++ {
		for j := 0; j < m.N(); j++ {
			if m.At(i, j) < 0 {
				t.Errorf("M[%d,%d] = %v, want >= 0", i, j, m.At(i, j))
			}
		}
	}
}

func TestBuildSelfScore(t *testing.T) {
	encoded := mustEncode(t, []primer.Primer{
		{ID: "dimerizes", Forward: "AAAAAAAAAA", Reverse: "TTTTTTTTTT"},
	})
	m, err := Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	// fwd/rev are perfect complements of each other, so the self score
	// should reflect that (i.e. be the maximal 10*11/2 = 55).
	if got, want := m.At(0, 0), 55.0; got != want {
		t.Errorf("M[0,0] = %v, want %v", got, want)
	}
}

func TestBuildDeterministicAcrossChunking(t *testing.T) {
	var primers []primer.Primer
	bases := []string{"AAAAAAAAAA", "TTTTTTTTTT", "ACGTACGTAC", "GGGGGCCCCC", "CATGCATGCA"}
	for i := 0; i < 20; i++ {
		primers = append(primers, primer.Primer{
			ID:      string(rune('a' + i)),
			Forward: bases[i%len(bases)],
			Reverse: bases[(i+1)%len(bases)],
		})
	}
	encoded := mustEncode(t, primers)

	first, err := Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	second, err := Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for i := 0; i < first.N(); i++ {
		for j := 0; j < first.N(); j++ {
			if first.At(i, j) != second.At(i, j) {
				t.Errorf("non-deterministic build at (%d,%d): %v != %v", i, j, first.At(i, j), second.At(i, j))
			}
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	m, err := Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if m.N() != 0 {
		t.Errorf("N() = %d, want 0", m.N())
	}
}
