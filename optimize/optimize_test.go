package optimize

import (
	"context"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/TimothyStiles/primerpool/matrix"
	"github.com/TimothyStiles/primerpool/pool"
	"github.com/TimothyStiles/primerpool/primer"
)

func mustEncode(t *testing.T, primers []primer.Primer) []primer.EncodedPrimer {
	t.Helper()
	encoded, err := primer.Encode(primers)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return encoded
}

func sampleEncoded(t *testing.T, n int) []primer.EncodedPrimer {
	t.Helper()
	bases := "ACGTACGTAC"
	primers := make([]primer.Primer, n)
	for i := 0; i < n; i++ {
		primers[i] = primer.Primer{
			ID:      string(rune('A' + i)),
			Gene:    "g",
			Forward: bases,
			Reverse: bases,
		}
	}
	return mustEncode(t, primers)
}

func avgTms(encoded []primer.EncodedPrimer) []float64 {
	out := make([]float64, len(encoded))
	for i, e := range encoded {
		out[i] = e.AvgTm
	}
	return out
}

func TestPopulationSizeBounds(t *testing.T) {
	cases := map[int]int{1: 15, 2: 15, 3: 15, 4: 20, 10: 50, 20: 60, 100: 60}
	for k, want := range cases {
		if got := PopulationSize(k); got != want {
			t.Errorf("PopulationSize(%d) = %d, want %d", k, got, want)
		}
	}
}

func TestDecodeArgmaxTieBreaksLowestIndex(t *testing.T) {
	g := mat.NewDense(2, 3, []float64{
		0.5, 0.5, 0.1,
		0.2, 0.9, 0.9,
	})
	a := Decode(g)
	if a[0] != 0 {
		t.Errorf("row 0: got pool %d, want 0 (tie should break to lowest index)", a[0])
	}
	if a[1] != 1 {
		t.Errorf("row 1: got pool %d, want 1 (tie should break to lowest index)", a[1])
	}
}

func TestRunDeterministicAcrossRepeatedCalls(t *testing.T) {
	encoded := sampleEncoded(t, 12)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	params := DefaultParams(3, 6)
	params.MaxGenerations = 20

	first, err := Run(context.Background(), m, tms, params)
	if err != nil {
		t.Fatalf("Run (first): %v", err)
	}
	second, err := Run(context.Background(), m, tms, params)
	if err != nil {
		t.Fatalf("Run (second): %v", err)
	}

	if first.Best.Cost.Total != second.Best.Cost.Total {
		t.Errorf("non-deterministic best cost: %v != %v", first.Best.Cost.Total, second.Best.Cost.Total)
	}
	for i := range first.Best.Assignment {
		if first.Best.Assignment[i] != second.Best.Assignment[i] {
			t.Errorf("non-deterministic assignment at %d: %d != %d", i, first.Best.Assignment[i], second.Best.Assignment[i])
		}
	}
}

func TestRunNeverWorsensBinnerBaseline(t *testing.T) {
	encoded := sampleEncoded(t, 12)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	params := DefaultParams(3, 6)
	params.MaxGenerations = 50

	result, err := Run(context.Background(), m, tms, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	baseline := pool.Evaluate(naiveBinnerAssignment(tms, 3), m, tms, 3, 6, pool.DefaultWeights())

	if result.Best.Cost.Total > baseline.Total {
		t.Errorf("DE best cost %v worse than binner baseline %v", result.Best.Cost.Total, baseline.Total)
	}
}

func naiveBinnerAssignment(avgTm []float64, k int) pool.Assignment {
	a := make(pool.Assignment, len(avgTm))
	for i := range a {
		a[i] = i % k
	}
	return a
}

func TestRunRespectsCancelledContext(t *testing.T) {
	encoded := sampleEncoded(t, 12)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params := DefaultParams(3, 6)
	params.MaxGenerations = 1000

	result, err := Run(ctx, m, tms, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Cancelled {
		t.Errorf("expected Cancelled=true for a pre-cancelled context")
	}
}

func TestRunRespectsTimeBudget(t *testing.T) {
	encoded := sampleEncoded(t, 12)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	params := DefaultParams(3, 6)
	params.MaxGenerations = 1000000
	params.TimeBudget = 1 * time.Nanosecond

	result, err := Run(context.Background(), m, tms, params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.TimeBudgetExhausted {
		t.Errorf("expected TimeBudgetExhausted=true for a near-zero time budget")
	}
}

func TestRunInfeasibleCapacity(t *testing.T) {
	// 12 primers into 2 pools with a cap of 1 each: no assignment can fit
	// more than 2 primers total, so every outcome is infeasible.
	encoded := sampleEncoded(t, 12)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	params := DefaultParams(2, 1)
	params.MaxGenerations = 5

	_, err = Run(context.Background(), m, tms, params)
	if err == nil {
		t.Fatalf("expected an InfeasibleError for 12 primers into 2 pools capped at 1 each")
	}
}

func TestRunSeedWithBinnerDoesNotCrash(t *testing.T) {
	encoded := sampleEncoded(t, 9)
	m, err := matrix.Build(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tms := avgTms(encoded)

	params := DefaultParams(3, 5)
	params.MaxGenerations = 10
	params.SeedWithBinner = true

	if _, err := Run(context.Background(), m, tms, params); err != nil {
		t.Fatalf("Run with SeedWithBinner: %v", err)
	}
}
