package pool

import (
	"gonum.org/v1/gonum/floats"

	"github.com/TimothyStiles/primerpool/matrix"
	"github.com/TimothyStiles/primerpool/primer"
)

// MemberReport is a single primer's record as it appears inside a
// PoolReport: its identity, sequences, derived thermodynamic scalars, and
// how compatible it is with the rest of its pool.
type MemberReport struct {
	ID                 string
	Gene               string
	Forward            string
	Reverse            string
	FwdTm              float64
	RevTm              float64
	AvgTm              float64
	GCContent          float64
	CompatibilityScore float64
}

// Report summarizes one pool: its members, size, Tm spread, and worst
// internal dimer interaction (including self-interaction cells).
type Report struct {
	Pool          int
	Members       []MemberReport
	Size          int
	AvgTm         float64
	TmRange       float64
	MaxDimerScore float64
}

// Metrics are the flattened per-pool arrays from the output contract
// (spec.md §6), plus the overall optimization score.
type Metrics struct {
	PoolSizes        []int
	AvgTmPerPool     []float64
	TmRangePerPool   []float64
	MaxDimerPerPool  []float64
	OptimizationScore float64
}

// BuildReports derives the per-pool PoolReport set and flattened Metrics
// for an assignment, given the encoded primers and interaction matrix it
// was scored against.
func BuildReports(a Assignment, encoded []primer.EncodedPrimer, m *matrix.InteractionMatrix, k int, score float64) ([]Report, Metrics) {
	members := make([][]int, k)
	for i, p := range a {
		members[p] = append(members[p], i)
	}

	reports := make([]Report, k)
	metrics := Metrics{
		PoolSizes:         make([]int, k),
		AvgTmPerPool:      make([]float64, k),
		TmRangePerPool:    make([]float64, k),
		MaxDimerPerPool:   make([]float64, k),
		OptimizationScore: score,
	}

	for p := 0; p < k; p++ {
		ids := members[p]
		report := Report{Pool: p, Size: len(ids)}

		rowMaxes := make([]float64, len(ids))
		memberReports := make([]MemberReport, len(ids))
		for idx, i := range ids {
			e := encoded[i]

			compatRow := make([]float64, len(ids))
			for jdx, j := range ids {
				compatRow[jdx] = m.At(i, j)
			}
			compat := 0.0
			if len(ids) > 0 {
				compat = floats.Sum(compatRow) / float64(len(ids))
				rowMaxes[idx] = floats.Max(compatRow)
			}

			memberReports[idx] = MemberReport{
				ID:                 e.ID,
				Gene:               e.Gene,
				Forward:            e.Forward,
				Reverse:            e.Reverse,
				FwdTm:              e.FwdTm,
				RevTm:              e.RevTm,
				AvgTm:              e.AvgTm,
				GCContent:          e.GCContent,
				CompatibilityScore: compat,
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
			report.MaxDimerScore = floats.Max(rowMaxes)
		}
		reports[p] = report

		metrics.PoolSizes[p] = report.Size
		metrics.AvgTmPerPool[p] = report.AvgTm
		metrics.TmRangePerPool[p] = report.TmRange
		metrics.MaxDimerPerPool[p] = report.MaxDimerScore
	}

	return reports, metrics
}
