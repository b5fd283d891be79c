/*
Package optimize implements the differential-evolution (DE) combinatorial
optimizer that searches for a low-cost primer-to-pool assignment.

A genome is a real N×K matrix; row i's argmax (ties broken by lowest
column index) decodes to primer i's pool assignment. DE's mutation and
crossover operators are defined on continuous vectors, so keeping the
genome continuous lets DE explore smoothly while argmax decoding still
yields a valid discrete assignment — an alternative permutation encoding
with swap mutations would complicate recombination for no real benefit.

Trial evaluation within a generation is pure and independent across
population members, so it runs concurrently; RNG draws for every target
are pre-assigned from a single seeded stream before any goroutine starts,
and selection is applied serially afterward in fixed population order, so
results are bitwise-identical regardless of worker count.
*/
package optimize

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/TimothyStiles/primerpool/binner"
	"github.com/TimothyStiles/primerpool/internal/rng"
	"github.com/TimothyStiles/primerpool/matrix"
	"github.com/TimothyStiles/primerpool/pool"
)

// Params configures a DE run. DefaultParams returns a Params with every
// field set to its default; Run uses the fields as given and does not
// replace zero values, so callers typically start from DefaultParams and
// override only what they need.
type Params struct {
	K                int
	Cap              int
	MaxGenerations   int
	Weights          pool.Weights
	Seed             int64
	MutationFactor   float64 // F
	CrossoverRate    float64 // CR
	StallGenerations int     // S
	RelativeEpsilon  float64 // ε
	TimeBudget       time.Duration
	// SeedWithBinner, if true, replaces population member 0 at
	// initialization with a one-hot encoding of the fast-binner
	// assignment. Reference behavior does not do this (Open Question in
	// spec.md §9); it is implemented but off by default.
	SeedWithBinner bool
}

// DefaultParams reproduces the reference defaults: G=1000, F=0.7, CR=0.9,
// S=50 stall generations, ε=1e-6 relative, seed 0, DefaultWeights.
func DefaultParams(k, cap int) Params {
	return Params{
		K:                k,
		Cap:              cap,
		MaxGenerations:   1000,
		Weights:          pool.DefaultWeights(),
		Seed:             0,
		MutationFactor:   0.7,
		CrossoverRate:    0.9,
		StallGenerations: 50,
		RelativeEpsilon:  1e-6,
	}
}

// PopulationSize returns max(15, 5*k) capped at 60.
func PopulationSize(k int) int {
	size := 5 * k
	if size < 15 {
		size = 15
	}
	if size > 60 {
		size = 60
	}
	return size
}

// Member is one population genome together with its cached decode and
// cost, kept consistent with each other at all times.
type Member struct {
	Genome     *mat.Dense
	Assignment pool.Assignment
	Cost       pool.CostBreakdown
}

// Result is the outcome of a Run.
type Result struct {
	Best                Member
	GenerationsCompleted int
	Duration            time.Duration
	NoImprovement       bool
	Cancelled           bool
	TimeBudgetExhausted bool
}

// InfeasibleError is returned when the best assignment at termination
// still violates the per-pool capacity cap.
type InfeasibleError struct {
	PoolSize int
	Cap      int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible: best assignment has a pool of size %d exceeding cap %d", e.PoolSize, e.Cap)
}

// Decode converts a genome into an Assignment via row-argmax, ties
// broken by the lowest column index.
func Decode(g *mat.Dense) pool.Assignment {
	n, k := g.Dims()
	a := make(pool.Assignment, n)
	for i := 0; i < n; i++ {
		best := 0
		bestVal := g.At(i, 0)
		for j := 1; j < k; j++ {
			if v := g.At(i, j); v > bestVal {
				bestVal = v
				best = j
			}
		}
		a[i] = best
	}
	return a
}

func newRandomGenome(n, k int, s *rng.Stream) *mat.Dense {
	g := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			g.Set(i, j, s.Float64())
		}
	}
	return g
}

func evaluate(g *mat.Dense, m *matrix.InteractionMatrix, avgTm []float64, params Params) Member {
	a := Decode(g)
	cost := pool.Evaluate(a, m, avgTm, params.K, params.Cap, params.Weights)
	return Member{Genome: g, Assignment: a, Cost: cost}
}

// trialDraws are the RNG draws a single target needs for one generation's
// DE/rand/1/bin transition, pre-assigned before concurrent evaluation.
// crossover holds one Bernoulli(CR) draw per genome cell (n*k entries, row
// major) and forcedCell is a single cell index in [0,n*k) guaranteed to
// take the mutant value, matching spec.md §4.6.1.c's per-cell crossover.
type trialDraws struct {
	r1, r2, r3 int
	forcedCell int
	crossover  []float64
}

// Run executes the DE optimizer and returns the best assignment found
// within the generation/time budget. ctx is checked at every generation
// boundary; a cancelled context yields Result.Cancelled with the best
// member found so far (which may be the zero Member if cancelled before
// generation 0 finished).
func Run(ctx context.Context, m *matrix.InteractionMatrix, avgTm []float64, params Params) (Result, error) {
	start := time.Now()
	n := m.N()
	k := params.K
	popSize := PopulationSize(k)
	stream := rng.New(params.Seed)

	workers := runtime.GOMAXPROCS(0)

	population := make([]*mat.Dense, popSize)
	for i := range population {
		population[i] = newRandomGenome(n, k, stream)
	}
	if params.SeedWithBinner && popSize > 0 {
		population[0] = oneHotFromAssignment(binner.Assign(avgTm, k), n, k)
	}

	members := make([]Member, popSize)
	if err := evaluateAll(ctx, population, members, m, avgTm, params, workers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{Duration: time.Since(start), Cancelled: true}, nil
		}
		return Result{}, err
	}

	best := bestOf(members)
	binnerCost := pool.Evaluate(binner.Assign(avgTm, k), m, avgTm, k, params.Cap, params.Weights)

	stallCount := 0
	lastBest := best.Cost.Total
	generationsCompleted := 0

	for gen := 0; gen < params.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{Best: best, GenerationsCompleted: generationsCompleted, Duration: time.Since(start), Cancelled: true}, nil
		}
		if params.TimeBudget > 0 && time.Since(start) > params.TimeBudget {
			return Result{Best: best, GenerationsCompleted: generationsCompleted, Duration: time.Since(start), TimeBudgetExhausted: true}, nil
		}

		draws := make([]trialDraws, popSize)
		for t := 0; t < popSize; t++ {
			r1, r2, r3 := stream.DistinctTriplet(popSize, t)
			crossover := make([]float64, n*k)
			for cell := range crossover {
				crossover[cell] = stream.Float64()
			}
			draws[t] = trialDraws{r1: r1, r2: r2, r3: r3, forcedCell: stream.Intn(n * k), crossover: crossover}
		}

		trials := make([]*mat.Dense, popSize)
		g, gctx := errgroup.WithContext(ctx)
		sem := make(chan struct{}, workers)
		for t := 0; t < popSize; t++ {
			t := t
			g.Go(func() error {
				select {
				case sem <- struct{}{}:
				case <-gctx.Done():
					return gctx.Err()
				}
				defer func() { <-sem }()
				trials[t] = buildTrial(population, t, draws[t], params.MutationFactor, params.CrossoverRate, n, k)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Result{Best: best, GenerationsCompleted: generationsCompleted, Duration: time.Since(start), Cancelled: true}, nil
			}
			return Result{}, err
		}

		trialMembers := make([]Member, popSize)
		if err := evaluateAll(ctx, trials, trialMembers, m, avgTm, params, workers); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Result{Best: best, GenerationsCompleted: generationsCompleted, Duration: time.Since(start), Cancelled: true}, nil
			}
			return Result{}, err
		}

		// Greedy selection, strictly sequential and in ascending target
		// index, so outcomes never depend on evaluation order.
		for t := 0; t < popSize; t++ {
			if trialMembers[t].Cost.Total <= members[t].Cost.Total {
				members[t] = trialMembers[t]
				population[t] = trials[t]
			}
		}

		generationsCompleted++
		best = bestOf(members)

		relativeImprovement := (lastBest - best.Cost.Total) / max(1e-12, lastBest)
		if relativeImprovement > params.RelativeEpsilon {
			stallCount = 0
			lastBest = best.Cost.Total
		} else {
			stallCount++
		}
		if stallCount >= params.StallGenerations {
			break
		}
	}

	result := Result{
		Best:                 best,
		GenerationsCompleted: generationsCompleted,
		Duration:             time.Since(start),
		NoImprovement:        !(best.Cost.Total < binnerCost.Total),
	}

	if pool.MaxPoolSize(best.Assignment, k) > params.Cap {
		return result, &InfeasibleError{PoolSize: pool.MaxPoolSize(best.Assignment, k), Cap: params.Cap}
	}
	return result, nil
}

func buildTrial(population []*mat.Dense, target int, d trialDraws, f, cr float64, n, k int) *mat.Dense {
	base := population[target]
	r1, r2, r3 := population[d.r1], population[d.r2], population[d.r3]

	trial := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			mutant := r1.At(i, j) + f*(r2.At(i, j)-r3.At(i, j))
			cellIdx := i*k + j
			if cellIdx == d.forcedCell || d.crossover[cellIdx] < cr {
				trial.Set(i, j, mutant)
			} else {
				trial.Set(i, j, base.At(i, j))
			}
		}
	}
	return trial
}

// evaluateAll decodes and scores every genome in genomes concurrently,
// writing results into out at the matching index. Every entry of genomes
// is evaluated, so none may be nil.
func evaluateAll(ctx context.Context, genomes []*mat.Dense, out []Member, m *matrix.InteractionMatrix, avgTm []float64, params Params, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)
	var mu sync.Mutex
	for i := range genomes {
		i := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()
			member := evaluate(genomes[i], m, avgTm, params)
			mu.Lock()
			out[i] = member
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func bestOf(members []Member) Member {
	best := members[0]
	for _, m := range members[1:] {
		if m.Cost.Total < best.Cost.Total {
			best = m
		}
	}
	return best
}

func oneHotFromAssignment(a pool.Assignment, n, k int) *mat.Dense {
	g := mat.NewDense(n, k, nil)
	for i, p := range a {
		g.Set(i, p, 1.0)
	}
	return g
}
