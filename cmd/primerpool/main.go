package main

/******************************************************************************

This is the entry point for the primerpool development CLI. It's a thin
front end over the engine package: load a JSON primer list, run either a
fast preview or a full optimization, and print a text report. It has no
persistence, queueing, or network layer of its own — the engine package
is the library; this binary is a local development aid for exercising it
by hand.

Initial argparsing and app definition is done entirely through
"github.com/urfave/cli/v2", following the same &cli.App{} pattern used
throughout this codebase's tooling.

******************************************************************************/

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/TimothyStiles/primerpool/engine"
	"github.com/TimothyStiles/primerpool/pool"
	"github.com/TimothyStiles/primerpool/primer"
)

// main is seperated from run to help with testing.
func main() {
	run(os.Args)
}

func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		log.Fatal(err)
	}
}

// application defines the primerpool dev CLI's commands and flags.
func application() *cli.App {
	return &cli.App{
		Name:  "primerpool",
		Usage: "Partition a primer set into dimer-compatible, Tm-balanced pools.",

		Commands: []*cli.Command{
			{
				Name:  "optimize",
				Usage: "Run the full DE optimizer over a JSON primer list.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "primers", Required: true, Usage: "Path to a JSON file containing a list of primer records."},
					&cli.IntFlag{Name: "pools", Required: true, Usage: "Number of pools (K), must be >= 2."},
					&cli.IntFlag{Name: "cap", Required: true, Usage: "Maximum primers per pool."},
					&cli.IntFlag{Name: "generations", Value: 1000, Usage: "Maximum DE generations."},
					&cli.Int64Flag{Name: "seed", Value: 0, Usage: "RNG seed."},
				},
				Action: func(c *cli.Context) error {
					return optimizeCommand(c)
				},
			},
			{
				Name:  "preview",
				Usage: "Run the fast, matrix-free binner preview over a JSON primer list.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "primers", Required: true, Usage: "Path to a JSON file containing a list of primer records."},
					&cli.IntFlag{Name: "pools", Required: true, Usage: "Number of pools (K), must be >= 2."},
				},
				Action: func(c *cli.Context) error {
					return previewCommand(c)
				},
			},
		},
	}
}

func loadPrimers(path string) ([]primer.Primer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading primer file: %w", err)
	}
	var primers []primer.Primer
	if err := json.Unmarshal(data, &primers); err != nil {
		return nil, fmt.Errorf("parsing primer file: %w", err)
	}
	return primers, nil
}

func optimizeCommand(c *cli.Context) error {
	primers, err := loadPrimers(c.String("primers"))
	if err != nil {
		return err
	}

	params := engine.DefaultParams(c.Int("pools"), c.Int("cap"))
	params.MaxGenerations = c.Int("generations")
	params.Seed = c.Int64("seed")

	result, err := engine.Optimize(context.Background(), primers, params)
	if err != nil {
		return err
	}

	fmt.Printf("fingerprint: %s\n", engine.Fingerprint(primers))
	fmt.Printf("optimization_score: %f\n", result.Metrics.OptimizationScore)
	fmt.Printf("duration_seconds: %f\n", result.DurationSeconds)
	if result.NoImprovement {
		fmt.Println("warning: no improvement over fast-binner seed")
	}
	if result.Cancelled {
		fmt.Println("warning: run was cancelled; reporting best-so-far")
	}
	if result.TimeBudgetExhausted {
		fmt.Println("warning: time budget exhausted; reporting best-so-far")
	}
	printReports(result.Pools)
	return nil
}

func previewCommand(c *cli.Context) error {
	primers, err := loadPrimers(c.String("primers"))
	if err != nil {
		return err
	}

	preview, err := engine.FastPreview(primers, c.Int("pools"))
	if err != nil {
		return err
	}

	printReports(preview.Pools)
	return nil
}

func printReports(reports []pool.Report) {
	for _, r := range reports {
		fmt.Printf("pool %d: size=%d avg_tm=%.2f tm_range=%.2f max_dimer=%.1f\n",
			r.Pool, r.Size, r.AvgTm, r.TmRange, r.MaxDimerScore)
		for _, member := range r.Members {
			fmt.Printf("  %s (%s) tm=%.2f gc=%.1f compatibility=%.2f\n",
				member.ID, member.Gene, member.AvgTm, member.GCContent, member.CompatibilityScore)
		}
	}
}
