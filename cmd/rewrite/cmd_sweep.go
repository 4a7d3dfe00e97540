package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mad-rewrite/internal/engine"
)

type sweepResult struct {
	Seed     int64
	Steps    int
	Elapsed  time.Duration
	Counts   []int
	Finished bool
}

type sweepOptions struct {
	start   int64
	seeds   int
	workers int
	dims    []int
}

func newSweepCmd(c *cli) *cobra.Command {
	opts := sweepOptions{}
	cmd := &cobra.Command{
		Use:   "sweep <model>",
		Short: "Run a model across many seeds in parallel and summarise step counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.sweep(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printSweep(cmd.OutOrStdout(), args[0], results)
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.start, "start", 1, "first seed")
	f.IntVar(&opts.seeds, "seeds", 16, "number of consecutive seeds")
	f.IntVar(&opts.workers, "workers", runtime.NumCPU(), "parallel runs")
	f.IntSliceVar(&opts.dims, "dims", nil, "grid extents (defaults to the model's)")
	return cmd
}

func (c *cli) sweep(ctx context.Context, name string, opts sweepOptions) ([]sweepResult, error) {
	if opts.seeds <= 0 {
		return nil, fmt.Errorf("seeds must be positive, got %d", opts.seeds)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.workers <= 0 {
		opts.workers = 1
	}
	results := make([]sweepResult, opts.seeds)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.workers)
	for i := range results {
		i := i
		seed := opts.start + int64(i)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prog, g, err := loadProgram(name, seed, opts.dims)
			if err != nil {
				return err
			}
			cfg := c.cfg
			cfg.Logger = c.logger.With(slog.Int64("seed", seed))
			began := time.Now()
			run, err := engine.Start(prog.Sequence, g, seed, cfg)
			if err != nil {
				return err
			}
			run.RunToEnd()
			counts := make([]int, prog.Vocab.Len())
			for _, cell := range g.Cells() {
				counts[cell]++
			}
			results[i] = sweepResult{
				Seed:     seed,
				Steps:    run.Steps(),
				Elapsed:  time.Since(began),
				Counts:   counts,
				Finished: !run.Limited(),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printSweep(w io.Writer, name string, results []sweepResult) error {
	if len(results) == 0 {
		return nil
	}
	steps := make([]int, len(results))
	total := 0
	for i, r := range results {
		steps[i] = r.Steps
		total += r.Steps
	}
	sort.Ints(steps)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "seed\tsteps\telapsed\tcounts")
	for _, r := range results {
		mark := ""
		if !r.Finished {
			mark = " (limit)"
		}
		fmt.Fprintf(tw, "%d\t%d%s\t%s\t%v\n", r.Seed, r.Steps, mark, r.Elapsed.Round(time.Microsecond), r.Counts)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d seeds, steps min %d median %d max %d mean %.1f\n",
		name, len(results), steps[0], steps[len(steps)/2], steps[len(steps)-1], float64(total)/float64(len(results)))
	return nil
}
