package main

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mad-rewrite/internal/core"
	"mad-rewrite/internal/engine"
	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/model"
	"mad-rewrite/internal/render"
	"mad-rewrite/internal/vocab"
)

type runOptions struct {
	seed        int64
	dims        []int
	temperature float64
	every       int
	watch       bool
	tps         int
	batch       int
	pngPath     string
	scale       int
	quiet       bool
}

func newRunCmd(c *cli) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <model>",
		Short: "Run a preset or model file to completion and print the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args[0], opts, cmd.Flags().Changed("temperature"))
		},
	}
	f := cmd.Flags()
	f.Int64Var(&opts.seed, "seed", 42, "random seed")
	f.IntSliceVar(&opts.dims, "dims", nil, "grid extents, e.g. --dims 31,31 (defaults to the model's)")
	f.Float64Var(&opts.temperature, "temperature", 0, "override the inference temperature")
	f.IntVar(&opts.every, "every", 0, "print an intermediate frame every N steps")
	f.BoolVar(&opts.watch, "watch", false, "animate in the terminal at --tps")
	f.IntVar(&opts.tps, "tps", 20, "frames per second in watch mode")
	f.IntVar(&opts.batch, "batch", 16, "steps per frame in watch mode")
	f.StringVar(&opts.pngPath, "png", "", "write the final grid as a PNG (rank 1 or 2)")
	f.IntVar(&opts.scale, "scale", 4, "PNG pixels per cell")
	f.BoolVar(&opts.quiet, "quiet", false, "do not print the final grid")
	return cmd
}

func (c *cli) run(cmd *cobra.Command, name string, opts runOptions, overrideTemp bool) error {
	out := cmd.OutOrStdout()
	prog, g, err := loadProgram(name, opts.seed, opts.dims)
	if err != nil {
		return err
	}
	run, err := engine.Start(prog.Sequence, g, opts.seed, c.cfg)
	if err != nil {
		return err
	}
	if overrideTemp {
		run.SetTemperature(opts.temperature)
	}

	began := time.Now()
	switch {
	case opts.watch:
		ticker := core.NewFixedStep(opts.tps)
		for !run.Done() {
			ticker.Wait()
			for i := 0; i < opts.batch && !run.Done(); i++ {
				run.Advance()
			}
			fmt.Fprint(out, "\x1b[H\x1b[2J")
			writeGrid(out, prog.Vocab, g)
			fmt.Fprintf(out, "step %d  %s\n", run.Steps(), run.Position())
		}
	case opts.every > 0:
		for !run.Done() {
			if running, _ := run.Advance(); running && run.Steps()%opts.every == 0 {
				fmt.Fprintf(out, "-- step %d (%s)\n", run.Steps(), run.Position())
				writeGrid(out, prog.Vocab, g)
			}
		}
	default:
		run.RunToEnd()
	}
	elapsed := time.Since(began)

	if !opts.quiet && !opts.watch {
		writeGrid(out, prog.Vocab, g)
	}
	fmt.Fprintf(out, "%s: %d steps in %s\n", prog.Model.Name, run.Steps(), elapsed.Round(time.Microsecond))
	c.logger.Debug("run summary", slog.String("model", prog.Model.Name), slog.Int("steps", run.Steps()), slog.Duration("elapsed", elapsed))

	if opts.pngPath != "" {
		if err := writePNG(opts.pngPath, prog, g, opts.scale); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", opts.pngPath)
	}
	return nil
}

func loadProgram(name string, seed int64, dims []int) (*model.Program, *grid.Grid, error) {
	m, err := model.Resolve(name)
	if err != nil {
		return nil, nil, err
	}
	prog, err := m.Build()
	if err != nil {
		return nil, nil, err
	}
	g, err := prog.NewGrid(seed, dims...)
	if err != nil {
		return nil, nil, err
	}
	return prog, g, nil
}

// writeGrid prints one text row per axis-0 line; rank-3+ grids get a blank
// line between slices.
func writeGrid(w io.Writer, v *vocab.Vocabulary, g *grid.Grid) {
	width := g.Dim(0)
	cells := g.Cells()
	rows := len(cells) / width
	for r := 0; r < rows; r++ {
		if g.Rank() > 2 && r > 0 && r%g.Dim(1) == 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, v.Decode(cells[r*width:(r+1)*width]))
	}
}

func writePNG(path string, prog *model.Program, g *grid.Grid, scale int) error {
	if g.Rank() > 2 {
		return fmt.Errorf("png export needs a rank 1 or 2 grid, got rank %d", g.Rank())
	}
	h := 1
	if g.Rank() == 2 {
		h = g.Dim(1)
	}
	img := render.Frame(g.Cells(), g.Dim(0), h, prog.Palette(), scale)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
