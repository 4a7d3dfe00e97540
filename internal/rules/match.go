package rules

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mad-rewrite/internal/grid"
)

// Application is one legal (rule, line) pair.
type Application struct {
	Rule int
	Line grid.Line
}

// Applies reports whether r matches g along line. The line must lie inside
// the grid and have the rule's length.
func Applies(g *grid.Grid, r Rule, line grid.Line) bool {
	for i := 0; i < r.Len(); i++ {
		in := r.In(i)
		if in.IsWildcard() {
			continue
		}
		if g.At(g.LineCell(line, i)) != in.Code() {
			return false
		}
	}
	return true
}

// Execute writes r's output along line and reports whether any cell changed.
// It does not re-check that the rule applies.
func Execute(g *grid.Grid, r Rule, line grid.Line) bool {
	changed := false
	for i := 0; i < r.Len(); i++ {
		out := r.Out(i)
		if out.IsWildcard() {
			continue
		}
		idx := g.LineCell(line, i)
		if g.At(idx) != out.Code() {
			g.Set(idx, out.Code())
			changed = true
		}
	}
	return changed
}

// FindAll scans every in-bounds line of every direction and returns the lines
// where r applies, ordered by direction index and then start cell.
func FindAll(g *grid.Grid, r Rule) []grid.Line {
	var out []grid.Line
	n := r.Len()
	for _, dir := range grid.Directions(g.Rank()) {
		dim := g.Dim(dir.Axis)
		if n > dim {
			continue
		}
		lo, hi := 0, dim-n
		if dir.Sign < 0 {
			lo, hi = n-1, dim-1
		}
		for idx := 0; idx < g.Len(); idx++ {
			c := g.Coord(idx, dir.Axis)
			if c < lo || c > hi {
				continue
			}
			line := grid.Line{Start: idx, Dir: dir, Len: n}
			if Applies(g, r, line) {
				out = append(out, line)
			}
		}
	}
	return out
}

// FindAllApplications runs FindAll for every rule in order.
func FindAllApplications(g *grid.Grid, rs []Rule) []Application {
	var apps []Application
	for i, r := range rs {
		for _, line := range FindAll(g, r) {
			apps = append(apps, Application{Rule: i, Line: line})
		}
	}
	return apps
}

// FindAllParallel runs FindAll for each rule on its own goroutine. The grid is
// only read, and results are returned per rule in rule order, so the output
// equals the sequential scan.
func FindAllParallel(ctx context.Context, g *grid.Grid, rs []Rule, workers int) ([][]grid.Line, error) {
	out := make([][]grid.Line, len(rs))
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i := range rs {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = FindAll(g, rs[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
