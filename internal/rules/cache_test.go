package rules

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/vocab"
)

func appKey(a Application) string {
	return fmt.Sprintf("%d@%d%s", a.Rule, a.Line.Start, a.Line.Dir)
}

func sortedKeys(apps []Application) []string {
	keys := make([]string, len(apps))
	for i, a := range apps {
		keys[i] = appKey(a)
	}
	sort.Strings(keys)
	return keys
}

func expectedTouch(g *grid.Grid, apps []Application) []int32 {
	touch := make([]int32, g.Len())
	for _, a := range apps {
		for i := 0; i < a.Line.Len; i++ {
			touch[g.LineCell(a.Line, i)]++
		}
	}
	return touch
}

func requireConsistent(t *testing.T, c *Cache, g *grid.Grid, rs []Rule, step int) {
	t.Helper()
	want := FindAllApplications(g, rs)
	if diff := cmp.Diff(sortedKeys(want), sortedKeys(c.Applications())); diff != "" {
		t.Fatalf("step %d: cache differs from exhaustive scan (-want +got):\n%s", step, diff)
	}
	require.Equal(t, len(want), c.Count(), "step %d: count", step)
	if diff := cmp.Diff(expectedTouch(g, want), c.Touch()); diff != "" {
		t.Fatalf("step %d: touch counts differ (-want +got):\n%s", step, diff)
	}
}

func TestSwapScenario(t *testing.T) {
	v := testVocab(t)
	g, err := grid.FromCells([]uint8{0, 0, 1}, 3)
	require.NoError(t, err)
	rs := []Rule{MustParse(v, "BW>WB")}

	c := NewCache(g, rs)
	require.Equal(t, 1, c.Count())
	app := c.Nth(0)
	require.Equal(t, grid.Line{Start: 1, Dir: grid.Direction{Axis: 0, Sign: 1}, Len: 2}, app.Line)

	Execute(g, rs[app.Rule], app.Line)
	c.Update(app.Rule, app.Line)
	require.Equal(t, "BWB", v.Decode(g.Cells()))
	// BWB holds BW reading forward from cell 0 and backward from cell 2.
	require.Equal(t, 2, c.Count())
	require.False(t, c.Contains(0, app.Line))
	requireConsistent(t, c, g, rs, 1)
}

func TestCacheMatchesExhaustiveScanUnderRandomExecution(t *testing.T) {
	v, err := vocab.FromChars("BWRG", nil)
	require.NoError(t, err)
	pool := []string{
		"BW>WB", "B>W", "WW>RB", "R*B>GGR", "G>B", "*R>W*", "BBB>WRW", "RG>GR", "W*W>***",
	}
	shapes := [][]int{{7}, {5, 4}, {6, 3}, {3, 3, 3}, {1, 5}}

	for trial := 0; trial < 20; trial++ {
		rng := rand.New(rand.NewPCG(uint64(trial), 7))
		dims := shapes[trial%len(shapes)]
		g := grid.MustNew(dims...)
		for i := range g.Cells() {
			g.Set(i, uint8(rng.IntN(v.Len())))
		}
		var rs []Rule
		for _, i := range rng.Perm(len(pool))[:2+rng.IntN(4)] {
			rs = append(rs, MustParse(v, pool[i]))
		}

		c := NewCache(g, rs)
		requireConsistent(t, c, g, rs, 0)
		for step := 1; step <= 200 && c.Count() > 0; step++ {
			app := c.Nth(rng.IntN(c.Count()))
			require.True(t, Applies(g, rs[app.Rule], app.Line), "cached application must apply")
			Execute(g, rs[app.Rule], app.Line)
			c.Update(app.Rule, app.Line)
			requireConsistent(t, c, g, rs, step)
		}
	}
}

func TestNthOrderAndFirstNonEmpty(t *testing.T) {
	v := testVocab(t)
	g, err := grid.FromCells([]uint8{0, 1, 0, 1}, 4)
	require.NoError(t, err)
	rs := []Rule{MustParse(v, "R>G"), MustParse(v, "W>R"), MustParse(v, "B>W")}
	c := NewCache(g, rs)

	first, ok := c.FirstNonEmpty()
	require.True(t, ok)
	require.Equal(t, 1, first)
	require.Equal(t, 0, c.RuleCount(0))

	// Rule 1 matches the two W cells in both directions, rule 2 the two B cells.
	require.Equal(t, 8, c.Count())
	for i := 0; i < 4; i++ {
		require.Equal(t, 1, c.Nth(i).Rule)
	}
	for i := 4; i < 8; i++ {
		require.Equal(t, 2, c.Nth(i).Rule)
	}
	require.Panics(t, func() { c.Nth(8) })
	require.Panics(t, func() { c.Nth(-1) })
}

func TestUpdateRejectsInvalidLines(t *testing.T) {
	v := testVocab(t)
	g := grid.MustNew(3)
	rs := []Rule{MustParse(v, "BB>WW")}
	c := NewCache(g, rs)
	require.Panics(t, func() {
		c.Update(0, grid.Line{Start: 2, Dir: grid.Direction{Axis: 0, Sign: 1}, Len: 2})
	})
	require.Panics(t, func() {
		c.Update(0, grid.Line{Start: 0, Dir: grid.Direction{Axis: 0, Sign: 1}, Len: 3})
	})
}

func TestParallelColdStartMatchesSequential(t *testing.T) {
	v := testVocab(t)
	g := grid.MustNew(9, 7)
	rng := rand.New(rand.NewPCG(3, 3))
	for i := range g.Cells() {
		g.Set(i, uint8(rng.IntN(v.Len())))
	}
	rs := []Rule{MustParse(v, "BW>WB"), MustParse(v, "B>R"), MustParse(v, "W*R>GGG")}

	seq := NewCache(g, rs)
	par, err := NewCacheParallel(context.Background(), g, rs, 2)
	require.NoError(t, err)
	require.Equal(t, seq.Applications(), par.Applications())
	require.Equal(t, seq.Touch(), par.Touch())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewCacheParallel(ctx, g, rs, 2)
	require.Error(t, err)
}

func TestRebuildRestoresConsistency(t *testing.T) {
	v := testVocab(t)
	g, err := grid.FromCells([]uint8{0, 1, 0, 1, 0}, 5)
	require.NoError(t, err)
	rs := []Rule{MustParse(v, "BW>WB")}
	c := NewCache(g, rs)
	g.Fill(0)
	c.Rebuild()
	requireConsistent(t, c, g, rs, 0)
	require.Zero(t, c.Count())
}
