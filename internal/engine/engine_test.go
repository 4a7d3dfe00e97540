package engine

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/infer"
	"mad-rewrite/internal/rules"
	"mad-rewrite/internal/seq"
	"mad-rewrite/internal/vocab"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func growth(t *testing.T) (*vocab.Vocabulary, seq.Sequence, func() *grid.Grid) {
	t.Helper()
	v, err := vocab.FromChars("BWRG", nil)
	require.NoError(t, err)
	r := rules.MustParse(v, "WB>WW")
	s, err := seq.NewDoAll([]rules.Rule{r}, false, infer.Context{})
	require.NoError(t, err)
	white, _ := v.Code('W')
	newGrid := func() *grid.Grid {
		g := grid.MustNew(9, 7)
		g.Set(g.Center(), white)
		return g
	}
	return v, s, newGrid
}

func TestRunFillsGridAndStops(t *testing.T) {
	v, s, newGrid := growth(t)
	g := newGrid()
	run, err := Start(s, g, 1, quietConfig())
	require.NoError(t, err)
	assert.Greater(t, run.Legal(), 0)

	steps := run.RunToEnd()
	assert.Equal(t, g.Len()-1, steps)
	assert.True(t, run.Done())
	assert.Equal(t, "done", run.Position())
	white, _ := v.Code('W')
	for i, c := range g.Cells() {
		require.Equal(t, white, c, "cell %d", i)
	}

	running, mutated := run.Advance()
	assert.False(t, running)
	assert.False(t, mutated)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	_, s, newGrid := growth(t)
	trace := func(seed int64) []uint8 {
		g := newGrid()
		run, err := Start(s, g, seed, quietConfig())
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			run.Advance()
		}
		return run.View().Cells
	}
	a, b := trace(42), trace(42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed diverged (-a +b):\n%s", diff)
	}
}

func TestMaxStepsStopsRun(t *testing.T) {
	_, s, newGrid := growth(t)
	cfg := quietConfig()
	cfg.MaxSteps = 5
	run, err := Start(s, newGrid(), 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, run.RunToEnd())
	assert.True(t, run.Done())
	assert.True(t, run.Limited())
}

func TestLimitEqualToNaturalLengthIsNotLimited(t *testing.T) {
	_, s, newGrid := growth(t)
	g := newGrid()
	cfg := quietConfig()
	cfg.MaxSteps = g.Len() - 1
	run, err := Start(s, g, 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, g.Len()-1, run.RunToEnd())
	assert.False(t, run.Limited())

	unlimited, err := Start(s, newGrid(), 3, quietConfig())
	require.NoError(t, err)
	unlimited.RunToEnd()
	assert.False(t, unlimited.Limited())
}

func TestViewIsACopy(t *testing.T) {
	_, s, newGrid := growth(t)
	g := newGrid()
	run, err := Start(s, g, 3, quietConfig())
	require.NoError(t, err)
	view := run.View()
	assert.Equal(t, []int{9, 7}, view.Dims)
	view.Cells[0] = 3
	assert.NotEqual(t, uint8(3), g.At(0))
}

func TestLastAndTouch(t *testing.T) {
	_, s, newGrid := growth(t)
	run, err := Start(s, newGrid(), 5, quietConfig())
	require.NoError(t, err)
	_, ok := run.Last()
	assert.False(t, ok)

	running, mutated := run.Advance()
	require.True(t, running)
	assert.True(t, mutated)
	app, ok := run.Last()
	require.True(t, ok)
	assert.Equal(t, 0, app.Rule)
	assert.Len(t, run.Touch(), 63)
	assert.Equal(t, "all", run.Position())
}

func TestTemperatureOverride(t *testing.T) {
	_, s, newGrid := growth(t)
	run, err := Start(s, newGrid(), 5, quietConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, run.Temperature())
	run.SetTemperature(-2)
	assert.Equal(t, 0.0, run.Temperature())
	run.SetTemperature(0.5)
	assert.Equal(t, 0.5, run.Temperature())
	run.Advance()
	assert.Equal(t, 0.5, run.Temperature())
}

func TestPotentialMaskWithoutInference(t *testing.T) {
	_, s, newGrid := growth(t)
	run, err := Start(s, newGrid(), 5, quietConfig())
	require.NoError(t, err)
	mask := run.PotentialMask()
	assert.Len(t, mask, 63)
	for _, m := range mask {
		assert.Zero(t, m)
	}
}

func TestStartRejectsBadInput(t *testing.T) {
	_, s, newGrid := growth(t)
	_, err := Start(nil, newGrid(), 1, quietConfig())
	assert.Error(t, err)
	_, err = Start(s, nil, 1, quietConfig())
	assert.Error(t, err)
	cfg := quietConfig()
	cfg.Workers = -1
	_, err = Start(s, newGrid(), 1, cfg)
	assert.Error(t, err)
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rewrite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\nmax_steps: 100\nlog_level: debug\n"), 0o644))

	t.Setenv("REWRITE_MAX_STEPS", "7")
	t.Setenv("REWRITE_NO_CACHE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 7, cfg.MaxSteps)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Workers, cfg.Workers)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}
