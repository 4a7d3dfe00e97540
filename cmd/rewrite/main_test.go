package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestModelsListsPresets(t *testing.T) {
	out, err := execute(t, "models")
	require.NoError(t, err)
	for _, name := range []string{"growth", "maze", "path"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "ordered(relative,all)")
}

func TestLsysPrintsGenerations(t *testing.T) {
	out, err := execute(t, "lsys", "--axiom", "a", "--gens", "2", "a=[*Ccrb]", "b=aYaYa", "r=PYR", "c=HSL")
	require.NoError(t, err)
	assert.Equal(t, "0: a\n1: [*Ccrb]\n2: [*CHSLPYRaYaYa]\n", out)

	_, err = execute(t, "lsys", "ab=c")
	assert.Error(t, err)
}

func TestRunMaze(t *testing.T) {
	out, err := execute(t, "run", "maze", "--dims", "11,11", "--seed", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 12)
	for _, row := range lines[:11] {
		assert.Len(t, row, 11)
		assert.NotContains(t, row, "G")
	}
	assert.True(t, strings.HasPrefix(lines[11], "maze: 48 steps"), lines[11])
}

func TestRunEveryPrintsFrames(t *testing.T) {
	out, err := execute(t, "run", "growth", "--dims", "4,4", "--every", "5", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "-- step"))
	assert.Contains(t, out, "growth: 15 steps")
}

func TestRunWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.png")
	out, err := execute(t, "run", "maze", "--dims", "7,7", "--png", path, "--scale", "2", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunUnknownModel(t *testing.T) {
	_, err := execute(t, "run", "nope")
	assert.Error(t, err)
}

func TestSweepSummarises(t *testing.T) {
	out, err := execute(t, "sweep", "growth", "--dims", "6,6", "--seeds", "4", "--workers", "2", "--start", "10")
	require.NoError(t, err)
	for _, seed := range []string{"10", "11", "12", "13"} {
		assert.Contains(t, out, "\n"+seed+" ")
	}
	assert.Contains(t, out, "growth: 4 seeds, steps min 35 median 35 max 35")
}

func TestSweepRejectsZeroSeeds(t *testing.T) {
	_, err := execute(t, "sweep", "growth", "--seeds", "0")
	assert.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"models", "--log-level", "loud"})
	assert.Error(t, cmd.Execute())
}

func TestSweepMarksOnlyRunsCutByTheStepLimit(t *testing.T) {
	t.Setenv("REWRITE_MAX_STEPS", "35")
	out, err := execute(t, "sweep", "growth", "--dims", "6,6", "--seeds", "2")
	require.NoError(t, err)
	assert.NotContains(t, out, "(limit)")

	t.Setenv("REWRITE_MAX_STEPS", "10")
	out, err = execute(t, "sweep", "growth", "--dims", "6,6", "--seeds", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "10 (limit)"))
}
