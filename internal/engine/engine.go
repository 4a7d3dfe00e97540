// Package engine drives a sequence over a grid one step at a time for a host
// loop (GUI tick, CLI loop, tests).
package engine

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"mad-rewrite/internal/core"
	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/rules"
	"mad-rewrite/internal/seq"
)

// View is a read-only snapshot of the grid for visualizers.
type View struct {
	Dims  []int
	Cells []uint8
}

// Run owns the grid, the sequence state and the random source of one
// generation run. It is not safe for concurrent use.
type Run struct {
	cfg    Config
	logger *slog.Logger
	seq    seq.Sequence
	grid   *grid.Grid
	rng    *rand.Rand
	state  *seq.State

	steps   int
	done    bool
	limited bool
	tempSet bool
	temp    float64
}

// Start begins a run of s over g seeded with seed.
func Start(s seq.Sequence, g *grid.Grid, seed int64, cfg Config) (*Run, error) {
	if s == nil {
		return nil, errors.New("engine: nil sequence")
	}
	if g == nil {
		return nil, errors.New("engine: nil grid")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Run{
		cfg:    cfg,
		logger: logger,
		seq:    s,
		grid:   g,
		rng:    core.NewRNG(seed).Source(),
	}
	r.state = seq.Start(s, g, r.rng, seq.Options{
		NoCache:        cfg.NoCache,
		EagerPotential: cfg.EagerPotential,
		Workers:        cfg.Workers,
		Logger:         logger,
	})
	logger.Info("run started",
		slog.String("sequence", seq.Describe(s)),
		slog.Any("dims", g.Dims()),
		slog.Int64("seed", seed))
	return r, nil
}

// Advance performs one step. It reports whether the run is still going and
// whether the grid changed.
func (r *Run) Advance() (running bool, mutated bool) {
	if r.done {
		return false, false
	}
	if r.cfg.MaxSteps > 0 && r.steps >= r.cfg.MaxSteps {
		if r.state.Pending(r.grid) {
			r.limited = true
			r.finish("step limit reached")
		} else {
			r.finish("sequence exhausted")
		}
		return false, false
	}
	if r.tempSet {
		if inf := r.state.Inference(); inf != nil {
			inf.SetTemperature(r.temp)
		}
	}
	next, ok := seq.Step(r.grid, r.rng, r.state)
	if !ok {
		r.finish("sequence exhausted")
		return false, false
	}
	r.state = next
	r.steps++
	_, mutated = next.Last()
	return true, mutated
}

func (r *Run) finish(reason string) {
	r.done = true
	r.logger.Info("run finished", slog.String("reason", reason), slog.Int("steps", r.steps))
}

// RunToEnd advances until the run finishes and returns the number of steps.
func (r *Run) RunToEnd() int {
	for {
		if running, _ := r.Advance(); !running {
			return r.steps
		}
	}
}

// Done reports whether the run has finished.
func (r *Run) Done() bool { return r.done }

// Limited reports whether MaxSteps stopped the run while the sequence still
// had rules to apply.
func (r *Run) Limited() bool { return r.limited }

// Steps returns how many rule applications were performed.
func (r *Run) Steps() int { return r.steps }

// Grid returns the grid being rewritten.
func (r *Run) Grid() *grid.Grid { return r.grid }

// View copies the current grid for visualizers.
func (r *Run) View() View {
	return View{Dims: r.grid.Dims(), Cells: append([]uint8(nil), r.grid.Cells()...)}
}

// Last returns the most recent application.
func (r *Run) Last() (rules.Application, bool) {
	if r.steps == 0 {
		return rules.Application{}, false
	}
	app, _ := r.state.Last()
	return app, true
}

// Position describes where in the sequence tree the run currently is.
func (r *Run) Position() string {
	if r.done {
		return "done"
	}
	return r.state.Path()
}

// Cache returns the legal application cache of the active rewrite node, or
// nil once the run is done.
func (r *Run) Cache() *rules.Cache {
	if r.done {
		return nil
	}
	return r.state.Cache()
}

// Legal returns the number of legal applications of the active node.
func (r *Run) Legal() int {
	if c := r.Cache(); c != nil {
		return c.Count()
	}
	return 0
}

// Touch returns the per-cell coverage counts of the active node, or nil.
func (r *Run) Touch() []int32 {
	if c := r.Cache(); c != nil {
		return c.Touch()
	}
	return nil
}

// PotentialMask returns the normalised potential field of the active node.
func (r *Run) PotentialMask() []float32 {
	if !r.done {
		if inf := r.state.Inference(); inf.Active() {
			return inf.Mask(r.grid)
		}
	}
	return make([]float32, r.grid.Len())
}

// Temperature returns the jitter scale of the active node, or the override.
func (r *Run) Temperature() float64 {
	if r.tempSet {
		return r.temp
	}
	if inf := r.state.Inference(); inf != nil {
		return inf.Temperature()
	}
	return 0
}

// SetTemperature overrides the inference temperature for the rest of the run.
func (r *Run) SetTemperature(t float64) {
	if t < 0 {
		t = 0
	}
	r.temp = t
	r.tempSet = true
}
