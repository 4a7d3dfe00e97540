// Package markov hosts rewrite models as core simulations for the GUI and CLI.
package markov

import (
	"fmt"
	"image/color"
	"log/slog"

	"mad-rewrite/internal/core"
	"mad-rewrite/internal/engine"
	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/model"
)

const (
	maskPotential = "potential"
	maskTouch     = "touch"
	maskLast      = "last"
)

// Sim runs a model one batch of rule applications per tick.
type Sim struct {
	cfg  Config
	prog *model.Program
	dims []int
	run  *engine.Run
	grid *grid.Grid
	log  *slog.Logger

	finished bool
}

// New resolves the model and prepares a run seeded with cfg.Seed.
func New(cfg Config) (*Sim, error) {
	m, err := model.Resolve(cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.Temperature >= 0 {
		m.Temperature = cfg.Temperature
	}
	prog, err := m.Build()
	if err != nil {
		return nil, err
	}
	dims := append([]int(nil), m.Dims...)
	if cfg.Width > 0 {
		dims[0] = cfg.Width
	}
	if cfg.Height > 0 && len(dims) > 1 {
		dims[1] = cfg.Height
	}
	if len(dims) > 2 {
		return nil, fmt.Errorf("model %s: rank %d cannot be displayed", m.Name, len(dims))
	}
	if cfg.StepsPerTick <= 0 {
		cfg.StepsPerTick = 1
	}
	logger := cfg.Engine.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sim{cfg: cfg, prog: prog, dims: dims, log: logger.With(slog.String("model", m.Name))}
	s.Reset(cfg.Seed)
	if s.run == nil {
		return nil, fmt.Errorf("model %s: could not start run", m.Name)
	}
	return s, nil
}

// Name identifies the simulation.
func (s *Sim) Name() string { return "markov-" + s.prog.Model.Name }

// Size returns the displayed grid dimensions.
func (s *Sim) Size() core.Size {
	if len(s.dims) == 1 {
		return core.Size{W: s.dims[0], H: 1}
	}
	return core.Size{W: s.dims[0], H: s.dims[1]}
}

// Cells exposes the current grid codes.
func (s *Sim) Cells() []uint8 { return s.grid.Cells() }

// Palette maps grid codes to the model's colors.
func (s *Sim) Palette() []color.RGBA { return s.prog.Palette() }

// Program returns the resolved model.
func (s *Sim) Program() *model.Program { return s.prog }

// Run returns the active engine run.
func (s *Sim) Run() *engine.Run { return s.run }

// Reset rebuilds the initial grid and restarts the sequence.
func (s *Sim) Reset(seed int64) {
	g, err := s.prog.NewGrid(seed, s.dims...)
	if err != nil {
		s.log.Error("reset failed", slog.Any("err", err))
		return
	}
	cfg := s.cfg.Engine
	cfg.Logger = s.log
	run, err := engine.Start(s.prog.Sequence, g, seed, cfg)
	if err != nil {
		s.log.Error("reset failed", slog.Any("err", err))
		return
	}
	if s.cfg.Temperature >= 0 {
		run.SetTemperature(s.cfg.Temperature)
	}
	s.cfg.Seed = seed
	s.grid, s.run, s.finished = g, run, false
}

// Step applies up to StepsPerTick rules. It reports false once the sequence
// has finished.
func (s *Sim) Step() bool {
	if s.finished {
		return false
	}
	for i := 0; i < s.cfg.StepsPerTick; i++ {
		if running, _ := s.run.Advance(); !running {
			s.finished = true
			return false
		}
	}
	return true
}

// Parameters reports run progress and the tunable values.
func (s *Sim) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Run",
			Params: []core.Parameter{
				core.StringParam("sequence", "Sequence", s.run.Position()),
				core.IntParam("steps", "Steps", s.run.Steps()),
				core.IntParam("legal", "Legal", s.run.Legal()),
				core.IntParam("seed", "Seed", int(s.cfg.Seed)),
			},
		},
		{
			Name: "Controls",
			Params: []core.Parameter{
				core.IntParam("steps_per_tick", "Steps per tick", s.cfg.StepsPerTick),
				core.FloatParam("temperature", "Temperature", s.run.Temperature()),
			},
		},
	}}
}

// ParameterControls lists the HUD-adjustable values.
func (s *Sim) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "steps_per_tick", Label: "Steps per tick", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 4096, HasMin: true, HasMax: true},
		{Key: "temperature", Label: "Temperature", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, Max: 10, HasMin: true, HasMax: true},
	}
}

// SetIntParameter updates an integer control.
func (s *Sim) SetIntParameter(key string, value int) bool {
	switch key {
	case "steps_per_tick":
		if value < 1 {
			value = 1
		}
		s.cfg.StepsPerTick = value
		return true
	}
	return false
}

// SetFloatParameter updates a float control.
func (s *Sim) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "temperature":
		if value < 0 {
			value = 0
		}
		s.cfg.Temperature = value
		s.run.SetTemperature(value)
		return true
	}
	return false
}

// Masks lists the debug overlays this sim can draw.
func (s *Sim) Masks() []string { return []string{maskPotential, maskTouch, maskLast} }

// Mask returns one debug overlay normalised to [0,1].
func (s *Sim) Mask(name string) []float32 {
	switch name {
	case maskPotential:
		return s.run.PotentialMask()
	case maskTouch:
		return touchMask(s.run.Touch(), s.grid.Len())
	case maskLast:
		out := make([]float32, s.grid.Len())
		if app, ok := s.run.Last(); ok {
			for i := 0; i < app.Line.Len; i++ {
				out[s.grid.LineCell(app.Line, i)] = 1
			}
		}
		return out
	}
	return nil
}

func touchMask(touch []int32, n int) []float32 {
	out := make([]float32, n)
	var peak int32
	for _, t := range touch {
		if t > peak {
			peak = t
		}
	}
	if peak == 0 {
		return out
	}
	for i, t := range touch {
		out[i] = float32(t) / float32(peak)
	}
	return out
}

func init() {
	for _, name := range model.Presets() {
		preset := name
		core.Register("markov-"+preset, func(cfg map[string]string) core.Sim {
			s, err := New(FromMap(preset, cfg))
			if err != nil {
				slog.Error("markov sim", slog.String("model", preset), slog.Any("err", err))
				return nil
			}
			return s
		})
	}
}
