package infer

import (
	"math"
	"math/rand/v2"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/rules"
	"mad-rewrite/internal/vocab"
)

// Unreachable marks cells the potential BFS never reached.
const Unreachable = math.MaxUint32

// Path steers rule selection toward growing Sources cells along Through cells
// in the direction of Dests cells (or away from them when Invert is set).
type Path struct {
	Sources     vocab.Set
	Dests       vocab.Set
	Through     vocab.Set
	Invert      bool
	Temperature float64
}

// Context is the inference configuration active for one sequence node.
type Context struct {
	Temperature float64
	Paths       []Path
}

// Active reports whether the context constrains anything.
func (c Context) Active() bool { return len(c.Paths) > 0 }

// EffectiveTemperature is the largest temperature configured on the context
// or any of its paths. Jitter is added once per candidate at this scale.
func (c Context) EffectiveTemperature() float64 {
	t := c.Temperature
	for _, p := range c.Paths {
		if p.Temperature > t {
			t = p.Temperature
		}
	}
	return t
}

// Combine merges a parent context (e.g. an Ordered node) into a child's.
func Combine(parent, child Context) Context {
	out := Context{Temperature: parent.Temperature}
	if child.Temperature > out.Temperature {
		out.Temperature = child.Temperature
	}
	out.Paths = append(append([]Path(nil), parent.Paths...), child.Paths...)
	return out
}

// Field is the BFS distance map for one Path.
type Field struct {
	path      Path
	potential []uint32
	queue     []int
}

// Potential exposes the distances. Callers must not modify it.
func (f *Field) Potential() []uint32 { return f.potential }

// Recompute runs a multi-source BFS from every Dests cell, stepping only into
// Through cells. Unvisited cells keep Unreachable.
func (f *Field) Recompute(g *grid.Grid) {
	if len(f.potential) != g.Len() {
		f.potential = make([]uint32, g.Len())
	}
	f.queue = f.queue[:0]
	cells := g.Cells()
	for i, c := range cells {
		if f.path.Dests.Has(c) {
			f.potential[i] = 0
			f.queue = append(f.queue, i)
			continue
		}
		f.potential[i] = Unreachable
	}
	for head := 0; head < len(f.queue); head++ {
		cur := f.queue[head]
		next := f.potential[cur] + 1
		g.Neighbors(cur, func(n int) {
			if f.potential[n] != Unreachable || !f.path.Through.Has(cells[n]) {
				return
			}
			f.potential[n] = next
			f.queue = append(f.queue, n)
		})
	}
}

// State is the runtime inference state owned by one running rewrite node.
type State struct {
	temperature float64
	fields      []*Field
	relevant    vocab.Set
	eager       bool
	dirty       bool
}

// NewState allocates fields for every path in ctx and computes them once.
// With eager set the fields are recomputed after every observed change,
// otherwise lazily before the next weight query.
func NewState(g *grid.Grid, ctx Context, eager bool) *State {
	s := &State{temperature: ctx.EffectiveTemperature(), eager: eager}
	for _, p := range ctx.Paths {
		s.fields = append(s.fields, &Field{path: p})
		s.relevant = s.relevant.Union(p.Dests).Union(p.Through)
	}
	s.recompute(g)
	return s
}

// Active reports whether any path is configured.
func (s *State) Active() bool { return s != nil && len(s.fields) > 0 }

// Temperature returns the jitter scale.
func (s *State) Temperature() float64 { return s.temperature }

// SetTemperature overrides the jitter scale for subsequent weights.
func (s *State) SetTemperature(t float64) {
	if t < 0 {
		t = 0
	}
	s.temperature = t
}

// Fields returns the per-path distance fields, refreshing stale ones.
func (s *State) Fields(g *grid.Grid) []*Field {
	if s.dirty {
		s.recompute(g)
	}
	return s.fields
}

// Observe records that line was rewritten; before holds the old codes of the
// line's cells in line order.
func (s *State) Observe(g *grid.Grid, line grid.Line, before []uint8) {
	if !s.Active() {
		return
	}
	for i, old := range before {
		now := g.At(g.LineCell(line, i))
		if old == now {
			continue
		}
		if s.relevant.Has(old) || s.relevant.Has(now) {
			s.dirty = true
			break
		}
	}
	if s.dirty && s.eager {
		s.recompute(g)
	}
}

// Potential returns the distance field of path i, refreshing it if stale.
func (s *State) Potential(g *grid.Grid, i int) []uint32 {
	return s.Fields(g)[i].potential
}

func (s *State) recompute(g *grid.Grid) {
	for _, f := range s.fields {
		f.Recompute(g)
	}
	s.dirty = false
}

// Weight scores applying r along line: larger is better. The random jitter is
// drawn once; each path then adds the potential of every cell where the rule
// creates (-potential) or destroys (+potential) a source cell, negated for
// inverted paths. An unreachable cell contributes a potential of -1.
func (s *State) Weight(g *grid.Grid, r rules.Rule, line grid.Line, rng *rand.Rand) float64 {
	w := 0.0
	if s.temperature > 0 {
		w = s.temperature * rng.Float64()
	}
	fields := s.Fields(g)
	for _, f := range fields {
		delta := 0.0
		for i := 0; i < r.Len(); i++ {
			idx := g.LineCell(line, i)
			old := g.At(idx)
			next := old
			if out := r.Out(i); !out.IsWildcard() {
				next = out.Code()
			}
			wasSource := f.path.Sources.Has(old)
			isSource := f.path.Sources.Has(next)
			if wasSource == isSource {
				continue
			}
			p := -1.0
			if d := f.potential[idx]; d != Unreachable {
				p = float64(d)
			}
			if isSource {
				delta -= p
			} else {
				delta += p
			}
		}
		if f.path.Invert {
			delta = -delta
		}
		w += delta
	}
	return w
}

// Mask returns the first field normalised to [0,1] (1 nearest the
// destinations, 0 for unreachable cells), for debug overlays.
func (s *State) Mask(g *grid.Grid) []float32 {
	mask := make([]float32, g.Len())
	if !s.Active() {
		return mask
	}
	pot := s.Fields(g)[0].potential
	var maxD uint32
	for _, d := range pot {
		if d != Unreachable && d > maxD {
			maxD = d
		}
	}
	for i, d := range pot {
		if d == Unreachable {
			continue
		}
		mask[i] = 1 - float32(d)/float32(maxD+1)
	}
	return mask
}
