package model

import (
	"fmt"
	"image/color"

	"mad-rewrite/internal/core"
	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/infer"
	"mad-rewrite/internal/rules"
	"mad-rewrite/internal/seq"
	"mad-rewrite/internal/vocab"
)

// Program is a model resolved against its vocabulary, ready to run.
type Program struct {
	Model    *Model
	Vocab    *vocab.Vocabulary
	Sequence seq.Sequence
	fill     uint8
}

// Build resolves symbols, rules and inference sets.
func (m *Model) Build() (*Program, error) {
	colors := make(map[rune]color.RGBA, len(m.Colors))
	for k, v := range m.Colors {
		c, err := ParseHex(v)
		if err != nil {
			return nil, fmt.Errorf("%w: color %q: %v", ErrInvalidModel, k, err)
		}
		colors[[]rune(k)[0]] = c
	}
	v, err := vocab.FromChars(m.Symbols, colors)
	if err != nil {
		return nil, fmt.Errorf("%w: symbols: %v", ErrInvalidModel, err)
	}
	p := &Program{Model: m, Vocab: v}
	fill := m.Fill
	if fill == "" {
		fill = string([]rune(m.Symbols)[0])
	}
	code, ok := v.Code([]rune(fill)[0])
	if !ok {
		return nil, fmt.Errorf("%w: fill %q is not a symbol", ErrInvalidModel, fill)
	}
	p.fill = code
	for i, pl := range m.Place {
		if _, ok := v.Code([]rune(pl.Symbol)[0]); !ok {
			return nil, fmt.Errorf("%w: place[%d] symbol %q is not a symbol", ErrInvalidModel, i, pl.Symbol)
		}
	}
	root, err := buildNode(v, &m.Sequence, infer.Context{Temperature: m.Temperature}, "sequence")
	if err != nil {
		return nil, err
	}
	p.Sequence = root
	return p, nil
}

func buildNode(v *vocab.Vocabulary, n *Node, parent infer.Context, at string) (seq.Sequence, error) {
	own, err := buildContext(v, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	ctx := infer.Combine(parent, own)
	if n.Kind == "ordered" {
		children := make([]seq.Sequence, len(n.Children))
		for i := range n.Children {
			c, err := buildNode(v, &n.Children[i], infer.Context{}, fmt.Sprintf("%s.children[%d]", at, i))
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
		return seq.NewOrdered(ctx, children...)
	}

	rs := make([]rules.Rule, len(n.Rules))
	for i, src := range n.Rules {
		r, err := rules.ParseArrow(v, src)
		if err != nil {
			return nil, fmt.Errorf("%s.rules[%d]: %w", at, i, err)
		}
		rs[i] = r
	}
	var s seq.Sequence
	switch n.Kind {
	case "one":
		s, err = seq.NewDoN(rs, n.Count, n.Sequential, ctx)
	case "relative":
		s, err = seq.NewDoNRelative(rs, n.PerCell, n.Min, n.Sequential, ctx)
	case "all":
		s, err = seq.NewDoAll(rs, n.Sequential, ctx)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidModel, n.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	return s, nil
}

func buildContext(v *vocab.Vocabulary, n *Node) (infer.Context, error) {
	ctx := infer.Context{Temperature: n.Temperature}
	for i, ps := range n.Infer {
		from, err := v.ParseSet(ps.From)
		if err != nil {
			return ctx, fmt.Errorf("infer[%d].from: %w", i, err)
		}
		to, err := v.ParseSet(ps.To)
		if err != nil {
			return ctx, fmt.Errorf("infer[%d].to: %w", i, err)
		}
		through, err := v.ParseSet(ps.Through)
		if err != nil {
			return ctx, fmt.Errorf("infer[%d].through: %w", i, err)
		}
		if from.Empty() || to.Empty() {
			return ctx, fmt.Errorf("%w: infer[%d] needs from and to", ErrInvalidModel, i)
		}
		ctx.Paths = append(ctx.Paths, infer.Path{
			Sources:     from,
			Dests:       to,
			Through:     through,
			Invert:      ps.Invert,
			Temperature: ps.Temperature,
		})
	}
	return ctx, nil
}

// NewGrid builds the initial grid. dims overrides the model's extents when
// given; random placements draw from seed.
func (p *Program) NewGrid(seed int64, dims ...int) (*grid.Grid, error) {
	if len(dims) == 0 {
		dims = p.Model.Dims
	}
	g, err := grid.New(dims...)
	if err != nil {
		return nil, err
	}
	g.Fill(p.fill)
	rng := core.NewRNG(seed)
	for i, pl := range p.Model.Place {
		code, _ := p.Vocab.Code([]rune(pl.Symbol)[0])
		idx, err := p.placeIndex(g, pl, rng)
		if err != nil {
			return nil, fmt.Errorf("place[%d]: %w", i, err)
		}
		g.Set(idx, code)
	}
	return g, nil
}

func (p *Program) placeIndex(g *grid.Grid, pl Placement, rng *core.RNG) (int, error) {
	switch {
	case pl.Random:
		var free []int
		for i, c := range g.Cells() {
			if c == p.fill {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return 0, fmt.Errorf("no free cell for %q", pl.Symbol)
		}
		return free[rng.Pick(len(free))], nil
	case len(pl.At) == 0:
		return g.Center(), nil
	}
	if len(pl.At) != g.Rank() {
		return 0, fmt.Errorf("%d coordinates for rank %d", len(pl.At), g.Rank())
	}
	pt := make(grid.Point, len(pl.At))
	for axis, c := range pl.At {
		if c < 0 {
			c += g.Dim(axis)
		}
		pt[axis] = c
	}
	idx, ok := g.Index(pt)
	if !ok {
		return 0, fmt.Errorf("%v is outside %v", pl.At, g.Dims())
	}
	return idx, nil
}

// Palette returns the code-indexed colors of the program's vocabulary.
func (p *Program) Palette() []color.RGBA { return p.Vocab.Palette() }
