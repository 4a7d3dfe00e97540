package seq

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/infer"
	"mad-rewrite/internal/rules"
)

// Phase is the lifecycle position of a State.
type Phase uint8

const (
	NotStarted Phase = iota
	Running
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Options are runtime switches shared by every node of one run.
type Options struct {
	// NoCache rebuilds the legal application cache with a full scan after
	// every step instead of updating it incrementally.
	NoCache bool
	// EagerPotential recomputes inference fields after every relevant change
	// instead of before the next weight query.
	EagerPotential bool
	// Workers > 1 fans the cold-start scan of each rewrite node out per rule.
	Workers int
	Logger  *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// State is the resumption state of one sequence node. It is owned by the
// driver loop, never by the Sequence value.
type State struct {
	node  Sequence
	phase Phase
	opts  Options

	rw  *rewriteState
	ord *orderedState

	last    rules.Application
	mutated bool
	steps   int
}

type rewriteState struct {
	cfg       *Rewrite
	cache     *rules.Cache
	inf       *infer.State
	remaining int // -1 for unbounded
	before    []uint8
	ties      []rules.Application
}

type orderedState struct {
	node  *Ordered
	ctx   infer.Context
	index int
	child *State
}

// Start begins a fresh run of s over g.
func Start(s Sequence, g *grid.Grid, rng *rand.Rand, opts Options) *State {
	return start(s, g, rng, opts, infer.Context{})
}

func start(s Sequence, g *grid.Grid, rng *rand.Rand, opts Options, parent infer.Context) *State {
	st := &State{node: s, phase: Running, opts: opts}
	switch n := s.(type) {
	case *DoN:
		st.rw = newRewriteState(g, &n.Rewrite, n.count, opts, parent)
	case *DoNRelative:
		st.rw = newRewriteState(g, &n.Rewrite, n.budget(g), opts, parent)
	case *DoAll:
		st.rw = newRewriteState(g, &n.Rewrite, -1, opts, parent)
	case *Ordered:
		ctx := infer.Combine(parent, n.infer)
		st.ord = &orderedState{node: n, ctx: ctx}
		st.ord.child = start(n.children[0], g, rng, opts, ctx)
	default:
		panic(fmt.Sprintf("seq: unknown sequence variant %T", s))
	}
	return st
}

func newRewriteState(g *grid.Grid, cfg *Rewrite, count int, opts Options, parent infer.Context) *rewriteState {
	rs := &rewriteState{cfg: cfg, remaining: count}
	if opts.Workers > 1 && !opts.NoCache {
		c, err := rules.NewCacheParallel(context.Background(), g, cfg.rules, opts.Workers)
		if err != nil {
			panic(fmt.Sprintf("seq: cold-start scan failed: %v", err))
		}
		rs.cache = c
	} else {
		rs.cache = rules.NewCache(g, cfg.rules)
	}
	rs.inf = infer.NewState(g, infer.Combine(parent, cfg.infer), opts.EagerPotential)
	return rs
}

// Step performs at most one rule application. It returns the advanced state,
// or nil and false once the sequence is exhausted. Stepping a state that is
// not running is a programming error.
func Step(g *grid.Grid, rng *rand.Rand, st *State) (*State, bool) {
	if st == nil || st.phase != Running {
		panic("seq: Step called on a state that is not running")
	}
	if !st.step(g, rng) {
		return nil, false
	}
	return st, true
}

func (st *State) step(g *grid.Grid, rng *rand.Rand) bool {
	var ok bool
	switch {
	case st.rw != nil:
		ok = st.stepRewrite(g, rng)
	case st.ord != nil:
		ok = st.stepOrdered(g, rng)
	}
	if !ok {
		st.phase = Exhausted
		return false
	}
	st.steps++
	return true
}

func (st *State) stepOrdered(g *grid.Grid, rng *rand.Rand) bool {
	o := st.ord
	for {
		if o.child.step(g, rng) {
			st.last, st.mutated = o.child.last, o.child.mutated
			return true
		}
		if o.index+1 >= len(o.node.children) {
			return false
		}
		o.index++
		st.opts.logger().Info("sequence advanced",
			slog.Int("child", o.index),
			slog.String("kind", o.node.children[o.index].Kind()))
		o.child = start(o.node.children[o.index], g, rng, st.opts, o.ctx)
	}
}

func (st *State) stepRewrite(g *grid.Grid, rng *rand.Rand) bool {
	rs := st.rw
	if rs.remaining == 0 || rs.cache.Count() == 0 {
		return false
	}
	app := rs.choose(g, rng)
	rule := rs.cfg.rules[app.Rule]

	rs.before = rs.before[:0]
	for i := 0; i < app.Line.Len; i++ {
		rs.before = append(rs.before, g.At(g.LineCell(app.Line, i)))
	}
	mutated := rules.Execute(g, rule, app.Line)
	if st.opts.NoCache {
		rs.cache.Rebuild()
	} else {
		rs.cache.Update(app.Rule, app.Line)
	}
	rs.inf.Observe(g, app.Line, rs.before)
	if rs.remaining > 0 {
		rs.remaining--
	}
	st.last, st.mutated = app, mutated
	st.opts.logger().Debug("rule applied",
		slog.Int("rule", app.Rule),
		slog.Int("start", app.Line.Start),
		slog.String("dir", app.Line.Dir.String()),
		slog.Int("legal", rs.cache.Count()))
	return true
}

// choose picks one legal application. Sequential nodes first restrict the
// candidates to the lowest-indexed rule with any match; inference then keeps
// the highest-weighted candidates and ties are broken uniformly.
func (rs *rewriteState) choose(g *grid.Grid, rng *rand.Rand) rules.Application {
	c := rs.cache
	n := c.Count()
	nth := c.Nth
	if rs.cfg.sequential {
		r, _ := c.FirstNonEmpty()
		n = c.RuleCount(r)
		nth = func(i int) rules.Application { return c.RuleNth(r, i) }
	}
	if !rs.inf.Active() {
		return nth(rng.IntN(n))
	}
	best := math.Inf(-1)
	rs.ties = rs.ties[:0]
	for i := 0; i < n; i++ {
		a := nth(i)
		w := rs.inf.Weight(g, rs.cfg.rules[a.Rule], a.Line, rng)
		switch {
		case w > best:
			best = w
			rs.ties = append(rs.ties[:0], a)
		case w == best:
			rs.ties = append(rs.ties, a)
		}
	}
	return rs.ties[rng.IntN(len(rs.ties))]
}

// Pending reports whether another Step would apply a rule. It does not touch
// the grid or the state; children of an Ordered node that have not started
// yet are checked with a full scan.
func (st *State) Pending(g *grid.Grid) bool {
	if st == nil || st.phase != Running {
		return false
	}
	switch {
	case st.rw != nil:
		return st.rw.remaining != 0 && st.rw.cache.Count() > 0
	case st.ord != nil:
		if st.ord.child.Pending(g) {
			return true
		}
		for _, c := range st.ord.node.children[st.ord.index+1:] {
			if pending(c, g) {
				return true
			}
		}
	}
	return false
}

func pending(s Sequence, g *grid.Grid) bool {
	switch n := s.(type) {
	case *DoN:
		return n.count > 0 && len(rules.FindAllApplications(g, n.rules)) > 0
	case *DoNRelative:
		return n.budget(g) > 0 && len(rules.FindAllApplications(g, n.rules)) > 0
	case *DoAll:
		return len(rules.FindAllApplications(g, n.rules)) > 0
	case *Ordered:
		for _, c := range n.children {
			if pending(c, g) {
				return true
			}
		}
	}
	return false
}

// Phase returns the lifecycle position.
func (st *State) Phase() Phase { return st.phase }

// Node returns the sequence this state runs.
func (st *State) Node() Sequence { return st.node }

// Steps returns how many rules this state has applied.
func (st *State) Steps() int { return st.steps }

// Last returns the most recent application and whether it changed the grid.
func (st *State) Last() (rules.Application, bool) { return st.last, st.mutated }

// Active descends through Ordered nodes to the running rewrite node.
func (st *State) Active() *State {
	cur := st
	for cur.ord != nil {
		cur = cur.ord.child
	}
	return cur
}

// Cache returns the legal application cache of the active rewrite node.
func (st *State) Cache() *rules.Cache {
	if a := st.Active(); a.rw != nil {
		return a.rw.cache
	}
	return nil
}

// Inference returns the inference state of the active rewrite node.
func (st *State) Inference() *infer.State {
	if a := st.Active(); a.rw != nil {
		return a.rw.inf
	}
	return nil
}

// Remaining returns the applications left on the active node, -1 if unbounded.
func (st *State) Remaining() int {
	if a := st.Active(); a.rw != nil {
		return a.rw.remaining
	}
	return 0
}

// Path describes the position in the sequence tree, e.g. "ordered[1]>all".
func (st *State) Path() string {
	out := ""
	cur := st
	for cur.ord != nil {
		out += fmt.Sprintf("ordered[%d]>", cur.ord.index)
		cur = cur.ord.child
	}
	return out + cur.node.Kind()
}
