// Package seq composes rewriting strategies into one resumable process.
//
// A Sequence is a closed set of variants (DoN, DoNRelative, DoAll, Ordered).
// Sequence values are immutable configuration; all progress lives in a State
// created by Start and advanced one rule application at a time by Step:
//
//	NotStarted --Start--> Running --Step--> Running
//	                                 \--Step--> Exhausted
//
// There is no transition out of Exhausted. A finished sequence is run again
// by calling Start, which builds a fresh State.
package seq

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/infer"
	"mad-rewrite/internal/rules"
)

var (
	// ErrNoRules is returned when a rewrite node has an empty rule list.
	ErrNoRules = errors.New("sequence needs at least one rule")
	// ErrNegativeCount is returned for negative application counts.
	ErrNegativeCount = errors.New("sequence count must not be negative")
	// ErrNoChildren is returned for an Ordered node without children.
	ErrNoChildren = errors.New("ordered sequence needs at least one child")
)

// Sequence is implemented only by the variants in this package.
type Sequence interface {
	sequence()
	// Kind names the variant.
	Kind() string
}

// Rewrite is the configuration shared by the rule-applying variants.
type Rewrite struct {
	rules      []rules.Rule
	sequential bool
	infer      infer.Context
}

func newRewrite(rs []rules.Rule, sequential bool, ctx infer.Context) (Rewrite, error) {
	if len(rs) == 0 {
		return Rewrite{}, ErrNoRules
	}
	return Rewrite{rules: append([]rules.Rule(nil), rs...), sequential: sequential, infer: ctx}, nil
}

// Rules returns the node's rule set in priority order.
func (r *Rewrite) Rules() []rules.Rule { return r.rules }

// Sequential reports whether earlier rules always win.
func (r *Rewrite) Sequential() bool { return r.sequential }

// DoN applies up to Count rules, one per step.
type DoN struct {
	Rewrite
	count int
}

// NewDoN builds a bounded-count node.
func NewDoN(rs []rules.Rule, count int, sequential bool, ctx infer.Context) (*DoN, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	rw, err := newRewrite(rs, sequential, ctx)
	if err != nil {
		return nil, err
	}
	return &DoN{Rewrite: rw, count: count}, nil
}

// Count returns the configured number of applications.
func (d *DoN) Count() int { return d.count }

// DoNRelative sizes its count from the grid when started:
// max(minCount, round(perCell * cells)).
type DoNRelative struct {
	Rewrite
	perCell  float64
	minCount int
}

// NewDoNRelative builds a count-per-cell node.
func NewDoNRelative(rs []rules.Rule, perCell float64, minCount int, sequential bool, ctx infer.Context) (*DoNRelative, error) {
	if perCell < 0 {
		return nil, fmt.Errorf("%w: per-cell %g", ErrNegativeCount, perCell)
	}
	if minCount < 0 {
		return nil, fmt.Errorf("%w: min %d", ErrNegativeCount, minCount)
	}
	rw, err := newRewrite(rs, sequential, ctx)
	if err != nil {
		return nil, err
	}
	return &DoNRelative{Rewrite: rw, perCell: perCell, minCount: minCount}, nil
}

func (d *DoNRelative) budget(g *grid.Grid) int {
	count := int(math.Round(d.perCell * float64(g.Len())))
	if count < d.minCount {
		count = d.minCount
	}
	return count
}

// DoAll applies rules until none match.
type DoAll struct {
	Rewrite
}

// NewDoAll builds a run-to-exhaustion node.
func NewDoAll(rs []rules.Rule, sequential bool, ctx infer.Context) (*DoAll, error) {
	rw, err := newRewrite(rs, sequential, ctx)
	if err != nil {
		return nil, err
	}
	return &DoAll{Rewrite: rw}, nil
}

// Ordered runs each child to exhaustion in turn.
type Ordered struct {
	children []Sequence
	infer    infer.Context
}

// NewOrdered builds an ordered composition. ctx is combined into the
// inference context of every child.
func NewOrdered(ctx infer.Context, children ...Sequence) (*Ordered, error) {
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("ordered child %d is nil", i)
		}
	}
	return &Ordered{children: append([]Sequence(nil), children...), infer: ctx}, nil
}

// Children returns the child sequences in run order.
func (o *Ordered) Children() []Sequence { return o.children }

func (*DoN) sequence()         {}
func (*DoNRelative) sequence() {}
func (*DoAll) sequence()       {}
func (*Ordered) sequence()     {}

// Kind implements Sequence.
func (*DoN) Kind() string { return "one" }

// Kind implements Sequence.
func (*DoNRelative) Kind() string { return "relative" }

// Kind implements Sequence.
func (*DoAll) Kind() string { return "all" }

// Kind implements Sequence.
func (*Ordered) Kind() string { return "ordered" }

// Describe renders a sequence tree on one line, e.g. "ordered(one,all)".
func Describe(s Sequence) string {
	o, ok := s.(*Ordered)
	if !ok {
		return s.Kind()
	}
	parts := make([]string, len(o.children))
	for i, c := range o.children {
		parts[i] = Describe(c)
	}
	return "ordered(" + strings.Join(parts, ",") + ")"
}
