// Package lsys rewrites strings in parallel generations: every symbol that
// has a production is replaced at once, the rest are copied. Productions may
// grow the string, which is why this lives outside the fixed-size grid
// engine.
package lsys

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrBadProduction is returned for productions that are not "x=replacement".
var ErrBadProduction = errors.New("malformed production")

// Grammar maps single symbols to their replacements.
type Grammar struct {
	prods map[rune]string
	order []rune
}

// Parse reads productions of the form "a=[*Ccrb]" (or "a>[*Ccrb]").
func Parse(productions ...string) (*Grammar, error) {
	g := &Grammar{prods: map[rune]string{}}
	for _, p := range productions {
		head, body, ok := strings.Cut(p, "=")
		if !ok {
			head, body, ok = strings.Cut(p, ">")
		}
		if !ok || utf8.RuneCountInString(head) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrBadProduction, p)
		}
		r, _ := utf8.DecodeRuneInString(head)
		if _, dup := g.prods[r]; dup {
			return nil, fmt.Errorf("%w: %q rewrites %q twice", ErrBadProduction, p, r)
		}
		g.prods[r] = body
		g.order = append(g.order, r)
	}
	return g, nil
}

// Symbols returns the set of symbols appearing in the grammar and axiom, in
// first-seen order. It can seed a vocabulary for coloring.
func (g *Grammar) Symbols(axiom string) string {
	seen := map[rune]bool{}
	var b strings.Builder
	add := func(s string) {
		for _, r := range s {
			if !seen[r] {
				seen[r] = true
				b.WriteRune(r)
			}
		}
	}
	add(axiom)
	for _, r := range g.order {
		add(string(r))
		add(g.prods[r])
	}
	return b.String()
}

// Step rewrites every symbol of s that has a production exactly once and
// reports whether anything was rewritten.
func (g *Grammar) Step(s string) (string, bool) {
	var b strings.Builder
	changed := false
	for _, r := range s {
		if body, ok := g.prods[r]; ok {
			b.WriteString(body)
			changed = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), changed
}

// Generations returns the axiom followed by up to n rewritten generations,
// stopping early at a fixed point.
func (g *Grammar) Generations(axiom string, n int) []string {
	out := []string{axiom}
	cur := axiom
	for i := 0; i < n; i++ {
		next, changed := g.Step(cur)
		if !changed {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}
