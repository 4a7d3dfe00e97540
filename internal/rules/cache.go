package rules

import (
	"context"
	"fmt"

	"mad-rewrite/internal/grid"
)

// Cache keeps, for every rule, the exact set of lines where it currently
// applies, plus a per-cell count of how many legal applications cover each
// cell. Outside of Update both are always equal to what an exhaustive scan of
// the grid would produce.
type Cache struct {
	g     *grid.Grid
	rules []Rule
	sets  []appSet
	touch []int32
	total int
	ndirs int
}

// appSet is an indexed set of line keys with O(1) insert, delete and lookup by
// position. Deletion moves the last key into the freed slot.
type appSet struct {
	keys []int
	pos  map[int]int
}

func newAppSet() appSet { return appSet{pos: map[int]int{}} }

func (s *appSet) has(k int) bool {
	_, ok := s.pos[k]
	return ok
}

func (s *appSet) add(k int) {
	s.pos[k] = len(s.keys)
	s.keys = append(s.keys, k)
}

func (s *appSet) remove(k int) {
	i := s.pos[k]
	last := len(s.keys) - 1
	moved := s.keys[last]
	s.keys[i] = moved
	s.pos[moved] = i
	s.keys = s.keys[:last]
	delete(s.pos, k)
}

// NewCache seeds a cache for rs over g with the exhaustive matcher.
func NewCache(g *grid.Grid, rs []Rule) *Cache {
	c := newEmptyCache(g, rs)
	for i, r := range rs {
		for _, line := range FindAll(g, r) {
			c.insert(i, line)
		}
	}
	return c
}

// NewCacheParallel is NewCache with the cold-start scan fanned out per rule.
func NewCacheParallel(ctx context.Context, g *grid.Grid, rs []Rule, workers int) (*Cache, error) {
	found, err := FindAllParallel(ctx, g, rs, workers)
	if err != nil {
		return nil, err
	}
	c := newEmptyCache(g, rs)
	for i, lines := range found {
		for _, line := range lines {
			c.insert(i, line)
		}
	}
	return c, nil
}

func newEmptyCache(g *grid.Grid, rs []Rule) *Cache {
	c := &Cache{
		g:     g,
		rules: rs,
		sets:  make([]appSet, len(rs)),
		touch: make([]int32, g.Len()),
		ndirs: 2 * g.Rank(),
	}
	for i := range c.sets {
		c.sets[i] = newAppSet()
	}
	return c
}

// Rebuild discards the cache contents and rescans the whole grid.
func (c *Cache) Rebuild() {
	fresh := NewCache(c.g, c.rules)
	*c = *fresh
}

// Rules returns the rule set the cache tracks.
func (c *Cache) Rules() []Rule { return c.rules }

// Count returns the total number of legal applications across all rules.
func (c *Cache) Count() int { return c.total }

// RuleCount returns the number of legal applications of one rule.
func (c *Cache) RuleCount(rule int) int { return len(c.sets[rule].keys) }

// Touch exposes the per-cell coverage counts. Callers must not modify it.
func (c *Cache) Touch() []int32 { return c.touch }

// Nth indexes into the union of all rules' legal sets, rule by rule. It panics
// when i is outside 0..Count()-1.
func (c *Cache) Nth(i int) Application {
	if i < 0 || i >= c.total {
		panic(fmt.Sprintf("rules: cache index %d out of range [0,%d)", i, c.total))
	}
	for r := range c.sets {
		n := len(c.sets[r].keys)
		if i < n {
			return c.RuleNth(r, i)
		}
		i -= n
	}
	panic("rules: cache total out of sync with per-rule sets")
}

// RuleNth returns the i-th legal application of one rule.
func (c *Cache) RuleNth(rule, i int) Application {
	keys := c.sets[rule].keys
	if i < 0 || i >= len(keys) {
		panic(fmt.Sprintf("rules: rule %d index %d out of range [0,%d)", rule, i, len(keys)))
	}
	return Application{Rule: rule, Line: c.lineOf(rule, keys[i])}
}

// FirstNonEmpty returns the lowest rule index with a legal application.
func (c *Cache) FirstNonEmpty() (int, bool) {
	for r := range c.sets {
		if len(c.sets[r].keys) > 0 {
			return r, true
		}
	}
	return 0, false
}

// Contains reports whether line is cached as legal for rule.
func (c *Cache) Contains(rule int, line grid.Line) bool {
	return c.sets[rule].has(c.key(line))
}

// Applications lists every cached application in Nth order.
func (c *Cache) Applications() []Application {
	apps := make([]Application, 0, c.total)
	for r := range c.sets {
		for _, k := range c.sets[r].keys {
			apps = append(apps, Application{Rule: r, Line: c.lineOf(r, k)})
		}
	}
	return apps
}

// Update re-validates every line that could have changed legality after rule
// was executed along line. For each cell the rule wrote, every rule's lines
// through that cell are re-tested along every axis in both directions: this
// covers the collinear neighbourhood of line as well as the perpendicular
// lines crossing it, and costs nothing proportional to the grid size.
func (c *Cache) Update(rule int, line grid.Line) {
	if rule < 0 || rule >= len(c.rules) {
		panic(fmt.Sprintf("rules: update with unknown rule %d", rule))
	}
	r := c.rules[rule]
	if line.Len != r.Len() {
		panic(fmt.Sprintf("rules: update line length %d does not match rule length %d", line.Len, r.Len()))
	}
	if !c.g.Contains(line) {
		panic(fmt.Sprintf("rules: update line %v is outside the grid", line))
	}
	for i := 0; i < r.Len(); i++ {
		if r.Out(i).IsWildcard() {
			continue
		}
		c.revalidateAround(c.g.LineCell(line, i))
	}
}

func (c *Cache) revalidateAround(cell int) {
	for ri, rr := range c.rules {
		n := rr.Len()
		for d := 0; d < c.ndirs; d++ {
			dir := grid.DirectionAt(d)
			for k := 0; k < n; k++ {
				start, ok := c.g.Offset(cell, dir, -k)
				if !ok {
					break
				}
				cand := grid.Line{Start: start, Dir: dir, Len: n}
				if !c.g.Contains(cand) {
					continue
				}
				c.revalidate(ri, cand)
			}
		}
	}
}

func (c *Cache) revalidate(rule int, line grid.Line) {
	k := c.key(line)
	was := c.sets[rule].has(k)
	now := Applies(c.g, c.rules[rule], line)
	switch {
	case now && !was:
		c.insert(rule, line)
	case was && !now:
		c.sets[rule].remove(k)
		c.total--
		c.addTouch(line, -1)
	}
}

func (c *Cache) insert(rule int, line grid.Line) {
	c.sets[rule].add(c.key(line))
	c.total++
	c.addTouch(line, 1)
}

func (c *Cache) addTouch(line grid.Line, delta int32) {
	for i := 0; i < line.Len; i++ {
		c.touch[c.g.LineCell(line, i)] += delta
	}
}

func (c *Cache) key(line grid.Line) int {
	return line.Start*c.ndirs + line.Dir.Index()
}

func (c *Cache) lineOf(rule, key int) grid.Line {
	return grid.Line{
		Start: key / c.ndirs,
		Dir:   grid.DirectionAt(key % c.ndirs),
		Len:   c.rules[rule].Len(),
	}
}
