package grid

import (
	"errors"
	"fmt"
)

// Point is an N-dimensional coordinate, axis 0 first.
type Point []int

// Grid stores an N-dimensional grid of byte-sized cell codes. Axis 0 has
// stride 1, so a 2D grid is laid out row-major like a framebuffer.
type Grid struct {
	dims    []int
	strides []int
	data    []uint8
}

// New allocates a zeroed grid with the given extents.
func New(dims ...int) (*Grid, error) {
	if len(dims) == 0 {
		return nil, errors.New("grid needs at least one dimension")
	}
	g := &Grid{dims: append([]int(nil), dims...), strides: make([]int, len(dims))}
	total := 1
	for axis, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("grid axis %d has non-positive extent %d", axis, d)
		}
		g.strides[axis] = total
		total *= d
	}
	g.data = make([]uint8, total)
	return g, nil
}

// MustNew is New for fixed, known-good dimensions.
func MustNew(dims ...int) *Grid {
	g, err := New(dims...)
	if err != nil {
		panic(err)
	}
	return g
}

// FromCells wraps a copy of cells in a grid of the given dimensions.
func FromCells(cells []uint8, dims ...int) (*Grid, error) {
	g, err := New(dims...)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(g.data) {
		return nil, fmt.Errorf("grid %v needs %d cells, got %d", dims, len(g.data), len(cells))
	}
	copy(g.data, cells)
	return g, nil
}

// Rank returns the number of axes.
func (g *Grid) Rank() int { return len(g.dims) }

// Dims returns a copy of the per-axis extents.
func (g *Grid) Dims() []int { return append([]int(nil), g.dims...) }

// Dim returns the extent of one axis.
func (g *Grid) Dim(axis int) int { return g.dims[axis] }

// Len returns the total number of cells.
func (g *Grid) Len() int { return len(g.data) }

// Cells exposes the backing slice. Visualizers must treat it as read-only.
func (g *Grid) Cells() []uint8 { return g.data }

// At returns the code stored at linear index idx.
func (g *Grid) At(idx int) uint8 { return g.data[idx] }

// Set overwrites the code at linear index idx.
func (g *Grid) Set(idx int, v uint8) { g.data[idx] = v }

// Fill sets every cell to v.
func (g *Grid) Fill(v uint8) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{
		dims:    append([]int(nil), g.dims...),
		strides: append([]int(nil), g.strides...),
		data:    append([]uint8(nil), g.data...),
	}
}

// Coord returns the coordinate of idx along axis.
func (g *Grid) Coord(idx, axis int) int {
	return (idx / g.strides[axis]) % g.dims[axis]
}

// Index converts a point to a linear index.
func (g *Grid) Index(p Point) (int, bool) {
	if len(p) != len(g.dims) {
		return 0, false
	}
	idx := 0
	for axis, c := range p {
		if c < 0 || c >= g.dims[axis] {
			return 0, false
		}
		idx += c * g.strides[axis]
	}
	return idx, true
}

// Point converts a linear index back to coordinates.
func (g *Grid) Point(idx int) Point {
	p := make(Point, len(g.dims))
	for axis := range g.dims {
		p[axis] = g.Coord(idx, axis)
	}
	return p
}

// Center returns the linear index of the middle cell.
func (g *Grid) Center() int {
	idx := 0
	for axis, d := range g.dims {
		idx += (d / 2) * g.strides[axis]
	}
	return idx
}

// Offset moves k cells from idx along dir. It reports false when the result
// leaves the grid.
func (g *Grid) Offset(idx int, dir Direction, k int) (int, bool) {
	c := g.Coord(idx, dir.Axis) + dir.Sign*k
	if c < 0 || c >= g.dims[dir.Axis] {
		return 0, false
	}
	return idx + dir.Sign*k*g.strides[dir.Axis], true
}

// Contains reports whether every cell of l lies inside the grid.
func (g *Grid) Contains(l Line) bool {
	if l.Len <= 0 || l.Start < 0 || l.Start >= len(g.data) {
		return false
	}
	if l.Dir.Axis < 0 || l.Dir.Axis >= len(g.dims) || (l.Dir.Sign != 1 && l.Dir.Sign != -1) {
		return false
	}
	end := g.Coord(l.Start, l.Dir.Axis) + l.Dir.Sign*(l.Len-1)
	return end >= 0 && end < g.dims[l.Dir.Axis]
}

// LineCell returns the linear index of the i-th cell of l. The caller must
// have checked Contains.
func (g *Grid) LineCell(l Line, i int) int {
	return l.Start + l.Dir.Sign*i*g.strides[l.Dir.Axis]
}

// Neighbors calls fn for every in-bounds axis neighbour of idx.
func (g *Grid) Neighbors(idx int, fn func(n int)) {
	for axis, d := range g.dims {
		c := g.Coord(idx, axis)
		if c > 0 {
			fn(idx - g.strides[axis])
		}
		if c < d-1 {
			fn(idx + g.strides[axis])
		}
	}
}
