package core

import (
	"image/color"
	"sort"
)

// Size describes the dimensions of a displayed grid. One-dimensional grids
// use H = 1.
type Size struct {
	W int
	H int
}

// Sim is the contract the GUI host and CLI drive. Step reports whether the
// simulation can still make progress.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step() bool
	Cells() []uint8
}

// PaletteProvider maps cell codes to colors for rendering.
type PaletteProvider interface {
	Palette() []color.RGBA
}

// MaskProvider exposes named [0,1] per-cell debug layers.
type MaskProvider interface {
	Masks() []string
	Mask(name string) []float32
}

// Factory constructs a Sim using an optional flag-style configuration map.
type Factory func(cfg map[string]string) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// SimNames lists registered simulations in sorted order.
func SimNames() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
