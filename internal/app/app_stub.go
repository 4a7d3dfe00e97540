//go:build !ebiten

package app

import (
	"errors"

	"mad-rewrite/internal/core"
)

var errNoGUI = errors.New("app: window support not compiled in (build with -tags ebiten)")

// Game keeps the GUI API linkable in headless builds of mad-rewrite.
type Game struct{}

// New panics: a headless binary cannot open a window for sim.
func New(sim core.Sim, scale int, seed int64, hudWidth int) *Game {
	panic(errNoGUI)
}

// Reset does nothing without a window.
func (g *Game) Reset(int64) {}

// Update returns errNoGUI so a caller's loop stops at once.
func (g *Game) Update() error { return errNoGUI }

// Draw does nothing without a window.
func (g *Game) Draw(any) {}

// Layout reports an empty screen.
func (g *Game) Layout(int, int) (int, int) { return 0, 0 }
