//go:build !ebiten

package ui

import "mad-rewrite/internal/core"

// Overlay stands in for the mask overlay when there is no window to draw on.
type Overlay struct{}

// NewOverlay ignores the sim's masks in headless builds.
func NewOverlay(core.Sim, int) *Overlay { return &Overlay{} }

// Update has no keys to read.
func (o *Overlay) Update() {}

// Draw has no screen to paint.
func (o *Overlay) Draw(any) {}
