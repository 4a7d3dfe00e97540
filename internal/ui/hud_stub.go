//go:build !ebiten

package ui

import "mad-rewrite/internal/core"

// HUD stands in for the parameter panel in headless builds.
type HUD struct{}

// NewHUD returns nil; headless builds have no panel.
func NewHUD(core.Sim, int) *HUD { return nil }

// Width is zero: no panel is laid out.
func (h *HUD) Width() int { return 0 }

// Update has no clicks to handle.
func (h *HUD) Update(int) {}

// Draw has no screen to paint.
func (h *HUD) Draw(any, int, int) {}
