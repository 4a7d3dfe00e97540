//go:build !ebiten

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadlessGameRefusesToRun(t *testing.T) {
	assert.PanicsWithValue(t, errNoGUI, func() { New(nil, 1, 0, 0) })
	var g Game
	assert.ErrorIs(t, g.Update(), errNoGUI)
	w, h := g.Layout(640, 480)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
