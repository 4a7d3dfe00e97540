//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"mad-rewrite/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var maskKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}

var maskTints = []color.RGBA{
	{R: 64, G: 164, B: 223},
	{R: 255, G: 120, B: 40},
	{R: 255, G: 236, B: 39},
	{R: 0, G: 228, B: 54},
}

// Overlay toggles the sim's debug masks with the number keys.
type Overlay struct {
	sim     core.Sim
	masks   core.MaskProvider
	names   []string
	shown   []bool
	scale   int
	maskImg *ebiten.Image
	maskBuf []byte
}

// NewOverlay constructs an overlay for sim.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale}
	if mp, ok := sim.(core.MaskProvider); ok {
		o.masks = mp
		o.names = mp.Masks()
		if len(o.names) > len(maskKeys) {
			o.names = o.names[:len(maskKeys)]
		}
		o.shown = make([]bool, len(o.names))
	}
	return o
}

// Update toggles masks on key presses.
func (o *Overlay) Update() {
	for i := range o.names {
		if inpututil.IsKeyJustPressed(maskKeys[i]) {
			o.shown[i] = !o.shown[i]
		}
	}
}

// Draw renders every enabled mask onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	total := size.W * size.H
	if total == 0 || o.masks == nil {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
		o.maskImg = ebiten.NewImage(size.W, size.H)
		o.maskBuf = make([]byte, 4*total)
	}
	for i, name := range o.names {
		if o.shown[i] {
			o.drawMask(screen, o.masks.Mask(name), maskTints[i%len(maskTints)])
		}
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	if len(mask) != len(o.maskBuf)/4 {
		return
	}
	const (
		maxAlpha      = 140.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)
	for i, m := range mask {
		base := i * 4
		intensity := clamp01(float64(m))
		if intensity == 0 {
			clear(o.maskBuf[base : base+4])
			continue
		}
		glow := glowBase + glowRange*math.Sqrt(intensity)
		o.maskBuf[base+0] = scaleColorComponent(tint.R, glow)
		o.maskBuf[base+1] = scaleColorComponent(tint.G, glow)
		o.maskBuf[base+2] = scaleColorComponent(tint.B, glow)
		o.maskBuf[base+3] = uint8(math.Round(maxAlpha * math.Pow(intensity, intensityBias)))
	}
	o.maskImg.WritePixels(o.maskBuf)
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
