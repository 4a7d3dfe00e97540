package render

import (
	"image/color"
	"testing"
)

func TestFillPaletteRGBA(t *testing.T) {
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	buf := make([]byte, 12)
	fillPaletteRGBA(buf, []uint8{0, 1, 9}, palette)
	want := []byte{1, 0, 0, 255, 0, 2, 0, 255, 0, 2, 0, 255}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, buf[i], want[i])
		}
	}

	fillPaletteRGBA(buf, []uint8{0, 1, 2}, nil)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not cleared", i)
		}
	}
}

func TestFrameScalesCells(t *testing.T) {
	palette := []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}
	img := Frame([]uint8{0, 1, 1, 0}, 2, 2, palette, 3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(4, 1); got != palette[1] {
		t.Fatalf("top-right block = %v", got)
	}
	if got := img.RGBAAt(5, 5); got != palette[0] {
		t.Fatalf("bottom-right block = %v", got)
	}
	if got := img.RGBAAt(0, 4); got != palette[1] {
		t.Fatalf("bottom-left block = %v", got)
	}
}
