package vocab

import (
	"errors"
	"image/color"
	"testing"
)

func TestFromCharsAssignsDenseCodes(t *testing.T) {
	v, err := FromChars("BWR", nil)
	if err != nil {
		t.Fatalf("FromChars: %v", err)
	}
	for i, r := range "BWR" {
		code, ok := v.Code(r)
		if !ok || int(code) != i {
			t.Fatalf("code for %q = %d,%v want %d", r, code, ok, i)
		}
	}
	if got := v.Palette()[1]; got != defaultColors['W'] {
		t.Fatalf("palette[1] = %v, want default white", got)
	}
	if v.Decode([]uint8{2, 0, 1}) != "RBW" {
		t.Fatalf("unexpected decode %q", v.Decode([]uint8{2, 0, 1}))
	}
}

func TestNewRejectsMalformedVocabularies(t *testing.T) {
	cases := []struct {
		name  string
		types []CellType
		want  error
	}{
		{"sparse", []CellType{{Code: 0, Char: 'a'}, {Code: 2, Char: 'b'}}, ErrSparseCodes},
		{"duplicate code", []CellType{{Code: 0, Char: 'a'}, {Code: 0, Char: 'b'}}, ErrDuplicateCode},
		{"duplicate char", []CellType{{Code: 0, Char: 'a'}, {Code: 1, Char: 'a'}}, ErrDuplicateChar},
	}
	for _, tc := range cases {
		if _, err := New(tc.types...); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
	if _, err := FromChars("a*", nil); err == nil {
		t.Fatal("wildcard character must not be a cell type")
	}
}

func TestColorOverridesAndFallback(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	v, err := FromChars("xB", map[rune]color.RGBA{'B': red})
	if err != nil {
		t.Fatal(err)
	}
	if v.Palette()[1] != red {
		t.Fatal("override color ignored")
	}
	if DefaultColor('x') != v.Palette()[0] || DefaultColor('x').A != 255 {
		t.Fatal("hashed fallback color must be stable and opaque")
	}
}

func TestSet(t *testing.T) {
	s := SetOf(0, 63, 64, 254)
	for _, c := range []uint8{0, 63, 64, 254} {
		if !s.Has(c) {
			t.Fatalf("set missing %d", c)
		}
	}
	if s.Has(1) || s.Has(Invalid) {
		t.Fatal("set reports codes never added")
	}
	if !(Set{}).Empty() || s.Empty() {
		t.Fatal("Empty mismatch")
	}
	v, _ := FromChars("BW", nil)
	if _, err := v.ParseSet("BQ"); err == nil {
		t.Fatal("expected unknown symbol error")
	}
}
