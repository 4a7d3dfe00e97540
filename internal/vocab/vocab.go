package vocab

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image/color"
)

// Invalid is the reserved "no cell" code. It never appears in a live grid.
const Invalid uint8 = 0xFF

// Wildcard is the character used by rule authors for "any" / "unchanged" slots.
const Wildcard = '*'

// MaxTypes is the largest vocabulary size that still leaves Invalid unused.
const MaxTypes = int(Invalid)

var (
	// ErrDuplicateCode is returned when two cell types share a code.
	ErrDuplicateCode = errors.New("duplicate cell code")
	// ErrSparseCodes is returned when codes do not form the range 0..n-1.
	ErrSparseCodes = errors.New("cell codes must be dense")
	// ErrDuplicateChar is returned when two cell types share a display character.
	ErrDuplicateChar = errors.New("duplicate cell character")
	// ErrTooManyTypes is returned when the vocabulary would reach the Invalid code.
	ErrTooManyTypes = errors.New("too many cell types")
)

// CellType describes one discrete cell state.
type CellType struct {
	Code  uint8
	Name  string
	Char  rune
	Color color.RGBA
}

// Vocabulary is an immutable, dense set of cell types.
type Vocabulary struct {
	types  []CellType
	byChar map[rune]uint8
}

// New validates the provided types and returns a vocabulary indexed by code.
func New(types ...CellType) (*Vocabulary, error) {
	if len(types) == 0 {
		return nil, errors.New("vocabulary needs at least one cell type")
	}
	if len(types) > MaxTypes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTypes, len(types), MaxTypes)
	}
	v := &Vocabulary{
		types:  make([]CellType, len(types)),
		byChar: make(map[rune]uint8, len(types)),
	}
	seen := make([]bool, len(types))
	for _, t := range types {
		if int(t.Code) >= len(types) {
			return nil, fmt.Errorf("%w: code %d with %d types", ErrSparseCodes, t.Code, len(types))
		}
		if seen[t.Code] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCode, t.Code)
		}
		if t.Char == Wildcard {
			return nil, fmt.Errorf("cell type %q uses the wildcard character", t.Name)
		}
		if _, dup := v.byChar[t.Char]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateChar, t.Char)
		}
		seen[t.Code] = true
		v.types[t.Code] = t
		v.byChar[t.Char] = t.Code
	}
	return v, nil
}

// FromChars builds a vocabulary whose codes follow the order of chars. Colors
// come from the overrides map first, then the default table.
func FromChars(chars string, colors map[rune]color.RGBA) (*Vocabulary, error) {
	var types []CellType
	for _, r := range chars {
		col, ok := colors[r]
		if !ok {
			col = DefaultColor(r)
		}
		types = append(types, CellType{
			Code:  uint8(len(types)),
			Name:  string(r),
			Char:  r,
			Color: col,
		})
		if len(types) > MaxTypes {
			return nil, fmt.Errorf("%w: %q", ErrTooManyTypes, chars)
		}
	}
	return New(types...)
}

// Len returns the number of cell types.
func (v *Vocabulary) Len() int { return len(v.types) }

// Code looks up the code for a display character.
func (v *Vocabulary) Code(r rune) (uint8, bool) {
	c, ok := v.byChar[r]
	return c, ok
}

// Char returns the display character for code, or '?' for unknown codes.
func (v *Vocabulary) Char(code uint8) rune {
	if int(code) >= len(v.types) {
		return '?'
	}
	return v.types[code].Char
}

// Type returns the cell type for code.
func (v *Vocabulary) Type(code uint8) (CellType, bool) {
	if int(code) >= len(v.types) {
		return CellType{}, false
	}
	return v.types[code], true
}

// Types returns a copy of all cell types ordered by code.
func (v *Vocabulary) Types() []CellType {
	return append([]CellType(nil), v.types...)
}

// Palette returns the code to color table used by visualizers.
func (v *Vocabulary) Palette() []color.RGBA {
	palette := make([]color.RGBA, len(v.types))
	for i, t := range v.types {
		palette[i] = t.Color
	}
	return palette
}

// Encode converts a string of display characters to codes.
func (v *Vocabulary) Encode(s string) ([]uint8, error) {
	out := make([]uint8, 0, len(s))
	for _, r := range s {
		c, ok := v.byChar[r]
		if !ok {
			return nil, fmt.Errorf("unknown symbol %q", r)
		}
		out = append(out, c)
	}
	return out, nil
}

// Decode converts codes back to display characters.
func (v *Vocabulary) Decode(codes []uint8) string {
	out := make([]rune, len(codes))
	for i, c := range codes {
		out[i] = v.Char(c)
	}
	return string(out)
}

var defaultColors = map[rune]color.RGBA{
	'B': {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	'I': {R: 0x1d, G: 0x2b, B: 0x53, A: 0xff},
	'P': {R: 0x7e, G: 0x25, B: 0x53, A: 0xff},
	'E': {R: 0x00, G: 0x87, B: 0x51, A: 0xff},
	'N': {R: 0xab, G: 0x52, B: 0x36, A: 0xff},
	'D': {R: 0x5f, G: 0x57, B: 0x4f, A: 0xff},
	'A': {R: 0xc2, G: 0xc3, B: 0xc7, A: 0xff},
	'W': {R: 0xff, G: 0xf1, B: 0xe8, A: 0xff},
	'R': {R: 0xff, G: 0x00, B: 0x4d, A: 0xff},
	'O': {R: 0xff, G: 0xa3, B: 0x00, A: 0xff},
	'Y': {R: 0xff, G: 0xec, B: 0x27, A: 0xff},
	'G': {R: 0x00, G: 0xe4, B: 0x36, A: 0xff},
	'U': {R: 0x29, G: 0xad, B: 0xff, A: 0xff},
	'S': {R: 0x83, G: 0x76, B: 0x9c, A: 0xff},
	'K': {R: 0xff, G: 0x77, B: 0xa8, A: 0xff},
	'F': {R: 0xff, G: 0xcc, B: 0xaa, A: 0xff},
}

// DefaultColor returns the built-in color for r. Characters outside the table
// get a stable color derived from a hash of the rune.
func DefaultColor(r rune) color.RGBA {
	if c, ok := defaultColors[r]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(string(r)))
	sum := h.Sum32()
	return color.RGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}
}
