package rules

import (
	"errors"
	"testing"

	"mad-rewrite/internal/grid"
	"mad-rewrite/internal/vocab"
)

func testVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.FromChars("BWRG", nil)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestParseRejectsMalformedRules(t *testing.T) {
	v := testVocab(t)
	cases := []struct {
		src  string
		want error
	}{
		{"BW>W", ErrLengthMismatch},
		{"BQ>WB", ErrUnknownSymbol},
		{">", ErrEmptyRule},
	}
	for _, tc := range cases {
		_, err := ParseArrow(v, tc.src)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.src, err, tc.want)
		}
		var re *RuleError
		if !errors.As(err, &re) || re.Source == "" {
			t.Fatalf("%q: error should carry the rule source, got %v", tc.src, err)
		}
	}
	if _, err := ParseArrow(v, "BW"); err == nil {
		t.Fatal("missing separator must fail")
	}
	if _, err := New([]Slot{Of(vocab.Invalid)}, []Slot{Wildcard}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("invalid code accepted: %v", err)
	}
}

func TestRuleEqualityIsStructural(t *testing.T) {
	v := testVocab(t)
	a := MustParse(v, "B*W>*RB")
	b := MustParse(v, "B*W>*RB")
	c := MustParse(v, "B*W>*RW")
	if !a.Equal(b) || a.Key() != b.Key() {
		t.Fatal("identical rules must compare equal")
	}
	if a.Equal(c) || a.Key() == c.Key() {
		t.Fatal("different outputs must not compare equal")
	}
	if got := a.Format(v); got != "B*W>*RB" {
		t.Fatalf("Format = %q", got)
	}
}

func TestApplyAndExecuteRespectWildcards(t *testing.T) {
	v := testVocab(t)
	g, err := grid.FromCells([]uint8{0, 2, 1}, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	r := MustParse(v, "B*W>*GB")
	line := grid.Line{Start: 0, Dir: grid.Direction{Axis: 0, Sign: 1}, Len: 3}
	if !Applies(g, r, line) {
		t.Fatal("wildcard input slot must match anything")
	}
	if !Execute(g, r, line) {
		t.Fatal("Execute should report a change")
	}
	if got := v.Decode(g.Cells()); got != "BGB" {
		t.Fatalf("after execute %q, want BGB", got)
	}
	reverse := grid.Line{Start: 2, Dir: grid.Direction{Axis: 0, Sign: -1}, Len: 3}
	if Applies(g, MustParse(v, "BWB>BWB"), reverse) {
		t.Fatal("reverse line should not match BWB on BGB")
	}
	if Execute(g, MustParse(v, "***>B*B"), reverse) {
		t.Fatal("writing identical values must not report a change")
	}
}
