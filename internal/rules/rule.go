package rules

import (
	"errors"
	"fmt"
	"strings"

	"mad-rewrite/internal/vocab"
)

// Slot is one position of a rule pattern: a cell code, or Wildcard.
type Slot uint16

// Wildcard matches any cell on the input side and leaves the cell untouched on
// the output side.
const Wildcard Slot = 0x100

// Code returns the cell code held by the slot.
func (s Slot) Code() uint8 { return uint8(s) }

// IsWildcard reports whether the slot is the wildcard.
func (s Slot) IsWildcard() bool { return s == Wildcard }

// Of converts a cell code to a slot.
func Of(code uint8) Slot { return Slot(code) }

var (
	// ErrEmptyRule is returned for zero-length patterns.
	ErrEmptyRule = errors.New("rule must have at least one cell")
	// ErrLengthMismatch is returned when input and output lengths differ.
	ErrLengthMismatch = errors.New("rule input and output lengths differ")
	// ErrUnknownSymbol is returned when a pattern uses a character outside the vocabulary.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrInvalidCode is returned when a pattern uses the reserved Invalid code.
	ErrInvalidCode = errors.New("rule uses the reserved invalid code")
)

// RuleError describes a malformed rule at construction time.
type RuleError struct {
	Source string
	Err    error
}

func (e *RuleError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("rule %q: %v", e.Source, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Rule is an immutable pair of equal-length patterns.
type Rule struct {
	input  []Slot
	output []Slot
}

// New validates and copies the patterns.
func New(input, output []Slot) (Rule, error) {
	if len(input) == 0 && len(output) == 0 {
		return Rule{}, &RuleError{Err: ErrEmptyRule}
	}
	if len(input) != len(output) {
		return Rule{}, &RuleError{Err: fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(input), len(output))}
	}
	for _, s := range append(append([]Slot(nil), input...), output...) {
		if s != Wildcard && (s > 0xFF || uint8(s) == vocab.Invalid) {
			return Rule{}, &RuleError{Err: ErrInvalidCode}
		}
	}
	return Rule{
		input:  append([]Slot(nil), input...),
		output: append([]Slot(nil), output...),
	}, nil
}

// Parse builds a rule from display characters. The vocab.Wildcard character
// marks a wildcard slot on either side.
func Parse(v *vocab.Vocabulary, input, output string) (Rule, error) {
	src := input + ">" + output
	in, err := parseSlots(v, input)
	if err != nil {
		return Rule{}, &RuleError{Source: src, Err: err}
	}
	out, err := parseSlots(v, output)
	if err != nil {
		return Rule{}, &RuleError{Source: src, Err: err}
	}
	r, err := New(in, out)
	if err != nil {
		var re *RuleError
		if errors.As(err, &re) {
			re.Source = src
		}
		return Rule{}, err
	}
	return r, nil
}

// ParseArrow parses the compact "IN>OUT" form, e.g. "BW>WB".
func ParseArrow(v *vocab.Vocabulary, s string) (Rule, error) {
	in, out, ok := strings.Cut(s, ">")
	if !ok {
		return Rule{}, &RuleError{Source: s, Err: errors.New("missing '>' between input and output")}
	}
	return Parse(v, strings.TrimSpace(in), strings.TrimSpace(out))
}

// MustParse is ParseArrow for rule tables known to be valid.
func MustParse(v *vocab.Vocabulary, s string) Rule {
	r, err := ParseArrow(v, s)
	if err != nil {
		panic(err)
	}
	return r
}

func parseSlots(v *vocab.Vocabulary, s string) ([]Slot, error) {
	slots := make([]Slot, 0, len(s))
	for _, r := range s {
		if r == vocab.Wildcard {
			slots = append(slots, Wildcard)
			continue
		}
		code, ok := v.Code(r)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSymbol, r)
		}
		slots = append(slots, Of(code))
	}
	return slots, nil
}

// Len returns the pattern length.
func (r Rule) Len() int { return len(r.input) }

// In returns the input slot at i.
func (r Rule) In(i int) Slot { return r.input[i] }

// Out returns the output slot at i.
func (r Rule) Out(i int) Slot { return r.output[i] }

// Equal reports structural equality.
func (r Rule) Equal(o Rule) bool {
	if len(r.input) != len(o.input) {
		return false
	}
	for i := range r.input {
		if r.input[i] != o.input[i] || r.output[i] != o.output[i] {
			return false
		}
	}
	return true
}

// Key returns a string usable as a map key; equal rules share a key.
func (r Rule) Key() string {
	var b strings.Builder
	for _, s := range r.input {
		writeSlot(&b, s)
	}
	b.WriteByte('>')
	for _, s := range r.output {
		writeSlot(&b, s)
	}
	return b.String()
}

// Format renders the rule with display characters.
func (r Rule) Format(v *vocab.Vocabulary) string {
	var b strings.Builder
	for _, s := range r.input {
		b.WriteRune(slotRune(v, s))
	}
	b.WriteByte('>')
	for _, s := range r.output {
		b.WriteRune(slotRune(v, s))
	}
	return b.String()
}

func slotRune(v *vocab.Vocabulary, s Slot) rune {
	if s.IsWildcard() {
		return vocab.Wildcard
	}
	return v.Char(s.Code())
}

func writeSlot(b *strings.Builder, s Slot) {
	if s.IsWildcard() {
		b.WriteString("*,")
		return
	}
	fmt.Fprintf(b, "%d,", s.Code())
}
