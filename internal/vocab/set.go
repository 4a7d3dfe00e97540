package vocab

import "fmt"

// Set is a bitset over the 256 possible cell codes.
type Set [4]uint64

// SetOf returns a set containing codes.
func SetOf(codes ...uint8) Set {
	var s Set
	for _, c := range codes {
		s = s.Add(c)
	}
	return s
}

// ParseSet converts display characters to a set of codes.
func (v *Vocabulary) ParseSet(chars string) (Set, error) {
	var s Set
	for _, r := range chars {
		c, ok := v.byChar[r]
		if !ok {
			return Set{}, fmt.Errorf("unknown symbol %q", r)
		}
		s = s.Add(c)
	}
	return s, nil
}

// Add returns s with code included.
func (s Set) Add(code uint8) Set {
	s[code>>6] |= 1 << (code & 63)
	return s
}

// Has reports whether code is in the set.
func (s Set) Has(code uint8) bool {
	return s[code>>6]&(1<<(code&63)) != 0
}

// Union returns the union of both sets.
func (s Set) Union(o Set) Set {
	for i := range s {
		s[i] |= o[i]
	}
	return s
}

// Empty reports whether no code is set.
func (s Set) Empty() bool {
	return s[0]|s[1]|s[2]|s[3] == 0
}
