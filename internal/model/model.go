// Package model loads rewrite programs from YAML: a vocabulary, an initial
// grid layout and a sequence tree.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrInvalidModel wraps every validation failure of a model file.
var ErrInvalidModel = errors.New("invalid model")

// Model is the on-disk description of a rewrite program.
type Model struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Dims        []int             `yaml:"dims"`
	Symbols     string            `yaml:"symbols"`
	Colors      map[string]string `yaml:"colors"`
	// Fill is the symbol every cell starts as; defaults to the first symbol.
	Fill        string      `yaml:"fill"`
	Place       []Placement `yaml:"place"`
	Temperature float64     `yaml:"temperature"`
	Sequence    Node        `yaml:"sequence"`
}

// Placement writes one symbol into the initial grid. At may use negative
// coordinates to count from the far edge. An empty At means the centre;
// Random picks a uniformly random fill cell instead.
type Placement struct {
	Symbol string `yaml:"symbol"`
	At     []int  `yaml:"at"`
	Random bool   `yaml:"random"`
}

// Node is one sequence node. Kind is one, relative, all or ordered.
type Node struct {
	Kind        string     `yaml:"kind"`
	Rules       []string   `yaml:"rules"`
	Count       int        `yaml:"count"`
	PerCell     float64    `yaml:"per_cell"`
	Min         int        `yaml:"min"`
	Sequential  bool       `yaml:"sequential"`
	Temperature float64    `yaml:"temperature"`
	Infer       []PathSpec `yaml:"infer"`
	Children    []Node     `yaml:"children"`
}

// PathSpec steers a node: grow From cells across Through cells toward To
// cells.
type PathSpec struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Through     string  `yaml:"through"`
	Invert      bool    `yaml:"invert"`
	Temperature float64 `yaml:"temperature"`
}

// Parse decodes and validates a model. Unknown fields are rejected.
func Parse(data []byte) (*Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads a model file from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks the parts of a model that do not need a vocabulary.
func (m *Model) Validate() error {
	if m.Symbols == "" {
		return fmt.Errorf("%w: no symbols", ErrInvalidModel)
	}
	if len(m.Dims) == 0 {
		return fmt.Errorf("%w: no dims", ErrInvalidModel)
	}
	for _, d := range m.Dims {
		if d <= 0 {
			return fmt.Errorf("%w: dims %v", ErrInvalidModel, m.Dims)
		}
	}
	if m.Fill != "" && utf8.RuneCountInString(m.Fill) != 1 {
		return fmt.Errorf("%w: fill %q is not one symbol", ErrInvalidModel, m.Fill)
	}
	for i, p := range m.Place {
		if utf8.RuneCountInString(p.Symbol) != 1 {
			return fmt.Errorf("%w: place[%d] symbol %q", ErrInvalidModel, i, p.Symbol)
		}
		if len(p.At) != 0 && len(p.At) != len(m.Dims) {
			return fmt.Errorf("%w: place[%d] has %d coordinates for rank %d", ErrInvalidModel, i, len(p.At), len(m.Dims))
		}
	}
	for k, v := range m.Colors {
		if utf8.RuneCountInString(k) != 1 {
			return fmt.Errorf("%w: color key %q", ErrInvalidModel, k)
		}
		if _, err := ParseHex(v); err != nil {
			return fmt.Errorf("%w: color %q: %v", ErrInvalidModel, k, err)
		}
	}
	return m.Sequence.validate("sequence")
}

func (n *Node) validate(at string) error {
	switch n.Kind {
	case "one", "relative", "all":
		if len(n.Rules) == 0 {
			return fmt.Errorf("%w: %s: %s node without rules", ErrInvalidModel, at, n.Kind)
		}
		if len(n.Children) != 0 {
			return fmt.Errorf("%w: %s: %s node cannot have children", ErrInvalidModel, at, n.Kind)
		}
	case "ordered":
		if len(n.Children) == 0 {
			return fmt.Errorf("%w: %s: ordered node without children", ErrInvalidModel, at)
		}
		if len(n.Rules) != 0 {
			return fmt.Errorf("%w: %s: ordered node cannot have rules", ErrInvalidModel, at)
		}
		for i := range n.Children {
			if err := n.Children[i].validate(fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
				return err
			}
		}
	case "":
		return fmt.Errorf("%w: %s: missing kind", ErrInvalidModel, at)
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidModel, at, n.Kind)
	}
	return nil
}

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	c := color.RGBA{A: 0xFF}
	var err error
	switch len(s) {
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("want 6 or 8 hex digits, got %q", s)
	}
	return c, err
}
