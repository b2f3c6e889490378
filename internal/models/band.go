package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shape selects the geometry of a band's structuring element
type Shape int

const (
	// Diamond covers every cell within Manhattan distance radius of the center
	Diamond Shape = iota
	// Square covers every cell within Chebyshev distance radius of the center
	Square
)

// String returns the configuration name of the shape
func (s Shape) String() string {
	switch s {
	case Diamond:
		return "diamond"
	case Square:
		return "square"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Valid reports whether s is one of the known shapes
func (s Shape) Valid() bool {
	return s == Diamond || s == Square
}

// ParseShape converts a configuration name into a Shape
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "diamond":
		return Diamond, nil
	case "square":
		return Square, nil
	}
	return 0, fmt.Errorf("unknown shape %q (must be diamond or square)", name)
}

// MarshalYAML writes the shape by name
func (s Shape) MarshalYAML() (interface{}, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid shape %d", int(s))
	}
	return s.String(), nil
}

// UnmarshalYAML reads the shape by name
func (s *Shape) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseShape(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Band pairs a cumulative row limit with a structuring element description.
// Rows below RowLimit that are not claimed by an earlier band belong to it.
type Band struct {
	// RowLimit is the exclusive upper row bound, counted from the top of the image
	RowLimit int `yaml:"rowLimit"`

	// Radius is the half-width of the structuring element
	Radius int `yaml:"radius"`

	// Shape is the neighborhood geometry
	Shape Shape `yaml:"shape"`
}

// RowRange is the half-open interval of rows [Start, End) owned by a band
type RowRange struct {
	Start int
	End   int
}

// Len returns the number of rows in the range
func (r RowRange) Len() int {
	return r.End - r.Start
}

// Contains reports whether row lies inside the range
func (r RowRange) Contains(row int) bool {
	return row >= r.Start && row < r.End
}

func (r RowRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
