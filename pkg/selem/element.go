// Package selem builds the structuring elements used by the morphology
// primitives. An element is a square 0/1 mask of side 2*radius+1 centered
// on the pixel being processed.
package selem

import (
	"fmt"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"variablemorph/internal/models"
)

// Offset is a (row, col) displacement from the center of an element
type Offset struct {
	DR, DC int
}

// Element is an immutable structuring element
type Element struct {
	shape  models.Shape
	radius int

	// mask holds 1 for cells that belong to the neighborhood
	mask *mat.Dense

	// offsets is derived from mask and lists the member cells in row-major order
	offsets []Offset
}

// New creates the structuring element for (shape, radius).
// Square elements include every cell within Chebyshev distance radius of the
// center, diamond elements every cell within Manhattan distance radius.
// A radius of zero yields the single-pixel identity element.
func New(shape models.Shape, radius int) (*Element, error) {
	if radius < 0 {
		return nil, fmt.Errorf("radius must be non-negative, got %d", radius)
	}

	var member func(dr, dc int) bool
	switch shape {
	case models.Diamond:
		member = func(dr, dc int) bool { return abs(dr)+abs(dc) <= radius }
	case models.Square:
		member = func(dr, dc int) bool { return abs(dr) <= radius && abs(dc) <= radius }
	default:
		return nil, fmt.Errorf("unknown shape %v", shape)
	}

	size := 2*radius + 1
	e := &Element{
		shape:  shape,
		radius: radius,
		mask:   mat.NewDense(size, size, nil),
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if member(i-radius, j-radius) {
				e.mask.Set(i, j, 1)
			}
		}
	}
	e.offsets = maskOffsets(e.mask)
	return e, nil
}

// maskOffsets lists the non-zero cells of a square mask as displacements
// from its center, in row-major order
func maskOffsets(mask *mat.Dense) []Offset {
	size, _ := mask.Dims()
	center := size / 2
	var offsets []Offset
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if mask.At(i, j) != 0 {
				offsets = append(offsets, Offset{DR: i - center, DC: j - center})
			}
		}
	}
	return offsets
}

// Shape returns the element's geometry
func (e *Element) Shape() models.Shape { return e.shape }

// Radius returns the element's half-width
func (e *Element) Radius() int { return e.radius }

// Size returns the side length of the mask, 2*radius+1
func (e *Element) Size() int { return 2*e.radius + 1 }

// Contains reports whether the displacement (dr, dc) is part of the element
func (e *Element) Contains(dr, dc int) bool {
	if abs(dr) > e.radius || abs(dc) > e.radius {
		return false
	}
	return e.mask.At(dr+e.radius, dc+e.radius) != 0
}

// Offsets returns the member displacements. The slice must not be modified.
func (e *Element) Offsets() []Offset {
	return e.offsets
}

// Dense returns a copy of the 0/1 mask
func (e *Element) Dense() *mat.Dense {
	return mat.DenseCopyOf(e.mask)
}

// Equal reports whether both elements cover the same cells
func (e *Element) Equal(other *Element) bool {
	if other == nil || e.Size() != other.Size() {
		return false
	}
	return mat.Equal(e.mask, other.mask)
}

// String renders the mask as rows of 0 and 1
func (e *Element) String() string {
	var sb strings.Builder
	size := e.Size()
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.0f", e.mask.At(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

type cacheKey struct {
	shape  models.Shape
	radius int
}

// Cache shares elements with the same (shape, radius). It is safe for
// concurrent use.
type Cache struct {
	mu       sync.Mutex
	elements map[cacheKey]*Element
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{elements: make(map[cacheKey]*Element)}
}

// Get returns the cached element for (shape, radius), building it on first use
func (c *Cache) Get(shape models.Shape, radius int) (*Element, error) {
	key := cacheKey{shape: shape, radius: radius}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.elements[key]; ok {
		return e, nil
	}
	e, err := New(shape, radius)
	if err != nil {
		return nil, err
	}
	c.elements[key] = e
	return e, nil
}

// Len returns the number of distinct elements built so far
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elements)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
