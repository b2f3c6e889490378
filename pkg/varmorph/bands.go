package varmorph

import (
	"fmt"

	"variablemorph/internal/models"
)

// BandTable is an ordered list of bands, top of the image first.
// Coverage is only checked by Resolve, once the image height is known.
type BandTable struct {
	bands []models.Band
}

// Add appends a band. rowLimit must be greater than the previous band's
// limit (or than zero for the first band).
func (t *BandTable) Add(rowLimit, radius int, shape models.Shape) error {
	prev := 0
	if n := len(t.bands); n > 0 {
		prev = t.bands[n-1].RowLimit
	}
	if rowLimit <= prev {
		return fmt.Errorf("%w: row limit %d must be greater than %d", ErrInvalidBand, rowLimit, prev)
	}
	if radius < 0 {
		return fmt.Errorf("%w: radius must be non-negative, got %d", ErrInvalidBand, radius)
	}
	if !shape.Valid() {
		return fmt.Errorf("%w: unknown shape %v", ErrInvalidBand, shape)
	}

	t.bands = append(t.bands, models.Band{RowLimit: rowLimit, Radius: radius, Shape: shape})
	return nil
}

// Len returns the number of bands
func (t *BandTable) Len() int {
	return len(t.bands)
}

// Bands returns a copy of the bands in insertion order
func (t *BandTable) Bands() []models.Band {
	out := make([]models.Band, len(t.bands))
	copy(out, t.bands)
	return out
}

// Resolve converts the cumulative row limits into half-open row ranges.
// The last limit must equal numRows so that every row belongs to exactly
// one band.
func (t *BandTable) Resolve(numRows int) ([]models.RowRange, error) {
	if len(t.bands) == 0 {
		return nil, fmt.Errorf("%w: no bands added", ErrConfiguration)
	}
	if last := t.bands[len(t.bands)-1].RowLimit; last != numRows {
		return nil, fmt.Errorf("%w: bands cover %d rows but the image has %d", ErrConfiguration, last, numRows)
	}

	ranges := make([]models.RowRange, len(t.bands))
	start := 0
	for i, b := range t.bands {
		ranges[i] = models.RowRange{Start: start, End: b.RowLimit}
		start = b.RowLimit
	}
	return ranges, nil
}
