package varmorph

import (
	"errors"
	"testing"

	"variablemorph/internal/models"
)

// TestBandTableAdd checks the per-band constraints enforced at add time
func TestBandTableAdd(t *testing.T) {
	tests := []struct {
		name     string
		rowLimit int
		radius   int
		shape    models.Shape
		wantErr  bool
	}{
		{"zero row limit", 0, 1, models.Square, true},
		{"negative radius", 5, -1, models.Square, true},
		{"unknown shape", 5, 1, models.Shape(4), true},
		{"first band", 5, 0, models.Diamond, false},
		{"equal row limit", 5, 1, models.Square, true},
		{"smaller row limit", 3, 1, models.Square, true},
		{"second band", 9, 2, models.Square, false},
	}

	var table BandTable
	for _, tt := range tests {
		err := table.Add(tt.rowLimit, tt.radius, tt.shape)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidBand) {
				t.Errorf("%s: expected ErrInvalidBand, got %v", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}

	if table.Len() != 2 {
		t.Fatalf("Expected 2 bands after rejected adds, got %d", table.Len())
	}
	bands := table.Bands()
	bands[0].Radius = 42
	if table.Bands()[0].Radius != 0 {
		t.Errorf("Bands returned a slice aliasing the table")
	}
}

// TestResolvePartition verifies ranges partition the rows in insertion order
func TestResolvePartition(t *testing.T) {
	layouts := [][]int{
		{1},
		{15},
		{8, 15},
		{1, 2, 3, 4},
		{10, 11, 40, 100},
	}

	for _, limits := range layouts {
		var table BandTable
		for _, l := range limits {
			if err := table.Add(l, 1, models.Square); err != nil {
				t.Fatalf("Add(%d) failed: %v", l, err)
			}
		}
		rows := limits[len(limits)-1]

		ranges, err := table.Resolve(rows)
		if err != nil {
			t.Fatalf("Resolve(%d) for %v failed: %v", rows, limits, err)
		}
		if len(ranges) != len(limits) {
			t.Fatalf("Expected %d ranges, got %d", len(limits), len(ranges))
		}

		owner := make([]int, rows)
		for i := range owner {
			owner[i] = -1
		}
		next := 0
		for i, r := range ranges {
			if r.Start != next || r.End != limits[i] || r.Len() <= 0 {
				t.Errorf("Range %d of %v: unexpected %v", i, limits, r)
			}
			for row := r.Start; row < r.End; row++ {
				if owner[row] != -1 {
					t.Errorf("Row %d claimed by bands %d and %d", row, owner[row], i)
				}
				owner[row] = i
			}
			next = r.End
		}
		for row, o := range owner {
			if o == -1 {
				t.Errorf("Row %d of %v not covered", row, limits)
			}
		}
	}
}

// TestResolveCoverage verifies any mismatch with the image height fails
func TestResolveCoverage(t *testing.T) {
	var empty BandTable
	if _, err := empty.Resolve(10); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for empty table, got %v", err)
	}

	var table BandTable
	table.Add(8, 1, models.Diamond)
	table.Add(15, 2, models.Square)

	for _, rows := range []int{0, 8, 14, 16, 100} {
		if _, err := table.Resolve(rows); !errors.Is(err, ErrConfiguration) {
			t.Errorf("Resolve(%d): expected ErrConfiguration, got %v", rows, err)
		}
	}
	if _, err := table.Resolve(15); err != nil {
		t.Errorf("Resolve(15) failed: %v", err)
	}
}
