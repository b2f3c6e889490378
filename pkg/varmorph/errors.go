package varmorph

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when the band table cannot partition the
	// rows of the image: no bands were added or the last row limit differs
	// from the image height.
	ErrConfiguration = errors.New("invalid band configuration")

	// ErrInvalidBand is returned by AddBand for a non-increasing row limit,
	// a negative radius or an unknown shape.
	ErrInvalidBand = errors.New("invalid band")

	// ErrNotReady is returned when an operation runs before a successful Setup.
	ErrNotReady = errors.New("morpher is not set up")

	// ErrShapeMismatch is returned when an image does not match the shape
	// locked by Setup.
	ErrShapeMismatch = errors.New("image shape mismatch")

	// ErrAlreadySetup is returned by AddBand once the bands are frozen.
	ErrAlreadySetup = fmt.Errorf("bands are frozen after setup: %w", ErrConfiguration)
)
