// Package varmorph performs binary morphology with a structuring element that
// varies by horizontal band of rows. This suits perspective camera scenes,
// where distant rows near the top of the frame need a smaller neighborhood
// than near rows at the bottom.
//
// Each band's primitive is evaluated against the whole image and the output
// rows are then taken from the pass belonging to their band, so pixels next
// to a band boundary see their real neighbors from the adjacent band.
//
// Usage:
//
//	m := varmorph.New(nil)
//	m.AddBand(8, 1, models.Diamond)
//	m.AddBand(15, 2, models.Square)
//	if err := m.Setup(binimg.Shape{Rows: 15, Cols: 10}); err != nil {
//		return err
//	}
//	eroded, err := m.BinaryErosion(img)
package varmorph

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"variablemorph/internal/models"
	"variablemorph/pkg/binimg"
	"variablemorph/pkg/config"
	"variablemorph/pkg/morphology"
	"variablemorph/pkg/selem"
)

// Params holds the execution parameters of a morpher
type Params struct {
	// Workers bounds how many per-band passes run concurrently.
	// Zero or negative means runtime.NumCPU().
	Workers int

	// Logger receives debug output. Nil means log.Default().
	Logger *log.Logger
}

// VariableMorpher applies banded binary morphology.
//
// Bands are added while the morpher is unconfigured. Setup locks the image
// shape and builds the structuring elements, after which the operations may
// run any number of times, concurrently if desired. AddBand and Setup must
// not be interleaved with running operations.
type VariableMorpher struct {
	mu sync.RWMutex

	workers int
	logger  *log.Logger

	table BandTable
	cache *selem.Cache

	// Populated by Setup
	ready    bool
	shape    binimg.Shape
	ranges   []models.RowRange
	elements []*selem.Element

	// distinct holds one element per unique mask; passOf maps each band to
	// its entry in distinct
	distinct []*selem.Element
	passOf   []int
}

// New creates an unconfigured morpher
func New(params *Params) *VariableMorpher {
	if params == nil {
		params = &Params{}
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := params.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &VariableMorpher{
		workers: workers,
		logger:  logger.WithPrefix("varmorph"),
		cache:   selem.NewCache(),
	}
}

// NewFromConfig creates a morpher with the bands listed in cfg. When cfg
// fixes an image size the morpher is also set up. A nil logger with verbose
// output enabled logs debug messages to stderr.
func NewFromConfig(cfg *config.Config, logger *log.Logger) (*VariableMorpher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil && cfg.Output.Verbose {
		logger = NewLogger(os.Stderr, log.DebugLevel)
	}

	m := New(&Params{Workers: cfg.Processing.NumWorkers, Logger: logger})
	for i, b := range cfg.Bands {
		if err := m.AddBand(b.RowLimit, b.Radius, b.Shape); err != nil {
			return nil, fmt.Errorf("band %d: %w", i, err)
		}
	}

	if cfg.HasImage() {
		if err := m.Setup(binimg.Shape{Rows: cfg.Image.Rows, Cols: cfg.Image.Cols}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddBand appends a band covering the rows from the previous band's limit
// up to rowLimit (exclusive)
func (m *VariableMorpher) AddBand(rowLimit, radius int, shape models.Shape) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return ErrAlreadySetup
	}
	if err := m.table.Add(rowLimit, radius, shape); err != nil {
		return err
	}
	m.logger.Debug("band added", "rowLimit", rowLimit, "radius", radius, "shape", shape)
	return nil
}

// Setup resolves the bands against shape.Rows and builds one structuring
// element per band. On failure the morpher is left unconfigured.
func (m *VariableMorpher) Setup(shape binimg.Shape) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reset()

	if shape.Cols < 0 {
		return fmt.Errorf("%w: negative column count %d", ErrConfiguration, shape.Cols)
	}

	ranges, err := m.table.Resolve(shape.Rows)
	if err != nil {
		return err
	}

	bands := m.table.bands
	elements := make([]*selem.Element, len(bands))
	passOf := make([]int, len(bands))
	var distinct []*selem.Element

	for i, b := range bands {
		e, err := m.cache.Get(b.Shape, b.Radius)
		if err != nil {
			return fmt.Errorf("%w: band %d: %v", ErrInvalidBand, i, err)
		}
		elements[i] = e

		// equal masks share a pass even across shapes, e.g. radius 0
		j := len(distinct)
		for k, d := range distinct {
			if d.Equal(e) {
				j = k
				break
			}
		}
		if j == len(distinct) {
			distinct = append(distinct, e)
		}
		passOf[i] = j
	}

	m.shape = shape
	m.ranges = ranges
	m.elements = elements
	m.distinct = distinct
	m.passOf = passOf
	m.ready = true

	m.logger.Debug("setup complete",
		"shape", shape,
		"bands", len(bands),
		"passes", len(distinct))
	for i, r := range ranges {
		m.logger.Debug("band", "index", i, "rows", r, "shape", bands[i].Shape, "radius", bands[i].Radius)
	}
	return nil
}

func (m *VariableMorpher) reset() {
	m.ready = false
	m.shape = binimg.Shape{}
	m.ranges = nil
	m.elements = nil
	m.distinct = nil
	m.passOf = nil
}

// BinaryErosion erodes img using each row's band element
func (m *VariableMorpher) BinaryErosion(img *binimg.Image) (*binimg.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(img); err != nil {
		return nil, fmt.Errorf("erosion: %w", err)
	}
	return m.compose("erosion", img, morphology.Erode), nil
}

// BinaryDilation dilates img using each row's band element
func (m *VariableMorpher) BinaryDilation(img *binimg.Image) (*binimg.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(img); err != nil {
		return nil, fmt.Errorf("dilation: %w", err)
	}
	return m.compose("dilation", img, morphology.Dilate), nil
}

// BinaryOpening opens img using each row's band element. Every pass is a
// whole-image opening (erosion then dilation with the same element) and the
// rows are stitched afterwards, so the result never gains foreground.
func (m *VariableMorpher) BinaryOpening(img *binimg.Image) (*binimg.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(img); err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	return m.compose("opening", img, openPass), nil
}

// BinaryClosing closes img using each row's band element, one whole-image
// closing (dilation then erosion) per element before stitching. Since pixels
// outside the image are background, foreground within an element's radius
// of the image edge may be lost.
func (m *VariableMorpher) BinaryClosing(img *binimg.Image) (*binimg.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.check(img); err != nil {
		return nil, fmt.Errorf("closing: %w", err)
	}
	return m.compose("closing", img, closePass), nil
}

func openPass(img *binimg.Image, el *selem.Element) *binimg.Image {
	return morphology.Dilate(morphology.Erode(img, el), el)
}

func closePass(img *binimg.Image, el *selem.Element) *binimg.Image {
	return morphology.Erode(morphology.Dilate(img, el), el)
}

func (m *VariableMorpher) check(img *binimg.Image) error {
	if !m.ready {
		return ErrNotReady
	}
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrShapeMismatch)
	}
	if img.Shape() != m.shape {
		return fmt.Errorf("%w: got %v, configured %v", ErrShapeMismatch, img.Shape(), m.shape)
	}
	if len(img.Pix) != img.Rows*img.Cols {
		return fmt.Errorf("%w: %d pixels for shape %v", ErrShapeMismatch, len(img.Pix), img.Shape())
	}
	return nil
}

// compose runs op once over the whole image per distinct element, then
// copies each band's rows out of its own pass into a fresh image
func (m *VariableMorpher) compose(name string, img *binimg.Image, op morphology.Op) *binimg.Image {
	start := time.Now()
	passes := m.runPasses(img, op)

	out := binimg.New(img.Rows, img.Cols)
	cols := img.Cols
	for i, r := range m.ranges {
		src := passes[m.passOf[i]]
		copy(out.Pix[r.Start*cols:r.End*cols], src.Pix[r.Start*cols:r.End*cols])
	}

	m.logger.Debug("banded "+name,
		"passes", len(passes),
		"elapsed", time.Since(start).Round(time.Microsecond))
	return out
}

// runPasses evaluates op for every distinct element, at most m.workers at a time
func (m *VariableMorpher) runPasses(img *binimg.Image, op morphology.Op) []*binimg.Image {
	passes := make([]*binimg.Image, len(m.distinct))
	if len(m.distinct) == 1 || m.workers == 1 {
		for i, e := range m.distinct {
			passes[i] = op(img, e)
		}
		return passes
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, m.workers)
	for i, e := range m.distinct {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, el *selem.Element) {
			defer wg.Done()
			defer func() { <-sem }()
			passes[idx] = op(img, el)
		}(i, e)
	}
	wg.Wait()
	return passes
}

// Ready reports whether Setup has succeeded
func (m *VariableMorpher) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Shape returns the image shape locked by Setup
func (m *VariableMorpher) Shape() binimg.Shape {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shape
}

// Bands returns the configured bands in insertion order
func (m *VariableMorpher) Bands() []models.Band {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Bands()
}

// Ranges returns the resolved row range of every band, or nil before Setup
func (m *VariableMorpher) Ranges() []models.RowRange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ranges == nil {
		return nil
	}
	out := make([]models.RowRange, len(m.ranges))
	copy(out, m.ranges)
	return out
}

// Element returns the structuring element of band i, or nil before Setup
func (m *VariableMorpher) Element(i int) *selem.Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.elements) {
		return nil
	}
	return m.elements[i]
}
