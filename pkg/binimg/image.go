// Package binimg provides the boolean image type the morphology packages
// operate on, along with conversions from and to the standard image types.
package binimg

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

// Shape is the (rows, cols) size of an image
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// Image is a binary image stored as a 1D array in row-major order
type Image struct {
	// Pix holds Rows*Cols pixels, true for foreground
	Pix []bool

	Rows int
	Cols int
}

// New allocates an all-background image
func New(rows, cols int) *Image {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("binimg: negative dimensions %dx%d", rows, cols))
	}
	return &Image{
		Pix:  make([]bool, rows*cols),
		Rows: rows,
		Cols: cols,
	}
}

// FromRows builds an image from a slice of equally long rows
func FromRows(rows [][]bool) (*Image, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	img := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != img.Cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), img.Cols)
		}
		copy(img.Row(r), row)
	}
	return img, nil
}

// FromBytes builds an image from 0/1 rows; any non-zero value is foreground
func FromBytes(rows [][]uint8) (*Image, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	img := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != img.Cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), img.Cols)
		}
		for c, v := range row {
			img.Pix[r*img.Cols+c] = v != 0
		}
	}
	return img, nil
}

// FromImage thresholds any image into a binary one. Pixels whose gray level
// is at least threshold become foreground.
func FromImage(src image.Image, threshold uint8) *Image {
	gray := imaging.Grayscale(src)
	bounds := gray.Bounds()
	img := New(bounds.Dy(), bounds.Dx())
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Cols; x++ {
			// imaging returns NRGBA with R == G == B after Grayscale
			i := y*gray.Stride + x*4
			img.Pix[y*img.Cols+x] = gray.Pix[i] >= threshold
		}
	}
	return img
}

// ToGray renders the image with foreground at 255 and background at 0
func (img *Image) ToGray() *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, img.Cols, img.Rows))
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Cols; x++ {
			if img.Pix[y*img.Cols+x] {
				dst.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return dst
}

// Shape returns the image size
func (img *Image) Shape() Shape {
	return Shape{Rows: img.Rows, Cols: img.Cols}
}

// In reports whether (r, c) lies inside the image
func (img *Image) In(r, c int) bool {
	return r >= 0 && r < img.Rows && c >= 0 && c < img.Cols
}

// At returns the pixel at (r, c). Out-of-bounds pixels are background.
func (img *Image) At(r, c int) bool {
	if !img.In(r, c) {
		return false
	}
	return img.Pix[r*img.Cols+c]
}

// Set assigns the pixel at (r, c)
func (img *Image) Set(r, c int, v bool) {
	img.Pix[r*img.Cols+c] = v
}

// Row returns row r as a slice aliasing the image storage
func (img *Image) Row(r int) []bool {
	return img.Pix[r*img.Cols : (r+1)*img.Cols]
}

// Clone returns a deep copy
func (img *Image) Clone() *Image {
	out := New(img.Rows, img.Cols)
	copy(out.Pix, img.Pix)
	return out
}

// Equal reports whether both images have the same shape and pixels
func (img *Image) Equal(other *Image) bool {
	if other == nil || img.Shape() != other.Shape() {
		return false
	}
	for i, v := range img.Pix {
		if other.Pix[i] != v {
			return false
		}
	}
	return true
}

// Count returns the number of foreground pixels
func (img *Image) Count() int {
	n := 0
	for _, v := range img.Pix {
		if v {
			n++
		}
	}
	return n
}

// String renders the image as rows of 0 and 1
func (img *Image) String() string {
	var sb strings.Builder
	for r := 0; r < img.Rows; r++ {
		for c, v := range img.Row(r) {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
