// Package morphology implements the fixed-neighborhood binary morphology
// primitives. Pixels outside the image are treated as background for both
// erosion and dilation, so foreground touching the border erodes away.
package morphology

import (
	"variablemorph/pkg/binimg"
	"variablemorph/pkg/selem"
)

// Erode returns a new image where a pixel is foreground only if every
// neighbor selected by el is foreground in img
func Erode(img *binimg.Image, el *selem.Element) *binimg.Image {
	out := binimg.New(img.Rows, img.Cols)
	offsets := el.Offsets()
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			hit := true
			for _, o := range offsets {
				if !img.At(r+o.DR, c+o.DC) {
					hit = false
					break
				}
			}
			out.Pix[r*img.Cols+c] = hit
		}
	}
	return out
}

// Dilate returns a new image where a pixel is foreground if any neighbor
// selected by the reflection of el is foreground in img
func Dilate(img *binimg.Image, el *selem.Element) *binimg.Image {
	out := binimg.New(img.Rows, img.Cols)
	offsets := el.Offsets()
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			hit := false
			for _, o := range offsets {
				if img.At(r-o.DR, c-o.DC) {
					hit = true
					break
				}
			}
			out.Pix[r*img.Cols+c] = hit
		}
	}
	return out
}

// Op is a full-image binary morphology primitive
type Op func(img *binimg.Image, el *selem.Element) *binimg.Image
