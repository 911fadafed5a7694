// Package framefilter rejects visually flat frames before they are sent to
// the OCR service.
package framefilter

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Filter accepts a frame when the spread between its darkest and brightest
// grayscale pixel exceeds Threshold. The zero value accepts any frame with
// any variation at all.
type Filter struct {
	Threshold float64
}

// AcceptExtrema applies the threshold to precomputed extrema.
func (f Filter) AcceptExtrema(lo, hi uint8) bool {
	return float64(hi)-float64(lo) > f.Threshold
}

// Accept reports whether img is worth sending to OCR.
func (f Filter) Accept(img image.Image) bool {
	lo, hi := Extrema(img)
	return f.AcceptExtrema(lo, hi)
}

// AcceptFile decodes the frame at path and applies the filter.
func (f Filter) AcceptFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return false, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return f.Accept(img), nil
}

// Extrema returns the minimum and maximum luminance of img after grayscale
// conversion. An empty image reports (0, 0).
func Extrema(img image.Image) (lo, hi uint8) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0, 0
	}
	lo, hi = 255, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			if lo == 0 && hi == 255 {
				return lo, hi
			}
		}
	}
	return lo, hi
}
