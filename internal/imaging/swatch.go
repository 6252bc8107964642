package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fogleman/gg"
)

// Default swatch strip size in pixels.
const (
	DefaultSwatchWidth  = 500
	DefaultSwatchHeight = 100

	// MaxSwatchDimension caps either side of a swatch strip.
	MaxSwatchDimension = 4096
)

// ErrInvalidSwatchSize is returned by RenderSwatch for a strip larger than
// MaxSwatchDimension or narrower than the palette.
var ErrInvalidSwatchSize = errors.New("invalid swatch size")

// SwatchResult contains a rendered palette strip encoded as base64 PNG.
type SwatchResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// PNG holds the raw encoded bytes for callers that write files.
	PNG []byte `json:"-"`
}

// RenderSwatch draws the palette as equal-width vertical bars, left to right
// in palette order, each labelled with its hex code.
//
// Labels are black on light swatches and white on dark ones. A zero width or
// height selects the default size; neither may exceed MaxSwatchDimension.
func RenderSwatch(colors []ColorFrequency, width, height int) (*SwatchResult, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	if width <= 0 {
		width = DefaultSwatchWidth
	}
	if height <= 0 {
		height = DefaultSwatchHeight
	}
	if width > MaxSwatchDimension || height > MaxSwatchDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrInvalidSwatchSize, width, height, MaxSwatchDimension)
	}
	if width < len(colors) {
		return nil, fmt.Errorf("%w: width %d too small for %d colors", ErrInvalidSwatchSize, width, len(colors))
	}

	dc := gg.NewContext(width, height)
	barWidth := float64(width) / float64(len(colors))

	for i, c := range colors {
		x := float64(i) * barWidth
		dc.SetRGB255(int(c.RGB.R), int(c.RGB.G), int(c.RGB.B))
		dc.DrawRectangle(x, 0, barWidth, float64(height))
		dc.Fill()

		if Luminance(float64(c.RGB.R), float64(c.RGB.G), float64(c.RGB.B)) > 140 {
			dc.SetRGB(0, 0, 0)
		} else {
			dc.SetRGB(1, 1, 1)
		}
		dc.DrawStringAnchored(c.Hex, x+barWidth/2, float64(height)/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode swatch: %w", err)
	}

	return &SwatchResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		PNG:         buf.Bytes(),
	}, nil
}
