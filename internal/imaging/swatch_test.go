package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"testing"
)

func TestRenderSwatch(t *testing.T) {
	colors := []ColorFrequency{
		{Hex: "#ff0000", RGB: RGBColor{255, 0, 0}, Percentage: 60},
		{Hex: "#0000ff", RGB: RGBColor{0, 0, 255}, Percentage: 40},
	}

	result, err := RenderSwatch(colors, 200, 40)
	if err != nil {
		t.Fatalf("RenderSwatch failed: %v", err)
	}
	if result.Width != 200 || result.Height != 40 || result.MimeType != "image/png" {
		t.Errorf("result: %dx%d %s", result.Width, result.Height, result.MimeType)
	}

	raw, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	if !bytes.Equal(raw, result.PNG) {
		t.Error("ImageBase64 and PNG should hold the same bytes")
	}

	img, err := png.Decode(bytes.NewReader(result.PNG))
	if err != nil {
		t.Fatalf("invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 40 {
		t.Errorf("PNG size: got %dx%d", b.Dx(), b.Dy())
	}

	// Sample near the top edge, away from the labels.
	r, _, b, _ := img.At(50, 2).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Errorf("first bar: got r=%d b=%d, want red", r>>8, b>>8)
	}
	r, _, b, _ = img.At(150, 2).RGBA()
	if r>>8 != 0 || b>>8 != 255 {
		t.Errorf("second bar: got r=%d b=%d, want blue", r>>8, b>>8)
	}
}

func TestRenderSwatch_DefaultSize(t *testing.T) {
	result, err := RenderSwatch([]ColorFrequency{{Hex: "#808080", RGB: RGBColor{128, 128, 128}}}, 0, 0)
	if err != nil {
		t.Fatalf("RenderSwatch failed: %v", err)
	}
	if result.Width != DefaultSwatchWidth || result.Height != DefaultSwatchHeight {
		t.Errorf("size: got %dx%d", result.Width, result.Height)
	}
}

func TestRenderSwatch_Errors(t *testing.T) {
	if _, err := RenderSwatch(nil, 100, 100); err == nil {
		t.Error("empty palette should fail")
	}
	colors := make([]ColorFrequency, 5)
	if _, err := RenderSwatch(colors, 3, 10); !errors.Is(err, ErrInvalidSwatchSize) {
		t.Errorf("width below the color count: got %v", err)
	}
}

func TestRenderSwatch_MaxDimension(t *testing.T) {
	colors := []ColorFrequency{{Hex: "#808080", RGB: RGBColor{128, 128, 128}}}

	tests := []struct {
		name          string
		width, height int
	}{
		{"wide", MaxSwatchDimension + 1, 10},
		{"tall", 10, MaxSwatchDimension + 1},
		{"huge", 1 << 30, 1 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderSwatch(colors, tt.width, tt.height)
			if !errors.Is(err, ErrInvalidSwatchSize) {
				t.Errorf("got %v, want ErrInvalidSwatchSize", err)
			}
		})
	}

	result, err := RenderSwatch(colors, MaxSwatchDimension, 1)
	if err != nil {
		t.Fatalf("width at the cap should render: %v", err)
	}
	if result.Width != MaxSwatchDimension {
		t.Errorf("width: got %d", result.Width)
	}
}
