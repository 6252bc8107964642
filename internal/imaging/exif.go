package imaging

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifData holds the camera settings recorded in an image's EXIF block.
//
// Zero values mean the field was absent or unreadable.
type ExifData struct {
	FocalLengthMM   float64 `json:"focalLengthMm,omitempty"`
	FocalLength35mm float64 `json:"focalLength35mm,omitempty"`
	FNumber         float64 `json:"fNumber,omitempty"`
	ISO             int     `json:"iso,omitempty"`

	// ExposureTime is formatted for display, e.g. "1/125s" or "2s".
	ExposureTime    string  `json:"exposureTime,omitempty"`
	ExposureSeconds float64 `json:"exposureSeconds,omitempty"`

	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
	Lens  string `json:"lens,omitempty"`
}

// Camera returns "Make Model", or "" when neither is recorded.
func (e *ExifData) Camera() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Make + " " + e.Model)
}

func (e *ExifData) empty() bool {
	return *e == ExifData{}
}

// ReadExif extracts camera fields from the EXIF block embedded in data.
//
// It returns nil when data carries no EXIF block, or none of the fields of
// interest could be read. Each field is read independently; one malformed
// tag does not hide the others.
func ReadExif(data []byte) *ExifData {
	x, _ := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return nil
	}

	var e ExifData
	if v, ok := exifRational(x, exif.FocalLength); ok && v > 0 {
		e.FocalLengthMM = v
	}
	if v, ok := exifInt(x, exif.FocalLengthIn35mmFilm); ok && v > 0 {
		e.FocalLength35mm = float64(v)
	}
	if v, ok := exifRational(x, exif.FNumber); ok && v > 0 {
		e.FNumber = v
	}
	if v, ok := exifInt(x, exif.ISOSpeedRatings); ok && v > 0 {
		e.ISO = int(v)
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && num > 0 && den > 0 {
			e.ExposureTime = FormatExposure(num, den)
			e.ExposureSeconds = float64(num) / float64(den)
		}
	}
	e.Make = exifString(x, exif.Make)
	e.Model = exifString(x, exif.Model)
	e.Lens = exifString(x, exif.LensModel)

	if e.empty() {
		return nil
	}
	return &e
}

func exifRational(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}

func exifInt(x *exif.Exif, name exif.FieldName) (int64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int64(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

func exifString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// FormatExposure renders an exposure time given as the rational num/den
// seconds: whole seconds as "2s", unit fractions as "1/125s", long
// non-integral exposures as "1.3s", and anything else rounded to the nearest
// unit fraction. It returns "" for non-positive values.
func FormatExposure(num, den int64) string {
	if num <= 0 || den <= 0 {
		return ""
	}
	g := gcd(num, den)
	num, den = num/g, den/g

	switch {
	case den == 1:
		return fmt.Sprintf("%ds", num)
	case num == 1:
		return fmt.Sprintf("1/%ds", den)
	case num > den:
		return fmt.Sprintf("%.1fs", float64(num)/float64(den))
	default:
		return fmt.Sprintf("1/%ds", int64(math.Round(float64(den)/float64(num))))
	}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
