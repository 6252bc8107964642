package grade

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/framematch/internal/imaging"
)

// Offset is a per-channel chroma shift, each component in [-1, 1].
type Offset struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Tint is the color cast of a luminance band.
type Tint struct {
	// Hue in degrees [0, 360) of the band's mean color.
	Hue float64 `json:"hue"`

	// Strength is the largest absolute Offset component before the neutral
	// check.
	Strength float64 `json:"strength"`

	Label  string `json:"label"`
	Offset Offset `json:"offset"`
}

// NeutralTint is a tint without any cast.
func NeutralTint() Tint {
	return Tint{Label: "Neutral"}
}

// IsNeutral reports whether the tint carries no offset.
func (t Tint) IsNeutral() bool {
	return t.Offset == Offset{}
}

// bandSum accumulates the RGB means of a luminance band.
type bandSum struct {
	r, g, b, lum float64
	n            int
}

func (s *bandSum) add(r, g, b uint8, lum float64) {
	s.r += float64(r)
	s.g += float64(g)
	s.b += float64(b)
	s.lum += lum
	s.n++
}

// tint derives the band's cast: the mean of each channel minus the mean
// luminance, normalized by 255.
func (s bandSum) tint(th Thresholds) Tint {
	if s.n == 0 {
		return NeutralTint()
	}
	n := float64(s.n)
	mr, mg, mb, ml := s.r/n, s.g/n, s.b/n, s.lum/n
	off := Offset{R: (mr - ml) / 255, G: (mg - ml) / 255, B: (mb - ml) / 255}
	strength := math.Max(math.Abs(off.R), math.Max(math.Abs(off.G), math.Abs(off.B)))

	t := NeutralTint()
	t.Strength = strength
	bucket := th.chromaScale().Bucket(strength)
	if bucket == 0 {
		return t
	}

	h, _, _ := colorful.Color{R: mr / 255, G: mg / 255, B: mb / 255}.Hsv()
	t.Hue = roundTenth(h)
	t.Offset = off
	t.Label = chromaDescriptors[bucket] + " " + strings.ToLower(HueName(h)) + " tint"
	return t
}

// Indexed by the chroma scale bucket.
var chromaDescriptors = []string{"", "Subtle", "Strong"}

// hueNames covers the color wheel; each entry holds up to its upper bound in
// degrees.
var hueNames = []struct {
	upTo float64
	name string
}{
	{20, "Red"},
	{50, "Orange"},
	{70, "Yellow"},
	{160, "Green"},
	{200, "Teal"},
	{260, "Blue"},
	{330, "Magenta"},
	{360, "Red"},
}

// HueName names the hue h in degrees.
func HueName(h float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	for _, n := range hueNames {
		if h < n.upTo {
			return n.name
		}
	}
	return "Red"
}

// toneFamily describes the hue of the image's mean color the way colorists
// name grades. Gray means return "neutral".
func toneFamily(mean imaging.RGBColor) string {
	h, s, _ := mean.Colorful().Hsv()
	if s < 0.05 {
		return "neutral"
	}
	switch {
	case h < 36 || h >= 324:
		return "orange/red"
	case h < 72:
		return "yellow"
	case h >= 180 && h < 252:
		return "blue/teal"
	default:
		return "neutral"
	}
}
