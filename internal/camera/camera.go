// Package camera infers the camera settings behind an image.
//
// Values recorded in EXIF are reported verbatim and take precedence over the
// heuristics, field by field. Everything else is estimated from the feature
// vector:
//
//   - focal length from the falloff of edge sharpness toward the corners
//     combined with the vignette
//   - depth of field from center versus border gradient variance
//   - ISO from brightness and high-frequency noise energy
//   - shutter from the Laplacian variance, with a motion blur check
package camera

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/framematch/internal/imaging"
)

// Sources records, per field, whether the value came from EXIF.
type Sources struct {
	FocalLength Source `json:"focalLength"`
	Aperture    Source `json:"aperture"`
	ISO         Source `json:"iso"`
	Shutter     Source `json:"shutter"`
}

// Estimate describes the inferred camera settings.
//
// The class fields (FocalLength, DepthOfField, ISO, Shutter) are always set.
// The label fields carry the exact EXIF value when one was recorded, or a
// range for estimated values.
type Estimate struct {
	FocalLength      FocalLength `json:"focalLengthBucket"`
	FocalLengthLabel string      `json:"focalLength"`
	FocalLengthMM    float64     `json:"focalLengthMm,omitempty"`
	FocalLength35mm  float64     `json:"focalLength35mm,omitempty"`
	LensType         string      `json:"lensType"`

	DepthOfField DepthOfField `json:"depthOfField"`
	Aperture     string       `json:"aperture"`
	FNumber      float64      `json:"fNumber,omitempty"`

	ISO      ISOHint `json:"isoHint"`
	ISOLabel string  `json:"iso"`
	ISOValue int     `json:"isoValue,omitempty"`

	Shutter      Shutter `json:"shutterHint"`
	ShutterSpeed string  `json:"shutterSpeed"`
	MotionBlur   bool    `json:"motionBlur"`
	BlurScore    float64 `json:"blurScore"`

	AspectRatio string `json:"aspectRatio"`

	// HasExif is true only when focal length, aperture, ISO and shutter all
	// came from EXIF.
	HasExif bool    `json:"hasExif"`
	Sources Sources `json:"sources"`
	Camera  string  `json:"camera,omitempty"`
	Lens    string  `json:"lens,omitempty"`
}

// Fallback is reported when estimation fails.
func Fallback() Estimate {
	return Estimate{
		FocalLength:      Normal,
		FocalLengthLabel: focalLabels[Normal],
		LensType:         lensTypes[Normal],
		DepthOfField:     Medium,
		Aperture:         apertureLabels[Medium],
		ISO:              MediumISO,
		ISOLabel:         isoLabels[MediumISO],
		Shutter:          ModerateShutter,
		ShutterSpeed:     shutterLabels[ModerateShutter],
		BlurScore:        0.5,
	}
}

var (
	focalLabels = map[FocalLength]string{
		Wide:      "~24-35mm",
		Normal:    "~35-50mm",
		Tele:      "~50-85mm",
		Telephoto: "~85mm+",
	}
	lensTypes = map[FocalLength]string{
		Wide:      "Wide angle lens",
		Normal:    "Standard lens",
		Tele:      "Portrait/Short telephoto",
		Telephoto: "Telephoto lens",
	}
	apertureLabels = map[DepthOfField]string{
		Shallow: "f/1.4 - f/2.0",
		Medium:  "f/2.8 - f/4",
		Deep:    "f/5.6 - f/8",
	}
	isoLabels = map[ISOHint]string{
		LowISO:    "ISO 100-200",
		MediumISO: "ISO 400-800",
		HighISO:   "ISO 1600+",
	}
	shutterLabels = map[Shutter]string{
		FastShutter:     "1/250s or faster",
		ModerateShutter: "~1/60s - 1/125s",
		SlowShutter:     "1/30s or slower",
	}
)

// Analyze estimates camera settings from fv, preferring any field recorded
// in ex. ex may be nil.
//
// It fails with imaging.ErrDegenerateInput when fv is missing or holds
// non-finite or out-of-range statistics.
func Analyze(fv *imaging.FeatureVector, ex *imaging.ExifData, th Thresholds) (Estimate, error) {
	if fv == nil {
		return Estimate{}, fmt.Errorf("%w: no feature vector", imaging.ErrDegenerateInput)
	}
	if err := fv.Validate(); err != nil {
		return Estimate{}, err
	}
	if ex == nil {
		ex = &imaging.ExifData{}
	}

	var est Estimate
	est.AspectRatio = AspectRatio(fv.Width, fv.Height)
	est.Camera = ex.Camera()
	est.Lens = ex.Lens

	focalFromExif(&est, ex, th)
	if est.Sources.FocalLength != FromExif {
		est.FocalLength = estimateFocalLength(fv, th)
		est.FocalLengthLabel = focalLabels[est.FocalLength]
		est.LensType = lensTypes[est.FocalLength]
	}

	if ex.FNumber > 0 {
		est.FNumber = ex.FNumber
		est.Aperture = fmt.Sprintf("f/%.1f", ex.FNumber)
		est.DepthOfField = DepthOfField(th.fNumberScale().Bucket(ex.FNumber))
		est.Sources.Aperture = FromExif
	} else {
		est.DepthOfField = estimateDepthOfField(fv, th)
		est.Aperture = apertureLabels[est.DepthOfField]
	}

	if ex.ISO > 0 {
		est.ISOValue = ex.ISO
		est.ISOLabel = fmt.Sprintf("ISO %d", ex.ISO)
		est.ISO = ISOHint(th.isoScale().Bucket(float64(ex.ISO)))
		est.Sources.ISO = FromExif
	} else {
		est.ISO = estimateISO(fv, th)
		est.ISOLabel = isoLabels[est.ISO]
	}

	est.BlurScore = blurScore(fv, th)
	est.MotionBlur = motionBlur(fv, th)
	if ex.ExposureSeconds > 0 {
		est.ShutterSpeed = ex.ExposureTime
		est.Shutter = Shutter(th.exposureScale().Bucket(ex.ExposureSeconds))
		est.Sources.Shutter = FromExif
	} else {
		est.Shutter = estimateShutter(est.BlurScore, est.MotionBlur, th)
		est.ShutterSpeed = shutterLabels[est.Shutter]
	}

	est.HasExif = est.Sources == Sources{FromExif, FromExif, FromExif, FromExif}
	return est, nil
}

// focalFromExif fills the focal length fields from ex, bucketing on the 35mm
// equivalent when recorded and on the actual focal length otherwise.
func focalFromExif(est *Estimate, ex *imaging.ExifData, th Thresholds) {
	mm, equiv := ex.FocalLengthMM, ex.FocalLength35mm
	switch {
	case mm > 0 && equiv > 0:
		est.FocalLengthLabel = fmt.Sprintf("%.0fmm (%.0fmm equiv)", mm, equiv)
	case mm > 0:
		est.FocalLengthLabel = fmt.Sprintf("%.0fmm", mm)
		equiv = mm
	case equiv > 0:
		est.FocalLengthLabel = fmt.Sprintf("%.0fmm equiv", equiv)
	default:
		return
	}
	est.FocalLengthMM = mm
	est.FocalLength35mm = ex.FocalLength35mm
	est.FocalLength = FocalLength(th.focalScale().Bucket(equiv))
	est.LensType = LensType(equiv)
	est.Sources.FocalLength = FromExif
}

// LensType names the lens class of a 35mm-equivalent focal length.
func LensType(mm float64) string {
	switch {
	case mm < 24:
		return "Ultra-wide angle lens"
	case mm < 35:
		return "Wide angle lens"
	case mm < 50:
		return "Wide-normal lens"
	case mm < 85:
		return "Standard lens"
	case mm < 135:
		return "Portrait/Short telephoto"
	default:
		return "Telephoto lens"
	}
}

// estimateFocalLength scores how "wide" the image looks. Wide lenses lose
// sharpness toward the corners and vignette more.
func estimateFocalLength(fv *imaging.FeatureVector, th Thresholds) FocalLength {
	score := th.ProfileWeight*ProfileSteepness(fv.EdgeSharpnessProfile) + th.VignetteWeight*fv.VignetteScore
	score /= th.ProfileWeight + th.VignetteWeight

	// The wide score scale runs from telephoto (0) to wide (3).
	return FocalLength(th.wideScoreScale().Buckets() - 1 - th.wideScoreScale().Bucket(score))
}

// ProfileSteepness returns how fast edge sharpness falls from the center
// band outward, in [0, 1].
//
// The profile is normalized by its center value and fitted with a straight
// line over band positions spread evenly across [0, 1]; the steepness is the
// negated slope, clamped. A profile whose center band has no edges is flat.
func ProfileSteepness(profile []float64) float64 {
	if len(profile) < 2 || profile[0] < imaging.Epsilon {
		return 0
	}
	xs := make([]float64, len(profile))
	ys := make([]float64, len(profile))
	for i, v := range profile {
		xs[i] = float64(i) / float64(len(profile)-1)
		ys[i] = v / profile[0]
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return math.Max(0, math.Min(1, -slope))
}

// estimateDepthOfField compares center and border sharpness. A sharp subject
// over a soft border means a wide aperture; otherwise the overall amount of
// detail decides.
func estimateDepthOfField(fv *imaging.FeatureVector, th Thresholds) DepthOfField {
	ratio := fv.CenterGradientVariance / math.Max(fv.OuterGradientVariance, imaging.Epsilon)
	if th.shallowScale().Bucket(ratio) == 1 {
		return Shallow
	}
	return DepthOfField(th.gradientScale().Bucket(fv.GradientVarianceGlobal))
}

// estimateISO reads dark images as high ISO and bright ones as low ISO, then
// moves one step toward high ISO when the image is noisy.
func estimateISO(fv *imaging.FeatureVector, th Thresholds) ISOHint {
	// Brightness buckets run dark (0) to bright (2).
	iso := HighISO - ISOHint(th.brightnessScale().Bucket(fv.BrightnessMean))
	if th.noiseScale().Bucket(fv.HighFrequencyEnergy) == 1 && iso < HighISO {
		iso++
	}
	return iso
}

// blurScore maps the Laplacian variance to [0, 1], 0 being fully sharp.
func blurScore(fv *imaging.FeatureVector, th Thresholds) float64 {
	return 1 - math.Min(fv.LaplacianVariance/th.LaplacianSharpVariance, 1)
}

// motionBlur reports fine detail missing while strong edges remain, the
// signature of a moving camera or subject.
func motionBlur(fv *imaging.FeatureVector, th Thresholds) bool {
	peak := 0.0
	for _, v := range fv.EdgeSharpnessProfile {
		peak = math.Max(peak, v)
	}
	return th.laplacianScale().Bucket(fv.LaplacianVariance) == 0 && th.profileScale().Bucket(peak) == 1
}

func estimateShutter(blur float64, motion bool, th Thresholds) Shutter {
	if motion {
		return SlowShutter
	}
	return Shutter(th.blurScale().Bucket(blur))
}

// AspectRatio returns "w:h" reduced to lowest terms.
func AspectRatio(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	a, b := w, h
	for b != 0 {
		a, b = b, a%b
	}
	return fmt.Sprintf("%d:%d", w/a, h/a)
}
