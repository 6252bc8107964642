// Package analysis runs the full image analysis: feature extraction followed
// by the camera, lighting and color estimators.
//
// The three estimators run concurrently over the same read-only gray field,
// raster and feature vector. They are isolated from each other: an error or
// panic in one is replaced by that estimator's documented fallback, logged,
// and recorded in the report diagnostics, while the others complete
// normally. Only decoding errors and context cancellation fail an analysis.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/framematch/internal/camera"
	"github.com/ironsheep/framematch/internal/grade"
	"github.com/ironsheep/framematch/internal/imaging"
	"github.com/ironsheep/framematch/internal/lighting"
	"github.com/ironsheep/framematch/internal/lut"
)

// Stage names used in diagnostics and logs.
const (
	StageFeatures = "features"
	StageCamera   = "camera"
	StageLighting = "lighting"
	StageColor    = "color"
)

// Options carries the settings of every analysis stage.
type Options struct {
	Decode   imaging.DecodeOptions
	Features imaging.FeatureOptions
	Camera   camera.Thresholds
	Lighting lighting.Thresholds
	Grade    grade.Thresholds
}

// DefaultOptions returns the default settings of every stage.
func DefaultOptions() Options {
	return Options{
		Decode:   imaging.DefaultDecodeOptions(),
		Features: imaging.DefaultFeatureOptions(),
		Camera:   camera.DefaultThresholds(),
		Lighting: lighting.DefaultThresholds(),
		Grade:    grade.DefaultThresholds(),
	}
}

// Analyzer runs analyses with fixed options. It is safe for concurrent use.
type Analyzer struct {
	opts Options
	log  zerolog.Logger
}

// New creates an Analyzer.
func New(opts Options, log zerolog.Logger) *Analyzer {
	return &Analyzer{opts: opts, log: log}
}

// Options returns the analyzer settings.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Report is the outcome of a full analysis.
type Report struct {
	Image           imaging.ImageInfo `json:"image"`
	Exif            *imaging.ExifData `json:"exif,omitempty"`
	Camera          camera.Estimate   `json:"camera"`
	Lighting        lighting.Estimate `json:"lighting"`
	Color           grade.Estimate    `json:"color"`
	Summary         string            `json:"summary"`
	RecreationGuide []string          `json:"recreationGuide"`

	// Diagnostics lists the stages that fell back, in stage order.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic records a stage that used its fallback.
type Diagnostic struct {
	Stage    string `json:"stage"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error"`
}

// Extraction is the shared input of the estimators.
type Extraction struct {
	Gray     *imaging.GrayField
	Features *imaging.FeatureVector

	// Err is set when feature extraction failed; Features is nil then.
	Err error
}

// AnalyzeBytes decodes data and analyzes it.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := imaging.Decode(data, a.opts.Decode)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, r)
}

// Extract computes the gray field and feature vector of r.
func (a *Analyzer) Extract(ctx context.Context, r *imaging.Raster) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || r.Pixels == nil {
		return nil, fmt.Errorf("%w: no raster", imaging.ErrDecodeFailure)
	}
	ex := &Extraction{Gray: imaging.NewGrayField(r)}
	ex.Features, ex.Err = imaging.Extract(ex.Gray, a.opts.Features)
	return ex, nil
}

// Analyze runs every estimator on r.
func (a *Analyzer) Analyze(ctx context.Context, r *imaging.Raster) (*Report, error) {
	start := time.Now()

	ex, err := a.Extract(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		cam   Result[camera.Estimate]
		light Result[lighting.Estimate]
		color Result[grade.Estimate]
		eg    errgroup.Group
	)
	eg.Go(func() error {
		cam = Run(camera.Fallback, func() (camera.Estimate, error) {
			if ex.Err != nil {
				return camera.Estimate{}, fmt.Errorf("%s: %w", StageFeatures, ex.Err)
			}
			return camera.Analyze(ex.Features, r.Exif, a.opts.Camera)
		})
		return nil
	})
	eg.Go(func() error {
		light = Run(lighting.Fallback, func() (lighting.Estimate, error) {
			return lighting.Analyze(ex.Gray, a.opts.Lighting)
		})
		return nil
	})
	eg.Go(func() error {
		color = Run(grade.Fallback, func() (grade.Estimate, error) {
			return grade.Analyze(r, ex.Gray, a.opts.Grade)
		})
		return nil
	})
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The working raster may be downscaled; report the source shape.
	if r.SourceWidth > 0 && r.SourceHeight > 0 {
		cam.Value.AspectRatio = camera.AspectRatio(r.SourceWidth, r.SourceHeight)
	}

	rep := &Report{
		Image:    r.Info(),
		Exif:     r.Exif,
		Camera:   cam.Value,
		Lighting: light.Value,
		Color:    color.Value,
	}
	a.diagnose(rep, StageCamera, cam.Fallback, cam.Err)
	a.diagnose(rep, StageLighting, light.Fallback, light.Err)
	a.diagnose(rep, StageColor, color.Fallback, color.Err)

	rep.Summary = Summary(rep)
	rep.RecreationGuide = RecreationGuide(rep)

	a.log.Debug().
		Int("width", r.Width).
		Int("height", r.Height).
		Int("fallbacks", len(rep.Diagnostics)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")
	return rep, nil
}

func (a *Analyzer) diagnose(rep *Report, stage string, fallback bool, err error) {
	if !fallback {
		return
	}
	a.log.Warn().Str("stage", stage).Err(err).Msg("estimator failed, using fallback")
	d := Diagnostic{Stage: stage, Fallback: true}
	if err != nil {
		d.Error = err.Error()
	}
	rep.Diagnostics = append(rep.Diagnostics, d)
}

// Grade runs only the color estimator, falling back like Analyze does.
func (a *Analyzer) Grade(ctx context.Context, r *imaging.Raster) (Result[grade.Estimate], error) {
	if err := ctx.Err(); err != nil {
		return Result[grade.Estimate]{}, err
	}
	if r == nil || r.Pixels == nil {
		return Result[grade.Estimate]{}, fmt.Errorf("%w: no raster", imaging.ErrDecodeFailure)
	}
	res := Run(grade.Fallback, func() (grade.Estimate, error) {
		return grade.Analyze(r, imaging.NewGrayField(r), a.opts.Grade)
	})
	if res.Fallback {
		a.log.Warn().Str("stage", StageColor).Err(res.Err).Msg("estimator failed, using fallback")
	}
	return res, nil
}

// LUT grades r and synthesizes a lookup table from the result. An invalid
// size fails with lut.ErrInvalidSize.
func (a *Analyzer) LUT(ctx context.Context, r *imaging.Raster, opts lut.Options) (*lut.Cube, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	res, err := a.Grade(ctx, r)
	if err != nil {
		return nil, err
	}
	return lut.Synthesize(res.Value, opts)
}
