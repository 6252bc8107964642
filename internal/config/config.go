// Package config loads the FrameMatch configuration: the calibration
// thresholds of every estimator, LUT defaults and server settings.
//
// A configuration file is YAML and only needs the keys it changes; every
// other value keeps its default. Unknown keys are rejected so that typos do
// not go unnoticed.
//
//	log_level: debug
//	server:
//	  addr: ":9000"
//	camera:
//	  wide_max_mm: 28
//	lut:
//	  size: 33
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/framematch/internal/analysis"
	"github.com/ironsheep/framematch/internal/camera"
	"github.com/ironsheep/framematch/internal/grade"
	"github.com/ironsheep/framematch/internal/imaging"
	"github.com/ironsheep/framematch/internal/lighting"
	"github.com/ironsheep/framematch/internal/lut"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel = "FRAMEMATCH_LOG_LEVEL"
	EnvAddr     = "FRAMEMATCH_ADDR"
	EnvLUTSize  = "FRAMEMATCH_LUT_SIZE"
)

// Server holds the HTTP API settings.
type Server struct {
	Addr string `yaml:"addr" json:"addr"`

	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"maxUploadBytes"`
}

// Config is the complete configuration.
type Config struct {
	LogLevel string `yaml:"log_level" json:"logLevel"`

	Server   Server                 `yaml:"server" json:"server"`
	Decode   imaging.DecodeOptions  `yaml:"decode" json:"decode"`
	Features imaging.FeatureOptions `yaml:"features" json:"features"`
	Camera   camera.Thresholds      `yaml:"camera" json:"camera"`
	Lighting lighting.Thresholds    `yaml:"lighting" json:"lighting"`
	Grade    grade.Thresholds       `yaml:"grade" json:"grade"`
	LUT      lut.Options            `yaml:"lut" json:"lut"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr:           ":8000",
			MaxUploadBytes: 32 << 20,
		},
		Decode:   imaging.DefaultDecodeOptions(),
		Features: imaging.DefaultFeatureOptions(),
		Camera:   camera.DefaultThresholds(),
		Lighting: lighting.DefaultThresholds(),
		Grade:    grade.DefaultThresholds(),
		LUT:      lut.DefaultOptions(),
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := c.decode(data); err != nil {
		return c, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %q: %w", path, err)
	}
	return c, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLUTSize); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLUTSize, err)
		}
		c.LUT.Size = n
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server max_upload_bytes must be positive"))
	}
	if c.Decode.MinDimension < 1 {
		errs = append(errs, fmt.Errorf("decode min_dimension must be at least 1"))
	}
	if c.Decode.MaxDimension != 0 && c.Decode.MaxDimension < c.Decode.MinDimension {
		errs = append(errs, fmt.Errorf("decode max_dimension must be 0 or at least min_dimension"))
	}
	errs = append(errs,
		c.Camera.Validate(),
		c.Lighting.Validate(),
		c.Grade.Validate(),
		c.LUT.Validate(),
	)
	return errors.Join(errs...)
}

// Analysis returns the analyzer settings.
func (c Config) Analysis() analysis.Options {
	return analysis.Options{
		Decode:   c.Decode,
		Features: c.Features,
		Camera:   c.Camera,
		Lighting: c.Lighting,
		Grade:    c.Grade,
	}
}
