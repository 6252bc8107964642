package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/framematch/internal/analysis"
	"github.com/ironsheep/framematch/internal/config"
	"github.com/ironsheep/framematch/internal/httpapi"
	"github.com/ironsheep/framematch/internal/imaging"
	"github.com/ironsheep/framematch/internal/logging"
	"github.com/ironsheep/framematch/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `framematch - camera, lighting and color grade estimates for a single frame

Usage: framematch [global options] <command> [options] [args]

Commands:
  analyze FILE...    Print one JSON report per image
  lut FILE           Write a .cube 3D LUT matching the image grade
  swatch FILE        Write the dominant palette as a PNG strip
  serve              Run the HTTP API
  mcp                Serve MCP over stdin/stdout
  version            Print version information
  help               Print this help message

Global options:
  --config PATH      YAML configuration file
  --log-level LEVEL  debug, info, warn or error
  --json-logs        Log JSON lines instead of text

Environment variables:
  FRAMEMATCH_LOG_LEVEL   Log level
  FRAMEMATCH_ADDR        HTTP API listen address
  FRAMEMATCH_LUT_SIZE    Default LUT grid size
`

// errUsage marks command line mistakes; main exits with status 2 for them.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "framematch: %v\n", err)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}

// app carries what every command needs after the global options are parsed.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	analyzer *analysis.Analyzer
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet("framematch", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "", "YAML configuration file")
	logLevel := global.String("log-level", "", "log level")
	jsonLogs := global.Bool("json-logs", false, "log JSON lines")
	showVersion := global.BoolP("version", "v", false, "print version information")
	showHelp := global.BoolP("help", "h", false, "print help")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := global.Args()
	command := ""
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch {
	case *showVersion || command == "version":
		fmt.Fprintf(stdout, "framematch %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case *showHelp || command == "help":
		fmt.Fprint(stdout, usage)
		return nil
	case command == "":
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: no command given", errUsage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	if *jsonLogs {
		a.log = logging.NewJSON(stderr, level)
	} else {
		a.log = logging.New(stderr, level)
	}
	a.log.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Str("command", command).
		Msg("framematch starting")
	a.analyzer = analysis.New(cfg.Analysis(), a.log)

	switch command {
	case "analyze":
		return a.analyze(ctx, rest)
	case "lut":
		return a.lut(ctx, rest)
	case "swatch":
		return a.swatch(rest)
	case "serve":
		return a.serve(ctx, rest)
	case "mcp":
		return a.mcp(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// fileReport is one line of analyze output.
type fileReport struct {
	Path string `json:"path"`
	*analysis.Report
	Error string `json:"error,omitempty"`
}

func (a *app) analyze(ctx context.Context, args []string) error {
	fs := newFlagSet("analyze")
	jobs := fs.IntP("jobs", "j", runtime.NumCPU(), "images analyzed at once")
	if err := parse(fs, args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return fmt.Errorf("%w: analyze needs at least one image", errUsage)
	}
	if *jobs < 1 {
		return fmt.Errorf("%w: --jobs must be at least 1", errUsage)
	}

	reports := make([]fileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = fileReport{Path: path}
			rep, err := a.analyzeFile(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				a.log.Error().Err(err).Str("path", path).Msg("analysis failed")
				reports[i].Error = err.Error()
				return nil
			}
			reports[i].Report = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func (a *app) analyzeFile(ctx context.Context, path string) (*analysis.Report, error) {
	raster, err := imaging.LoadFile(path, a.cfg.Decode)
	if err != nil {
		return nil, err
	}
	return a.analyzer.Analyze(ctx, raster)
}

func (a *app) lut(ctx context.Context, args []string) error {
	fs := newFlagSet("lut")
	output := fs.StringP("output", "o", "", "output file (default stdout)")
	size := fs.Int("size", a.cfg.LUT.Size, "grid points per axis")
	title := fs.String("title", a.cfg.LUT.Title, "TITLE line of the .cube file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: lut needs exactly one image", errUsage)
	}

	raster, err := imaging.LoadFile(fs.Arg(0), a.cfg.Decode)
	if err != nil {
		return err
	}
	opts := a.cfg.LUT
	opts.Size = *size
	opts.Title = *title
	cube, err := a.analyzer.LUT(ctx, raster, opts)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = cube.WriteTo(a.stdout)
		return err
	}
	return writeFile(*output, func(w io.Writer) error {
		_, err := cube.WriteTo(w)
		return err
	})
}

func (a *app) swatch(args []string) error {
	fs := newFlagSet("swatch")
	output := fs.StringP("output", "o", "", "PNG file to write")
	count := fs.IntP("count", "n", 5, "number of colors")
	width := fs.Int("width", imaging.DefaultSwatchWidth, "strip width in pixels")
	height := fs.Int("height", imaging.DefaultSwatchHeight, "strip height in pixels")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: swatch needs exactly one image", errUsage)
	}
	if *output == "" {
		return fmt.Errorf("%w: swatch needs --output", errUsage)
	}
	if *width > imaging.MaxSwatchDimension || *height > imaging.MaxSwatchDimension {
		return fmt.Errorf("%w: --width and --height must be at most %d", errUsage, imaging.MaxSwatchDimension)
	}

	raster, err := imaging.LoadFile(fs.Arg(0), a.cfg.Decode)
	if err != nil {
		return err
	}
	palette, err := imaging.DominantColors(raster.Pixels, *count, nil)
	if err != nil {
		return err
	}
	swatch, err := imaging.RenderSwatch(palette.Colors, *width, *height)
	if err != nil {
		return err
	}
	return writeFile(*output, func(w io.Writer) error {
		_, err := w.Write(swatch.PNG)
		return err
	})
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	if err := parse(fs, args); err != nil {
		return err
	}
	api := httpapi.New(httpapi.Options{
		Analyzer:       a.analyzer,
		LUT:            a.cfg.LUT,
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
		Logger:         a.log,
	})
	return api.ListenAndServe(ctx, *addr)
}

func (a *app) mcp(ctx context.Context, args []string) error {
	if err := parse(newFlagSet("mcp"), args); err != nil {
		return err
	}
	srv := server.New(server.Options{
		Analyzer: a.analyzer,
		LUT:      a.cfg.LUT,
		Logger:   a.log,
		Version:  Version,
	})
	a.log.Info().Str("version", Version).Msg("mcp server ready on stdio")
	return srv.Run(ctx, a.stdin, a.stdout)
}

// writeFile creates path and removes it again if write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
