// Package httpapi serves the analysis over HTTP.
//
// Endpoints:
//
//	GET  /api/health   service status
//	POST /api/analyze  multipart "image" field, returns the analysis report
//	POST /api/lut      multipart "image" field, returns a .cube attachment;
//	                   query: size, title
//	POST /api/swatch   multipart "image" field, returns the palette as PNG;
//	                   query: count, width, height
//
// Errors are JSON objects of the form {"detail": "..."}.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/framematch/internal/analysis"
	"github.com/ironsheep/framematch/internal/imaging"
	"github.com/ironsheep/framematch/internal/lut"
)

// DefaultMaxUploadBytes bounds request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 32 << 20

// Options configures a Server.
type Options struct {
	Analyzer *analysis.Analyzer

	// LUT holds the defaults of /api/lut.
	LUT lut.Options

	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// Server is the HTTP API.
type Server struct {
	analyzer  *analysis.Analyzer
	lut       lut.Options
	maxUpload int64
	log       zerolog.Logger
}

// New creates a Server. A nil Analyzer gets the default analysis options.
func New(opts Options) *Server {
	s := &Server{
		analyzer:  opts.Analyzer,
		lut:       opts.LUT,
		maxUpload: opts.MaxUploadBytes,
		log:       opts.Logger,
	}
	if s.analyzer == nil {
		s.analyzer = analysis.New(analysis.DefaultOptions(), opts.Logger)
	}
	if s.lut.Size == 0 {
		s.lut = lut.DefaultOptions()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	return s
}

// Handler returns the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/lut", s.handleLUT)
	mux.HandleFunc("POST /api/swatch", s.handleSwatch)
	return s.logRequests(cors(mux))
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("http api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "framematch-api"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readImage(w, r)
	if !ok {
		return
	}
	rep, err := s.analyzer.AnalyzeBytes(r.Context(), data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleLUT(w http.ResponseWriter, r *http.Request) {
	opts := s.lut
	q := r.URL.Query()
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("size must be an integer, got %q", v))
			return
		}
		opts.Size = n
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	data, ok := s.readImage(w, r)
	if !ok {
		return
	}
	raster, err := imaging.Decode(data, s.analyzer.Options().Decode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cube, err := s.analyzer.LUT(r.Context(), raster, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="framematch.cube"`)
	w.WriteHeader(http.StatusOK)
	if _, err := cube.WriteTo(w); err != nil {
		s.log.Warn().Err(err).Msg("writing cube response")
	}
}

func (s *Server) handleSwatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, err1 := intParam(q.Get("count"), 5)
	width, err2 := intParam(q.Get("width"), imaging.DefaultSwatchWidth)
	height, err3 := intParam(q.Get("height"), imaging.DefaultSwatchHeight)
	if err := errors.Join(err1, err2, err3); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	data, ok := s.readImage(w, r)
	if !ok {
		return
	}
	raster, err := imaging.Decode(data, s.analyzer.Options().Decode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	palette, err := imaging.DominantColors(raster.Pixels, count, nil)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	swatch, err := imaging.RenderSwatch(palette.Colors, width, height)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(swatch.PNG)
}

// readImage returns the bytes of the multipart "image" field. On failure it
// writes the error response and returns false.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.ContentLength > s.maxUpload {
		writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.maxUpload))
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, http.ErrMissingFile):
			writeDetail(w, http.StatusBadRequest, `multipart field "image" is required`)
		default:
			writeDetail(w, http.StatusBadRequest, err.Error())
		}
		return nil, false
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeDetail(w, http.StatusBadRequest, "File must be an image")
		return nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return data, true
}

// statusFor maps an analysis error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, imaging.ErrDecodeFailure), errors.Is(err, lut.ErrInvalidSize),
		errors.Is(err, imaging.ErrInvalidSwatchSize):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrDimensionTooSmall):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("analysis failed")
		writeDetail(w, status, "Analysis failed: "+err.Error())
		return
	}
	writeDetail(w, status, err.Error())
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", v)
	}
	return n, nil
}
