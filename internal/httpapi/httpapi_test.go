package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/framematch/internal/analysis"
	"github.com/ironsheep/framematch/internal/imaging"
	"github.com/ironsheep/framematch/internal/imaging/imagingtest"
	"github.com/ironsheep/framematch/internal/lut"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Options{Logger: zerolog.Nop()}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// upload builds a multipart body with data in the "image" field.
func upload(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="frame.png"`, field))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func post(t *testing.T, url string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func detail(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, map[string]string{"status": "healthy", "service": "framematch-api"}, body)
}

func TestAnalyze(t *testing.T) {
	srv := newTestServer(t)
	body, ct := upload(t, "image", "image/png", imagingtest.PNG(imagingtest.Uniform(100, 100, color.White)))
	resp := post(t, srv.URL+"/api/analyze", body, ct)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rep analysis.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	require.Equal(t, "#ffffff", rep.Color.Palette[0].Hex)
	require.NotEmpty(t, rep.Summary)
	require.NotEmpty(t, rep.RecreationGuide)
}

func TestAnalyze_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name        string
		field       string
		contentType string
		data        []byte
		status      int
		detail      string
	}{
		{"not an image part", "image", "text/plain", []byte("hello"), http.StatusBadRequest, "File must be an image"},
		{"missing field", "photo", "image/png", []byte("x"), http.StatusBadRequest, `"image" is required`},
		{"unsupported format", "image", "image/png", []byte("definitely not pixels"), http.StatusUnsupportedMediaType, "unsupported format"},
		{"truncated png", "image", "image/png", imagingtest.PNG(imagingtest.Uniform(32, 32, color.White))[:60], http.StatusBadRequest, "decode failure"},
		{"too small", "image", "image/png", imagingtest.PNG(imagingtest.Uniform(8, 8, color.White)), http.StatusUnprocessableEntity, "dimension too small"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := upload(t, tt.field, tt.contentType, tt.data)
			resp := post(t, srv.URL+"/api/analyze", body, ct)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Contains(t, detail(t, resp), tt.detail)
		})
	}
}

func TestAnalyze_TooLarge(t *testing.T) {
	srv := httptest.NewServer(New(Options{Logger: zerolog.Nop(), MaxUploadBytes: 1024}).Handler())
	defer srv.Close()

	body, ct := upload(t, "image", "image/png", imagingtest.PNG(imagingtest.Noise(128, 128, 128, 120, 1)))
	resp := post(t, srv.URL+"/api/analyze", body, ct)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/analyze")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/analyze", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestLUT(t *testing.T) {
	srv := newTestServer(t)
	img := imagingtest.PNG(imagingtest.VerticalGradient(64, 64, 30, 220))

	body, ct := upload(t, "image", "image/png", img)
	resp := post(t, srv.URL+"/api/lut?size=5&title=Dusk", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="framematch.cube"`, resp.Header.Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	var out bytes.Buffer
	_, err := out.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Equal(t, `TITLE "Dusk"`, lines[0])
	require.Equal(t, "LUT_3D_SIZE 5", lines[2])
	require.Len(t, lines, 4+125)

	// The same upload yields the same bytes.
	body, ct = upload(t, "image", "image/png", img)
	again := post(t, srv.URL+"/api/lut?size=5&title=Dusk", body, ct)
	var second bytes.Buffer
	_, err = second.ReadFrom(again.Body)
	require.NoError(t, err)
	require.Equal(t, out.String(), second.String())
}

func TestLUT_InvalidSize(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"size=1", "size=0", "size=9999", "size=big"} {
		body, ct := upload(t, "image", "image/png", imagingtest.PNG(imagingtest.Uniform(32, 32, color.White)))
		resp := post(t, srv.URL+"/api/lut?"+q, body, ct)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestSwatch(t *testing.T) {
	srv := newTestServer(t)
	body, ct := upload(t, "image", "image/png",
		imagingtest.PNG(imagingtest.SplitHalves(64, 64, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255})))
	resp := post(t, srv.URL+"/api/swatch?width=120&height=30", body, ct)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	require.Equal(t, 120, img.Bounds().Dx())
	require.Equal(t, 30, img.Bounds().Dy())
}

func TestSwatch_BadQuery(t *testing.T) {
	srv := newTestServer(t)
	body, ct := upload(t, "image", "image/png", imagingtest.PNG(imagingtest.Uniform(32, 32, color.White)))
	resp := post(t, srv.URL+"/api/swatch?count=many", body, ct)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSwatch_TooLarge(t *testing.T) {
	srv := newTestServer(t)
	for _, q := range []string{"width=100000&height=30", "width=120&height=4097"} {
		body, ct := upload(t, "image", "image/png", imagingtest.PNG(imagingtest.Uniform(32, 32, color.White)))
		resp := post(t, srv.URL+"/api/swatch?"+q, body, ct)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		require.Contains(t, detail(t, resp), "invalid swatch size")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", imaging.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{fmt.Errorf("%w: x", imaging.ErrDecodeFailure), http.StatusBadRequest},
		{fmt.Errorf("%w: x", imaging.ErrDimensionTooSmall), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: x", lut.ErrInvalidSize), http.StatusBadRequest},
		{fmt.Errorf("%w: x", imaging.ErrInvalidSwatchSize), http.StatusBadRequest},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(Options{Logger: zerolog.Nop()}).ListenAndServe(ctx, "127.0.0.1:0")
	}()
	cancel()
	require.NoError(t, <-done)
}
