package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/veracity/internal/api"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/explain"
	"github.com/jonesrussell/veracity/internal/fetch"
	"github.com/jonesrussell/veracity/internal/imageanalysis"
	"github.com/jonesrussell/veracity/internal/stats"
	"github.com/jonesrussell/veracity/internal/telemetry"
	"github.com/jonesrussell/veracity/internal/testhelpers"
	"github.com/jonesrussell/veracity/internal/textanalysis"
)

const (
	fakeText = "SHOCKING hoax: this fake conspiracy is trending!!!"
	realText = "The university published a peer-reviewed study."
)

type testEnv struct {
	router *gin.Engine
	cfg    *config.Config
	stats  *stats.MemoryRecorder
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Fetch.Enabled = true
	for _, m := range mutate {
		m(cfg)
	}

	rec := stats.NewMemoryRecorder()
	tp := telemetry.NewProvider()
	svc := detector.NewService(
		textanalysis.NewExtractor(textanalysis.DefaultLexicon()),
		textanalysis.NewRuleScorer(cfg.Text.Threshold),
		imageanalysis.NewAnalyzer(nil, nil, imageanalysis.Options{Threshold: cfg.Image.Threshold}, nil),
		detector.WithStats(rec),
		detector.WithTelemetry(tp),
	)
	handler := api.NewHandler(svc, rec, fetch.New(cfg.Fetch, nil), cfg, "", nil)

	router := gin.New()
	api.SetupServiceRoutes(router, handler, cfg, tp)
	return &testEnv{router: router, cfg: cfg, stats: rec}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func (e *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, files ...filePart) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode[map[string]string](t, w)
	assert.NotEmpty(t, body["error"])
	return body["code"]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectText(t *testing.T) {
	env := newEnv(t)

	w := env.postJSON(t, "/api/text/detect", map[string]string{"text": fakeText})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.TextDetectResponse](t, w)
	assert.True(t, resp.IsFake)
	assert.NotEmpty(t, resp.AnalysisID)
	assert.GreaterOrEqual(t, resp.Confidence, 0.5)
	assert.Positive(t, resp.FeatureValues.FakeIndicatorCount)
	assert.Equal(t, "fake", string(resp.Explanation.Verdict))
	assert.Len(t, resp.Explanation.FeatureImportance, 4)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	names, ok := raw["features"].([]any)
	require.True(t, ok, "features must be a list of names")
	assert.Equal(t, "length", names[0])
	assert.Contains(t, names, "fake_indicators")
	assert.Contains(t, names, "caps_ratio")
	assert.False(t, resp.Timestamp.IsZero())
}

func TestDetectText_EmptyTextIsNotAnError(t *testing.T) {
	env := newEnv(t)

	w := env.postJSON(t, "/api/text/detect", map[string]string{"text": ""})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.TextDetectResponse](t, w)
	assert.False(t, resp.IsFake)
	assert.InDelta(t, 0.0, resp.Score.RawScore, 1e-9)
}

func TestDetectText_BadRequests(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{name: "missing text", body: map[string]string{"language": "en"}, code: api.CodeInvalidRequest},
		{name: "invalid language", body: map[string]string{"text": "hello", "language": "not a tag!"}, code: api.CodeInvalidLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.postJSON(t, "/api/text/detect", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestDetectTextBatch(t *testing.T) {
	env := newEnv(t)

	w := env.postJSON(t, "/api/text/batch-detect", map[string]any{"texts": []string{fakeText, realText}})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.BatchResponse](t, w)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Results[1].Index)
	assert.NotNil(t, resp.Results[0].Result)
}

func TestDetectTextBatch_Limits(t *testing.T) {
	env := newEnv(t, func(c *config.Config) { c.Service.MaxBatchItems = 2 })

	w := env.postJSON(t, "/api/text/batch-detect", map[string]any{"texts": []string{"a", "b", "c"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeBatchTooLarge, errorCode(t, w))

	w = env.postJSON(t, "/api/text/batch-detect", map[string]any{"texts": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectImage(t *testing.T) {
	env := newEnv(t)

	w := env.postMultipart(t, "/api/image/detect", map[string]string{"analyze_faces": "true"},
		filePart{field: "file", name: "photo.png", contentType: "image/png", data: pngBytes(t, 32, 32)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.ImageDetectResponse](t, w)
	assert.False(t, resp.IsDeepfake)
	assert.False(t, resp.FaceDetected)
	assert.Equal(t, 0, resp.FaceCount)
	assert.Equal(t, 32, resp.Features.Width)
	assert.Equal(t, "real", string(resp.Explanation.Verdict))
	assert.NotNil(t, resp.FaceArtifacts)
}

func TestDetectImage_SniffsGenericContentType(t *testing.T) {
	env := newEnv(t)

	w := env.postMultipart(t, "/api/image/detect", nil,
		filePart{field: "file", name: "blob", contentType: "application/octet-stream", data: pngBytes(t, 16, 16)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDetectImage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		fields map[string]string
		files  []filePart
		status int
		code   string
	}{
		{
			name:   "not an image",
			files:  []filePart{{field: "file", name: "notes.txt", contentType: "text/plain", data: []byte("hello")}},
			status: http.StatusBadRequest,
			code:   api.CodeUnsupportedMedia,
		},
		{
			name:   "corrupt image",
			files:  []filePart{{field: "file", name: "broken.png", contentType: "image/png", data: []byte("not really a png")}},
			status: http.StatusUnprocessableEntity,
			code:   api.CodeDecodeError,
		},
		{
			name:   "header declares too many pixels",
			files:  []filePart{{field: "file", name: "bomb.png", contentType: "image/png", data: testhelpers.PNGClaiming(60000, 60000)}},
			status: http.StatusUnprocessableEntity,
			code:   api.CodeDecodeError,
		},
		{
			name:   "missing file",
			status: http.StatusBadRequest,
			code:   api.CodeInvalidRequest,
		},
		{
			name:   "bad analyze_faces",
			fields: map[string]string{"analyze_faces": "maybe"},
			status: http.StatusBadRequest,
			code:   api.CodeInvalidRequest,
		},
		{
			name:   "too large",
			mutate: func(c *config.Config) { c.Image.MaxUploadBytes = 10 },
			files:  []filePart{{field: "file", name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 64)}},
			status: http.StatusBadRequest,
			code:   api.CodeFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutate []func(*config.Config)
			if tt.mutate != nil {
				mutate = append(mutate, tt.mutate)
			}
			env := newEnv(t, mutate...)

			w := env.postMultipart(t, "/api/image/detect", tt.fields, tt.files...)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestDetectImageBatch_PartialFailure(t *testing.T) {
	env := newEnv(t)

	w := env.postMultipart(t, "/api/image/batch-detect", nil,
		filePart{field: "files", name: "a.png", contentType: "image/png", data: pngBytes(t, 16, 16)},
		filePart{field: "files", name: "b.png", contentType: "image/png", data: pngBytes(t, 24, 24)},
		filePart{field: "files", name: "c.png", contentType: "image/png", data: []byte("garbage")},
		filePart{field: "files", name: "d.txt", contentType: "text/plain", data: []byte("text")},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.BatchResponse](t, w)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, "c.png", resp.Results[2].Name)
	assert.Equal(t, api.CodeDecodeError, resp.Results[2].Code)
	assert.Equal(t, api.CodeUnsupportedMedia, resp.Results[3].Code)
	assert.Empty(t, resp.Results[0].Error)
}

func TestComprehensive_JSON(t *testing.T) {
	env := newEnv(t)

	w := env.postJSON(t, "/api/analysis/comprehensive", map[string]string{
		"text":         fakeText,
		"image_base64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 32, 32)),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.ComprehensiveResponse](t, w)
	assert.InDelta(t, 0.6, resp.OverallScore, 1e-9)
	assert.Equal(t, explain.InsightTextOnly, resp.CrossModalInsight)
	require.NotNil(t, resp.TextAnalysis)
	require.NotNil(t, resp.ImageAnalysis)
	assert.Equal(t, resp.AnalysisID, resp.TextAnalysis.AnalysisID)
	assert.NotEmpty(t, resp.Recommendations)
}

func TestComprehensive_Multipart(t *testing.T) {
	env := newEnv(t)

	w := env.postMultipart(t, "/api/analysis/comprehensive", map[string]string{"text": realText},
		filePart{field: "file", name: "photo.png", contentType: "image/png", data: pngBytes(t, 16, 16)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.ComprehensiveResponse](t, w)
	assert.Equal(t, explain.InsightBothAuthentic, resp.CrossModalInsight)
	assert.NotNil(t, resp.TextAnalysis)
	assert.NotNil(t, resp.ImageAnalysis)
}

func TestComprehensive_ArticleURL(t *testing.T) {
	img := pngBytes(t, 20, 20)
	mux := http.NewServeMux()
	mux.HandleFunc("/story", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Hoax spreads</title>
<meta property="og:image" content="/lead.png"></head><body><article>
<p>This shocking hoax claims a secret cure exists, and the fake conspiracy has spread to thousands of readers overnight across many platforms.</p>
<p>Researchers say the claim has no basis, but the story continues to circulate widely with misleading headlines and doctored quotes attributed to officials.</p>
<p>Readers are urged to check sources before sharing, since the post has been copied many times by accounts that appeared only in the past week.</p>
</article></body></html>`))
	})
	mux.HandleFunc("/lead.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(img)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	env := newEnv(t)
	w := env.postJSON(t, "/api/analysis/comprehensive", map[string]string{"article_url": srv.URL + "/story"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[api.ComprehensiveResponse](t, w)
	require.NotNil(t, resp.Source)
	assert.Equal(t, srv.URL+"/lead.png", resp.Source.ImageURL)
	require.NotNil(t, resp.TextAnalysis)
	assert.Positive(t, resp.TextAnalysis.FeatureValues.FakeIndicatorCount)
	require.NotNil(t, resp.ImageAnalysis)
	assert.Equal(t, 20, resp.ImageAnalysis.Features.Width)
}

func TestComprehensive_Errors(t *testing.T) {
	env := newEnv(t)

	w := env.postJSON(t, "/api/analysis/comprehensive", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeNoModality, errorCode(t, w))

	w = env.postJSON(t, "/api/analysis/comprehensive", map[string]string{"image_base64": "%%%"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeInvalidRequest, errorCode(t, w))

	w = env.postJSON(t, "/api/analysis/comprehensive", map[string]string{"image_url": "ftp://example.com/a.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeInvalidURL, errorCode(t, w))

	disabled := newEnv(t, func(c *config.Config) { c.Fetch.Enabled = false })
	w = disabled.postJSON(t, "/api/analysis/comprehensive", map[string]string{"article_url": "http://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, api.CodeFetchDisabled, errorCode(t, w))
}

func TestStatsEndpoints(t *testing.T) {
	env := newEnv(t)

	env.postJSON(t, "/api/text/detect", map[string]string{"text": fakeText})
	env.postJSON(t, "/api/text/detect", map[string]string{"text": realText})
	env.postMultipart(t, "/api/image/detect", nil,
		filePart{field: "file", name: "a.png", contentType: "image/png", data: pngBytes(t, 16, 16)})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/text/stats", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	text := decode[api.TextStatsResponse](t, w)
	assert.Equal(t, int64(2), text.TotalProcessed)
	assert.Equal(t, int64(1), text.FakeDetected)
	assert.Equal(t, int64(1), text.RealDetected)
	assert.Equal(t, "rule_based", text.Method)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/image/stats", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	img := decode[api.ImageStatsResponse](t, w)
	assert.Equal(t, int64(1), img.TotalProcessed)
	assert.Equal(t, int64(1), img.AuthenticDetected)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/analysis/dashboard", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[api.DashboardResponse](t, w)
	assert.Equal(t, int64(3), dash.TotalAnalyses)
	assert.Equal(t, int64(1), dash.FakeDetected)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/analysis/trends?days=3", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	trends := decode[api.TrendsResponse](t, w)
	require.Len(t, trends.DailyStats, 3)
	assert.Equal(t, int64(3), trends.DailyStats[2].Total)
	assert.NotEmpty(t, trends.WeeklyStats)

	var weekTotal int64
	for _, p := range trends.WeeklyStats {
		weekTotal += p.Total
	}
	assert.Equal(t, int64(3), weekTotal)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/analysis/trends?days=soon", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsAndAuth(t *testing.T) {
	env := newEnv(t, func(c *config.Config) { c.Auth.JWTSecret = "s3cret" })

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "veracity_"))

	w = env.postJSON(t, "/api/text/detect", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
