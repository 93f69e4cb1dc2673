package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/internal/infra/config"
	"github.com/cropcare/cropcare-go/internal/infra/scanrepo"
	"github.com/cropcare/cropcare-go/internal/infra/scanstore"
)

func TestRouter_Ping(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/ping", nil, "", newRouterUnderTest(t))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "CropCare API is running!", body["message"])
}

func TestRouter_InferAndHistory(t *testing.T) {
	server := newRouterUnderTest(t)

	body, contentType := scanRequestBody(t, []byte("fake-jpeg-bytes"), map[string]string{
		"crop_type":  "tomato",
		"crop_stage": "flowering",
		"lat":        "12.34",
		"lon":        "56.78",
	})
	recorder := performRequest(http.MethodPost, "/api/infer", body, contentType, server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result healthcheck.AnalysisResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.NotEmpty(t, result.ID)
	require.NotEmpty(t, result.Label)
	require.Greater(t, result.Confidence, 0.0)
	require.NotEmpty(t, result.Tips)
	require.NotNil(t, result.CapturedAt)

	recorder = performRequest(http.MethodGet, "/api/detections", nil, "", server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var detections []healthcheck.Detection
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &detections))
	require.Len(t, detections, 1)
	require.Equal(t, result.ID, detections[0].ID)
	require.Equal(t, result.Label, detections[0].Label)
	require.Equal(t, healthcheck.CropType("tomato"), detections[0].CropType)
	require.NotNil(t, detections[0].Lat)
	require.InDelta(t, 12.34, *detections[0].Lat, 1e-9)
}

func TestRouter_InferDeterministic(t *testing.T) {
	server := newRouterUnderTest(t)
	image := []byte("the-same-leaf")

	var labels []string
	for i := 0; i < 2; i++ {
		body, contentType := scanRequestBody(t, image, nil)
		recorder := performRequest(http.MethodPost, "/api/infer", body, contentType, server)
		require.Equal(t, http.StatusOK, recorder.Code)
		var result healthcheck.AnalysisResult
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
		labels = append(labels, result.Label)
	}
	require.Equal(t, labels[0], labels[1])
}

func TestRouter_InferMissingImage(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("crop_type", "rice"))
	require.NoError(t, writer.Close())

	recorder := performRequest(http.MethodPost, "/api/infer", &buf, writer.FormDataContentType(), newRouterUnderTest(t))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "image")
}

func TestRouter_ScanImageRoundTrip(t *testing.T) {
	server := newRouterUnderTest(t)
	image := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}

	body, contentType := scanRequestBody(t, image, nil)
	recorder := performRequest(http.MethodPost, "/api/infer", body, contentType, server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result healthcheck.AnalysisResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.NotEmpty(t, result.HeatmapURL)

	recorder = performRequest(http.MethodGet, result.HeatmapURL, nil, "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, image, recorder.Body.Bytes())
}

func TestRouter_ScanImageUnknownID(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/scans/1b671a64-40d5-491e-99b0-da01ff1f3341/image", nil, "", newRouterUnderTest(t))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_WeatherDeterministicPerCoordinate(t *testing.T) {
	server := newRouterUnderTest(t)

	first := performRequest(http.MethodGet, "/api/weather?lat=10.5&lon=20.5", nil, "", server)
	second := performRequest(http.MethodGet, "/api/weather?lat=10.5&lon=20.5", nil, "", server)
	other := performRequest(http.MethodGet, "/api/weather?lat=-3.1&lon=151.2", nil, "", server)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.NotEqual(t, first.Body.String(), other.Body.String())

	var weather healthcheck.WeatherContext
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &weather))
	require.GreaterOrEqual(t, weather.HumidityPct, 40.0)
}

func TestRouter_AirCategoryMatchesAQI(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/air?lat=1&lon=2", nil, "", newRouterUnderTest(t))
	require.Equal(t, http.StatusOK, recorder.Code)

	var air healthcheck.AirContext
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &air))
	require.Positive(t, air.AQI)
	require.Equal(t, aqiCategory(air.AQI), air.Category)
}

func TestRouter_Tips(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/tips", nil, "", newRouterUnderTest(t))
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotEmpty(t, body["tips"])
}

func TestRouter_RateLimitExceeded(t *testing.T) {
	server := newRouterWithMock(t, config.MockConfig{
		Address:      ":0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 1,
			Burst:             2,
		},
	})

	for i := 0; i < 2; i++ {
		recorder := performRequest(http.MethodGet, "/api/ping", nil, "", server)
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	recorder := performRequest(http.MethodGet, "/api/ping", nil, "", server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "rate_limit_exceeded", errBody["error"]["code"])
}

func TestRouter_CORSWildcardByDefault(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/ping", nil, "", newRouterUnderTest(t))
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSEchoesAllowedOrigin(t *testing.T) {
	server := newRouterWithMock(t, config.MockConfig{
		Address:        ":0",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		AllowedOrigins: []string{"http://localhost:5173"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func performRequest(method, path string, body io.Reader, contentType string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T) *http.Server {
	t.Helper()
	return newRouterWithMock(t, config.MockConfig{
		Address:      ":0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func newRouterWithMock(t *testing.T, mock config.MockConfig) *http.Server {
	t.Helper()
	handler := NewHandler(scanrepo.NewMemoryRepository(), scanstore.NewMemoryStore(), newTestLogger())
	return NewRouter(&config.Config{Mock: mock}, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func scanRequestBody(t *testing.T, image []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "leaf.jpg")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
