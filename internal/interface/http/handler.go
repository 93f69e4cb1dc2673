// Package http implements the development mock of the CropCare backend.
// It mirrors the upstream endpoint shapes so the client, CLI, and tests
// can run against a local server with deterministic canned data.
package http

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cropcare/cropcare-go/internal/domain/healthcheck"
	"github.com/cropcare/cropcare-go/pkg/util"
)

// ScanRepository persists detections submitted through the mock infer
// endpoint.
type ScanRepository interface {
	Insert(ctx context.Context, detection healthcheck.Detection) error
	List(ctx context.Context, limit, offset int) ([]healthcheck.Detection, error)
}

// ImageStore persists uploaded leaf images.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
}

const maxImageBytes = 10 << 20

// Handler wires the mock endpoints to storage.
type Handler struct {
	scans  ScanRepository
	images ImageStore
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler constructs the mock API handler.
func NewHandler(scans ScanRepository, images ImageStore, logger *slog.Logger) *Handler {
	return &Handler{
		scans:  scans,
		images: images,
		logger: logger.With("component", "http.handler"),
		now:    util.NowUTC,
	}
}

// Ping reports service health.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "CropCare API is running!"})
}

// Tips returns general crop-care tips.
func (h *Handler) Tips(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tips": []string{
		"Inspect leaves weekly for spots or discoloration.",
		"Avoid overhead watering at night.",
		"Disinfect pruning tools between plants.",
	}})
}

// Me returns the demo profile.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, healthcheck.Profile{
		Name:   "Demo Farmer",
		Email:  "demo@cropcare.local",
		Region: "Central Valley",
	})
}

// Infer accepts a multipart leaf submission and responds with a
// deterministic diagnosis derived from the image bytes.
func (h *Handler) Infer(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "no image uploaded with key 'image'", err))
		return
	}
	if file.Size > maxImageBytes {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "image exceeds maximum allowed size", nil))
		return
	}
	reader, err := file.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unreadable image upload", err))
		return
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unreadable image upload", err))
		return
	}

	cropType := healthcheck.CropType(c.PostForm("crop_type"))
	cropStage := healthcheck.CropStage(c.PostForm("crop_stage"))
	lat := parseFloatField(c.PostForm("lat"))
	lon := parseFloatField(c.PostForm("lon"))

	id := uuid.New()
	imageKey := scanImageKey(id)
	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if err := h.images.Put(c.Request.Context(), imageKey, data, mimeType); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to store image", err))
		return
	}

	diag := diagnose(data)
	capturedAt := h.now()
	detection := healthcheck.Detection{
		ID:         id.String(),
		Label:      diag.label,
		Confidence: diag.confidence,
		Severity:   diag.severity,
		CropType:   cropType,
		CropStage:  cropStage,
		Lat:        lat,
		Lon:        lon,
		ImageURL:   "/api/scans/" + id.String() + "/image",
		CapturedAt: &capturedAt,
	}
	if err := h.scans.Insert(c.Request.Context(), detection); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to persist detection", err))
		return
	}
	h.logger.Info("scan recorded", "id", detection.ID, "label", detection.Label, "crop_type", cropType)

	c.JSON(http.StatusOK, healthcheck.AnalysisResult{
		ID:         detection.ID,
		Label:      diag.label,
		Confidence: diag.confidence,
		Severity:   diag.severity,
		HeatmapURL: detection.ImageURL,
		Tips:       diag.tips,
		CapturedAt: &capturedAt,
	})
}

// Detections lists stored scans, newest first.
func (h *Handler) Detections(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	rows, err := h.scans.List(c.Request.Context(), limit, offset)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to list detections", err))
		return
	}
	if rows == nil {
		rows = []healthcheck.Detection{}
	}
	c.JSON(http.StatusOK, rows)
}

// ScanImage serves a stored leaf image.
func (h *Handler) ScanImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "malformed scan id", err))
		return
	}
	data, mimeType, err := h.images.Get(c.Request.Context(), scanImageKey(id))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "scan image not found", err))
		return
	}
	c.Data(http.StatusOK, mimeType, data)
}

// Weather returns deterministic weather readings keyed by coordinate.
func (h *Handler) Weather(c *gin.Context) {
	seed := coordSeed(c.Query("lat"), c.Query("lon"))
	weather := healthcheck.WeatherContext{
		TempC:       18 + float64(seed%150)/10,
		HumidityPct: float64(40 + seed%55),
		WindMs:      float64(seed%80) / 10,
		UVIndex:     float64(seed%110) / 10,
	}
	if seed%3 == 0 {
		rain := float64(seed%200) / 10
		weather.RainMm = &rain
	}
	c.JSON(http.StatusOK, weather)
}

// Air returns deterministic air quality readings keyed by coordinate.
func (h *Handler) Air(c *gin.Context) {
	seed := coordSeed(c.Query("lat"), c.Query("lon"))
	aqi := int(20 + seed%180)
	air := healthcheck.AirContext{
		AQI:      aqi,
		Category: aqiCategory(aqi),
	}
	if seed%2 == 0 {
		pm25 := float64(seed % 90)
		pm10 := float64(seed % 140)
		air.PM25 = &pm25
		air.PM10 = &pm10
	}
	c.JSON(http.StatusOK, air)
}

type diagnosis struct {
	label      string
	confidence float64
	severity   healthcheck.Severity
	tips       []string
}

var diagnosisCatalog = []diagnosis{
	{
		label:      "Leaf Blight",
		confidence: 0.93,
		severity:   healthcheck.SeverityHigh,
		tips: []string{
			"Remove and destroy affected leaves.",
			"Avoid overhead watering at night.",
			"Apply a copper-based fungicide if spread continues.",
		},
	},
	{
		label:      "Powdery Mildew",
		confidence: 0.88,
		severity:   healthcheck.SeverityLow,
		tips: []string{
			"Improve air circulation around plants.",
			"Water at the base, keep foliage dry.",
		},
	},
	{
		label:      "Rust",
		confidence: 0.86,
		severity:   healthcheck.SeverityMedium,
		tips: []string{
			"Remove infected leaves early.",
			"Disinfect pruning tools between plants.",
		},
	},
	{
		label:      "Healthy",
		confidence: 0.97,
		severity:   healthcheck.SeverityLow,
		tips: []string{
			"No disease detected. Keep inspecting leaves weekly.",
		},
	},
}

// diagnose picks a catalog entry from a hash of the image bytes, so the
// same upload always yields the same diagnosis.
func diagnose(image []byte) diagnosis {
	hash := fnv.New64a()
	hash.Write(image)
	return diagnosisCatalog[hash.Sum64()%uint64(len(diagnosisCatalog))]
}

func scanImageKey(id uuid.UUID) string {
	return fmt.Sprintf("scans/%s/leaf.jpg", id)
}

func coordSeed(lat, lon string) uint64 {
	hash := fnv.New64a()
	hash.Write([]byte(lat + "," + lon))
	return hash.Sum64()
}

func aqiCategory(aqi int) string {
	switch {
	case aqi <= 50:
		return "good"
	case aqi <= 100:
		return "moderate"
	case aqi <= 150:
		return "unhealthy_sensitive"
	default:
		return "unhealthy"
	}
}

func parseFloatField(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
