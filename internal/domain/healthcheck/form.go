package healthcheck

import (
	"bytes"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
)

const defaultFilename = "leaf.jpg"

// buildForm encodes a submission as multipart/form-data. Location fields
// ride along when a fix is present; accuracy is rounded to whole meters
// and omitted entirely when it is not a finite number.
func buildForm(req SubmitRequest) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = defaultFilename
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}

	if err := w.WriteField("crop_type", string(req.CropType)); err != nil {
		return nil, "", fmt.Errorf("write crop_type: %w", err)
	}
	if err := w.WriteField("crop_stage", string(req.CropStage)); err != nil {
		return nil, "", fmt.Errorf("write crop_stage: %w", err)
	}

	if loc := req.Location; loc != nil {
		if err := w.WriteField("lat", formatCoord(loc.Latitude)); err != nil {
			return nil, "", fmt.Errorf("write lat: %w", err)
		}
		if err := w.WriteField("lon", formatCoord(loc.Longitude)); err != nil {
			return nil, "", fmt.Errorf("write lon: %w", err)
		}
		if acc := loc.AccuracyM; acc != nil && isFinite(*acc) {
			if err := w.WriteField("acc", strconv.Itoa(int(math.Round(*acc)))); err != nil {
				return nil, "", fmt.Errorf("write acc: %w", err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
