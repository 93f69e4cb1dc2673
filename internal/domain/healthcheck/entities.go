package healthcheck

import "time"

// CropType enumerates the crops the assistant recognizes.
type CropType string

const (
	CropRice   CropType = "rice"
	CropWheat  CropType = "wheat"
	CropMaize  CropType = "maize"
	CropPotato CropType = "potato"
	CropTomato CropType = "tomato"
)

// CropStage enumerates growth stages accepted by the inference API.
type CropStage string

const (
	StageSeedling   CropStage = "seedling"
	StageVegetative CropStage = "vegetative"
	StageFlowering  CropStage = "flowering"
	StageFruiting   CropStage = "fruiting"
	StageMaturity   CropStage = "maturity"
)

// CropTypes lists valid crop types in display order.
func CropTypes() []CropType {
	return []CropType{CropRice, CropWheat, CropMaize, CropPotato, CropTomato}
}

// CropStages lists valid growth stages in display order.
func CropStages() []CropStage {
	return []CropStage{StageSeedling, StageVegetative, StageFlowering, StageFruiting, StageMaturity}
}

// ValidCropType reports whether value names a known crop.
func ValidCropType(value CropType) bool {
	for _, c := range CropTypes() {
		if c == value {
			return true
		}
	}
	return false
}

// ValidCropStage reports whether value names a known growth stage.
func ValidCropStage(value CropStage) bool {
	for _, s := range CropStages() {
		if s == value {
			return true
		}
	}
	return false
}

// Severity grades a diagnosis.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Location is a captured position fix. Immutable once produced; a new
// capture attempt fully replaces it. AccuracyM is nil when the source
// reported no usable accuracy figure.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AccuracyM *float64 `json:"accuracyM,omitempty"`
}

// AnalysisResult is the diagnosis returned by the inference API.
type AnalysisResult struct {
	ID         string     `json:"id,omitempty"`
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Severity   Severity   `json:"severity,omitempty"`
	HeatmapURL string     `json:"heatmap_url,omitempty"`
	Tips       []string   `json:"tips,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// WeatherContext carries the weather fields used for advisory notes.
type WeatherContext struct {
	TempC       float64  `json:"temp_c"`
	HumidityPct float64  `json:"humidity"`
	WindMs      float64  `json:"wind_ms"`
	UVIndex     float64  `json:"uv_index"`
	RainMm      *float64 `json:"rain_mm,omitempty"`
}

// AirContext carries air quality readings for the current location.
type AirContext struct {
	AQI      int      `json:"aqi"`
	Category string   `json:"category"`
	PM25     *float64 `json:"pm25,omitempty"`
	PM10     *float64 `json:"pm10,omitempty"`
	O3       *float64 `json:"o3,omitempty"`
}

// Detection is one historical scan record.
type Detection struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Severity   Severity   `json:"severity,omitempty"`
	CropType   CropType   `json:"crop_type,omitempty"`
	CropStage  CropStage  `json:"crop_stage,omitempty"`
	Lat        *float64   `json:"lat,omitempty"`
	Lon        *float64   `json:"lon,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// Profile describes the signed-in farmer.
type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Region string `json:"region,omitempty"`
}

// DefaultProfile is substituted when the profile lookup fails for any
// reason. This is a deliberate, narrow fallback scoped to the profile
// call only; every other call surfaces its failure.
func DefaultProfile() Profile {
	return Profile{Name: "Guest Farmer"}
}
