// Package advisory derives human-readable risk notes from weather
// readings. Derivation is pure: no network dependency, deterministic for
// the same input.
package advisory

import "github.com/cropcare/cropcare-go/internal/domain/healthcheck"

const (
	humidityThreshold = 80
	rainThresholdMm   = 5
	uvThreshold       = 9
)

const (
	noteHighHumidity = "High humidity — watch for fungal diseases."
	noteRecentRain   = "Recent rain — risk of leaf wetness related infections."
	noteStrongUV     = "Strong UV — stress possible at midday."
)

// Notes evaluates each risk rule independently and appends the matching
// notes in a fixed order: humidity, rain, UV. A nil weather context
// yields no notes.
func Notes(weather *healthcheck.WeatherContext) []string {
	if weather == nil {
		return nil
	}
	notes := make([]string, 0, 3)
	if weather.HumidityPct >= humidityThreshold {
		notes = append(notes, noteHighHumidity)
	}
	if weather.RainMm != nil && *weather.RainMm > rainThresholdMm {
		notes = append(notes, noteRecentRain)
	}
	if weather.UVIndex >= uvThreshold {
		notes = append(notes, noteStrongUV)
	}
	return notes
}
