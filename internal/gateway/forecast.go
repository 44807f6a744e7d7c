package gateway

import "github.com/kjstillabower/meteo-gateway/internal/client"

const (
	// entriesPerDay is how many 3-hour steps cover 24 hours.
	entriesPerDay = 8
	// forecastDays caps the number of sampled days.
	forecastDays = 5
)

// SelectDaily samples one entry per day from a time-ordered 3-hour list:
// indices 0, 8, 16, ... truncated to forecastDays entries.
func SelectDaily(list []client.ForecastEntry) []client.ForecastEntry {
	out := make([]client.ForecastEntry, 0, forecastDays)
	for i := 0; i < len(list) && len(out) < forecastDays; i += entriesPerDay {
		out = append(out, list[i])
	}
	return out
}
