package models

// CurrentWeather is the client-facing snapshot returned by GET /weather.
// Lat and Lon are always set on success; the UI uses them for the forecast call.
type CurrentWeather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature int     `json:"temperature"`
	FeelsLike   int     `json:"feels_like"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    int     `json:"pressure"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// ForecastDay is one sampled entry of GET /forecast, roughly one per calendar day.
type ForecastDay struct {
	Date        string  `json:"date"`
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}
