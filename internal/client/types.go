package client

// Condition is one entry of the provider's "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Coord uses pointers so a missing lat or lon can be told apart from 0.
type Coord struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// CurrentResponse is the subset of /data/2.5/weather the gateway reads.
type CurrentResponse struct {
	Name  string `json:"name"`
	Coord *Coord `json:"coord"`
	Sys   struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// ForecastEntry is one 3-hour step of /data/2.5/forecast.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// ForecastResponse holds the time-ordered 3-hour list.
type ForecastResponse struct {
	List []ForecastEntry `json:"list"`
}

// GeoLocation is one result of /geo/1.0/reverse.
type GeoLocation struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`
}
