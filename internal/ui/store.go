// Package ui holds the weather client's view state and the flows that drive it:
// a city search, which chains current weather into the forecast, and the
// "use my location" lookup.
package ui

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kjstillabower/meteo-gateway/internal/apiclient"
	"github.com/kjstillabower/meteo-gateway/internal/models"
)

// User-facing failure messages.
const (
	MsgWeatherFailed       = "failed to retrieve weather data"
	MsgGeoUnsupported      = "geolocation is not supported"
	MsgLocationUnavailable = "unable to access your location"
	MsgCityUnresolved      = "unable to determine your city"
)

// ErrLocationDenied is returned by a Locator when the user refuses to share a position.
var ErrLocationDenied = errors.New("location permission denied")

// State is what the view renders. Forecast is never nil.
type State struct {
	Query    string
	Loading  bool
	Error    string
	Weather  *models.CurrentWeather
	Forecast []models.ForecastDay
}

// WeatherAPI is the gateway as seen from the client.
type WeatherAPI interface {
	Weather(ctx context.Context, city string) (models.CurrentWeather, error)
	Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastDay, error)
}

// Locator returns the device position.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// Geocoder turns a position into a city name.
type Geocoder interface {
	CityAt(ctx context.Context, lat, lon float64) (string, error)
}

// Store owns the view state. Every flow takes a sequence number when it starts and
// its updates are dropped once a newer flow has started, so a slow response can
// never overwrite the result of a later search.
type Store struct {
	api      WeatherAPI
	locator  Locator
	geocoder Geocoder

	mu       sync.Mutex
	state    State
	latest   uint64
	onChange func(State)
}

// NewStore returns an idle store. locator and geocoder may be nil, in which case
// UseMyLocation reports geolocation as unsupported.
func NewStore(api WeatherAPI, locator Locator, geocoder Geocoder) *Store {
	return &Store{
		api:      api,
		locator:  locator,
		geocoder: geocoder,
		state:    State{Forecast: []models.ForecastDay{}},
	}
}

// OnChange registers fn to be called with a snapshot after every applied update.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Search runs the city flow: current weather, then the forecast for the
// coordinates it returned. Blank input is ignored.
func (s *Store) Search(ctx context.Context, input string) {
	city := strings.TrimSpace(input)
	if city == "" {
		return
	}
	token := s.begin(func(st *State) { st.Query = city })

	weather, err := s.api.Weather(ctx, city)
	if err != nil {
		msg, ok := apiclient.MessageOf(err)
		if !ok {
			msg = MsgWeatherFailed
		}
		s.apply(token, func(st *State) {
			st.Error = msg
			st.Loading = false
		})
		return
	}
	if !s.apply(token, func(st *State) { st.Weather = &weather }) {
		return
	}

	days, err := s.api.Forecast(ctx, weather.Lat, weather.Lon)
	s.apply(token, func(st *State) {
		// A failed forecast leaves the previous strip in place and raises no error.
		if err == nil {
			if days == nil {
				days = []models.ForecastDay{}
			}
			st.Forecast = days
		}
		st.Loading = false
	})
}

// UseMyLocation resolves the device position to a city and then runs Search for it.
func (s *Store) UseMyLocation(ctx context.Context) {
	if s.locator == nil || s.geocoder == nil {
		s.mu.Lock()
		s.state.Error = MsgGeoUnsupported
		s.notify()
		s.mu.Unlock()
		return
	}
	token := s.begin(nil)

	lat, lon, err := s.locator.Locate(ctx)
	if err != nil {
		s.apply(token, func(st *State) {
			st.Error = MsgLocationUnavailable
			st.Loading = false
		})
		return
	}
	city, err := s.geocoder.CityAt(ctx, lat, lon)
	if err != nil || strings.TrimSpace(city) == "" {
		s.apply(token, func(st *State) {
			st.Error = MsgCityUnresolved
			st.Loading = false
		})
		return
	}
	if !s.isLatest(token) {
		return
	}
	s.Search(ctx, city)
}

// begin starts a new flow: loading on, error cleared.
func (s *Store) begin(update func(*State)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.state.Loading = true
	s.state.Error = ""
	if update != nil {
		update(&s.state)
	}
	s.notify()
	return s.latest
}

// apply runs update only if token still identifies the latest flow.
func (s *Store) apply(token uint64, update func(*State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return false
	}
	update(&s.state)
	s.notify()
	return true
}

func (s *Store) isLatest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.latest
}

// notify must be called with mu held.
func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange(s.snapshot())
	}
}

func (s *Store) snapshot() State {
	st := s.state
	if st.Weather != nil {
		w := *st.Weather
		st.Weather = &w
	}
	st.Forecast = append([]models.ForecastDay{}, s.state.Forecast...)
	return st
}
