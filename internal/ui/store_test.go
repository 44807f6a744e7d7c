package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/meteo-gateway/internal/apiclient"
	"github.com/kjstillabower/meteo-gateway/internal/client"
	"github.com/kjstillabower/meteo-gateway/internal/models"
)

type forecastCall struct{ lat, lon float64 }

type mockAPI struct {
	mu            sync.Mutex
	weather       map[string]models.CurrentWeather
	weatherErr    error
	forecast      []models.ForecastDay
	forecastErr   error
	weatherCalls  []string
	forecastCalls []forecastCall
	// gate, when set, blocks Weather for the named city until closed.
	gate map[string]chan struct{}
}

func (m *mockAPI) Weather(ctx context.Context, city string) (models.CurrentWeather, error) {
	m.mu.Lock()
	m.weatherCalls = append(m.weatherCalls, city)
	gate := m.gate[city]
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if m.weatherErr != nil {
		return models.CurrentWeather{}, m.weatherErr
	}
	return m.weather[city], nil
}

func (m *mockAPI) Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastCalls = append(m.forecastCalls, forecastCall{lat, lon})
	return m.forecast, m.forecastErr
}

func paris() models.CurrentWeather {
	return models.CurrentWeather{City: "Paris", Country: "FR", Temperature: 19, Description: "ciel dégagé", Icon: "01d", Lat: 48.8534, Lon: 2.3488}
}

func fiveDays() []models.ForecastDay {
	days := make([]models.ForecastDay, 5)
	for i := range days {
		days[i] = models.ForecastDay{Date: []string{"15/10/2026", "16/10/2026", "17/10/2026", "18/10/2026", "19/10/2026"}[i], Temperature: 12 + i, Icon: "10d"}
	}
	return days
}

func TestStore_SearchSuccess(t *testing.T) {
	api := &mockAPI{weather: map[string]models.CurrentWeather{"Paris": paris()}, forecast: fiveDays()}
	store := NewStore(api, nil, nil)
	var loadingSeen []bool
	store.OnChange(func(st State) { loadingSeen = append(loadingSeen, st.Loading) })

	store.Search(context.Background(), "  Paris ")

	st := store.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Weather)
	assert.Equal(t, "Paris", st.Weather.City)
	assert.Len(t, st.Forecast, 5)
	assert.Equal(t, "", st.Error)
	assert.Equal(t, []string{"Paris"}, api.weatherCalls)
	assert.Equal(t, []forecastCall{{48.8534, 2.3488}}, api.forecastCalls)
	require.NotEmpty(t, loadingSeen)
	assert.True(t, loadingSeen[0])
	assert.False(t, loadingSeen[len(loadingSeen)-1])
}

func TestStore_SearchNotFound(t *testing.T) {
	api := &mockAPI{weatherErr: &apiclient.APIError{Status: 404, Message: "city not found"}}
	store := NewStore(api, nil, nil)

	store.Search(context.Background(), "Nonexistentville")

	st := store.State()
	assert.Nil(t, st.Weather)
	assert.Equal(t, []models.ForecastDay{}, st.Forecast)
	assert.Equal(t, "city not found", st.Error)
	assert.False(t, st.Loading)
	assert.Empty(t, api.forecastCalls)
}

func TestStore_SearchUnstructuredError(t *testing.T) {
	store := NewStore(&mockAPI{weatherErr: errors.New("connection refused")}, nil, nil)

	store.Search(context.Background(), "Paris")

	assert.Equal(t, MsgWeatherFailed, store.State().Error)
}

func TestStore_SearchBlankIgnored(t *testing.T) {
	api := &mockAPI{}
	store := NewStore(api, nil, nil)
	changes := 0
	store.OnChange(func(State) { changes++ })

	store.Search(context.Background(), "   ")

	assert.Zero(t, changes)
	assert.Empty(t, api.weatherCalls)
}

func TestStore_ForecastFailureIsSilent(t *testing.T) {
	api := &mockAPI{weather: map[string]models.CurrentWeather{"Paris": paris()}, forecast: fiveDays()}
	store := NewStore(api, nil, nil)
	store.Search(context.Background(), "Paris")

	api.forecastErr = &apiclient.APIError{Status: 500, Message: "failed to retrieve forecast data"}
	store.Search(context.Background(), "Paris")

	st := store.State()
	assert.Equal(t, "", st.Error)
	assert.NotNil(t, st.Weather)
	assert.Len(t, st.Forecast, 5, "previous forecast is kept")
	assert.False(t, st.Loading)
}

func TestStore_NewSearchClearsError(t *testing.T) {
	api := &mockAPI{weatherErr: &apiclient.APIError{Status: 400, Message: "city parameter is invalid"}}
	store := NewStore(api, nil, nil)
	store.Search(context.Background(), "x")
	require.NotEmpty(t, store.State().Error)

	api.weatherErr = nil
	api.weather = map[string]models.CurrentWeather{"Paris": paris()}
	store.Search(context.Background(), "Paris")

	assert.Equal(t, "", store.State().Error)
}

// TestStore_StaleResponseDropped starts a slow search, then a fast one; the slow
// response must not overwrite the newer result.
func TestStore_StaleResponseDropped(t *testing.T) {
	lyon := models.CurrentWeather{City: "Lyon", Country: "FR", Lat: 45.75, Lon: 4.85}
	gate := make(chan struct{})
	api := &mockAPI{
		weather:  map[string]models.CurrentWeather{"Paris": paris(), "Lyon": lyon},
		forecast: fiveDays(),
		gate:     map[string]chan struct{}{"Paris": gate},
	}
	store := NewStore(api, nil, nil)

	done := make(chan struct{})
	go func() {
		store.Search(context.Background(), "Paris")
		close(done)
	}()
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.weatherCalls) == 1
	}, time.Second, time.Millisecond)

	store.Search(context.Background(), "Lyon")
	close(gate)
	<-done

	st := store.State()
	require.NotNil(t, st.Weather)
	assert.Equal(t, "Lyon", st.Weather.City)
	assert.Equal(t, "Lyon", st.Query)
	assert.False(t, st.Loading)
	assert.Equal(t, []forecastCall{{45.75, 4.85}}, api.forecastCalls, "stale flow stops before its forecast call")
}

type mockLocator struct {
	lat, lon float64
	err      error
}

func (m mockLocator) Locate(ctx context.Context) (float64, float64, error) {
	return m.lat, m.lon, m.err
}

type mockGeo struct {
	places []client.GeoLocation
	err    error
	got    []float64
}

func (m *mockGeo) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]client.GeoLocation, error) {
	m.got = []float64{lat, lon, float64(limit)}
	return m.places, m.err
}

func TestStore_UseMyLocation(t *testing.T) {
	api := &mockAPI{weather: map[string]models.CurrentWeather{"Paris": paris()}, forecast: fiveDays()}
	geo := &mockGeo{places: []client.GeoLocation{{Name: "Paris", Country: "FR"}}}
	store := NewStore(api, mockLocator{lat: 48.85, lon: 2.35}, NewOpenWeatherGeocoder(geo))

	store.UseMyLocation(context.Background())

	st := store.State()
	assert.Equal(t, []float64{48.85, 2.35, 1}, geo.got)
	assert.Equal(t, "Paris", st.Query)
	require.NotNil(t, st.Weather)
	assert.Len(t, st.Forecast, 5)
	assert.False(t, st.Loading)
}

func TestStore_UseMyLocationFailures(t *testing.T) {
	tests := []struct {
		name    string
		locator Locator
		geo     *mockGeo
		wantErr string
	}{
		{"unsupported", nil, &mockGeo{}, MsgGeoUnsupported},
		{"denied", mockLocator{err: ErrLocationDenied}, &mockGeo{}, MsgLocationUnavailable},
		{"geocode error", mockLocator{lat: 1, lon: 2}, &mockGeo{err: errors.New("boom")}, MsgCityUnresolved},
		{"no place", mockLocator{lat: 1, lon: 2}, &mockGeo{}, MsgCityUnresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			store := NewStore(api, tt.locator, NewOpenWeatherGeocoder(tt.geo))

			store.UseMyLocation(context.Background())

			st := store.State()
			assert.Equal(t, tt.wantErr, st.Error)
			assert.False(t, st.Loading)
			assert.Empty(t, api.weatherCalls)
		})
	}
}

func TestRender(t *testing.T) {
	w := paris()
	st := State{Weather: &w, Forecast: fiveDays()[:2], Error: "city not found"}
	var b strings.Builder

	require.NoError(t, Render(&b, st, "fr"))

	out := b.String()
	assert.Contains(t, out, "city not found")
	assert.Contains(t, out, "Paris, FR")
	assert.Contains(t, out, "Ciel Dégagé")
	assert.Contains(t, out, "https://openweathermap.org/img/wn/01d@2x.png")
	assert.Contains(t, out, "2-day forecast")
	assert.Contains(t, out, "Jeudi      15/10/2026")
	assert.Contains(t, out, "Vendredi   16/10/2026")
	assert.NotContains(t, out, "loading")
}

func TestRender_Empty(t *testing.T) {
	var b strings.Builder

	require.NoError(t, Render(&b, State{}, "fr"))

	assert.Equal(t, "enter a city to see its weather\n", b.String())
}

func TestRender_WeekdayFollowsLanguage(t *testing.T) {
	tests := []struct {
		lang string
		date string
		want string
	}{
		{"fr", "19/10/2026", "Lundi"},
		{"en-US", "10/19/2026", "Monday"},
		{"de", "19.10.2026", "Monday"},
		{"fr", "not a date", ""},
	}
	for _, tt := range tests {
		var b strings.Builder
		st := State{Forecast: []models.ForecastDay{{Date: tt.date, Temperature: 9, Description: "pluie"}}}

		require.NoError(t, Render(&b, st, tt.lang))

		line := strings.Split(strings.TrimSpace(b.String()), "\n")[1]
		assert.Equal(t, tt.want, strings.TrimSpace(line[:10]), "lang=%s date=%s", tt.lang, tt.date)
	}
}
