package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kjstillabower/meteo-gateway/internal/observability"
)

func newTestClient(t *testing.T, serverURL string) *OpenWeatherClient {
	t.Helper()
	c, err := NewOpenWeatherClient("test-api-key-12345", Options{
		BaseURL: serverURL + "/data/2.5",
		GeoURL:  serverURL + "/geo/1.0",
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

func TestNewOpenWeatherClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"custom http", Options{BaseURL: "http://localhost:9999/data/2.5"}, false},
		{"bad scheme", Options{BaseURL: "ftp://example.com"}, true},
		{"unparseable", Options{GeoURL: "http://[::1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewOpenWeatherClient("", tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewOpenWeatherClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && c != nil {
				t.Error("NewOpenWeatherClient() expected nil client on error")
			}
		})
	}
}

func TestOpenWeatherClient_CurrentByCity_Success(t *testing.T) {
	apiResp := map[string]interface{}{
		"name":  "Paris",
		"coord": map[string]interface{}{"lat": 48.8534, "lon": 2.3488},
		"sys":   map[string]interface{}{"country": "FR"},
		"main": map[string]interface{}{
			"temp":       21.5,
			"feels_like": 19.4,
			"humidity":   65,
			"pressure":   1013,
		},
		"weather": []map[string]interface{}{
			{"main": "Clouds", "description": "nuageux", "icon": "04d"},
		},
		"wind": map[string]interface{}{"speed": 3.6},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path = %s, want /data/2.5/weather", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Paris" {
			t.Errorf("q = %q, want Paris", q.Get("q"))
		}
		if q.Get("appid") != "test-api-key-12345" {
			t.Errorf("appid = %q", q.Get("appid"))
		}
		if q.Get("units") != "metric" || q.Get("lang") != "fr" {
			t.Errorf("units/lang = %q/%q, want metric/fr", q.Get("units"), q.Get("lang"))
		}
		if got := r.Header.Get("X-Correlation-ID"); got != "corr-1" {
			t.Errorf("X-Correlation-ID = %q, want corr-1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiResp)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	got, err := c.CurrentByCity(ctx, "Paris")
	if err != nil {
		t.Fatalf("CurrentByCity() error = %v", err)
	}

	if got.Name != "Paris" || got.Sys.Country != "FR" {
		t.Errorf("Name/Country = %q/%q", got.Name, got.Sys.Country)
	}
	if got.Coord == nil || got.Coord.Lat == nil || *got.Coord.Lat != 48.8534 {
		t.Errorf("Coord = %+v, want lat 48.8534", got.Coord)
	}
	if got.Main.Temp != 21.5 || got.Main.FeelsLike != 19.4 {
		t.Errorf("Temp/FeelsLike = %v/%v", got.Main.Temp, got.Main.FeelsLike)
	}
	if len(got.Weather) != 1 || got.Weather[0].Icon != "04d" {
		t.Errorf("Weather = %+v", got.Weather)
	}
}

func TestOpenWeatherClient_ForecastByCoords_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("path = %s, want /data/2.5/forecast", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "48.8534" || q.Get("lon") != "-2.5" {
			t.Errorf("lat/lon = %q/%q", q.Get("lat"), q.Get("lon"))
		}
		_, _ = w.Write([]byte(`{"list":[{"dt":1700000000,"main":{"temp":10.2,"humidity":80},"weather":[{"description":"pluie","icon":"10d"}],"wind":{"speed":5}}]}`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).ForecastByCoords(context.Background(), 48.8534, -2.5)
	if err != nil {
		t.Fatalf("ForecastByCoords() error = %v", err)
	}
	if len(got.List) != 1 || got.List[0].Dt != 1700000000 || got.List[0].Weather[0].Description != "pluie" {
		t.Errorf("List = %+v", got.List)
	}
}

func TestOpenWeatherClient_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/reverse" {
			t.Errorf("path = %s, want /geo/1.0/reverse", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q, want 1", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`[{"name":"Lyon","lat":45.76,"lon":4.83,"country":"FR"}]`))
	}))
	defer server.Close()

	places, err := newTestClient(t, server.URL).ReverseGeocode(context.Background(), 45.76, 4.83, 0)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if len(places) != 1 || places[0].Name != "Lyon" {
		t.Errorf("places = %+v, want Lyon", places)
	}
}

// TestOpenWeatherClient_ErrorClassification verifies that each failure is tagged at the
// boundary: only a 404 carries the not-found reason, everything else is "other".
func TestOpenWeatherClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantReason FailureReason
		wantStatus int
		wantIs     error
	}{
		{
			name:       "404 not found",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantReason: ReasonNotFound,
			wantStatus: 404,
			wantIs:     ErrLocationNotFound,
		},
		{
			name:       "401 unauthorized",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			wantReason: ReasonOther,
			wantStatus: 401,
			wantIs:     ErrInvalidAPIKey,
		},
		{
			name:       "500 server error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantReason: ReasonOther,
			wantStatus: 500,
			wantIs:     ErrUpstreamFailure,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"name": `))
			},
			wantReason: ReasonOther,
			wantStatus: 200,
			wantIs:     ErrUpstreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(t, server.URL).CurrentByCity(context.Background(), "Nonexistentville")
			if err == nil {
				t.Fatal("CurrentByCity() expected error, got nil")
			}
			var ue *UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("error %v is not *UpstreamError", err)
			}
			if ue.Reason != tt.wantReason {
				t.Errorf("Reason = %v, want %v", ue.Reason, tt.wantReason)
			}
			if ue.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", ue.StatusCode, tt.wantStatus)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestOpenWeatherClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, server.URL)
	server.Close()

	_, err := c.ForecastByCoords(context.Background(), 1, 2)
	if err == nil {
		t.Fatal("ForecastByCoords() expected error for closed server")
	}
	if r, ok := ReasonOf(err); !ok || r != ReasonOther {
		t.Errorf("ReasonOf() = %v, %v; want other, true", r, ok)
	}
}

func TestOpenWeatherClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c, err := NewOpenWeatherClient("k", Options{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	_, err = c.CurrentByCity(context.Background(), "Paris")
	if err == nil {
		t.Fatal("CurrentByCity() expected timeout error")
	}
	if got := CategorizeError(err); got != ErrorCategoryTimeout {
		t.Errorf("CategorizeError() = %v, want timeout", got)
	}
}
