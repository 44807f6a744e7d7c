package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/meteo-gateway/internal/observability"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// WeatherProvider is the upstream surface the gateway depends on.
type WeatherProvider interface {
	CurrentByCity(ctx context.Context, city string) (CurrentResponse, error)
	ForecastByCoords(ctx context.Context, lat, lon float64) (ForecastResponse, error)
}

// Options configures an OpenWeatherClient. Zero values fall back to the public
// OpenWeather endpoints, metric units and French descriptions.
type Options struct {
	BaseURL string
	GeoURL  string
	Units   string
	Lang    string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// OpenWeatherClient calls the OpenWeather data and geocoding APIs. It holds no
// per-request state and is safe for concurrent use.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	geoURL  string
	units   string
	lang    string
	client  *http.Client
}

// NewOpenWeatherClient builds a client. An empty apiKey is accepted; callers
// are expected to reject requests before reaching the provider in that case.
func NewOpenWeatherClient(apiKey string, opts Options) (*OpenWeatherClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if opts.GeoURL == "" {
		opts.GeoURL = "https://api.openweathermap.org/geo/1.0"
	}
	for _, raw := range []string{opts.BaseURL, opts.GeoURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", raw, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
		}
	}
	if opts.Units == "" {
		opts.Units = "metric"
	}
	if opts.Lang == "" {
		opts.Lang = "fr"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		geoURL:  strings.TrimRight(opts.GeoURL, "/"),
		units:   opts.Units,
		lang:    opts.Lang,
		client:  httpClient,
	}, nil
}

// CurrentByCity calls GET {base}/weather?q={city}.
func (c *OpenWeatherClient) CurrentByCity(ctx context.Context, city string) (CurrentResponse, error) {
	params := c.dataParams()
	params.Set("q", city)

	var resp CurrentResponse
	if err := c.get(ctx, observability.EndpointWeather, c.baseURL+"/weather", params, &resp); err != nil {
		return CurrentResponse{}, err
	}
	return resp, nil
}

// ForecastByCoords calls GET {base}/forecast?lat={lat}&lon={lon}.
func (c *OpenWeatherClient) ForecastByCoords(ctx context.Context, lat, lon float64) (ForecastResponse, error) {
	params := c.dataParams()
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))

	var resp ForecastResponse
	if err := c.get(ctx, observability.EndpointForecast, c.baseURL+"/forecast", params, &resp); err != nil {
		return ForecastResponse{}, err
	}
	return resp, nil
}

// ReverseGeocode calls GET {geo}/reverse and returns at most limit places near lat/lon.
func (c *OpenWeatherClient) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]GeoLocation, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	var places []GeoLocation
	if err := c.get(ctx, observability.EndpointReverse, c.geoURL+"/reverse", params, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (c *OpenWeatherClient) dataParams() url.Values {
	params := url.Values{}
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)
	params.Set("lang", c.lang)
	return params
}

// get performs one GET and decodes the JSON body into dst. Every failure is
// returned as *UpstreamError with its reason already classified.
func (c *OpenWeatherClient) get(ctx context.Context, endpoint, rawURL string, params url.Values, dst any) error {
	start := time.Now()
	fail := func(reason FailureReason, status int, err error) error {
		ue := &UpstreamError{Endpoint: endpoint, Reason: reason, StatusCode: status, Err: err}
		observability.UpstreamErrorsTotal.WithLabelValues(endpoint, string(CategorizeError(ue))).Inc()
		return ue
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return fail(ReasonOther, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.UpstreamCallsTotal.WithLabelValues(endpoint, "error").Inc()
		observability.UpstreamDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fail(ReasonOther, 0, fmt.Errorf("request timeout: %w", err))
		}
		return fail(ReasonOther, 0, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	status := observability.StatusLabel(resp.StatusCode)
	observability.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
	observability.UpstreamDuration.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fail(ReasonNotFound, resp.StatusCode, ErrLocationNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return fail(ReasonOther, resp.StatusCode, ErrInvalidAPIKey)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fail(ReasonOther, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(ReasonOther, resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fail(ReasonOther, resp.StatusCode, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
