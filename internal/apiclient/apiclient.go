// Package apiclient is the browser-side view of the gateway: it calls
// /weather and /forecast on a running service and decodes the results.
package apiclient

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

	"github.com/google/uuid"

	"github.com/kjstillabower/meteo-gateway/internal/models"
)

const maxBodyBytes = 1 << 20

// APIError is a non-2xx answer from the gateway. Message is the server's
// "error" field, empty when the body did not carry one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// MessageOf returns the server-supplied message carried by err, if any.
func MessageOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// Client talks to one gateway instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the gateway at baseURL (for example http://localhost:3333).
// A nil httpClient gets a 15s timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway URL %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// Weather calls GET /weather?city=.
func (c *Client) Weather(ctx context.Context, city string) (models.CurrentWeather, error) {
	var out models.CurrentWeather
	err := c.get(ctx, "/weather", url.Values{"city": {city}}, &out)
	return out, err
}

// Forecast calls GET /forecast?lat=&lon=.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastDay, error) {
	var out []models.ForecastDay
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	if err := c.get(ctx, "/forecast", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
