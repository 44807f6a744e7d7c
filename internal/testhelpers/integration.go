//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/meteo-gateway/internal/client"
	"github.com/kjstillabower/meteo-gateway/internal/gateway"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey string
	APIURL string
	GeoURL string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if neither OPENWEATHER_API_KEY nor WEATHER_API_KEY is set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("WEATHER_API_KEY")
	}
	if apiKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}
	return IntegrationTestConfig{
		APIKey: apiKey,
		APIURL: os.Getenv("WEATHER_API_URL"),
		GeoURL: os.Getenv("GEO_API_URL"),
	}
}

// SetupIntegrationClient creates a provider client against the real API.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) *client.OpenWeatherClient {
	t.Helper()
	c, err := client.NewOpenWeatherClient(cfg.APIKey, client.Options{
		BaseURL: cfg.APIURL,
		GeoURL:  cfg.GeoURL,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// SetupIntegrationGateway creates a gateway with French dates in Europe/Paris.
func SetupIntegrationGateway(t *testing.T, cfg IntegrationTestConfig) *gateway.Gateway {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		loc = time.UTC
	}
	return gateway.New(SetupIntegrationClient(t, cfg), gateway.Settings{
		CredentialConfigured: true,
		Lang:                 "fr",
		Location:             loc,
	})
}
