package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
// It is read once at startup and never mutated afterwards.
type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// WeatherAPIKey may be empty; the gateway reports that per request.
	WeatherAPIKey     string
	WeatherAPIURL     string
	GeoAPIURL         string
	WeatherAPITimeout time.Duration
	Units             string
	Lang              string
	Location          *time.Location

	StaticDir          string
	CORSAllowedOrigins []string

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

// HasAPIKey reports whether a provider credential was configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.WeatherAPIKey) != ""
}

type fileConfig struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL      string `yaml:"url"`
		GeoURL   string `yaml:"geo_url"`
		Timeout  string `yaml:"timeout"`
		Units    string `yaml:"units"`
		Lang     string `yaml:"lang"`
		Timezone string `yaml:"timezone"`
	} `yaml:"weather_api"`

	Static struct {
		Dir string `yaml:"dir"`
	} `yaml:"static"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Shutdown struct {
		Timeout         string `yaml:"timeout"`
		InFlightTimeout string `yaml:"in_flight_timeout"`
		CheckInterval   string `yaml:"check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml.
// A .env file in the working directory is applied to the environment first.
// API key comes from OPENWEATHER_API_KEY or WEATHER_API_KEY env, else the secrets file.
// Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = firstNonEmpty(os.Getenv("PORT"), fc.Server.Port, "3333")
	cfg.ServerReadTimeout = parseDuration(fc.Server.ReadTimeout, 10*time.Second)
	cfg.ServerWriteTimeout = parseDuration(fc.Server.WriteTimeout, 15*time.Second)

	cfg.WeatherAPIKey = firstNonEmpty(os.Getenv("OPENWEATHER_API_KEY"), os.Getenv("WEATHER_API_KEY"))
	if cfg.WeatherAPIKey == "" {
		key, err := readSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}

	cfg.WeatherAPIURL = strings.TrimRight(firstNonEmpty(os.Getenv("WEATHER_API_URL"), fc.WeatherAPI.URL, "https://api.openweathermap.org/data/2.5"), "/")
	cfg.GeoAPIURL = strings.TrimRight(firstNonEmpty(fc.WeatherAPI.GeoURL, "https://api.openweathermap.org/geo/1.0"), "/")
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 10*time.Second)
	cfg.Units = strings.ToLower(firstNonEmpty(fc.WeatherAPI.Units, "metric"))
	cfg.Lang = firstNonEmpty(fc.WeatherAPI.Lang, "fr")

	tz := firstNonEmpty(os.Getenv("WEATHER_TIMEZONE"), fc.WeatherAPI.Timezone)
	if tz == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	cfg.StaticDir = firstNonEmpty(os.Getenv("STATIC_DIR"), fc.Static.Dir, filepath.Join("web", "dist"))
	cfg.CORSAllowedOrigins = fc.CORS.AllowedOrigins
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.CheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.WeatherAPIKey), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	switch cfg.Units {
	case "metric", "imperial", "standard":
	default:
		return fmt.Errorf("weather_api.units must be metric, imperial or standard, got %q", cfg.Units)
	}
	if cfg.WriteTimeoutTooShort() {
		cfg.ServerWriteTimeout = cfg.WeatherAPITimeout + 5*time.Second
	}
	return nil
}

// WriteTimeoutTooShort reports whether a response could be cut off while the
// upstream call is still allowed to run.
func (c *Config) WriteTimeoutTooShort() bool {
	return c.ServerWriteTimeout <= c.WeatherAPITimeout
}
