package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/meteo-gateway/internal/gateway"
	"github.com/kjstillabower/meteo-gateway/internal/lifecycle"
	"github.com/kjstillabower/meteo-gateway/internal/models"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the weather API"

// WeatherGateway is the gateway surface the handlers need.
type WeatherGateway interface {
	GetCurrentWeather(ctx context.Context, city string) (models.CurrentWeather, error)
	GetForecast(ctx context.Context, lat, lon string) ([]models.ForecastDay, error)
}

// HealthConfig holds what the health handler reports on.
type HealthConfig struct {
	CredentialConfigured bool
	StartTime            time.Time
	Version              string
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	gateway          WeatherGateway
	healthConfig     HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(gw WeatherGateway, healthConfig HealthConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if healthConfig.Version == "" {
		healthConfig.Version = "dev"
	}
	return &Handler{
		gateway:      gw,
		healthConfig: healthConfig,
		logger:       logger,
	}
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// GetWeather handles GET /weather?city=.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.GetCurrentWeather(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeGatewayError(w, err, gateway.MsgWeatherUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetForecast handles GET /forecast?lat=&lon=.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := h.gateway.GetForecast(r.Context(), q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeGatewayError(w, err, gateway.MsgForecastUnavailable)
		return
	}
	if days == nil {
		days = []models.ForecastDay{}
	}
	writeJSON(w, http.StatusOK, days)
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := map[string]string{"weatherApiKey": "configured"}
	if !h.healthConfig.CredentialConfigured {
		checks["weatherApiKey"] = "missing"
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "meteo-gateway",
		"version":   h.healthConfig.Version,
		"checks":    checks,
		"inFlight":  InFlight(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if !h.healthConfig.StartTime.IsZero() {
		resp["uptimeSeconds"] = int64(time.Since(h.healthConfig.StartTime).Seconds())
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates, in order: shutting-down > starting > missing credential > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	switch lifecycle.CurrentPhase() {
	case lifecycle.PhaseDraining:
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	case lifecycle.PhaseStarting:
		return healthResult{"starting", http.StatusServiceUnavailable, "not_ready"}
	}
	if !h.healthConfig.CredentialConfigured {
		return healthResult{"degraded", http.StatusServiceUnavailable, "api_key_missing"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {"error": message} body every failure uses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGatewayError maps a gateway failure onto its status and client message.
// Errors that did not come from the gateway get fallback with a 500.
func writeGatewayError(w http.ResponseWriter, err error, fallback string) {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		writeError(w, ge.Kind.Status(), ge.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}
