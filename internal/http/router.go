package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/meteo-gateway/internal/observability"
)

// NewRouter wires the API routes, the operational endpoints and the SPA fallback.
// Registration order matters: the catch-all must come last.
func NewRouter(h *Handler, static *StaticHandler, logger *zap.Logger, allowedOrigins []string) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(CORSMiddleware(allowedOrigins))

	router.HandleFunc("/", h.Root).Methods(http.MethodGet).Name("root")
	router.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet).Name("weather")
	router.HandleFunc("/forecast", h.GetForecast).Methods(http.MethodGet).Name("forecast")
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet).Name("health")
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
	router.PathPrefix(assetsPrefix).HandlerFunc(static.ServeAsset).Methods(http.MethodGet, http.MethodHead).Name("assets")
	router.PathPrefix("/").HandlerFunc(static.ServeIndex).Name("spa")

	return router
}
