package server

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/skytrack/docs"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/middleware"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware, mode types.ServiceMode, log logger.Logger) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux, mode, log)
	setupMetricsRoute(mux)

	switch mode {
	case types.MapService:
		setupMapRoutes(mux, routes)
	case types.IngestService:
		setupIngestRoutes(mux, routes, m)
	case types.APIService:
		setupAircraftRoutes(mux, routes)
	}
}

// setupMapRoutes setups routes for map service
func setupMapRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("GET /markers", routes.maps.Markers)         // Current overlay
	mux.HandleFunc("GET /ws/map", routes.maps.HandleWebSocket) // WebSocket connection for map clients
}

// setupIngestRoutes setups routes for ingest service
func setupIngestRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /ingest/messages", m.RequireFeeder(routes.ingest.UploadMessages)) // Feeder upload
}

// setupAircraftRoutes setups routes for api service
func setupAircraftRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("GET /aircraft", routes.aircraft.ListAircraft)       // Snapshot polled by the map service
	mux.HandleFunc("GET /aircraft/{icao}", routes.aircraft.GetAircraft) // Latest state of one aircraft
}

// setupSwaggerRoutes configures Swagger UI endpoints based on service mode
func setupSwaggerRoutes(mux *http.ServeMux, mode types.ServiceMode, log logger.Logger) {
	var instanceName string

	switch mode {
	case types.MapService:
		instanceName = docs.MapInstance
	case types.IngestService:
		instanceName = docs.IngestInstance
	case types.APIService:
		instanceName = docs.APIInstance
	case types.StoreService:
		// no public API
		return
	default:
		log.Warn(wrap.WithAction(context.Background(), "setup swagger routes"), "unknown service mode for swagger setup", "mode", mode)
		return
	}

	// Swagger UI endpoint
	swaggerURL := httpSwagger.InstanceName(instanceName)
	mux.HandleFunc("/swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}
