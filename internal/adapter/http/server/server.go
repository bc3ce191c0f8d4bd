package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/handler"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/middleware"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/klauspost/compress/gzhttp"
)

const serverIPAddress = "%s:%s"

// Services are the dependencies of the HTTP handlers. Only the ones used by
// the running mode need to be set.
type Services struct {
	Markers  handler.MarkerSource
	Hub      handler.ClientHub
	Ingest   handler.IngestService
	Limiter  handler.FeederLimiter
	Aircraft handler.AircraftService
	Tokens   middleware.TokenValidator
	Health   handler.HealthDetails
}

type API struct {
	mode   types.ServiceMode
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health   *handler.Health
	maps     *handler.Map
	ingest   *handler.Ingest
	aircraft *handler.Aircraft
}

func New(cfg config.Config, svc Services, logger logger.Logger) (*API, error) {
	var port string
	handlers := &handlers{
		health: handler.NewHealth(cfg.Mode.String(), svc.Health, logger),
	}

	switch cfg.Mode {
	case types.MapService:
		if svc.Markers == nil || svc.Hub == nil {
			return nil, errors.New("markers and hub are required")
		}
		port = cfg.Services.MapService
		handlers.maps = handler.NewMap(svc.Markers, svc.Hub, logger)
	case types.IngestService:
		if svc.Ingest == nil || svc.Limiter == nil || svc.Tokens == nil {
			return nil, errors.New("ingest service, limiter and token validator are required")
		}
		port = cfg.Services.IngestService
		handlers.ingest = handler.NewIngest(svc.Ingest, svc.Limiter, logger)
	case types.StoreService:
		port = cfg.Services.StoreService
	case types.APIService:
		if svc.Aircraft == nil {
			return nil, errors.New("aircraft service is required")
		}
		port = cfg.Services.APIService
		handlers.aircraft = handler.NewAircraft(svc.Aircraft, cfg.API.AllowOrigin, logger)
	default:
		return nil, fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	api := &API{
		mode: cfg.Mode,

		mux:    http.NewServeMux(),
		routes: handlers,
		m:      middleware.NewMiddleware(svc.Tokens, logger),
		addr:   fmt.Sprintf(serverIPAddress, "0.0.0.0", port),
		cfg:    cfg,
		log:    logger,
	}

	setupRoutes(api.mux, api.routes, api.m, api.mode, api.log)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// Handler returns the mux wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	// Metrics sits next to the mux so it sees the matched pattern.
	h := a.m.Metrics(a.mode.String())(a.mux)
	h = a.m.Auth(h)
	h = a.m.Logging(h)
	h = a.m.RequestID(h)
	h = a.m.Recover(h)

	// only the api-service serves bulk JSON
	if a.mode == types.APIService {
		h = gzhttp.GzipHandler(h)
	}
	return h
}
