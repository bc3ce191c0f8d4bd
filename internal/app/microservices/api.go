package microservices

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/server"
	repo "github.com/Temutjin2k/skytrack/internal/adapter/postgres"
	"github.com/Temutjin2k/skytrack/internal/service/aircraft"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/Temutjin2k/skytrack/pkg/postgres"
)

// APIService serves the aircraft snapshot polled by the map service.
type APIService struct {
	postgresDB *postgres.PostgreDB
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewAPI(ctx context.Context, cfg config.Config, log logger.Logger) (*APIService, error) {
	postgresDB, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	service := cfg.Mode.String()
	aircraftSvc := aircraft.NewService(
		repo.NewMeasureRepo(postgresDB.Pool, service),
		repo.NewAircraftRepo(postgresDB.Pool, service),
		cfg.API.Window,
	)

	httpServer, err := server.New(cfg, server.Services{
		Aircraft: aircraftSvc,
		Health: func() map[string]any {
			stat := postgresDB.Pool.Stat()
			return map[string]any{
				"db_total_conns": stat.TotalConns(),
				"window":         cfg.API.Window.String(),
			}
		},
	}, log)
	if err != nil {
		postgresDB.Close()
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &APIService{
		postgresDB: postgresDB,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *APIService) Start(ctx context.Context) error {
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "api service closed")
	}()

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	s.log.Info(ctx, "api service started", "window", s.cfg.API.Window.String())

	// no background workers
	return waitForShutdown(ctx, context.Background(), errCh, s.log)
}

func (s *APIService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}
	s.postgresDB.Close()
}
