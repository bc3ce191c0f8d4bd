package microservices

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/server"
	rabbitadapter "github.com/Temutjin2k/skytrack/internal/adapter/rabbit"
	"github.com/Temutjin2k/skytrack/internal/adapter/sbs"
	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/internal/service/auth"
	"github.com/Temutjin2k/skytrack/internal/service/ingest"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/Temutjin2k/skytrack/pkg/rabbit"
	"golang.org/x/sync/errgroup"
)

// IngestService reads dump1090 and feeder uploads and publishes position messages.
type IngestService struct {
	rabbit     *rabbit.RabbitMQ
	reader     *sbs.Reader
	ingest     *ingest.Service
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewIngest(ctx context.Context, cfg config.Config, log logger.Logger) (*IngestService, error) {
	rabbitClient, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "Failed to connect to RabbitMQ", err)
		return nil, err
	}

	producer, err := rabbitadapter.NewPositionProducer(ctx, rabbitClient, cfg.Mode.String(), log)
	if err != nil {
		_ = rabbitClient.Close(ctx)
		return nil, err
	}

	ingestSvc := ingest.NewService(producer, log)
	tokens := auth.NewTokenService(cfg.Auth.FeederSecret, cfg.Auth.FeederTokenTTL)

	httpServer, err := server.New(cfg, server.Services{
		Ingest:  ingestSvc,
		Limiter: ingest.NewFeederLimiter(cfg.Ingest.RatePerSecond, cfg.Ingest.Burst),
		Tokens:  tokens,
		Health: func() map[string]any {
			return map[string]any{
				"rabbitmq_connected": !rabbitClient.IsConnectionClosed(),
				"sbs_enabled":        cfg.SBS.Enabled,
			}
		},
	}, log)
	if err != nil {
		_ = rabbitClient.Close(ctx)
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	var reader *sbs.Reader
	if cfg.SBS.Enabled {
		reader = sbs.NewReader(cfg.SBS.Address, cfg.SBS.RetryBackoff, log)
	}

	return &IngestService{
		rabbit:     rabbitClient,
		reader:     reader,
		ingest:     ingestSvc,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *IngestService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.close(ctx)
		s.log.Info(ctx, "ingest service closed")
	}()

	g, gctx := errgroup.WithContext(ctx)
	if s.reader != nil {
		g.Go(func() error {
			return s.reader.Run(gctx, func(ctx context.Context, msg models.PositionMessage) error {
				return s.ingest.Accept(ctx, types.SourceSBS, msg)
			})
		})
	}

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	s.log.Info(ctx, "ingest service started", "sbs_enabled", s.reader != nil)

	errRun := waitForShutdown(ctx, gctx, errCh, s.log)
	cancel()
	if err := g.Wait(); err != nil && errRun == nil {
		errRun = err
	}
	return errRun
}

func (s *IngestService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}
	if err := s.rabbit.Close(ctx); err != nil {
		s.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
	}
}
