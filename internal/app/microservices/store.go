package microservices

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/server"
	repo "github.com/Temutjin2k/skytrack/internal/adapter/postgres"
	rabbitadapter "github.com/Temutjin2k/skytrack/internal/adapter/rabbit"
	"github.com/Temutjin2k/skytrack/internal/service/store"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	"github.com/Temutjin2k/skytrack/pkg/postgres"
	"github.com/Temutjin2k/skytrack/pkg/rabbit"
	"github.com/Temutjin2k/skytrack/pkg/trm"
	"golang.org/x/sync/errgroup"
)

// StoreService consumes position messages into PostgreSQL.
type StoreService struct {
	postgresDB *postgres.PostgreDB
	rabbit     *rabbit.RabbitMQ
	consumer   *rabbitadapter.PositionConsumer
	store      *store.Service
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewStore(ctx context.Context, cfg config.Config, log logger.Logger) (*StoreService, error) {
	postgresDB, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Error(ctx, "Failed to setup database", err)
		return nil, err
	}

	rabbitClient, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		postgresDB.Close()
		log.Error(ctx, "Failed to connect to RabbitMQ", err)
		return nil, err
	}

	service := cfg.Mode.String()
	storeSvc := store.NewService(
		repo.NewAircraftRepo(postgresDB.Pool, service),
		repo.NewMeasureRepo(postgresDB.Pool, service),
		trm.New(postgresDB.Pool),
		cfg.Store.UTCOffset,
		log,
	)

	httpServer, err := server.New(cfg, server.Services{
		Health: func() map[string]any {
			return map[string]any{
				"rabbitmq_connected": !rabbitClient.IsConnectionClosed(),
				"workers":            cfg.Store.Workers,
			}
		},
	}, log)
	if err != nil {
		postgresDB.Close()
		_ = rabbitClient.Close(ctx)
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &StoreService{
		postgresDB: postgresDB,
		rabbit:     rabbitClient,
		consumer:   rabbitadapter.NewPositionConsumer(rabbitClient, cfg.Store.Workers, service, log),
		store:      storeSvc,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *StoreService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.close(ctx)
		s.log.Info(ctx, "store service closed")
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.consumer.Consume(gctx, s.store.Apply) })

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	s.log.Info(ctx, "store service started", "workers", s.cfg.Store.Workers)

	errRun := waitForShutdown(ctx, gctx, errCh, s.log)
	cancel()
	if err := g.Wait(); err != nil && errRun == nil {
		errRun = err
	}
	return errRun
}

func (s *StoreService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}
	if err := s.rabbit.Close(ctx); err != nil {
		s.log.Warn(ctx, "Failed to close rabbitmq connection", "error", err.Error())
	}
	s.postgresDB.Close()
}

// openDatabase connects to PostgreSQL and creates the tables when missing.
func openDatabase(ctx context.Context, cfg config.Config) (*postgres.PostgreDB, error) {
	db, err := postgres.New(ctx, cfg.Database, postgres.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}

	if err := repo.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
