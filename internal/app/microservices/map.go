package microservices

import (
	"context"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/adapter/feed"
	"github.com/Temutjin2k/skytrack/internal/adapter/http/server"
	"github.com/Temutjin2k/skytrack/internal/adapter/overlay"
	"github.com/Temutjin2k/skytrack/internal/service/poller"
	"github.com/Temutjin2k/skytrack/internal/service/reconciler"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	ws "github.com/Temutjin2k/skytrack/pkg/wsHub"
	"golang.org/x/sync/errgroup"
)

const clientPingInterval = 30 * time.Second

// MapService polls the aircraft snapshot and keeps the map overlay in sync.
type MapService struct {
	hub        *ws.ConnectionHub
	poller     *poller.Poller
	httpServer *server.API

	cfg config.Config
	log logger.Logger
}

func NewMap(ctx context.Context, cfg config.Config, log logger.Logger) (*MapService, error) {
	hub := ws.NewConnHub(log)
	surface := overlay.NewBroadcaster(hub, log)
	rec := reconciler.New(surface, log)
	fetcher := feed.NewClient(cfg.Feed.URL, cfg.Feed.MaxBodyBytes, log)

	httpServer, err := server.New(cfg, server.Services{
		Markers: surface,
		Hub:     hub,
		Health: func() map[string]any {
			return map[string]any{
				"tracked":     rec.Len(),
				"map_clients": hub.Len(),
			}
		},
	}, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &MapService{
		hub:        hub,
		poller:     poller.New(fetcher, rec, cfg.Feed.PollInterval, cfg.Feed.FetchTimeout, log),
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func (s *MapService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.close(ctx)
		s.log.Info(ctx, "map service closed")
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.poller.Run(gctx) })
	g.Go(func() error { return s.hub.KeepAlive(gctx, clientPingInterval) })

	errCh := make(chan error, 1)
	s.httpServer.Run(ctx, errCh)

	s.log.Info(ctx, "map service started", "feed_url", s.cfg.Feed.URL)

	errRun := waitForShutdown(ctx, gctx, errCh, s.log)
	cancel()
	if err := g.Wait(); err != nil && errRun == nil {
		errRun = err
	}
	return errRun
}

func (s *MapService) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}
	s.hub.Close()
}
