// Package poller drives the map-service: it fetches the aircraft snapshot on
// a fixed interval and hands it to the reconciler.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/internal/service/reconciler"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
)

type SnapshotFetcher interface {
	Fetch(ctx context.Context) ([]models.EntityRecord, error)
}

type SnapshotReconciler interface {
	Reconcile(ctx context.Context, snapshot []models.EntityRecord) reconciler.Result
}

type Poller struct {
	fetcher      SnapshotFetcher
	reconciler   SnapshotReconciler
	interval     time.Duration
	fetchTimeout time.Duration

	busy atomic.Bool
	wg   sync.WaitGroup
	l    logger.Logger
}

// New creates a poller. fetchTimeout of zero means a fetch may take as long as it needs.
func New(fetcher SnapshotFetcher, rec SnapshotReconciler, interval, fetchTimeout time.Duration, l logger.Logger) *Poller {
	return &Poller{
		fetcher:      fetcher,
		reconciler:   rec,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		l:            l,
	}
}

// Run polls once immediately and then every interval until ctx is done.
// A tick that fires while the previous pass is still running is dropped.
// Run returns after the in-flight pass, if any, has finished.
func (p *Poller) Run(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionPoll)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.l.Info(ctx, "poller started", "interval", p.interval.String(), "fetch_timeout", p.fetchTimeout.String())

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			p.l.Info(ctx, "poller stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		metrics.RecordPollTick(metrics.PollDropped)
		p.l.Warn(ctx, "previous poll still running, tick dropped")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		if err := p.Poll(ctx); err != nil {
			metrics.RecordPollTick(metrics.PollFailed)
			p.l.Error(wrap.ErrorCtx(ctx, err), "poll failed, overlay left as is", err)
			return
		}
		metrics.RecordPollTick(metrics.PollOK)
	}()
}

// Poll runs a single fetch and reconcile pass. A failed fetch leaves the
// overlay untouched.
func (p *Poller) Poll(ctx context.Context) error {
	fetchCtx := wrap.WithAction(ctx, types.ActionFetchSnapshot)
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(fetchCtx, p.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	snapshot, err := p.fetcher.Fetch(fetchCtx)
	metrics.RecordFeedFetch(time.Since(start))
	if err != nil {
		return wrap.Error(fetchCtx, err)
	}

	res := p.reconciler.Reconcile(ctx, snapshot)
	if res.Created+res.Removed+res.Skipped+res.Failed > 0 {
		p.l.Info(ctx, "overlay reconciled",
			"snapshot_size", len(snapshot),
			"created", res.Created,
			"updated", res.Updated,
			"removed", res.Removed,
			"skipped", res.Skipped,
			"failed", res.Failed,
		)
	}
	return nil
}
