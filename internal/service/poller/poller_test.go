package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/service/reconciler"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

type fakeFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
	records []models.EntityRecord

	mu          sync.Mutex
	hadDeadline bool
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]models.EntityRecord, error) {
	f.calls.Add(1)

	f.mu.Lock()
	_, f.hadDeadline = ctx.Deadline()
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	return f.records, f.err
}

type fakeReconciler struct {
	calls     atomic.Int32
	running   atomic.Int32
	overlaps  atomic.Int32
	snapshots chan []models.EntityRecord
}

func (r *fakeReconciler) Reconcile(_ context.Context, snap []models.EntityRecord) reconciler.Result {
	if r.running.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	defer r.running.Add(-1)

	r.calls.Add(1)
	if r.snapshots != nil {
		r.snapshots <- snap
	}
	return reconciler.Result{Updated: len(snap)}
}

func startPoller(t *testing.T, p *Poller) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestPoller_FirstTickImmediate(t *testing.T) {
	id := "4CA7B5"
	f := &fakeFetcher{records: []models.EntityRecord{{ID: id}}}
	r := &fakeReconciler{snapshots: make(chan []models.EntityRecord, 1)}

	startPoller(t, New(f, r, time.Hour, 0, logger.Discard()))

	select {
	case snap := <-r.snapshots:
		if len(snap) != 1 || snap[0].ID != id {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first poll did not run immediately")
	}
}

func TestPoller_FetchErrorSkipsReconcile(t *testing.T) {
	f := &fakeFetcher{err: errors.New("connection refused")}
	r := &fakeReconciler{}
	p := New(f, r, time.Hour, 0, logger.Discard())

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if r.calls.Load() != 0 {
		t.Fatal("reconcile must not run after a failed fetch")
	}
}

func TestPoller_DropsOverlappingTicks(t *testing.T) {
	f := &fakeFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := &fakeReconciler{}

	cancel, done := startPoller(t, New(f, r, 5*time.Millisecond, 0, logger.Discard()))

	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("poll never started")
	}

	// many ticks fire while the first fetch hangs
	time.Sleep(60 * time.Millisecond)
	if n := f.calls.Load(); n != 1 {
		t.Fatalf("fetch called %d times while busy, want 1", n)
	}

	close(f.release)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	if r.overlaps.Load() != 0 {
		t.Fatal("reconcile passes overlapped")
	}
}

func TestPoller_RunWaitsForInFlight(t *testing.T) {
	f := &fakeFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	r := &fakeReconciler{}

	cancel, done := startPoller(t, New(f, r, time.Hour, 0, logger.Discard()))
	<-f.started
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned before the in-flight poll finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(f.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	if r.calls.Load() != 1 {
		t.Fatalf("reconcile calls = %d", r.calls.Load())
	}
}

func TestPoller_FetchTimeout(t *testing.T) {
	f := &fakeFetcher{}
	p := New(f, &fakeReconciler{}, time.Hour, time.Second, logger.Discard())
	if err := p.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !f.hadDeadline {
		t.Fatal("fetch context has no deadline")
	}

	p = New(f, &fakeReconciler{}, time.Hour, 0, logger.Discard())
	if err := p.Poll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.hadDeadline {
		t.Fatal("zero timeout must not set a deadline")
	}
}
