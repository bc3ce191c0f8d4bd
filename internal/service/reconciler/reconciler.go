// Package reconciler keeps the map overlay in line with the latest aircraft snapshot.
//
// The Reconciler owns the identity table (aircraft id -> overlay handle). Each
// pass creates overlays for new ids, moves existing ones and removes the ids
// that are no longer reported. Removal is a set difference against the
// current snapshot: an aircraft missing from a single snapshot loses its
// overlay and gets a fresh one if it comes back.
//
// Duplicate ids inside one snapshot are resolved by last write wins: the
// first occurrence creates the overlay, the later ones update it.
package reconciler

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	"github.com/Temutjin2k/skytrack/pkg/validator"
)

type trackedEntity struct {
	id     string
	handle models.Handle
}

// Result counts the surface calls issued by one pass.
type Result struct {
	Created int
	Updated int
	Removed int
	Skipped int
	Failed  int
}

type Reconciler struct {
	surface Surface
	tracked map[string]*trackedEntity
	mu      sync.Mutex
	l       logger.Logger
}

func New(surface Surface, l logger.Logger) *Reconciler {
	return &Reconciler{
		surface: surface,
		tracked: make(map[string]*trackedEntity),
		l:       l,
	}
}

// Reconcile brings the overlay in line with snapshot.
//
// Malformed records are skipped with a warning and do not abort the pass. An
// id still present in the snapshot is never removed, even when its record is
// malformed.
// Surface failures are logged: a failed create leaves the id untracked, a
// failed update keeps it tracked, a failed remove still forgets it.
func (r *Reconciler) Reconcile(ctx context.Context, snapshot []models.EntityRecord) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx = wrap.WithAction(ctx, types.ActionReconcile)

	var res Result
	seen := make(map[string]struct{}, len(snapshot))

	for i, rec := range snapshot {
		recCtx := wrap.WithIcaoAddress(ctx, rec.ID)

		v := validator.New()
		v.Struct(rec)
		if rec.Heading != nil {
			v.Check(!math.IsNaN(*rec.Heading) && !math.IsInf(*rec.Heading, 0), "Heading", "must be a finite number")
		}
		if !v.Valid() {
			// a tracked aircraft keeps its marker, only this update is skipped
			if _, ok := r.tracked[rec.ID]; ok {
				seen[rec.ID] = struct{}{}
			}
			res.Skipped++
			r.l.Warn(recCtx, "skipping malformed record", "index", i, "errors", v.Errors)
			continue
		}

		seen[rec.ID] = struct{}{}
		pos := rec.Position()
		heading := DisplayHeading(*rec.Heading)

		entity, ok := r.tracked[rec.ID]
		if !ok {
			handle, err := r.surface.Create(recCtx, rec.ID, pos, heading)
			if err != nil {
				res.Failed++
				r.l.Error(wrap.ErrorCtx(recCtx, err), "failed to create overlay", err)
				continue
			}
			r.tracked[rec.ID] = &trackedEntity{id: rec.ID, handle: handle}
			res.Created++
			continue
		}

		if err := r.surface.Update(recCtx, entity.handle, pos, heading); err != nil {
			res.Failed++
			r.l.Error(wrap.ErrorCtx(recCtx, err), "failed to update overlay", err, "handle", entity.handle.String())
			continue
		}
		res.Updated++
	}

	for id, entity := range r.tracked {
		if _, ok := seen[id]; ok {
			continue
		}
		recCtx := wrap.WithIcaoAddress(ctx, id)
		if err := r.surface.Remove(recCtx, entity.handle); err != nil {
			res.Failed++
			r.l.Error(wrap.ErrorCtx(recCtx, err), "failed to remove overlay", err, "handle", entity.handle.String())
		} else {
			res.Removed++
		}
		delete(r.tracked, id)
	}

	metrics.RecordReconcile(res.Created, res.Updated, res.Removed, res.Skipped, res.Failed, len(r.tracked))

	r.l.Debug(ctx, "reconciliation pass finished",
		"snapshot_size", len(snapshot),
		"created", res.Created,
		"updated", res.Updated,
		"removed", res.Removed,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"tracked", len(r.tracked),
	)

	return res
}

// Tracked returns the ids currently on the map, sorted.
func (r *Reconciler) Tracked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.tracked))
	for id := range r.tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of tracked entities.
func (r *Reconciler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tracked)
}
