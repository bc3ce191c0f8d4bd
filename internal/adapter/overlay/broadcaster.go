// Package overlay holds the server-side marker set shown on the map and
// pushes every change to connected map clients.
package overlay

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/google/uuid"
)

// Publisher delivers a message to every connected client.
type Publisher interface {
	Broadcast(msg any) int
}

type Broadcaster struct {
	pub     Publisher
	markers map[models.Handle]*models.Marker
	mu      sync.RWMutex
	now     func() time.Time
	l       logger.Logger
}

func NewBroadcaster(pub Publisher, l logger.Logger) *Broadcaster {
	return &Broadcaster{
		pub:     pub,
		markers: make(map[models.Handle]*models.Marker),
		now:     time.Now,
		l:       l,
	}
}

func (b *Broadcaster) Create(ctx context.Context, label string, pos models.Position, heading float64) (models.Handle, error) {
	const op = "Broadcaster.Create"

	handle := models.Handle(uuid.New())
	marker := &models.Marker{
		Handle:    handle,
		Label:     label,
		Position:  pos,
		Heading:   heading,
		UpdatedAt: b.now().UTC(),
	}

	b.mu.Lock()
	if _, ok := b.markers[handle]; ok {
		b.mu.Unlock()
		return models.Handle{}, fmt.Errorf("%s: duplicate handle %s", op, handle)
	}
	b.markers[handle] = marker
	created := *marker
	b.mu.Unlock()

	b.publish(ctx, types.EventMarkerCreated, created)
	return handle, nil
}

func (b *Broadcaster) Update(ctx context.Context, handle models.Handle, pos models.Position, heading float64) error {
	const op = "Broadcaster.Update"

	b.mu.Lock()
	marker, ok := b.markers[handle]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%s: %s: %w", op, handle, types.ErrUnknownHandle)
	}
	marker.Position = pos
	marker.Heading = heading
	marker.UpdatedAt = b.now().UTC()
	updated := *marker
	b.mu.Unlock()

	b.publish(ctx, types.EventMarkerUpdated, updated)
	return nil
}

func (b *Broadcaster) Remove(ctx context.Context, handle models.Handle) error {
	const op = "Broadcaster.Remove"

	b.mu.Lock()
	marker, ok := b.markers[handle]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%s: %s: %w", op, handle, types.ErrUnknownHandle)
	}
	delete(b.markers, handle)
	b.mu.Unlock()

	b.publish(ctx, types.EventMarkerRemoved, models.MarkerRemoval{Handle: handle, Label: marker.Label})
	return nil
}

// Markers returns a copy of the current markers sorted by label.
func (b *Broadcaster) Markers() []models.Marker {
	b.mu.RLock()
	out := make([]models.Marker, 0, len(b.markers))
	for _, m := range b.markers {
		out = append(out, *m)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Handle.String() < out[j].Handle.String()
	})
	return out
}

// Snapshot is the first message a newly connected client receives.
func (b *Broadcaster) Snapshot() models.MarkerMessage {
	return models.MarkerMessage{
		EventType: types.EventMarkersSnapshot,
		Data:      b.Markers(),
	}
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.markers)
}

func (b *Broadcaster) publish(ctx context.Context, event types.MarkerEvent, data any) {
	n := b.pub.Broadcast(models.MarkerMessage{EventType: event, Data: data})
	b.l.Debug(wrap.WithAction(ctx, types.ActionBroadcast), "marker event sent", "event_type", event, "clients", n)
}
