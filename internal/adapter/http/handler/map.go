package handler

import (
	"errors"
	"net/http"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/pkg/logger"
	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/skytrack/pkg/metrics"
	ws "github.com/Temutjin2k/skytrack/pkg/wsHub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MarkerSource exposes the overlay currently shown on the map.
type MarkerSource interface {
	Markers() []models.Marker
	Snapshot() models.MarkerMessage
}

// ClientHub keeps the connected map clients.
type ClientHub interface {
	Add(conn *ws.Conn) error
	Delete(id uuid.UUID) error
	SendTo(id uuid.UUID, msg any) error
}

type Map struct {
	markers  MarkerSource
	hub      ClientHub
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewMap(markers MarkerSource, hub ClientHub, l logger.Logger) *Map {
	return &Map{
		markers: markers,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// Markers godoc
// @Summary      Current markers
// @Description  Returns every marker on the map, sorted by label
// @Tags         Map
// @Produce      json
// @Success      200  {object}  map[string][]models.Marker
// @Router       /markers [get]
func (h *Map) Markers(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_markers")

	if err := writeJSON(w, http.StatusOK, envelope{"markers": h.markers.Markers()}, nil); err != nil {
		h.l.Error(ctx, "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// HandleWebSocket godoc
// @Summary      Map updates
// @Description  Upgrades to a websocket. The client first receives a markers.snapshot event, then marker.created, marker.updated and marker.removed events
// @Tags         Map
// @Success      101
// @Router       /ws/map [get]
func (h *Map) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "map_websocket")

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		h.l.Warn(ctx, "websocket upgrade failed", "err", err.Error())
		return
	}

	id := uuid.New()
	conn := ws.NewConn(r.Context(), id, c)

	// Register before sending the snapshot so no event falls in between.
	// Clients treat marker.created as an upsert.
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register map client", err)
		_ = conn.Close()
		return
	}
	defer func() {
		if err := h.hub.Delete(id); err != nil && !errors.Is(err, ws.ErrConnIsNotFound) {
			h.l.Warn(ctx, "failed to remove map client", "client_id", id, "err", err.Error())
		}
	}()

	metrics.WebSocketConnectionsGauge.WithLabelValues("map").Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues("map").Dec()

	if err := h.hub.SendTo(id, h.markers.Snapshot()); err != nil {
		h.l.Warn(ctx, "failed to send snapshot", "client_id", id, "err", err.Error())
		return
	}

	h.l.Debug(ctx, "map client connected", "client_id", id)

	if err := conn.Listen(); err != nil && !errors.Is(err, ws.ErrConnClosed) {
		h.l.Debug(ctx, "map client disconnected", "client_id", id, "reason", err.Error())
	}
}
