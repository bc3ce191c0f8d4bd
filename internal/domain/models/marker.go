package models

import (
	"time"

	"github.com/Temutjin2k/skytrack/internal/domain/types"
	"github.com/google/uuid"
)

// Handle identifies one overlay object on the map.
type Handle uuid.UUID

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

func (h Handle) MarshalText() ([]byte, error) {
	return uuid.UUID(h).MarshalText()
}

func (h *Handle) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(h).UnmarshalText(data)
}

// Marker is the rendered state of one overlay object.
type Marker struct {
	Handle    Handle    `json:"handle"`
	Label     string    `json:"label"`
	Position  Position  `json:"position"`
	Heading   float64   `json:"heading"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarkerMessage is the envelope pushed to map clients over the websocket.
type MarkerMessage struct {
	EventType types.MarkerEvent `json:"event_type"`
	Data      any               `json:"data"`
}

// MarkerRemoval is the payload of a marker.removed event.
type MarkerRemoval struct {
	Handle Handle `json:"handle"`
	Label  string `json:"label"`
}
