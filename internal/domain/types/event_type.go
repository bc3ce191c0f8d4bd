package types

// MarkerEvent is the event_type of a message pushed to map clients.
type MarkerEvent string

const (
	EventMarkersSnapshot MarkerEvent = "markers.snapshot"
	EventMarkerCreated   MarkerEvent = "marker.created"
	EventMarkerUpdated   MarkerEvent = "marker.updated"
	EventMarkerRemoved   MarkerEvent = "marker.removed"
)
