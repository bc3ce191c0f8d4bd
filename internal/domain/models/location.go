package models

// Position is a WGS84 latitude/longitude pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EntityRecord is one aircraft as reported by the snapshot feed.
// Numeric fields are pointers so that missing values can be told apart from zero.
type EntityRecord struct {
	ID        string   `json:"IcaoAddress" validate:"required"`
	Latitude  *float64 `json:"Latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"Longitude" validate:"required,gte=-180,lte=180"`
	Heading   *float64 `json:"Heading" validate:"required"`
}

// Position returns the record's coordinates. Call only on a validated record.
func (r EntityRecord) Position() Position {
	return Position{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// AircraftPosition is one element of the snapshot feed served by the api-service.
type AircraftPosition struct {
	IcaoAddress string  `json:"IcaoAddress"`
	Longitude   float64 `json:"Longitude"`
	Latitude    float64 `json:"Latitude"`
	Heading     float64 `json:"Heading"`
}
