package models

import "time"

// PositionMessage is one decoded ADS-B message, from dump1090 or a remote feeder.
// Only IcaoAddress is mandatory; every other attribute is present when the
// source message carried it.
type PositionMessage struct {
	IcaoAddress string   `json:"IcaoAddress" validate:"required,len=6,hexadecimal"`
	Date        string   `json:"Date,omitempty"` // 2006/01/02
	Time        string   `json:"Time,omitempty"` // 15:04:05.000
	FlightCode  *string  `json:"FlightCode,omitempty" validate:"omitempty,max=8"`
	FlightLevel *int64   `json:"FlightLevel,omitempty"`
	AirSpeed    *float64 `json:"AirSpeed,omitempty" validate:"omitempty,gte=0"`
	Heading     *float64 `json:"Heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	Latitude    *float64 `json:"Latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"Longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Squawk      *string  `json:"Squawk,omitempty" validate:"omitempty,len=4,numeric"`
}

// HasAttributes reports whether the message carries anything beyond its address.
func (m PositionMessage) HasAttributes() bool {
	return m.FlightCode != nil || m.FlightLevel != nil || m.AirSpeed != nil ||
		m.Heading != nil || m.Latitude != nil || m.Longitude != nil || m.Squawk != nil
}

// AircraftState is the latest known state of one aircraft.
// Every attribute keeps the time it was last written.
type AircraftState struct {
	IcaoAddress string    `json:"IcaoAddress"`
	LastUpdated time.Time `json:"LastUpdated"`

	FlightCode             *string    `json:"FlightCode,omitempty"`
	FlightCodeLastUpdated  *time.Time `json:"FlightCodeLastUpdated,omitempty"`
	FlightLevel            *int64     `json:"FlightLevel,omitempty"`
	FlightLevelLastUpdated *time.Time `json:"FlightLevelLastUpdated,omitempty"`
	AirSpeed               *float64   `json:"AirSpeed,omitempty"`
	AirSpeedLastUpdated    *time.Time `json:"AirSpeedLastUpdated,omitempty"`
	Heading                *float64   `json:"Heading,omitempty"`
	HeadingLastUpdated     *time.Time `json:"HeadingLastUpdated,omitempty"`
	Latitude               *float64   `json:"Latitude,omitempty"`
	LatitudeLastUpdated    *time.Time `json:"LatitudeLastUpdated,omitempty"`
	Longitude              *float64   `json:"Longitude,omitempty"`
	LongitudeLastUpdated   *time.Time `json:"LongitudeLastUpdated,omitempty"`
	Squawk                 *string    `json:"Squawk,omitempty"`
	SquawkLastUpdated      *time.Time `json:"SquawkLastUpdated,omitempty"`
}

// Measure is one time series sample.
type Measure struct {
	IcaoAddress string
	Name        string
	Value       float64
	Time        time.Time
}
