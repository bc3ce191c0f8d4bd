// Package sbs decodes the BaseStation (SBS-1) text stream dump1090 serves on port 30003.
package sbs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
	"github.com/Temutjin2k/skytrack/internal/domain/types"
)

// Column positions of an SBS-1 MSG line.
const (
	colMessageType = 0
	colIcaoAddress = 4
	colDate        = 6
	colTime        = 7
	colCallsign    = 10
	colAltitude    = 11
	colGroundSpeed = 12
	colTrack       = 13
	colLatitude    = 14
	colLongitude   = 15
	colSquawk      = 17

	minColumns = 22
)

// Transform decodes one SBS-1 line. Empty columns are left unset.
func Transform(line string) (models.PositionMessage, error) {
	const op = "sbs.Transform"

	cols := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(cols) < minColumns {
		return models.PositionMessage{}, fmt.Errorf("%s: %w: %d columns", op, types.ErrMalformedLine, len(cols))
	}
	if strings.TrimSpace(cols[colMessageType]) != "MSG" {
		return models.PositionMessage{}, fmt.Errorf("%s: %w: message type %q", op, types.ErrMalformedLine, cols[colMessageType])
	}

	col := func(i int) string { return strings.TrimSpace(cols[i]) }

	msg := models.PositionMessage{
		IcaoAddress: strings.ToUpper(col(colIcaoAddress)),
		Date:        col(colDate),
		Time:        col(colTime),
	}
	if msg.IcaoAddress == "" {
		return models.PositionMessage{}, fmt.Errorf("%s: %w: empty icao address", op, types.ErrMalformedLine)
	}

	if v := col(colCallsign); v != "" {
		msg.FlightCode = &v
	}
	if v := col(colSquawk); v != "" {
		msg.Squawk = &v
	}

	var err error
	if msg.FlightLevel, err = parseInt(col(colAltitude)); err != nil {
		return models.PositionMessage{}, fmt.Errorf("%s: %w: altitude: %v", op, types.ErrMalformedLine, err)
	}

	floats := []struct {
		name string
		idx  int
		dst  **float64
	}{
		{"ground speed", colGroundSpeed, &msg.AirSpeed},
		{"track", colTrack, &msg.Heading},
		{"latitude", colLatitude, &msg.Latitude},
		{"longitude", colLongitude, &msg.Longitude},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(col(f.idx)); err != nil {
			return models.PositionMessage{}, fmt.Errorf("%s: %w: %s: %v", op, types.ErrMalformedLine, f.name, err)
		}
	}

	return msg, nil
}

func parseInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
