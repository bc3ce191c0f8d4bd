// Package geo holds great-circle helpers for WGS84 positions.
package geo

import (
	"math"

	"github.com/Temutjin2k/skytrack/internal/domain/models"
)

const earthRadiusKm = 6371.0 // радиус Земли в км

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Distance returns the haversine distance between p1 and p2 in kilometres.
func Distance(p1, p2 models.Position) float64 {
	lat1Rad := degreesToRadians(p1.Latitude)
	lat2Rad := degreesToRadians(p2.Latitude)

	// разница долгот и широт
	diffLat := lat2Rad - lat1Rad
	diffLon := degreesToRadians(p2.Longitude - p1.Longitude)

	// формула гаверсинусов
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Pow(math.Sin(diffLon/2), 2)
	angle := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * angle
}

// Within reports whether p lies at most radiusKm from center.
func Within(center, p models.Position, radiusKm float64) bool {
	return Distance(center, p) <= radiusKm
}
