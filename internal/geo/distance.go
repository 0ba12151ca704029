package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadius is the mean earth radius in meters used for all distances
const EarthRadius = 6371000.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Distance computes the great-circle distance in meters between two points
// using the haversine formula. Points are orb order: [lon, lat].
func Distance(a, b orb.Point) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// WithinBox reports whether b lies inside the square of half-width deg
// around a. Used as a cheap filter before Distance.
func WithinBox(a, b orb.Point, deg float64) bool {
	return math.Abs(a.Lat()-b.Lat()) <= deg && math.Abs(a.Lon()-b.Lon()) <= deg
}
