// Package geo provides great-circle distance, bearing, and speed
// calculations between GPS coordinates using the Haversine formula.
package geo

import (
	"math"
	"time"
)

// EarthRadiusMeters is the spherical Earth radius used for all
// great-circle math.
const EarthRadiusMeters = 6371000.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceMeters calculates the great-circle distance between two points
// on the Earth's surface.
//
// Formula:
// a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
// c = 2 ⋅ atan2( √a, √(1−a) )
// d = R ⋅ c
//
// The intermediate term a is clamped to [0, 1] so floating rounding near
// identical or antipodal points never pushes the square roots out of domain.
// Always >= 0 and symmetric in its arguments.
func DistanceMeters(a, b Point) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	deltaLat := degreesToRadians(b.Latitude - a.Latitude)
	deltaLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	if h < 0 {
		h = 0
	}
	if h > 1 {
		h = 1
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// SpeedMps returns the average speed in meters per second between two
// timestamped points. Returns 0 when the second timestamp does not advance
// past the first, so it never divides by zero or a negative interval.
func SpeedMps(a Point, at time.Time, b Point, bt time.Time) float64 {
	elapsed := bt.Sub(at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return DistanceMeters(a, b) / elapsed
}

// BearingDegrees returns the initial great-circle bearing from a to b,
// normalized to [0, 360).
func BearingDegrees(a, b Point) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	deltaLon := degreesToRadians(b.Longitude - a.Longitude)

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// degreesToRadians converts degrees to radians
func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
