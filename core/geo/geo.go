// Package geo resolves campus buildings and measures how far a device is from them.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceMeters returns the great-circle distance between two points using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push `a` a hair past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Distance is DistanceMeters for Coordinates.
func Distance(a, b Coordinate) float64 {
	return DistanceMeters(a.Lat, a.Lon, b.Lat, b.Lon)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
