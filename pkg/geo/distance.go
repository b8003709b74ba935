// Package geo provides the great-circle distance primitive the pattern
// engine needs to cluster observations in space. There is no third-party
// haversine implementation among the vendored dependencies; the formula is
// a few lines of stdlib math and not worth pulling in a library for.
package geo

import (
	"math"

	"github.com/lukeswitz/wardragon-analytics/internal/util"
)

const earthRadiusM = 6371000.0

// DistanceMeters returns the great-circle (haversine) distance in meters
// between two WGS84 coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Centroid returns the arithmetic mean of a set of coordinates. It is not
// geodesically exact but is sufficient for clustering small point sets
// within a few kilometers of each other, which is the only use here.
func Centroid(lats, lons []float64) (lat, lon float64) {
	lat, errLat := util.Mean(lats)
	lon, errLon := util.Mean(lons)
	if errLat != nil || errLon != nil {
		return 0, 0
	}
	return lat, lon
}
