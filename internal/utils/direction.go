package utils

import (
	"math"

	"subwayroute.dev/engine/internal/models"
)

const earthRadiusMeters = 6371000.0

// BearingBetweenPoints calculates the bearing in degrees from point1 to point2
func BearingBetweenPoints(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	theta := math.Atan2(y, x)
	return math.Mod(theta*180/math.Pi+360, 360)
}

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b models.Location) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// TravelDirection maps the heading from one point to another onto the
// north/south platform convention. Headings within 90 degrees of north are
// northbound.
func TravelDirection(from, to models.Location) models.Direction {
	bearing := BearingBetweenPoints(from.Lat, from.Lon, to.Lat, to.Lon)
	if bearing < 90 || bearing > 270 {
		return models.Northbound
	}
	if bearing == 90 || bearing == 270 {
		// Due east or west: fall back to latitude.
		if to.Lat >= from.Lat {
			return models.Northbound
		}
	}
	return models.Southbound
}
