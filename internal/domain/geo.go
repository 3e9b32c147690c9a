package domain

import "math"

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6367.0

// Haversine returns the great-circle distance in kilometers between two
// points given as longitude/latitude in degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	dLon := Deg2Rad(lon2 - lon1)
	dLat := Deg2Rad(lat2 - lat1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(Deg2Rad(lat1))*math.Cos(Deg2Rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// DistanceAlongCurve returns the cumulative great-circle distance in km
// between consecutive (lon, lat) points. The first element is always 0.
func DistanceAlongCurve(lons, lats []float64) []float64 {
	n := len(lons)
	if len(lats) < n {
		n = len(lats)
	}
	if n == 0 {
		return []float64{}
	}
	dist := make([]float64, n)
	for k := 1; k < n; k++ {
		dist[k] = dist[k-1] + Haversine(lons[k-1], lats[k-1], lons[k], lats[k])
	}
	return dist
}

// Bearing returns the initial great-circle bearing in degrees [0, 360)
// from point 1 to point 2, clockwise from north.
func Bearing(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := Deg2Rad(lat1)
	phi2 := Deg2Rad(lat2)
	dLon := Deg2Rad(lon2 - lon1)
	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	return NormalizeDeg(Rad2Deg(math.Atan2(y, x)))
}

// CompassPoints are the 16 compass headings, with north repeated to close the circle.
var CompassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S",
	"SSW", "SW", "WSW", "W", "WNW", "NW", "NNW", "N",
}

// BearingHeading converts a compass bearing in degrees to a 16-point heading.
func BearingHeading(bearing float64) string {
	idx := int(math.Round(NormalizeDeg(bearing) * float64(len(CompassPoints)-1) / 360))
	return CompassPoints[idx]
}

// WindToFrom converts a "physics" bearing (0 east, counter-clockwise, direction
// the air flows to) into a "human" bearing (0 north, clockwise, direction the
// wind blows from).
func WindToFrom(windTo float64) float64 {
	if windTo <= 270 {
		return 270 - windTo
	}
	return 270 - windTo + 360
}
