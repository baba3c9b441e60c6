package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// PathLength sums the great-circle length in meters of a lon/lat path.
func PathLength(lons, lats []float64) float64 {
	var total float64
	for i := 1; i < len(lons) && i < len(lats); i++ {
		total += Haversine(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	return total
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
// Longitudes are not wrapped at the antimeridian.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return math.Max(lat-latDelta, -90), lon - lonDelta, math.Min(lat+latDelta, 90), lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
