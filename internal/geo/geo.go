package geo

import "math"

const earthRadiusKm = 6371.0

// BoundingBox is a latitude/longitude rectangle used to prefilter
// records with an indexed range query before exact distance checks.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoxAround returns a bounding box that fully contains the circle of
// radiusKm around the given point. The longitude span widens with
// latitude by 1/cos(lat); near the poles it saturates to the full
// longitude range rather than dividing by zero.
func BoxAround(lat, lon, radiusKm float64) BoundingBox {
	kmPerDegLat := earthRadiusKm * math.Pi / 180.0
	latDelta := radiusKm / kmPerDegLat

	cosLat := math.Cos(lat * math.Pi / 180.0)
	lonDelta := 180.0
	if cosLat > 1e-9 {
		lonDelta = radiusKm / (kmPerDegLat * cosLat)
		if lonDelta > 180.0 {
			lonDelta = 180.0
		}
	}

	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

// DistanceKm computes the great-circle distance between two points
// using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180.0
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
