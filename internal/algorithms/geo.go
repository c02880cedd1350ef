package algorithms

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox is a lat/lng rectangle used to prefilter rows in SQL before
// the exact distance check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround returns a box that contains every point within radiusKm of center.
// Near the poles, and when the span crosses the antimeridian, the longitude
// range is widened to the full [-180, 180]; callers filter by exact distance.
func BoxAround(center Point, radiusKm float64) BoundingBox {
	dLat := radiusKm / 111.0
	box := BoundingBox{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	cosLat := math.Cos(toRadians(center.Lat))
	if cosLat > 0.01 {
		dLng := radiusKm / (111.0 * cosLat)
		if minLng, maxLng := center.Lng-dLng, center.Lng+dLng; minLng >= -180 && maxLng <= 180 {
			box.MinLng = minLng
			box.MaxLng = maxLng
		}
	}
	return box
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
