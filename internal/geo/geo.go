// Package geo provides the distance and bounding-box math used to
// narrow restaurant searches around a point.
package geo

import "math"

// earthRadiusKm is the radius used for haversine distances.
const earthRadiusKm = 6367

// kmPerDegreeLat approximates one degree of latitude.
const kmPerDegreeLat = 111.32

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox delimits a rectangular search area.
type BoundingBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LngMin float64 `json:"lng_min"`
	LngMax float64 `json:"lng_max"`
}

// Contains reports whether p falls inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax &&
		p.Lng >= b.LngMin && p.Lng <= b.LngMax
}

// Haversine returns the great-circle distance in kilometers between two points.
func Haversine(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// BoxAround returns the bounding box of the square with the given radius
// in kilometers centered on p. The longitude delta shrinks with latitude.
func BoxAround(p Point, radiusKm float64) BoundingBox {
	dLat := radiusKm / kmPerDegreeLat

	kmPerDegreeLng := kmPerDegreeLat * math.Cos(radians(p.Lat))
	dLng := radiusKm / kmPerDegreeLng

	return BoundingBox{
		LatMin: p.Lat - dLat,
		LatMax: p.Lat + dLat,
		LngMin: p.Lng - dLng,
		LngMax: p.Lng + dLng,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
