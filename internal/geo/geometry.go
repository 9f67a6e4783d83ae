// Package geo holds the planar and great-circle helpers used to validate
// drawn polygons and derive their area, centroid and bounds.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const (
	// KmPerDegree is the flat-earth length of one degree.
	KmPerDegree = 111.32
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0
	// MinVertices is the smallest vertex count of a valid polygon.
	MinVertices = 3
)

// ErrInvalidPolygon is returned when a polygon cannot be created.
var ErrInvalidPolygon = errors.New("invalid polygon")

var validate = validator.New()

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Coordinate `json:"min"`
	Max Coordinate `json:"max"`
}

// PolygonArea approximates the area in km² using the shoelace formula over
// raw degrees scaled by KmPerDegree². No geodesic correction is applied.
func PolygonArea(coords []Coordinate) float64 {
	if len(coords) < MinVertices {
		return 0
	}

	var sum float64
	for i := range coords {
		j := (i + 1) % len(coords)
		sum += coords[i].Lng*coords[j].Lat - coords[j].Lng*coords[i].Lat
	}

	return math.Abs(sum) / 2 * KmPerDegree * KmPerDegree
}

// PointInPolygon checks if a point is inside a polygon using even-odd ray casting.
func PointInPolygon(point Coordinate, polygon []Coordinate) bool {
	if len(polygon) < MinVertices {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Lat > point.Lat) != (pj.Lat > point.Lat) &&
			point.Lng < (pj.Lng-pi.Lng)*(point.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
		j = i
	}

	return inside
}

// BoundingBox returns the componentwise min/max of coords; false when empty.
func BoundingBox(coords []Coordinate) (Bounds, bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}

	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, c.Point())
	}
	b := mp.Bound()

	return Bounds{
		Min: Coordinate{Lat: b.Min.Lat(), Lng: b.Min.Lon()},
		Max: Coordinate{Lat: b.Max.Lat(), Lng: b.Max.Lon()},
	}, true
}

// HaversineDistance returns the great-circle distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// Centroid is the arithmetic mean of the vertices.
func Centroid(coords []Coordinate) Coordinate {
	if len(coords) == 0 {
		return Coordinate{}
	}

	var sumLat, sumLng float64
	for _, c := range coords {
		sumLat += c.Lat
		sumLng += c.Lng
	}

	n := float64(len(coords))
	return Coordinate{Lat: sumLat / n, Lng: sumLng / n}
}

// ValidatePolygon checks the vertex count and coordinate ranges.
func ValidatePolygon(coords []Coordinate) error {
	if len(coords) < MinVertices {
		return fmt.Errorf("%w: need at least %d points, got %d", ErrInvalidPolygon, MinVertices, len(coords))
	}
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: point %d: %v", ErrInvalidPolygon, i, err)
		}
	}
	return nil
}

// Validate checks that the coordinate is finite and within range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return errors.New("coordinate is not a number")
	}
	return validate.Struct(c)
}

// Point converts c to an orb point ([lng, lat]).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Ring converts coords to a closed orb ring.
func Ring(coords []Coordinate) orb.Ring {
	ring := make(orb.Ring, 0, len(coords)+1)
	for _, c := range coords {
		ring = append(ring, c.Point())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}
