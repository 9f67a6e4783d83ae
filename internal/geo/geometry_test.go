package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitSquare = []Coordinate{
	{Lat: 0, Lng: 0},
	{Lat: 0, Lng: 1},
	{Lat: 1, Lng: 1},
	{Lat: 1, Lng: 0},
}

var zoneA = []Coordinate{
	{Lat: 40.70, Lng: -74.01},
	{Lat: 40.72, Lng: -74.00},
	{Lat: 40.71, Lng: -73.99},
}

func TestPolygonAreaUnitSquare(t *testing.T) {
	assert.InDelta(t, 111.32*111.32, PolygonArea(unitSquare), 1e-6)
}

func TestPolygonAreaOrientationIndependent(t *testing.T) {
	reversed := []Coordinate{unitSquare[3], unitSquare[2], unitSquare[1], unitSquare[0]}
	assert.InDelta(t, PolygonArea(unitSquare), PolygonArea(reversed), 1e-9)
}

func TestPolygonAreaMatchesPlanarShoelace(t *testing.T) {
	// 0.5 * |x1(y2-y3) + x2(y3-y1) + x3(y1-y2)| with x = lng, y = lat
	x1, y1 := zoneA[0].Lng, zoneA[0].Lat
	x2, y2 := zoneA[1].Lng, zoneA[1].Lat
	x3, y3 := zoneA[2].Lng, zoneA[2].Lat
	planar := 0.5 * math.Abs(x1*(y2-y3)+x2*(y3-y1)+x3*(y1-y2))

	got := PolygonArea(zoneA)
	assert.Greater(t, got, 0.0)
	assert.InDelta(t, planar*KmPerDegree*KmPerDegree, got, 1e-9)
}

func TestPolygonAreaTooFewPoints(t *testing.T) {
	assert.Zero(t, PolygonArea(nil))
	assert.Zero(t, PolygonArea(unitSquare[:2]))
}

func TestPointInPolygon(t *testing.T) {
	assert.True(t, PointInPolygon(Centroid(unitSquare), unitSquare))
	assert.True(t, PointInPolygon(Centroid(zoneA), zoneA))
	assert.False(t, PointInPolygon(Coordinate{Lat: 50, Lng: 50}, unitSquare))
	assert.False(t, PointInPolygon(Coordinate{Lat: 0.5, Lng: 0.5}, unitSquare[:2]))
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape: the notch between the arms is outside.
	u := []Coordinate{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 3}, {Lat: 3, Lng: 3}, {Lat: 3, Lng: 2},
		{Lat: 1, Lng: 2}, {Lat: 1, Lng: 1}, {Lat: 3, Lng: 1}, {Lat: 3, Lng: 0},
	}
	assert.False(t, PointInPolygon(Coordinate{Lat: 2, Lng: 1.5}, u))
	assert.True(t, PointInPolygon(Coordinate{Lat: 2, Lng: 0.5}, u))
	assert.True(t, PointInPolygon(Coordinate{Lat: 0.5, Lng: 1.5}, u))
}

func TestBoundingBox(t *testing.T) {
	_, ok := BoundingBox(nil)
	assert.False(t, ok)

	b, ok := BoundingBox(zoneA)
	require.True(t, ok)
	assert.Equal(t, Coordinate{Lat: 40.70, Lng: -74.01}, b.Min)
	assert.Equal(t, Coordinate{Lat: 40.72, Lng: -73.99}, b.Max)
}

func TestHaversineDistance(t *testing.T) {
	assert.Zero(t, HaversineDistance(10, 10, 10, 10))
	// One degree of latitude on a 6371 km sphere.
	assert.InDelta(t, 2*math.Pi*EarthRadiusKm/360, HaversineDistance(0, 0, 1, 0), 1e-6)
	// Paris to London, roughly 344 km.
	assert.InDelta(t, 344, HaversineDistance(48.8566, 2.3522, 51.5074, -0.1278), 2)
}

func TestValidatePolygon(t *testing.T) {
	require.NoError(t, ValidatePolygon(zoneA))

	err := ValidatePolygon(zoneA[:2])
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	bad := []Coordinate{{Lat: 91, Lng: 0}, {Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	assert.ErrorIs(t, ValidatePolygon(bad), ErrInvalidPolygon)

	bad = []Coordinate{{Lat: 0, Lng: 181}, {Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	assert.ErrorIs(t, ValidatePolygon(bad), ErrInvalidPolygon)

	bad = []Coordinate{{Lat: math.NaN(), Lng: 0}, {Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	assert.ErrorIs(t, ValidatePolygon(bad), ErrInvalidPolygon)
}

func TestRingIsClosed(t *testing.T) {
	r := Ring(zoneA)
	require.Len(t, r, 4)
	assert.True(t, r.Closed())
	assert.Equal(t, -74.01, r[0].Lon())
	assert.Equal(t, 40.70, r[0].Lat())
}
