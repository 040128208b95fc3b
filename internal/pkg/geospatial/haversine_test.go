package geospatial_test

import (
	"math"
	"testing"

	"github.com/strollcast/strollcast/internal/pkg/geospatial"
)

func TestHaversine_SamePoint(t *testing.T) {
	d := geospatial.Haversine(40.7128, -74.0060, 40.7128, -74.0060)
	if d != 0 {
		t.Errorf("expected exactly 0 for identical points, got %f", d)
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{40.7128, -74.0060, 40.6892, -74.0445},
		{43.263, -2.935, 51.5074, -0.1278},
		{-33.8688, 151.2093, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		ab := geospatial.Haversine(p[0], p[1], p[2], p[3])
		ba := geospatial.Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance: %f vs %f", ab, ba)
		}
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// NYC City Hall to the Statue of Liberty, roughly 4.2 km.
	d := geospatial.Haversine(40.7128, -74.0060, 40.6892, -74.0445)
	if d < 3800 || d > 4600 {
		t.Errorf("expected 3800-4600 m, got %f", d)
	}
}

func TestHaversine_ShortWalk(t *testing.T) {
	// Times Square to Grand Central, roughly 1.8 km.
	d := geospatial.Haversine(40.7580, -73.9855, 40.7489, -73.9680)
	if d < 1700 || d > 1900 {
		t.Errorf("expected 1700-1900 m, got %f", d)
	}
}

func TestHaversine_CrossHemisphere(t *testing.T) {
	// New York to London, roughly 5,570 km.
	d := geospatial.Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	if d < 5_500_000 || d > 5_650_000 {
		t.Errorf("expected ~5570 km, got %f", d)
	}
}

func TestHaversine_OutOfRangeIsTotal(t *testing.T) {
	// Callers validate ranges; the function must still return a number.
	d := geospatial.Haversine(400, -900, -400, 900)
	if math.IsNaN(d) {
		t.Errorf("expected a numeric result for out-of-range input, got NaN")
	}
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(43.263, -2.935, 1000)
	if minLat >= 43.263 || maxLat <= 43.263 {
		t.Errorf("latitude bounds do not bracket the center: %f..%f", minLat, maxLat)
	}
	if minLon >= -2.935 || maxLon <= -2.935 {
		t.Errorf("longitude bounds do not bracket the center: %f..%f", minLon, maxLon)
	}
}
