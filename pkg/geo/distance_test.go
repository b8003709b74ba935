package geo

import "testing"

func TestDistanceMetersZero(t *testing.T) {
	d := DistanceMeters(37.0, -122.0, 37.0, -122.0)
	if d != 0 {
		t.Errorf("expected 0 distance for identical points, got %f", d)
	}
}

func TestDistanceMetersKnown(t *testing.T) {
	// Roughly one degree of latitude is ~111km.
	d := DistanceMeters(0, 0, 1, 0)
	if d < 110000 || d > 112000 {
		t.Errorf("expected ~111km, got %f", d)
	}
}

func TestCentroid(t *testing.T) {
	lats := []float64{10, 20, 30}
	lons := []float64{0, 0, 0}

	lat, lon := Centroid(lats, lons)
	if lat != 20 {
		t.Errorf("expected centroid lat 20, got %f", lat)
	}
	if lon != 0 {
		t.Errorf("expected centroid lon 0, got %f", lon)
	}
}

func TestCentroidEmpty(t *testing.T) {
	lat, lon := Centroid(nil, nil)
	if lat != 0 || lon != 0 {
		t.Errorf("expected (0,0) for empty input, got (%f,%f)", lat, lon)
	}
}
