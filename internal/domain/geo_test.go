package domain

import (
	"math"
	"testing"
	"time"
)

// TestHaversine tests great-circle distances.
func TestHaversine(t *testing.T) {
	oneDeg := EarthRadiusKm * math.Pi / 180

	tests := []struct {
		name                   string
		lon1, lat1, lon2, lat2 float64
		expected               float64
	}{
		{"same point", -123.1, 49.2, -123.1, 49.2, 0},
		{"one degree latitude", 0, 0, 0, 1, oneDeg},
		{"one degree longitude at equator", 10, 0, 11, 0, oneDeg},
	}

	for _, tt := range tests {
		got := Haversine(tt.lon1, tt.lat1, tt.lon2, tt.lat2)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %.9f, got %.9f", tt.name, tt.expected, got)
		}
	}

	// Longitude degrees shrink with latitude.
	if Haversine(-123, 49, -122, 49) >= oneDeg {
		t.Errorf("Expected a longitude degree at 49N to be shorter than at the equator")
	}
}

// TestDistanceAlongCurve tests cumulative distances.
func TestDistanceAlongCurve(t *testing.T) {
	got := DistanceAlongCurve([]float64{0, 0, 0}, []float64{0, 1, 3})
	oneDeg := EarthRadiusKm * math.Pi / 180

	if len(got) != 3 || got[0] != 0 {
		t.Fatalf("Unexpected result %v", got)
	}
	if math.Abs(got[1]-oneDeg) > 1e-9 || math.Abs(got[2]-3*oneDeg) > 1e-9 {
		t.Errorf("Expected (0, %.6f, %.6f), got %v", oneDeg, 3*oneDeg, got)
	}
	if len(DistanceAlongCurve(nil, nil)) != 0 {
		t.Errorf("Expected empty result for empty input")
	}
}

// TestBearing tests bearings and compass headings.
func TestBearing(t *testing.T) {
	tests := []struct {
		lon2, lat2 float64
		bearing    float64
		heading    string
	}{
		{0, 1, 0, "N"},
		{1, 0, 90, "E"},
		{0, -1, 180, "S"},
		{-1, 0, 270, "W"},
	}

	for _, tt := range tests {
		b := Bearing(0, 0, tt.lon2, tt.lat2)
		if angleDiff(b, tt.bearing) > 1e-9 {
			t.Errorf("Bearing to (%.0f, %.0f): expected %.1f, got %.9f", tt.lon2, tt.lat2, tt.bearing, b)
		}
		if h := BearingHeading(b); h != tt.heading {
			t.Errorf("Heading for %.1f: expected %s, got %s", b, tt.heading, h)
		}
	}

	if h := BearingHeading(350); h != "N" {
		t.Errorf("Heading for 350: expected N, got %s", h)
	}
	if h := BearingHeading(22.5); h != "NNE" {
		t.Errorf("Heading for 22.5: expected NNE, got %s", h)
	}
}

// TestWindToFrom tests conversion from flow-to to blowing-from bearings.
func TestWindToFrom(t *testing.T) {
	tests := []struct{ to, from float64 }{
		{0, 270},
		{90, 180},
		{270, 0},
		{300, 330},
	}
	for _, tt := range tests {
		if got := WindToFrom(tt.to); math.Abs(got-tt.from) > 1e-12 {
			t.Errorf("WindToFrom(%.0f): expected %.0f, got %.6f", tt.to, tt.from, got)
		}
	}
}

// TestUnitConversions tests speed, salinity and pressure helpers.
func TestUnitConversions(t *testing.T) {
	if got := MpsToKph(10); math.Abs(got-36) > 1e-12 {
		t.Errorf("MpsToKph(10): expected 36, got %.12f", got)
	}
	if got := MpsToKnots(1852.0 / 3600.0); math.Abs(got-1) > 1e-12 {
		t.Errorf("MpsToKnots: expected 1, got %.12f", got)
	}
	if got := TEOSToPSU(PSUToTEOS(30)); math.Abs(got-30) > 1e-12 {
		t.Errorf("Salinity round trip: expected 30, got %.12f", got)
	}
	if got := PSUToTEOS(35); math.Abs(got-35.16504) > 1e-12 {
		t.Errorf("PSUToTEOS(35): expected 35.16504, got %.12f", got)
	}
	if got := SeaLevelPressure(0, 101000, 280); got != 101000 {
		t.Errorf("SeaLevelPressure at sea level: expected 101000, got %.6f", got)
	}
	if got := SeaLevelPressure(100, 100000, 280); got <= 100000 {
		t.Errorf("SeaLevelPressure above sea level should increase pressure, got %.6f", got)
	}
}

// TestDateToYearDay tests fractional year days.
func TestDateToYearDay(t *testing.T) {
	if got := DateToYearDay(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("Expected 1.5, got %.12f", got)
	}
	if got := DateToYearDay(time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)); math.Abs(got-366) > 1e-12 {
		t.Errorf("Leap year: expected 366, got %.12f", got)
	}
}

// TestParseLocal tests local wall-clock parsing.
func TestParseLocal(t *testing.T) {
	got, err := ParseLocal("2006-01-02 15:04", "2020-07-01 05:00", "")
	if err != nil {
		t.Fatalf("ParseLocal: %v", err)
	}
	if !got.Equal(time.Date(2020, 7, 1, 5, 0, 0, 0, time.UTC)) || got.Location() != time.UTC {
		t.Errorf("Unexpected time %v", got)
	}
	if _, err := ParseLocal("2006-01-02", "2020-07-01", "Not/AZone"); err == nil {
		t.Errorf("Expected error for unknown zone")
	}
}

// TestFindModelLevel tests nearest and fractional levels.
func TestFindModelLevel(t *testing.T) {
	levels := []float64{0.5, 1.5, 2.5, 3.5}

	tests := []struct {
		depth      float64
		fractional bool
		expected   float64
	}{
		{1.4, false, 1},
		{1.0, true, 0.5},
		{3.0, true, 2.5},
		{0.0, true, -0.5},
		{100, false, 3},
		{100, true, 3},
	}
	for _, tt := range tests {
		if got := FindModelLevel(tt.depth, levels, tt.fractional); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("FindModelLevel(%.1f, %v): expected %.2f, got %.6f", tt.depth, tt.fractional, tt.expected, got)
		}
	}
}
