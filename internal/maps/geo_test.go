package maps

import (
	"math"
	"testing"

	"itinerary/internal/modules/itinerary"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      itinerary.Coordinates
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         itinerary.Coordinates{Lat: 41.8902, Lng: 12.4922},
			b:         itinerary.Coordinates{Lat: 41.8902, Lng: 12.4922},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "Colosseum to Vatican (~4km)",
			a:         itinerary.Coordinates{Lat: 41.8902, Lng: 12.4922},
			b:         itinerary.Coordinates{Lat: 41.9022, Lng: 12.4539},
			wantKm:    3.4,
			tolerance: 1.0,
		},
		{
			name:      "Rome to Paris (~1106km)",
			a:         itinerary.Coordinates{Lat: 41.9028, Lng: 12.4964},
			b:         itinerary.Coordinates{Lat: 48.8566, Lng: 2.3522},
			wantKm:    1106,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	a := itinerary.Coordinates{Lat: 25.0, Lng: 121.0}
	b := itinerary.Coordinates{Lat: 26.0, Lng: 122.0}
	if d1, d2 := haversineKm(a, b), haversineKm(b, a); math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}
