package services

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		// Roanoke VA to Charlotte NC, straight line.
		{"roanoke to charlotte", 37.2710, -79.9414, 35.2271, -80.8431, 150, 3},
		{"same point", 37.2710, -79.9414, 37.2710, -79.9414, 0, 0.001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMiles(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("DistanceMiles = %v, want %v within %v", got, tc.want, tc.tolerance)
			}
		})
	}
}
