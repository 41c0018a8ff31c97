package location

import "errors"

var ErrOutOfRange = errors.New("coordinates out of range")

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrOutOfRange
	}
	return nil
}

func (p Point) DistanceMeters(q Point) float64 {
	return HaversineMeters(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Within reports whether distance is inside the fence; the boundary counts.
func Within(distanceMeters, radiusMeters float64) bool {
	return distanceMeters <= radiusMeters
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
