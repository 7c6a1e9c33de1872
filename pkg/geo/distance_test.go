package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles(t *testing.T) {
	sf := Point{Latitude: 37.7749, Longitude: -122.4194}
	oakland := Point{Latitude: 37.8044, Longitude: -122.2712}

	d := DistanceMiles(sf, oakland)
	assert.InDelta(t, 8.3, d, 0.5)
}

func TestDistanceMilesZero(t *testing.T) {
	p := Point{Latitude: 40.0, Longitude: -100.0}
	assert.Zero(t, DistanceMiles(p, p))
}

func TestDistanceMilesSymmetric(t *testing.T) {
	a := Point{Latitude: 34.05, Longitude: -118.24}
	b := Point{Latitude: 36.17, Longitude: -115.14}
	assert.InDelta(t, DistanceMiles(a, b), DistanceMiles(b, a), 1e-9)
}
