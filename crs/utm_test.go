package crs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInValidZone(t *testing.T) {
	assert.True(t, InValidZone(0))
	assert.True(t, InValidZone(-80))
	assert.True(t, InValidZone(84))
	assert.False(t, InValidZone(-80.1))
	assert.False(t, InValidZone(85))
}

func TestZoneNumber(t *testing.T) {
	tests := []struct {
		lon, lat float64
		want     int
	}{
		{lon: -180, lat: 0, want: 1},
		{lon: -177.1, lat: 0, want: 1},
		{lon: -75, lat: 40, want: 18},
		{lon: 0, lat: 0, want: 31},
		{lon: 6, lat: 0, want: 32},
		{lon: 179.9, lat: 0, want: 60},
		{lon: 180, lat: 0, want: 1}, // wraps around the antimeridian
		{lon: 5, lat: 55, want: 31},
		{lon: 5, lat: 60, want: 32}, // Norway exception
		{lon: 8, lat: 75, want: 31}, // Svalbard exceptions
		{lon: 15, lat: 78, want: 33},
		{lon: 25, lat: 75, want: 35},
		{lon: 35, lat: 80, want: 37},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("(%v, %v)", tt.lon, tt.lat), func(t *testing.T) {
			assert.Equal(t, tt.want, ZoneNumber(tt.lon, tt.lat))
		})
	}
}

func TestZoneCRS(t *testing.T) {
	t.Run("northern hemisphere", func(t *testing.T) {
		c, err := ZoneCRS(5, 10)
		require.NoError(t, err)
		assert.Contains(t, c.Def(), "+zone=31")
		assert.NotContains(t, c.Def(), "+south")
	})
	t.Run("southern hemisphere", func(t *testing.T) {
		c, err := ZoneCRS(5, -10)
		require.NoError(t, err)
		assert.Contains(t, c.Def(), "+zone=31")
		assert.Contains(t, c.Def(), "+south")
	})
	t.Run("outside the UTM band", func(t *testing.T) {
		_, err := ZoneCRS(5, 85)
		require.Error(t, err)
	})
}

func TestZoneCRSReproject(t *testing.T) {
	// the central meridian of zone 31 is 3 east; on the equator it projects
	// to the 500km false easting
	zone31, err := ZoneCRS(3, 0)
	require.NoError(t, err)
	require.True(t, strings.Contains(zone31.Def(), "+zone=31"))

	got, err := Reproject(geom.Point{3, 0}, LatLng(), zone31)
	require.NoError(t, err)
	assert.InDelta(t, 500000, got.X(), 1)
	assert.InDelta(t, 0, got.Y(), 1)
}
