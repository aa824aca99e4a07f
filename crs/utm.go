package crs

import (
	"fmt"
	"math"

	"github.com/haigouseal/geotrellis/mathhelp"
)

// InValidZone reports whether a latitude falls within the band covered by the
// UTM system.
func InValidZone(lat float64) bool {
	return mathhelp.BetweenInc(lat, -80, 84)
}

// ZoneNumber returns the UTM zone number (1..60) containing the given
// geographic coordinate, including the Norway and Svalbard grid exceptions.
func ZoneNumber(lon, lat float64) int {
	if lat >= 56 && lat < 64 && lon >= 3 && lon < 12 {
		return 32
	}
	if lat >= 72 && lat < 84 {
		switch {
		case lon >= 0 && lon < 9:
			return 31
		case lon >= 9 && lon < 21:
			return 33
		case lon >= 21 && lon < 33:
			return 35
		case lon >= 33 && lon < 42:
			return 37
		}
	}
	return mathhelp.EuclidianMod(int(math.Floor((lon+180)/6)), 60) + 1
}

// ZoneCRS returns the CRS of the UTM zone containing the given geographic
// coordinate. Southern hemisphere coordinates get the false-northing variant.
func ZoneCRS(lon, lat float64) (*CRS, error) {
	if !InValidZone(lat) {
		return nil, fmt.Errorf("crs: latitude %v is outside the UTM band", lat)
	}
	def := fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", ZoneNumber(lon, lat))
	if lat < 0 {
		def += " +south"
	}
	return Parse(def)
}
