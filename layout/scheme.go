package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom"

	"github.com/haigouseal/geotrellis/crs"
	"github.com/haigouseal/geotrellis/mathhelp"
)

// EarthCircumference is the equatorial circumference of the spherical WGS84
// approximation used by common web tiling tools, in meters.
const EarthCircumference = 2 * math.Pi * 6378137

var (
	// ErrInvalidLevel is returned when a level below 1 is requested. The
	// tiling scheme does not have levels below 1.
	ErrInvalidLevel = errors.New("tiling scheme does not have levels below 1")
	// ErrDegenerateInput is returned when a cell size or the ground distance
	// derived from it is too degenerate to resolve a zoom level.
	ErrDegenerateInput = errors.New("degenerate cell size or ground distance")
)

// SchemeConfig contains the construction-time parameters of a
// ZoomedLayoutScheme.
type SchemeConfig struct {
	// TileSize is the width and height of each tile in pixels
	TileSize uint `default:"256" validate:"required,min=1" yaml:"TileSize"`
	// ResolutionThreshold is the fraction of a level's resolution gap by
	// which a raster may be sharper than the level before the next, finer
	// level is selected instead
	ResolutionThreshold float64 `default:"0.1" validate:"omitempty,gt=0" yaml:"ResolutionThreshold"`
}

// ZoomedLayoutScheme selects the zoom level of a power-of-2 tile pyramid
// matching a location and cell size, and derives the tile grid layout of any
// level. Level z covers the CRS's world extent with a 2^z by 2^z grid of
// tiles. The scheme is immutable after construction and safe for concurrent
// use.
type ZoomedLayoutScheme struct {
	crs    *crs.CRS
	config SchemeConfig
}

// NewScheme creates a scheme for the given CRS. Zero-valued config fields are
// replaced by the defaults (tile size 256, resolution threshold 0.1).
func NewScheme(c *crs.CRS, config SchemeConfig) (*ZoomedLayoutScheme, error) {
	if err := defaults.Set(&config); err != nil {
		return nil, err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, err
	}
	return &ZoomedLayoutScheme{crs: c, config: config}, nil
}

// MustNewScheme is NewScheme for configurations that are known to be valid.
func MustNewScheme(c *crs.CRS, config SchemeConfig) *ZoomedLayoutScheme {
	s, err := NewScheme(c, config)
	if err != nil {
		panic(err)
	}
	return s
}

// CRS returns the coordinate reference system the scheme lays tiles out in.
func (s *ZoomedLayoutScheme) CRS() *crs.CRS {
	return s.crs
}

// TileSize returns the configured tile pixel size.
func (s *ZoomedLayoutScheme) TileSize() uint {
	return s.config.TileSize
}

// ResolutionThreshold returns the configured resolution snapping threshold.
func (s *ZoomedLayoutScheme) ResolutionThreshold() float64 {
	return s.config.ResolutionThreshold
}

// Zoom returns the pyramid level whose resolution best matches cellSize at
// the location (x, y), both expressed in the scheme's CRS.
//
// The ground distance between two sample points one cell apart is measured in
// the local UTM zone when the latitude allows it, or with the great-circle
// formula otherwise. The continuous level estimate is truncated, then bumped
// to the next, finer level when the raster is sharper than the truncated
// level's resolution by more than ResolutionThreshold of the gap between the
// two levels. The bump is never more than one level.
func (s *ZoomedLayoutScheme) Zoom(x, y float64, cellSize CellSize) (int, error) {
	if !cellSize.Valid() {
		return 0, fmt.Errorf("%w: cell size %v x %v", ErrDegenerateInput, cellSize.Width, cellSize.Height)
	}

	latLng := crs.LatLng()
	far, err := crs.Reproject(geom.Point{x + cellSize.Width, y + cellSize.Height}, s.crs, latLng)
	if err != nil {
		return 0, err
	}
	near, err := crs.Reproject(geom.Point{x, y}, s.crs, latLng)
	if err != nil {
		return 0, err
	}

	dist, err := groundDistance(far, near)
	if err != nil {
		return 0, err
	}
	if dist <= 0 {
		return 0, fmt.Errorf("%w: zero ground distance at (%v, %v)", ErrDegenerateInput, x, y)
	}

	tileSize := float64(s.config.TileSize)
	z := int(math.Log2(EarthCircumference / (dist * tileSize)))
	zRes := resolution(z, tileSize)
	delta := zRes - resolution(z+1, tileSize)
	diff := zRes - dist
	if diff/delta > s.config.ResolutionThreshold {
		return z + 1, nil
	}
	return z, nil
}

// LevelFor returns the level whose resolution best matches cellSize at the
// lower-left corner of extent, laid out over the CRS's world extent.
func (s *ZoomedLayoutScheme) LevelFor(extent geom.Extent, cellSize CellSize) (LayoutLevel, error) {
	worldExtent, err := s.worldExtent()
	if err != nil {
		return LayoutLevel{}, err
	}
	z, err := s.Zoom(extent.MinX(), extent.MinY(), cellSize)
	if err != nil {
		return LayoutLevel{}, err
	}
	return s.LevelForZoomWithExtent(worldExtent, z)
}

// LevelForZoom returns the layout of the given level over the CRS's world
// extent. Levels below 1 yield ErrInvalidLevel.
func (s *ZoomedLayoutScheme) LevelForZoom(zoom int) (LayoutLevel, error) {
	worldExtent, err := s.worldExtent()
	if err != nil {
		return LayoutLevel{}, err
	}
	return s.LevelForZoomWithExtent(worldExtent, zoom)
}

// LevelForZoomWithExtent returns the layout of the given level over a caller
// supplied world extent. Levels below 1 yield ErrInvalidLevel.
func (s *ZoomedLayoutScheme) LevelForZoomWithExtent(worldExtent geom.Extent, zoom int) (LayoutLevel, error) {
	if zoom < 1 {
		return LayoutLevel{}, fmt.Errorf("%w: %d", ErrInvalidLevel, zoom)
	}
	gridSize := mathhelp.Pow2(uint(zoom))
	return LayoutLevel{
		Zoom: zoom,
		Layout: LayoutDefinition{
			Extent: worldExtent,
			TileLayout: TileLayout{
				LayoutCols: gridSize,
				LayoutRows: gridSize,
				TileCols:   s.config.TileSize,
				TileRows:   s.config.TileSize,
			},
		},
	}, nil
}

// ZoomOut returns the level one step coarser: grid dimensions halved, tile
// pixel dimensions and extent unchanged. No lower bound is enforced; zooming
// out below level 1 produces a degenerate grid.
func (s *ZoomedLayoutScheme) ZoomOut(level LayoutLevel) LayoutLevel {
	return LayoutLevel{
		Zoom: level.Zoom - 1,
		Layout: LayoutDefinition{
			Extent: level.Layout.Extent,
			TileLayout: TileLayout{
				LayoutCols: level.Layout.TileLayout.LayoutCols / 2,
				LayoutRows: level.Layout.TileLayout.LayoutRows / 2,
				TileCols:   level.Layout.TileLayout.TileCols,
				TileRows:   level.Layout.TileLayout.TileRows,
			},
		},
	}
}

// ZoomIn returns the level one step finer: grid dimensions doubled, tile
// pixel dimensions and extent unchanged.
func (s *ZoomedLayoutScheme) ZoomIn(level LayoutLevel) LayoutLevel {
	return LayoutLevel{
		Zoom: level.Zoom + 1,
		Layout: LayoutDefinition{
			Extent: level.Layout.Extent,
			TileLayout: TileLayout{
				LayoutCols: level.Layout.TileLayout.LayoutCols * 2,
				LayoutRows: level.Layout.TileLayout.LayoutRows * 2,
				TileCols:   level.Layout.TileLayout.TileCols,
				TileRows:   level.Layout.TileLayout.TileRows,
			},
		},
	}
}

func (s *ZoomedLayoutScheme) worldExtent() (geom.Extent, error) {
	worldExtent, ok := s.crs.WorldExtent()
	if !ok {
		return geom.Extent{}, fmt.Errorf("layout: crs %v has no known world extent", s.crs)
	}
	return worldExtent, nil
}

// resolution is the ground distance one pixel represents at a zoom level.
func resolution(zoom int, tileSize float64) float64 {
	return EarthCircumference / (math.Pow(2, float64(zoom)) * tileSize)
}

// groundDistance measures the distance in meters between two geographic
// points: the Chebyshev distance in the local UTM zone when the latitude
// falls within the UTM band, the great-circle distance otherwise.
func groundDistance(far, near geom.Point) (float64, error) {
	if !crs.InValidZone(far.Y()) {
		return haversine(far, near), nil
	}
	zoneCrs, err := crs.ZoneCRS(far.X(), far.Y())
	if err != nil {
		return 0, err
	}
	latLng := crs.LatLng()
	p1, err := crs.Reproject(far, latLng, zoneCrs)
	if err != nil {
		return 0, err
	}
	p2, err := crs.Reproject(near, latLng, zoneCrs)
	if err != nil {
		return 0, err
	}
	return math.Max(math.Abs(p1.X()-p2.X()), math.Abs(p1.Y()-p2.Y())), nil
}

// haversine is the great-circle distance between two geographic points on a
// sphere with circumference EarthCircumference.
func haversine(p1, p2 geom.Point) float64 {
	const p = math.Pi / 180
	a := 0.5 - math.Cos((p2.Y()-p1.Y())*p)/2 +
		math.Cos(p1.Y()*p)*math.Cos(p2.Y()*p)*(1-math.Cos((p2.X()-p1.X())*p))/2
	return 2 * EarthCircumference * math.Asin(math.Sqrt(a))
}
