// Package layout implements zoom level selection and tile grid layout
// derivation for power-of-2 tile pyramids, as used by web mapping clients.
package layout

import (
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
)

// CellSize is the ground width and height of a single raster cell, in the
// units of the CRS it is expressed in.
type CellSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (cs CellSize) Valid() bool {
	return cs.Width > 0 && cs.Height > 0
}

// TileLayout describes the tile grid of one pyramid level: the number of tile
// columns and rows in the grid and the pixel size of each tile.
type TileLayout struct {
	// Number of tile columns in the grid
	LayoutCols uint `json:"layoutCols"`
	// Number of tile rows in the grid
	LayoutRows uint `json:"layoutRows"`
	// Width of each tile in pixels
	TileCols uint `json:"tileCols"`
	// Height of each tile in pixels
	TileRows uint `json:"tileRows"`
}

// TotalCols returns the pixel width of the whole grid.
func (tl TileLayout) TotalCols() uint64 {
	return uint64(tl.LayoutCols) * uint64(tl.TileCols)
}

// TotalRows returns the pixel height of the whole grid.
func (tl TileLayout) TotalRows() uint64 {
	return uint64(tl.LayoutRows) * uint64(tl.TileRows)
}

// LayoutDefinition pairs an extent with a tile layout and so defines how
// world space maps onto a tile grid at one zoom level.
type LayoutDefinition struct {
	Extent     geom.Extent `json:"extent"`
	TileLayout TileLayout  `json:"tileLayout"`
}

// CellSize returns the ground size one pixel represents in this layout.
func (ld LayoutDefinition) CellSize() CellSize {
	return CellSize{
		Width:  ld.Extent.XSpan() / float64(ld.TileLayout.TotalCols()),
		Height: ld.Extent.YSpan() / float64(ld.TileLayout.TotalRows()),
	}
}

// TileExtent returns the extent covered by one tile of the layout, numbered
// from the top-left corner. ok is false when the tile coordinate falls
// outside the grid. The tile's Z is not interpreted; the layout itself
// determines the grid dimensions.
func (ld LayoutDefinition) TileExtent(tile *slippy.Tile) (geom.Extent, bool) {
	if tile.X >= ld.TileLayout.LayoutCols || tile.Y >= ld.TileLayout.LayoutRows {
		return geom.Extent{}, false
	}

	tileSpanX := ld.Extent.XSpan() / float64(ld.TileLayout.LayoutCols)
	minX := ld.Extent.MinX() + float64(tile.X)*tileSpanX

	tileSpanY := ld.Extent.YSpan() / float64(ld.TileLayout.LayoutRows)
	maxY := ld.Extent.MaxY() - float64(tile.Y)*tileSpanY

	return geom.Extent{minX, maxY - tileSpanY, minX + tileSpanX, maxY}, true
}

// LayoutLevel pairs a zoom id with the layout definition of that level. It is
// the unit of zoom navigation: ZoomIn and ZoomOut move between LayoutLevels.
type LayoutLevel struct {
	Zoom   int              `json:"zoom"`
	Layout LayoutDefinition `json:"layout"`
}
