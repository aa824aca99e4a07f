package layout

import (
	"fmt"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/slippy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellSizeValid(t *testing.T) {
	assert.True(t, CellSize{1, 1}.Valid())
	assert.False(t, CellSize{0, 1}.Valid())
	assert.False(t, CellSize{1, -1}.Valid())
}

func TestTileLayoutTotalDimensions(t *testing.T) {
	tl := TileLayout{LayoutCols: 4, LayoutRows: 2, TileCols: 256, TileRows: 512}
	assert.Equal(t, uint64(1024), tl.TotalCols())
	assert.Equal(t, uint64(1024), tl.TotalRows())
}

func TestLayoutDefinitionCellSize(t *testing.T) {
	ld := LayoutDefinition{
		Extent:     geom.Extent{0, 0, 1024, 512},
		TileLayout: TileLayout{LayoutCols: 2, LayoutRows: 1, TileCols: 256, TileRows: 256},
	}
	cellSize := ld.CellSize()
	assert.InDelta(t, 2.0, cellSize.Width, 1e-12)
	assert.InDelta(t, 2.0, cellSize.Height, 1e-12)
}

func TestLayoutDefinitionTileExtent(t *testing.T) {
	ld := LayoutDefinition{
		Extent:     geom.Extent{0, 0, 1024, 1024},
		TileLayout: TileLayout{LayoutCols: 2, LayoutRows: 2, TileCols: 256, TileRows: 256},
	}
	tests := []struct {
		tile *slippy.Tile
		ok   bool
		want geom.Extent
	}{
		{tile: slippy.NewTile(1, 0, 0), ok: true, want: geom.Extent{0, 512, 512, 1024}},
		{tile: slippy.NewTile(1, 1, 0), ok: true, want: geom.Extent{512, 512, 1024, 1024}},
		{tile: slippy.NewTile(1, 0, 1), ok: true, want: geom.Extent{0, 0, 512, 512}},
		{tile: slippy.NewTile(1, 1, 1), ok: true, want: geom.Extent{512, 0, 1024, 512}},
		{tile: slippy.NewTile(1, 2, 0), ok: false},
		{tile: slippy.NewTile(1, 0, 2), ok: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%v/%v", tt.tile.X, tt.tile.Y), func(t *testing.T) {
			extent, ok := ld.TileExtent(tt.tile)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, extent)
			}
		})
	}
}
