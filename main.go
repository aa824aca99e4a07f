package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/carlmjohnson/versioninfo"

	"github.com/haigouseal/geotrellis/crs"
	"github.com/haigouseal/geotrellis/geomhelp"
	"github.com/haigouseal/geotrellis/layout"

	"github.com/iancoleman/strcase"
	"github.com/urfave/cli/v2"
)

const CRSID string = `crs`
const TILESIZE string = `tilesize`
const THRESHOLD string = `threshold`
const X string = `x`
const Y string = `y`
const CELLWIDTH string = `cellwidth`
const CELLHEIGHT string = `cellheight`
const ZOOMS string = `zooms`
const WKTMAXLEN string = `wktmaxlen`

func main() {
	app := cli.NewApp()
	app.Name = "geotrellis-layout"
	app.Usage = "Resolve zoom levels and tile grid layouts for power-of-2 tile pyramids"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     CRSID,
			Aliases:  []string{"c"},
			Usage:    "ID of a (built-in) CRS. E.g.: WebMercator",
			Value:    "WebMercator",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(CRSID)},
		},
		&cli.UintFlag{
			Name:     TILESIZE,
			Usage:    "Tile width and height in pixels",
			Value:    256,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(TILESIZE)},
		},
		&cli.Float64Flag{
			Name:     THRESHOLD,
			Usage:    "Resolution threshold, the tolerated fraction of a level's resolution gap before snapping to the next, finer level",
			Value:    0.1,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(THRESHOLD)},
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "level",
			Usage: "Resolve the layout level matching a cell size at a location and print it as JSON",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:     X,
					Usage:    "X ordinate of the location, in the scheme's CRS",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(X)},
				},
				&cli.Float64Flag{
					Name:     Y,
					Usage:    "Y ordinate of the location, in the scheme's CRS",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(Y)},
				},
				&cli.Float64Flag{
					Name:     CELLWIDTH,
					Usage:    "Ground width of one raster cell, in the scheme's CRS units",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(CELLWIDTH)},
				},
				&cli.Float64Flag{
					Name:     CELLHEIGHT,
					Usage:    "Ground height of one raster cell. Defaults to the cell width",
					Required: false,
					EnvVars:  []string{strcase.ToScreamingSnake(CELLHEIGHT)},
				},
			},
			Action: levelAction,
		},
		{
			Name:  "pyramid",
			Usage: "Print the layouts of the given zoom levels",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     ZOOMS,
					Aliases:  []string{"z"},
					Usage:    "Zoom levels to print. JSON array of integers. E.g.: [1,2,3,4]",
					Required: true,
					EnvVars:  []string{strcase.ToScreamingSnake(ZOOMS)},
				},
				&cli.UintFlag{
					Name:     WKTMAXLEN,
					Usage:    "Truncate printed extent WKT to this many characters, 0 for no truncation",
					Value:    80,
					Required: false,
					EnvVars:  []string{strcase.ToScreamingSnake(WKTMAXLEN)},
				},
			},
			Action: pyramidAction,
		},
		{
			Name:   "crses",
			Usage:  "List the built-in coordinate reference systems",
			Action: crsesAction,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func levelAction(c *cli.Context) error {
	scheme, err := schemeFromFlags(c)
	if err != nil {
		return err
	}
	cellSize := layout.CellSize{Width: c.Float64(CELLWIDTH), Height: c.Float64(CELLHEIGHT)}
	if cellSize.Height == 0 {
		cellSize.Height = cellSize.Width
	}
	x, y := c.Float64(X), c.Float64(Y)

	zoom, err := scheme.Zoom(x, y, cellSize)
	if err != nil {
		return err
	}
	level, err := scheme.LevelForZoom(zoom)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func pyramidAction(c *cli.Context) error {
	scheme, err := schemeFromFlags(c)
	if err != nil {
		return err
	}
	var zooms []int
	err = json.Unmarshal([]byte(c.String(ZOOMS)), &zooms)
	if err != nil {
		return err
	}
	wktMaxLen := uint(c.Uint(WKTMAXLEN))

	for _, zoom := range zooms {
		level, err := scheme.LevelForZoom(zoom)
		if err != nil {
			return err
		}
		cellSize := level.Layout.CellSize()
		fmt.Printf("%d\t%dx%d tiles\t%dx%d px\t%g units/px\t%s\n",
			level.Zoom,
			level.Layout.TileLayout.LayoutCols, level.Layout.TileLayout.LayoutRows,
			level.Layout.TileLayout.TileCols, level.Layout.TileLayout.TileRows,
			cellSize.Width,
			geomhelp.WktMustEncode(geomhelp.ExtentPolygon(level.Layout.Extent), wktMaxLen))
	}
	return nil
}

func crsesAction(c *cli.Context) error {
	for _, id := range crs.Catalog() {
		fmt.Printf("%s\t%s\n", id, crs.Title(id))
	}
	return nil
}

func schemeFromFlags(c *cli.Context) (*layout.ZoomedLayoutScheme, error) {
	crsRef, err := crs.Named(c.String(CRSID))
	if err != nil {
		return nil, err
	}
	return layout.NewScheme(crsRef, layout.SchemeConfig{
		TileSize:            c.Uint(TILESIZE),
		ResolutionThreshold: c.Float64(THRESHOLD),
	})
}
