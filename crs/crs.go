// Package crs provides the coordinate reference system support the layout
// package builds on: a catalog of named CRS definitions, point reprojection
// and UTM zone lookup.
package crs

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/ctessum/geom/proj"
	"github.com/go-playground/validator/v10"
	"github.com/go-spatial/geom"
	"github.com/muesli/reflow/truncate"
	"github.com/perimeterx/marshmallow"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	//go:embed crsdefs/*.json
	embeddedCRSDefsJSONFS embed.FS

	// embeddedCRSCache is filled once during init and read-only afterwards,
	// so catalog lookups stay safe for concurrent use without locking
	embeddedCRSCache = make(map[string]*CRS)

	// catalog holds the embedded definitions in registration order
	catalog = orderedmap.New[string, string]()
)

func init() {
	for _, id := range []string{"LatLng", "WebMercator", "WorldMercator"} {
		def, err := loadDefinition(id)
		if err != nil {
			panic(fmt.Errorf("crs: while loading embedded definition %q: %w", id, err))
		}
		c, err := def.toCRS()
		if err != nil {
			panic(err)
		}
		embeddedCRSCache[id] = c
		catalog.Set(id, def.Title)
	}
}

// CRS is a coordinate reference system: a projection parsed from a proj4 or
// WKT definition, optionally paired with the extent of the world in its
// coordinates. A CRS is immutable and safe for concurrent use.
type CRS struct {
	id             string
	def            string
	sr             *proj.SR
	worldExtent    geom.Extent
	hasWorldExtent bool
}

// ID returns the catalog id of the CRS, or "" for an ad hoc definition.
func (c *CRS) ID() string {
	return c.id
}

// Def returns the proj4 or WKT definition the CRS was parsed from.
func (c *CRS) Def() string {
	return c.def
}

// SR returns the underlying spatial reference.
func (c *CRS) SR() *proj.SR {
	return c.sr
}

// WorldExtent returns the extent of the world in the CRS's own coordinates.
// ok is false when the definition does not declare one.
func (c *CRS) WorldExtent() (geom.Extent, bool) {
	return c.worldExtent, c.hasWorldExtent
}

func (c *CRS) String() string {
	if c.id != "" {
		return c.id
	}
	return truncate.StringWithTail(c.def, 48, "...")
}

// Parse parses a proj4- or WKT-formatted definition into a CRS without a
// world extent.
func Parse(def string) (*CRS, error) {
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("crs: while parsing %q: %w", truncate.StringWithTail(def, 80, "..."), err)
	}
	return &CRS{def: def, sr: sr}, nil
}

// Reproject converts a point expressed in src to the same location expressed
// in dst.
func Reproject(p geom.Point, src, dst *CRS) (geom.Point, error) {
	t, err := src.sr.NewTransform(dst.sr)
	if err != nil {
		return geom.Point{}, fmt.Errorf("crs: while creating transform %v -> %v: %w", src, dst, err)
	}
	x, y, err := t(p.X(), p.Y())
	if err != nil {
		return geom.Point{}, fmt.Errorf("crs: while reprojecting %v from %v to %v: %w", p.XY(), src, dst, err)
	}
	return geom.Point{x, y}, nil
}

// Named returns the CRS with the given id from the embedded catalog.
func Named(id string) (*CRS, error) {
	cached, ok := embeddedCRSCache[id]
	if !ok {
		return nil, fmt.Errorf("crs: no embedded definition with id %q", id)
	}
	return cached, nil
}

// MustNamed is Named for catalog ids that are known to exist.
func MustNamed(id string) *CRS {
	c, err := Named(id)
	if err != nil {
		panic(err)
	}
	return c
}

// LatLng is geographic WGS 84 (EPSG:4326), the target for distance
// measurement.
func LatLng() *CRS {
	return MustNamed("LatLng")
}

// WebMercator is spherical pseudo-mercator (EPSG:3857), the projection of the
// common web tile pyramids.
func WebMercator() *CRS {
	return MustNamed("WebMercator")
}

// Catalog returns the ids of the embedded CRS definitions in registration
// order.
func Catalog() []string {
	ids := make([]string, 0, catalog.Len())
	for p := catalog.Oldest(); p != nil; p = p.Next() {
		ids = append(ids, p.Key)
	}
	return ids
}

// Title returns the human readable title of a catalog id.
func Title(id string) string {
	title, _ := catalog.Get(id)
	return title
}

// definition is the JSON shape of an embedded CRS definition.
type definition struct {
	ID    string `validate:"required" json:"id"`
	Title string `json:"title,omitempty"`
	// Def is a proj4 or WKT definition string
	Def string `validate:"required" json:"def"`
	// WorldExtent is minx, miny, maxx, maxy in the CRS's own coordinates
	WorldExtent *[4]float64 `json:"worldExtent,omitempty"`
}

func (d *definition) toCRS() (*CRS, error) {
	c, err := Parse(d.Def)
	if err != nil {
		return nil, err
	}
	c.id = d.ID
	if d.WorldExtent != nil {
		c.worldExtent = geom.Extent(*d.WorldExtent)
		c.hasWorldExtent = true
	}
	return c, nil
}

func (d *definition) UnmarshalJSON(data []byte) error {
	err := defaults.Set(d)
	if err != nil {
		return err
	}
	_, err = marshmallow.Unmarshal(data, d, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(d)
}

func loadDefinition(id string) (definition, error) {
	var def definition
	defJSON, err := embeddedCRSDefsJSONFS.ReadFile("crsdefs/" + id + ".json")
	if err != nil {
		return def, err
	}
	err = json.Unmarshal(defJSON, &def)
	if err != nil {
		return def, err
	}
	return def, nil
}
