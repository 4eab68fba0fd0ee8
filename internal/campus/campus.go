// Package campus maps coordinates to named campus locations.
//
// Locations are polygons defined in CUE and validated against an embedded
// schema: every location needs a non-empty name and at least three points,
// with latitudes in [-90, 90] and longitudes in [-180, 180].
package campus

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

//go:embed locations.cue
var defaultLocationsCUE []byte

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is a closed ring of points; the last point connects to the first.
type Polygon []Point

// Contains reports whether p lies inside the polygon using even-odd ray
// casting, with latitude as y and longitude as x. Points exactly on an edge
// may fall either way.
func (poly Polygon) Contains(p Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) &&
			p.Lng < (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lng {
			inside = !inside
		}
	}
	return inside
}

// Location is a named campus area.
type Location struct {
	Name    string  `json:"name"`
	Polygon Polygon `json:"polygon"`
}

// Table is an ordered list of locations. Earlier entries win when polygons
// overlap.
type Table struct {
	Locations []Location
}

// Locate returns the name of the first location containing p.
func (t *Table) Locate(p Point) (string, bool) {
	for _, loc := range t.Locations {
		if loc.Polygon.Contains(p) {
			return loc.Name, true
		}
	}
	return "", false
}

// Names returns location names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Locations))
	for i, loc := range t.Locations {
		names[i] = loc.Name
	}
	return names
}

// LoadError reports an invalid location definition.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Default returns the built-in campus table.
func Default() (*Table, error) {
	return Load("locations.cue", defaultLocationsCUE)
}

// LoadFile reads a CUE location table from path.
func LoadFile(path string) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read campus table: %w", err)
	}
	return Load(path, src)
}

// Load compiles src, unifies it with the location schema and decodes the
// result. filename is used in error positions only.
func Load(filename string, src []byte) (*Table, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile campus schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var locs []Location
	if err := v.LookupPath(cue.ParsePath("locations")).Decode(&locs); err != nil {
		return nil, formatCUEError(err)
	}
	return &Table{Locations: locs}, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
