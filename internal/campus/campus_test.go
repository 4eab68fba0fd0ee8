package campus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonContains(t *testing.T) {
	square := Polygon{{0, 0}, {0, 10}, {10, 10}, {10, 0}}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5, 5}, true},
		{"near corner inside", Point{0.1, 9.9}, true},
		{"left of square", Point{5, -1}, false},
		{"above square", Point{11, 5}, false},
		{"far away", Point{-50, 170}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, square.Contains(tt.p))
		})
	}
}

func TestPolygonContains_Concave(t *testing.T) {
	// U shape: the notch between the arms is outside.
	u := Polygon{{0, 0}, {0, 9}, {9, 9}, {9, 6}, {3, 6}, {3, 3}, {9, 3}, {9, 0}}

	assert.True(t, u.Contains(Point{1, 4.5}), "base of the U")
	assert.True(t, u.Contains(Point{6, 1.5}), "left arm")
	assert.False(t, u.Contains(Point{6, 4.5}), "notch")
}

func TestPolygonContains_Degenerate(t *testing.T) {
	assert.False(t, Polygon{}.Contains(Point{0, 0}))
	assert.False(t, Polygon{{1, 1}}.Contains(Point{1, 1}))
}

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"Library", "Gymnasium", "Engineering Building", "Cafeteria"}, table.Names())

	name, ok := table.Locate(Point{Lat: 8.4858, Lng: 124.6564})
	assert.True(t, ok)
	assert.Equal(t, "Library", name)

	name, ok = table.Locate(Point{Lat: 8.4847, Lng: 124.6556})
	assert.True(t, ok)
	assert.Equal(t, "Cafeteria", name)

	_, ok = table.Locate(Point{Lat: 8.4900, Lng: 124.6600})
	assert.False(t, ok)
}

func TestLoad_FirstMatchWins(t *testing.T) {
	src := []byte(`
locations: [
	{name: "Inner", polygon: [{lat: 1, lng: 1}, {lat: 1, lng: 2}, {lat: 2, lng: 2}, {lat: 2, lng: 1}]},
	{name: "Outer", polygon: [{lat: 0, lng: 0}, {lat: 0, lng: 3}, {lat: 3, lng: 3}, {lat: 3, lng: 0}]},
]`)
	table, err := Load("overlap.cue", src)
	require.NoError(t, err)

	name, ok := table.Locate(Point{1.5, 1.5})
	require.True(t, ok)
	assert.Equal(t, "Inner", name)

	name, _ = table.Locate(Point{0.5, 0.5})
	assert.Equal(t, "Outer", name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `locations: [`},
		{"too few points", `locations: [{name: "Tiny", polygon: [{lat: 0, lng: 0}, {lat: 1, lng: 1}]}]`},
		{"empty name", `locations: [{name: "", polygon: [{lat: 0, lng: 0}, {lat: 0, lng: 1}, {lat: 1, lng: 1}]}]`},
		{"latitude out of range", `locations: [{name: "X", polygon: [{lat: 95, lng: 0}, {lat: 0, lng: 1}, {lat: 1, lng: 1}]}]`},
		{"unknown field", `locations: [{name: "X", floor: 2, polygon: [{lat: 0, lng: 0}, {lat: 0, lng: 1}, {lat: 1, lng: 1}]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("bad.cue", []byte(tt.src))
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le), "want *LoadError, got %T: %v", err, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campus.cue")
	src := `locations: [{name: "Quad", polygon: [{lat: 0, lng: 0}, {lat: 0, lng: 2}, {lat: 2, lng: 2}, {lat: 2, lng: 0}]}]`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quad"}, table.Names())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
