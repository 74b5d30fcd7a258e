// pkg/geometry/wkt_test.go - Unit tests for WKT encoding and decoding
package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWKTEmptyMultiPolygon(t *testing.T) {
	if got := WKT(NewMultiPolygon(), true); got != "MULTIPOLYGON  EMPTY" {
		t.Errorf("WKT() = %q, want %q", got, "MULTIPOLYGON  EMPTY")
	}
}

func TestWKTEncoding(t *testing.T) {
	mp := NewMultiPolygon()
	require.NoError(t, mp.Add(NewPolygon([]Coordinate{XY(0, 0), XY(1, 0), XY(1, 1), XY(0, 0)})))
	require.NoError(t, mp.Add(NewPolygon([]Coordinate{XY(5, 5), XY(6, 5), XY(6, 6), XY(5, 5)})))

	multiPoint := NewMultiPoint()
	require.NoError(t, multiPoint.Add(NewPoint(1, 2)))
	require.NoError(t, multiPoint.Add(&Point{Coordinate: XYZ(3, 4, 5)}))

	tests := []struct {
		name string
		geom Geometry
		full bool
		want string
	}{
		{"point", NewPoint(1.5, -2), true, "POINT (1.5 -2)"},
		{"line body", NewLineString(XY(0, 0), XY(10, 20)), false, "(0 0, 10 20)"},
		{"multipolygon", mp, true, "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))"},
		{"multipolygon body", mp, false, "(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))"},
		{"multipoint with z", multiPoint, true, "MULTIPOINT ((1 2), (3 4 5))"},
		{"empty line", NewLineString(), true, "LINESTRING  EMPTY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WKT(tt.geom, tt.full); got != tt.want {
				t.Errorf("WKT() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetCoordinatesFromWKT(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
	}{
		{"keyword empty", "MULTIPOLYGON EMPTY", 0},
		{"written empty", "MULTIPOLYGON  EMPTY", 0},
		{"two children", "((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5))", 2},
		{"wrapped", "(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))", 2},
		{"with keyword", "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)))", 1},
		{"with hole", "(((0 0, 10 0, 10 10, 0 0), (1 1, 2 1, 2 2, 1 1)), ((20 20, 21 20, 21 21, 20 20)))", 2},
		{"unterminated child stops scanning", "((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMultiPolygon()
			require.NoError(t, mp.SetCoordinatesFromWKT(tt.text))
			require.Equal(t, tt.count, mp.Len())
		})
	}
}

func TestSetCoordinatesFromWKTOrder(t *testing.T) {
	mp := NewMultiPolygon()
	require.NoError(t, mp.SetCoordinatesFromWKT("((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5))"))

	first, err := mp.At(0)
	require.NoError(t, err)
	require.Equal(t, XY(0, 0), first.Rings[0][0])

	second, err := mp.At(1)
	require.NoError(t, err)
	require.Equal(t, XY(5, 5), second.Rings[0][0])

	holed := NewMultiPolygon()
	require.NoError(t, holed.SetCoordinatesFromWKT("(((0 0, 10 0, 10 10, 0 0), (1 1, 2 1, 2 2, 1 1)))"))
	p, err := holed.At(0)
	require.NoError(t, err)
	require.Len(t, p.Rings, 2)
}

func TestSetCoordinatesFromWKTMalformedChild(t *testing.T) {
	mp := NewMultiPolygon()
	require.NoError(t, mp.SetCoordinatesFromWKT("((0 0, 1 0, 1 1, 0 0))"))

	err := mp.SetCoordinatesFromWKT("((0 0, 1 0, 1 1, 0 0)), ((5 x, 6 5, 5 5))")
	require.ErrorIs(t, err, ErrFormat)
	require.Equal(t, 1, mp.Len())
}

func TestParseWKTRoundTrip(t *testing.T) {
	inputs := []string{
		"POINT (1 2)",
		"POINT (1 2 3)",
		"LINESTRING (0 0, 1 1, 2 0)",
		"POLYGON ((0 0, 4 0, 4 4, 0 0), (1 1, 2 1, 2 2, 1 1))",
		"MULTIPOINT ((1 2), (3 4))",
		"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))",
		"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))",
		"GEOMETRYCOLLECTION (POINT (1 2), LINESTRING (0 0, 1 1))",
		"MULTIPOLYGON  EMPTY",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			g, err := CompatWKT{}.DecodeWKT(in)
			require.NoError(t, err)
			require.Equal(t, in, WKT(g, true))
		})
	}
}

func TestParseWKTErrors(t *testing.T) {
	inputs := []string{
		"CIRCLE (1 2)",
		"POINT EMPTY",
		"POINT (1)",
		"LINESTRING 0 0, 1 1",
		"POLYGON ((0 0, 1 0, 0 0)",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			g, err := ParseWKT(in)
			require.ErrorIs(t, err, ErrFormat)
			require.Nil(t, g)
		})
	}
}

func TestBalancedWKT(t *testing.T) {
	var dec WKTDecoder = BalancedWKT{}

	g, err := dec.DecodeWKT("MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))")
	require.NoError(t, err)
	mp, ok := g.(*MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 2, mp.Len())

	g, err = dec.DecodeWKT("MULTIPOLYGON EMPTY")
	require.NoError(t, err)
	require.True(t, g.IsEmpty())

	_, err = dec.DecodeWKT("MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5")
	require.ErrorIs(t, err, ErrFormat)

	_, err = dec.DecodeWKT("POLYGON ((0 0, 1 0, 0 0)))")
	require.ErrorIs(t, err, ErrFormat)
}
