// pkg/geometry/json_test.go - Unit tests for the JSON codec
package geometry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMultiPolygonJSONRoundTrip(t *testing.T) {
	mp := NewMultiPolygon()
	require.NoError(t, mp.Add(NewPolygon(square(0, 0, 1), square(0.25, 0.25, 0.5))))
	require.NoError(t, mp.Add(NewPolygon([]Coordinate{XYZ(5, 5, 1), XYZ(6, 5, 2), XYZ(6, 6, 3), XYZ(5, 5, 1)})))

	data, err := EncodeCoordinates(mp)
	require.NoError(t, err)

	decoded, err := DecodeCoordinates(TypeMultiPolygon, data)
	require.NoError(t, err)

	if diff := cmp.Diff(mp, decoded, cmp.AllowUnexported(MultiPolygon{}, collection[*Polygon]{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCoordinatesShape(t *testing.T) {
	tests := []struct {
		name string
		geom Geometry
		want string
	}{
		{"point", NewPoint(1, 2), `[1,2]`},
		{"point with z", &Point{Coordinate: XYZ(1, 2, 3)}, `[1,2,3]`},
		{"line", NewLineString(XY(0, 0), XY(1.5, 2)), `[[0,0],[1.5,2]]`},
		{"polygon", NewPolygon([]Coordinate{XY(0, 0), XY(1, 0), XY(0, 0)}), `[[[0,0],[1,0],[0,0]]]`},
		{"empty multipolygon", NewMultiPolygon(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeCoordinates(tt.geom)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestDecodeCoordinatesMalformed(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		data string
	}{
		{"point too short", TypePoint, `[1]`},
		{"point not numeric", TypePoint, `["a", 2]`},
		{"multipolygon too shallow", TypeMultiPolygon, `[[[0, 0], [1, 1]]]`},
		{"multipolygon unterminated", TypeMultiPolygon, `[[[[0, 0], [1, 1]]]`},
		{"trailing data", TypeLineString, `[[0, 0]] [1]`},
		{"object instead of array", TypeLineString, `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := DecodeCoordinates(tt.typ, []byte(tt.data))
			require.ErrorIs(t, err, ErrFormat)
			require.Nil(t, g)
		})
	}
}

func TestDecodeCoordinatesStreamLeavesDecoderPositioned(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`[[[[0,0],[1,0],[1,1],[0,0]]]] [3,4]`))

	g, err := DecodeCoordinatesStream(TypeMultiPolygon, dec)
	require.NoError(t, err)
	require.Equal(t, 1, g.(*MultiPolygon).Len())

	next, err := DecodeCoordinatesStream(TypePoint, dec)
	require.NoError(t, err)
	require.Equal(t, NewPoint(3, 4), next)
}

func TestMarshalUnmarshalObject(t *testing.T) {
	gc := NewGeometryCollection()
	require.NoError(t, gc.Add(NewPoint(1, 2)))
	mls := NewMultiLineString()
	require.NoError(t, mls.Add(NewLineString(XY(0, 0), XY(1, 1))))
	require.NoError(t, gc.Add(mls))

	data, err := Marshal(gc)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"GeometryCollection","geometries":[
		{"type":"Point","coordinates":[1,2]},
		{"type":"MultiLineString","coordinates":[[[0,0],[1,1]]]}]}`, string(data))

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, WKT(gc, true), WKT(decoded, true))
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"Hexagon","coordinates":[]}`))
	require.ErrorIs(t, err, ErrFormat)

	_, err = Unmarshal([]byte(`{"type":"Point"}`))
	require.ErrorIs(t, err, ErrFormat)

	_, err = Unmarshal([]byte(`not json`))
	require.ErrorIs(t, err, ErrFormat)
}

func TestSetCoordinatesFromJSONKeepsStateOnError(t *testing.T) {
	mp := NewMultiPolygon()
	require.NoError(t, mp.SetCoordinatesFromJSON([]byte(`[[[[0,0],[1,0],[0,0]]]]`)))
	require.Equal(t, 1, mp.Len())

	err := mp.SetCoordinatesFromJSON([]byte(`[[[[0,0],[1,0]`))
	require.ErrorIs(t, err, ErrFormat)
	require.Equal(t, 1, mp.Len())
}
