// pkg/geometry/json.go - JSON coordinate codec
package geometry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// object is the full JSON form of a geometry
type object struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates,omitempty"`
	Geometries  []json.RawMessage `json:"geometries,omitempty"`
}

// Marshal encodes g as {"type": ..., "coordinates": ...}. Geometry
// collections carry their members under "geometries".
func Marshal(g Geometry) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrFormat)
	}
	obj := object{Type: g.Type().String()}
	if gc, ok := g.(*GeometryCollection); ok {
		obj.Geometries = make([]json.RawMessage, 0, gc.Len())
		for _, member := range gc.items {
			raw, err := Marshal(member)
			if err != nil {
				return nil, err
			}
			obj.Geometries = append(obj.Geometries, raw)
		}
		return json.Marshal(obj)
	}
	coords, err := EncodeCoordinates(g)
	if err != nil {
		return nil, err
	}
	obj.Coordinates = coords
	return json.Marshal(obj)
}

// Unmarshal decodes the full JSON form produced by Marshal
func Unmarshal(data []byte) (Geometry, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	t, err := ParseType(obj.Type)
	if err != nil {
		return nil, err
	}
	if t == TypeGeometryCollection {
		gc := NewGeometryCollection()
		for i, raw := range obj.Geometries {
			member, err := Unmarshal(raw)
			if err != nil {
				return nil, fmt.Errorf("geometry %d: %w", i, err)
			}
			if err := gc.Add(member); err != nil {
				return nil, err
			}
		}
		return gc, nil
	}
	if len(obj.Coordinates) == 0 {
		return nil, fmt.Errorf("%w: %s without coordinates", ErrFormat, t)
	}
	return DecodeCoordinates(t, obj.Coordinates)
}

// EncodeCoordinates writes the nested coordinate arrays of g. The nesting
// depth is fixed by the variant.
func EncodeCoordinates(g Geometry) ([]byte, error) {
	value, err := coordinatesValue(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func coordinatesValue(g Geometry) (interface{}, error) {
	switch v := g.(type) {
	case *Point:
		return coordValue(v.Coordinate), nil
	case *LineString:
		return coordsValue(v.Coords), nil
	case *Polygon:
		return ringsValue(v.Rings), nil
	case *MultiPoint:
		out := make([][]float64, 0, v.Len())
		for _, p := range v.items {
			out = append(out, coordValue(p.Coordinate))
		}
		return out, nil
	case *MultiLineString:
		out := make([][][]float64, 0, v.Len())
		for _, l := range v.items {
			out = append(out, coordsValue(l.Coords))
		}
		return out, nil
	case *MultiPolygon:
		out := make([][][][]float64, 0, v.Len())
		for _, p := range v.items {
			out = append(out, ringsValue(p.Rings))
		}
		return out, nil
	case *GeometryCollection:
		out := make([]json.RawMessage, 0, v.Len())
		for _, member := range v.items {
			raw, err := Marshal(member)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrTypeMismatch, typeOf(g))
	}
}

func coordValue(c Coordinate) []float64 {
	if c.HasZ {
		return []float64{c.X, c.Y, c.Z}
	}
	return []float64{c.X, c.Y}
}

func coordsValue(coords []Coordinate) [][]float64 {
	out := make([][]float64, 0, len(coords))
	for _, c := range coords {
		out = append(out, coordValue(c))
	}
	return out
}

func ringsValue(rings [][]Coordinate) [][][]float64 {
	out := make([][][]float64, 0, len(rings))
	for _, ring := range rings {
		out = append(out, coordsValue(ring))
	}
	return out
}

// DecodeCoordinates decodes the nested coordinate arrays of a geometry of
// type t. On error the partial result is discarded.
func DecodeCoordinates(t Type, data []byte) (Geometry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	g, err := DecodeCoordinatesStream(t, dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after %s coordinates", ErrFormat, t)
	}
	return g, nil
}

// DecodeCoordinatesStream reads the coordinates of a geometry of type t from
// dec in a single forward pass, bounded by the array delimiters.
func DecodeCoordinatesStream(t Type, dec *json.Decoder) (Geometry, error) {
	r := tokenReader{dec: dec}
	switch t {
	case TypePoint:
		c, err := r.coordinate()
		if err != nil {
			return nil, err
		}
		return &Point{Coordinate: c}, nil
	case TypeLineString:
		coords, err := r.coordinates()
		if err != nil {
			return nil, err
		}
		return &LineString{Coords: coords}, nil
	case TypePolygon:
		rings, err := r.rings()
		if err != nil {
			return nil, err
		}
		return &Polygon{Rings: rings}, nil
	case TypeMultiPoint:
		coords, err := r.coordinates()
		if err != nil {
			return nil, err
		}
		mp := NewMultiPoint()
		for _, c := range coords {
			mp.items = append(mp.items, &Point{Coordinate: c})
		}
		return mp, nil
	case TypeMultiLineString:
		lines, err := r.rings()
		if err != nil {
			return nil, err
		}
		ml := NewMultiLineString()
		for _, coords := range lines {
			ml.items = append(ml.items, &LineString{Coords: coords})
		}
		return ml, nil
	case TypeMultiPolygon:
		mp := NewMultiPolygon()
		if err := r.array(func() error {
			rings, err := r.rings()
			if err != nil {
				return err
			}
			mp.items = append(mp.items, &Polygon{Rings: rings})
			return nil
		}); err != nil {
			return nil, err
		}
		return mp, nil
	case TypeGeometryCollection:
		gc := NewGeometryCollection()
		if err := r.array(func() error {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("%w: %v", ErrFormat, err)
			}
			member, err := Unmarshal(raw)
			if err != nil {
				return err
			}
			return gc.Add(member)
		}); err != nil {
			return nil, err
		}
		return gc, nil
	default:
		return nil, fmt.Errorf("%w: cannot decode %s", ErrTypeMismatch, t)
	}
}

// SetCoordinatesFromJSON replaces the polygons of mp with the decoded
// coordinates. mp is left unchanged on error.
func (mp *MultiPolygon) SetCoordinatesFromJSON(data []byte) error {
	g, err := DecodeCoordinates(TypeMultiPolygon, data)
	if err != nil {
		return err
	}
	mp.items = g.(*MultiPolygon).items
	return nil
}

// tokenReader walks a JSON token stream expecting nested numeric arrays
type tokenReader struct {
	dec *json.Decoder
}

func (r tokenReader) delim(want json.Delim) error {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected end of input, want %q", ErrFormat, want)
		}
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: got %v, want %q", ErrFormat, tok, want)
	}
	return nil
}

// array consumes "[", calls fn for every element, then consumes "]"
func (r tokenReader) array(fn func() error) error {
	if err := r.delim('['); err != nil {
		return err
	}
	for r.dec.More() {
		if err := fn(); err != nil {
			return err
		}
	}
	return r.delim(']')
}

func (r tokenReader) coordinate() (Coordinate, error) {
	var values []float64
	err := r.array(func() error {
		tok, err := r.dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		n, ok := tok.(float64)
		if !ok {
			return fmt.Errorf("%w: coordinate value %v is not a number", ErrFormat, tok)
		}
		values = append(values, n)
		return nil
	})
	if err != nil {
		return Coordinate{}, err
	}
	switch len(values) {
	case 2:
		return XY(values[0], values[1]), nil
	case 3:
		return XYZ(values[0], values[1], values[2]), nil
	default:
		return Coordinate{}, fmt.Errorf("%w: coordinate has %d values", ErrFormat, len(values))
	}
}

func (r tokenReader) coordinates() ([]Coordinate, error) {
	coords := []Coordinate{}
	err := r.array(func() error {
		c, err := r.coordinate()
		if err != nil {
			return err
		}
		coords = append(coords, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coords, nil
}

func (r tokenReader) rings() ([][]Coordinate, error) {
	rings := [][]Coordinate{}
	err := r.array(func() error {
		coords, err := r.coordinates()
		if err != nil {
			return err
		}
		rings = append(rings, coords)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rings, nil
}
