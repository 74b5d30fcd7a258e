// pkg/geometry/geometry.go - Geometry value model
package geometry

import (
	"fmt"
	"reflect"
)

// Type discriminates the geometry variants
type Type int

const (
	TypeNone Type = iota
	TypePoint
	TypeLineString
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
)

var typeNames = map[Type]string{
	TypePoint:              "Point",
	TypeLineString:         "LineString",
	TypePolygon:            "Polygon",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiPolygon:       "MultiPolygon",
	TypeGeometryCollection: "GeometryCollection",
}

// String returns the GeoJSON name of the type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a GeoJSON type name
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("%w: unknown geometry type %q", ErrFormat, name)
}

// Geometry is implemented by every variant of the model.
// The set of variants is closed.
type Geometry interface {
	Type() Type
	Envelope() Envelope
	IsEmpty() bool
	geometry()
}

// Coordinate is a position with an optional elevation
type Coordinate struct {
	X    float64
	Y    float64
	Z    float64
	HasZ bool
}

// XY creates a two dimensional coordinate
func XY(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// XYZ creates a coordinate with elevation
func XYZ(x, y, z float64) Coordinate {
	return Coordinate{X: x, Y: y, Z: z, HasZ: true}
}

// Point is a single coordinate
type Point struct {
	Coordinate
}

// NewPoint creates a point at x, y
func NewPoint(x, y float64) *Point {
	return &Point{Coordinate: XY(x, y)}
}

func (*Point) Type() Type { return TypePoint }
func (*Point) IsEmpty() bool { return false }
func (*Point) geometry() {}

func (p *Point) Envelope() Envelope {
	return Envelope{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

// LineString is an ordered run of coordinates
type LineString struct {
	Coords []Coordinate
}

// NewLineString creates a line string from coordinates
func NewLineString(coords ...Coordinate) *LineString {
	return &LineString{Coords: coords}
}

func (*LineString) Type() Type { return TypeLineString }
func (l *LineString) IsEmpty() bool { return len(l.Coords) == 0 }
func (*LineString) geometry() {}
func (l *LineString) Envelope() Envelope { return coordsEnvelope(l.Coords) }

// Polygon is an outer ring followed by optional holes
type Polygon struct {
	Rings [][]Coordinate
}

// NewPolygon creates a polygon from rings, the first being the outer one
func NewPolygon(rings ...[]Coordinate) *Polygon {
	return &Polygon{Rings: rings}
}

func (*Polygon) Type() Type { return TypePolygon }
func (p *Polygon) IsEmpty() bool { return len(p.Rings) == 0 }
func (*Polygon) geometry() {}

func (p *Polygon) Envelope() Envelope {
	if len(p.Rings) == 0 {
		return EmptyEnvelope()
	}
	return coordsEnvelope(p.Rings[0])
}

// MultiPoint is a homogeneous collection of points
type MultiPoint struct {
	collection[*Point]
}

// NewMultiPoint creates an empty multi point
func NewMultiPoint() *MultiPoint {
	return &MultiPoint{collection[*Point]{kind: TypeMultiPoint}}
}

func (*MultiPoint) Type() Type { return TypeMultiPoint }
func (*MultiPoint) geometry() {}

// MultiLineString is a homogeneous collection of line strings
type MultiLineString struct {
	collection[*LineString]
}

// NewMultiLineString creates an empty multi line string
func NewMultiLineString() *MultiLineString {
	return &MultiLineString{collection[*LineString]{kind: TypeMultiLineString}}
}

func (*MultiLineString) Type() Type { return TypeMultiLineString }
func (*MultiLineString) geometry() {}

// MultiPolygon is a homogeneous collection of polygons
type MultiPolygon struct {
	collection[*Polygon]
}

// NewMultiPolygon creates an empty multi polygon
func NewMultiPolygon() *MultiPolygon {
	return &MultiPolygon{collection[*Polygon]{kind: TypeMultiPolygon}}
}

func (*MultiPolygon) Type() Type { return TypeMultiPolygon }
func (*MultiPolygon) geometry() {}

// GeometryCollection holds geometries of any variant
type GeometryCollection struct {
	collection[Geometry]
}

// NewGeometryCollection creates an empty geometry collection
func NewGeometryCollection() *GeometryCollection {
	return &GeometryCollection{collection[Geometry]{kind: TypeGeometryCollection}}
}

func (*GeometryCollection) Type() Type { return TypeGeometryCollection }
func (*GeometryCollection) geometry() {}

// collection is the ordered element store shared by the multi variants
type collection[T Geometry] struct {
	kind  Type
	items []T
}

// Add appends g if it is of the element variant, otherwise ErrTypeMismatch
// is returned and the collection is left unchanged.
func (c *collection[T]) Add(g Geometry) error {
	item, ok := g.(T)
	if !ok || isNil(g) {
		return fmt.Errorf("%w: %s cannot hold %s", ErrTypeMismatch, c.kind, typeOf(g))
	}
	c.items = append(c.items, item)
	return nil
}

// At returns the element at index i
func (c *collection[T]) At(i int) (T, error) {
	if i < 0 || i >= len(c.items) {
		var zero T
		return zero, fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, i, len(c.items))
	}
	return c.items[i], nil
}

// Len returns the number of elements
func (c *collection[T]) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the collection has no elements
func (c *collection[T]) IsEmpty() bool {
	return len(c.items) == 0
}

// Each calls fn for every element in order
func (c *collection[T]) Each(fn func(i int, item T)) {
	for i, item := range c.items {
		fn(i, item)
	}
}

// Envelope returns the union of the element envelopes
func (c *collection[T]) Envelope() Envelope {
	env := EmptyEnvelope()
	for _, item := range c.items {
		env = env.Extend(item.Envelope())
	}
	return env
}

// Members exposes the elements of any collection variant as plain geometries.
// Leaf variants yield nil.
func Members(g Geometry) []Geometry {
	var out []Geometry
	switch c := g.(type) {
	case *MultiPoint:
		c.Each(func(_ int, p *Point) { out = append(out, p) })
	case *MultiLineString:
		c.Each(func(_ int, l *LineString) { out = append(out, l) })
	case *MultiPolygon:
		c.Each(func(_ int, p *Polygon) { out = append(out, p) })
	case *GeometryCollection:
		c.Each(func(_ int, item Geometry) { out = append(out, item) })
	}
	return out
}

// isNil reports a nil interface or an interface holding a nil pointer
func isNil(g Geometry) bool {
	if g == nil {
		return true
	}
	v := reflect.ValueOf(g)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func typeOf(g Geometry) string {
	if isNil(g) {
		return "nil"
	}
	return g.Type().String()
}

func coordsEnvelope(coords []Coordinate) Envelope {
	env := EmptyEnvelope()
	for _, c := range coords {
		env = env.ExtendPoint(c.X, c.Y)
	}
	return env
}
