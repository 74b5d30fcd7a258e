// pkg/geometry/orb.go - Conversion to and from orb geometries
package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
)

// FromOrb converts an orb geometry into the model. Bounds become polygons.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		return NewPoint(v[0], v[1]), nil
	case orb.LineString:
		return NewLineString(fromOrbPoints(v)...), nil
	case orb.Ring:
		return NewLineString(fromOrbPoints(v)...), nil
	case orb.Polygon:
		return fromOrbPolygon(v), nil
	case orb.Bound:
		return fromOrbPolygon(v.ToPolygon()), nil
	case orb.MultiPoint:
		mp := NewMultiPoint()
		for _, p := range v {
			mp.items = append(mp.items, NewPoint(p[0], p[1]))
		}
		return mp, nil
	case orb.MultiLineString:
		ml := NewMultiLineString()
		for _, ls := range v {
			ml.items = append(ml.items, NewLineString(fromOrbPoints(ls)...))
		}
		return ml, nil
	case orb.MultiPolygon:
		mp := NewMultiPolygon()
		for _, p := range v {
			mp.items = append(mp.items, fromOrbPolygon(p))
		}
		return mp, nil
	case orb.Collection:
		gc := NewGeometryCollection()
		for _, member := range v {
			converted, err := FromOrb(member)
			if err != nil {
				return nil, err
			}
			gc.items = append(gc.items, converted)
		}
		return gc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported orb geometry %T", ErrTypeMismatch, g)
	}
}

// ToOrb converts a model geometry into orb, dropping elevation
func ToOrb(g Geometry) orb.Geometry {
	switch v := g.(type) {
	case *Point:
		return orb.Point{v.X, v.Y}
	case *LineString:
		return orb.LineString(toOrbPoints(v.Coords))
	case *Polygon:
		return toOrbPolygon(v)
	case *MultiPoint:
		out := make(orb.MultiPoint, 0, v.Len())
		for _, p := range v.items {
			out = append(out, orb.Point{p.X, p.Y})
		}
		return out
	case *MultiLineString:
		out := make(orb.MultiLineString, 0, v.Len())
		for _, l := range v.items {
			out = append(out, orb.LineString(toOrbPoints(l.Coords)))
		}
		return out
	case *MultiPolygon:
		out := make(orb.MultiPolygon, 0, v.Len())
		for _, p := range v.items {
			out = append(out, toOrbPolygon(p))
		}
		return out
	case *GeometryCollection:
		out := make(orb.Collection, 0, v.Len())
		for _, member := range v.items {
			out = append(out, ToOrb(member))
		}
		return out
	default:
		return nil
	}
}

func fromOrbPoints(points []orb.Point) []Coordinate {
	coords := make([]Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, XY(p[0], p[1]))
	}
	return coords
}

func fromOrbPolygon(p orb.Polygon) *Polygon {
	rings := make([][]Coordinate, 0, len(p))
	for _, ring := range p {
		rings = append(rings, fromOrbPoints(ring))
	}
	return NewPolygon(rings...)
}

func toOrbPoints(coords []Coordinate) []orb.Point {
	points := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, orb.Point{c.X, c.Y})
	}
	return points
}

func toOrbPolygon(p *Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p.Rings))
	for _, ring := range p.Rings {
		out = append(out, orb.Ring(toOrbPoints(ring)))
	}
	return out
}
