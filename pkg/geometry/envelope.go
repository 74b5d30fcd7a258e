// pkg/geometry/envelope.go - Axis aligned bounding boxes
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Envelope is an axis aligned bounding box. An envelope whose minimum
// exceeds its maximum is uninitialised and intersects nothing.
type Envelope struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewEnvelope creates an envelope from two corners in any order
func NewEnvelope(x1, y1, x2, y2 float64) Envelope {
	return Envelope{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

// EmptyEnvelope returns an uninitialised envelope ready to be extended
func EmptyEnvelope() Envelope {
	return Envelope{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsInit reports whether the envelope covers at least one point
func (e Envelope) IsInit() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

func (e Envelope) Width() float64 {
	if !e.IsInit() {
		return 0
	}
	return e.MaxX - e.MinX
}

func (e Envelope) Height() float64 {
	if !e.IsInit() {
		return 0
	}
	return e.MaxY - e.MinY
}

// Center returns the middle of the envelope
func (e Envelope) Center() Coordinate {
	return XY((e.MinX+e.MaxX)/2, (e.MinY+e.MaxY)/2)
}

// Intersects reports whether the two envelopes share at least one point.
// Touching edges count as intersecting.
func (e Envelope) Intersects(other Envelope) bool {
	if !e.IsInit() || !other.IsInit() {
		return false
	}
	return e.MinX <= other.MaxX && other.MinX <= e.MaxX &&
		e.MinY <= other.MaxY && other.MinY <= e.MaxY
}

// Contains reports whether other lies completely inside e
func (e Envelope) Contains(other Envelope) bool {
	if !e.IsInit() || !other.IsInit() {
		return false
	}
	return other.MinX >= e.MinX && other.MaxX <= e.MaxX &&
		other.MinY >= e.MinY && other.MaxY <= e.MaxY
}

// ContainsPoint reports whether x, y lies inside e
func (e Envelope) ContainsPoint(x, y float64) bool {
	return e.IsInit() && x >= e.MinX && x <= e.MaxX && y >= e.MinY && y <= e.MaxY
}

// Extend returns the union of e and other
func (e Envelope) Extend(other Envelope) Envelope {
	if !other.IsInit() {
		return e
	}
	if !e.IsInit() {
		return other
	}
	return Envelope{
		MinX: math.Min(e.MinX, other.MinX),
		MinY: math.Min(e.MinY, other.MinY),
		MaxX: math.Max(e.MaxX, other.MaxX),
		MaxY: math.Max(e.MaxY, other.MaxY),
	}
}

// ExtendPoint returns e grown to include x, y
func (e Envelope) ExtendPoint(x, y float64) Envelope {
	return e.Extend(Envelope{MinX: x, MinY: y, MaxX: x, MaxY: y})
}

// Intersection returns the overlap of the two envelopes, uninitialised when disjoint
func (e Envelope) Intersection(other Envelope) Envelope {
	if !e.Intersects(other) {
		return EmptyEnvelope()
	}
	return Envelope{
		MinX: math.Max(e.MinX, other.MinX),
		MinY: math.Max(e.MinY, other.MinY),
		MaxX: math.Min(e.MaxX, other.MaxX),
		MaxY: math.Min(e.MaxY, other.MaxY),
	}
}

// Bound converts the envelope to an orb bound
func (e Envelope) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{e.MinX, e.MinY}, Max: orb.Point{e.MaxX, e.MaxY}}
}

// FromBound converts an orb bound to an envelope
func FromBound(b orb.Bound) Envelope {
	return NewEnvelope(b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}

// String returns the envelope as minx,miny,maxx,maxy
func (e Envelope) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// ParseEnvelope reads an envelope written as minx,miny,maxx,maxy
func ParseEnvelope(s string) (Envelope, error) {
	var x1, y1, x2, y2 float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g,%g", &x1, &y1, &x2, &y2); err != nil {
		return EmptyEnvelope(), fmt.Errorf("%w: bad envelope %q: %v", ErrFormat, s, err)
	}
	return NewEnvelope(x1, y1, x2, y2), nil
}
