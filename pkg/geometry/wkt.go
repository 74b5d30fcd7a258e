// pkg/geometry/wkt.go - Well Known Text encoding and the compatible scanner
package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

var wktKeywords = map[Type]string{
	TypePoint:              "POINT",
	TypeLineString:         "LINESTRING",
	TypePolygon:            "POLYGON",
	TypeMultiPoint:         "MULTIPOINT",
	TypeMultiLineString:    "MULTILINESTRING",
	TypeMultiPolygon:       "MULTIPOLYGON",
	TypeGeometryCollection: "GEOMETRYCOLLECTION",
}

// WKTDecoder turns Well Known Text into a geometry
type WKTDecoder interface {
	DecodeWKT(text string) (Geometry, error)
}

// WKT renders g as Well Known Text. With full set the body is prefixed by
// the uppercase keyword and a space. Empty geometries render as
// keyword + space + " EMPTY", so an empty multi polygon is "MULTIPOLYGON  EMPTY".
func WKT(g Geometry, full bool) string {
	var buf strings.Builder
	writeWKT(&buf, g, full)
	return buf.String()
}

func writeWKT(buf *strings.Builder, g Geometry, full bool) {
	if full {
		buf.WriteString(wktKeywords[g.Type()])
		buf.WriteByte(' ')
	}
	if g.IsEmpty() {
		buf.WriteString(" EMPTY")
		return
	}
	switch v := g.(type) {
	case *Point:
		buf.WriteByte('(')
		writeCoord(buf, v.Coordinate)
		buf.WriteByte(')')
	case *LineString:
		writeCoords(buf, v.Coords)
	case *Polygon:
		writeRings(buf, v.Rings)
	case *GeometryCollection:
		writeMembers(buf, v.items, true)
	default:
		writeMembers(buf, Members(g), false)
	}
}

func writeMembers(buf *strings.Builder, members []Geometry, full bool) {
	buf.WriteByte('(')
	for i, member := range members {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeWKT(buf, member, full)
	}
	buf.WriteByte(')')
}

func writeCoord(buf *strings.Builder, c Coordinate) {
	buf.WriteString(formatFloat(c.X))
	buf.WriteByte(' ')
	buf.WriteString(formatFloat(c.Y))
	if c.HasZ {
		buf.WriteByte(' ')
		buf.WriteString(formatFloat(c.Z))
	}
}

func writeCoords(buf *strings.Builder, coords []Coordinate) {
	buf.WriteByte('(')
	for i, c := range coords {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeCoord(buf, c)
	}
	buf.WriteByte(')')
}

func writeRings(buf *strings.Builder, rings [][]Coordinate) {
	buf.WriteByte('(')
	for i, ring := range rings {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeCoords(buf, ring)
	}
	buf.WriteByte(')')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CompatWKT reads WKT with the lenient substring scanner used by existing
// stores. It does not track parenthesis depth.
type CompatWKT struct{}

// DecodeWKT implements WKTDecoder
func (CompatWKT) DecodeWKT(text string) (Geometry, error) {
	return ParseWKT(text)
}

// ParseWKT dispatches on the leading keyword and reads the body with the
// compatible scanner.
func ParseWKT(text string) (Geometry, error) {
	t, body, err := splitKeyword(text)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypePoint:
		return result(parsePointBody(body))
	case TypeLineString:
		if isEmptyBody(body) {
			return NewLineString(), nil
		}
		coords, err := parseCoordList(body)
		if err != nil {
			return nil, err
		}
		return NewLineString(coords...), nil
	case TypePolygon:
		return result(parsePolygonBody(body))
	case TypeMultiPoint:
		return result(parseMultiPointBody(body))
	case TypeMultiLineString:
		return result(parseMultiLineStringBody(body))
	case TypeMultiPolygon:
		mp := NewMultiPolygon()
		if err := mp.SetCoordinatesFromWKT(body); err != nil {
			return nil, err
		}
		return mp, nil
	default:
		return result(parseCollectionBody(body))
	}
}

// SetCoordinatesFromWKT replaces the polygons of mp with those read from
// text. Text containing EMPTY yields an empty collection. Otherwise children
// run from each "((" to the next "))"; nested parentheses deeper than a
// polygon are not supported. A malformed child leaves mp unchanged.
func (mp *MultiPolygon) SetCoordinatesFromWKT(text string) error {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '('); idx > 0 {
		text = text[idx:]
	}
	text = stripWrapping(text)

	var polygons []*Polygon
	if !strings.Contains(strings.ToUpper(text), "EMPTY") {
		for {
			start := strings.Index(text, "((")
			if start < 0 {
				break
			}
			span := strings.Index(text[start:], "))")
			if span < 1 {
				break
			}
			end := start + span + 2
			p, err := parsePolygonBody(text[start:end])
			if err != nil {
				return err
			}
			polygons = append(polygons, p)
			text = text[end:]
		}
	}
	mp.items = polygons
	return nil
}

// result drops the typed nil a failed parser returns alongside its error
func result[T Geometry](g T, err error) (Geometry, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}

func splitKeyword(text string) (Type, string, error) {
	text = strings.TrimSpace(text)
	end := strings.IndexAny(text, " (")
	if end < 0 {
		end = len(text)
	}
	keyword := strings.ToUpper(text[:end])
	for t, kw := range wktKeywords {
		if kw == keyword {
			return t, strings.TrimSpace(text[end:]), nil
		}
	}
	return TypeNone, "", fmt.Errorf("%w: unknown WKT keyword %q", ErrFormat, keyword)
}

func isEmptyBody(body string) bool {
	return strings.EqualFold(strings.TrimSpace(body), "EMPTY")
}

// stripWrapping removes one parenthesis pair when it encloses the whole text
func stripWrapping(text string) string {
	if len(text) < 2 || text[0] != '(' || text[len(text)-1] != ')' {
		return text
	}
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(text)-1 {
				return text
			}
		}
	}
	return strings.TrimSpace(text[1 : len(text)-1])
}

func parseCoord(text string) (Coordinate, error) {
	fields := strings.Fields(strings.Trim(strings.TrimSpace(text), "()"))
	if len(fields) != 2 && len(fields) != 3 {
		return Coordinate{}, fmt.Errorf("%w: bad WKT coordinate %q", ErrFormat, text)
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Coordinate{}, fmt.Errorf("%w: bad WKT number %q", ErrFormat, f)
		}
		values[i] = v
	}
	if len(values) == 3 {
		return XYZ(values[0], values[1], values[2]), nil
	}
	return XY(values[0], values[1]), nil
}

// parseCoordList reads "(x y, x y, ...)"
func parseCoordList(text string) ([]Coordinate, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return nil, fmt.Errorf("%w: coordinate list %q is not parenthesised", ErrFormat, text)
	}
	parts := strings.Split(text[1:len(text)-1], ",")
	coords := make([]Coordinate, 0, len(parts))
	for _, part := range parts {
		c, err := parseCoord(part)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)
	}
	return coords, nil
}

func parsePointBody(body string) (*Point, error) {
	if isEmptyBody(body) {
		return nil, fmt.Errorf("%w: empty point", ErrFormat)
	}
	c, err := parseCoord(body)
	if err != nil {
		return nil, err
	}
	return &Point{Coordinate: c}, nil
}

// parseRingList reads "((x y, ...), (x y, ...))" one "(" ... ")" run at a time
func parseRingList(body string) ([][]Coordinate, error) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("%w: ring list %q is not parenthesised", ErrFormat, body)
	}
	text := body[1 : len(body)-1]
	var rings [][]Coordinate
	for {
		start := strings.IndexByte(text, '(')
		if start < 0 {
			break
		}
		end := strings.IndexByte(text[start:], ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated ring in %q", ErrFormat, body)
		}
		coords, err := parseCoordList(text[start : start+end+1])
		if err != nil {
			return nil, err
		}
		rings = append(rings, coords)
		text = text[start+end+1:]
	}
	if strings.TrimSpace(strings.ReplaceAll(text, ",", "")) != "" {
		return nil, fmt.Errorf("%w: unexpected text %q after rings", ErrFormat, text)
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: no rings in %q", ErrFormat, body)
	}
	return rings, nil
}

func parsePolygonBody(body string) (*Polygon, error) {
	if isEmptyBody(body) {
		return NewPolygon(), nil
	}
	rings, err := parseRingList(body)
	if err != nil {
		return nil, err
	}
	return NewPolygon(rings...), nil
}

func parseMultiPointBody(body string) (*MultiPoint, error) {
	mp := NewMultiPoint()
	if isEmptyBody(body) {
		return mp, nil
	}
	body = stripWrapping(strings.TrimSpace(body))
	for _, part := range strings.Split(body, ",") {
		c, err := parseCoord(part)
		if err != nil {
			return nil, err
		}
		mp.items = append(mp.items, &Point{Coordinate: c})
	}
	return mp, nil
}

func parseMultiLineStringBody(body string) (*MultiLineString, error) {
	ml := NewMultiLineString()
	if isEmptyBody(body) {
		return ml, nil
	}
	lines, err := parseRingList(body)
	if err != nil {
		return nil, err
	}
	for _, coords := range lines {
		ml.items = append(ml.items, NewLineString(coords...))
	}
	return ml, nil
}

func parseCollectionBody(body string) (*GeometryCollection, error) {
	gc := NewGeometryCollection()
	if isEmptyBody(body) {
		return gc, nil
	}
	body = strings.TrimSpace(body)
	inner := stripWrapping(body)
	if inner == body {
		return nil, fmt.Errorf("%w: collection body %q is not parenthesised", ErrFormat, body)
	}
	depth, start := 0, 0
	for i := 0; i <= len(inner); i++ {
		if i < len(inner) {
			switch inner[i] {
			case '(':
				depth++
				continue
			case ')':
				depth--
				continue
			case ',':
				if depth != 0 {
					continue
				}
			default:
				continue
			}
		}
		member, err := ParseWKT(inner[start:i])
		if err != nil {
			return nil, err
		}
		gc.items = append(gc.items, member)
		start = i + 1
	}
	return gc, nil
}
