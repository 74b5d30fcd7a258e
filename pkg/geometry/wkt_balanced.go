// pkg/geometry/wkt_balanced.go - Strict WKT decoding backed by orb
package geometry

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// BalancedWKT reads WKT with a depth tracking parser. Unlike CompatWKT it
// rejects unmatched delimiters. Elevation values are not supported.
type BalancedWKT struct{}

// DecodeWKT implements WKTDecoder
func (BalancedWKT) DecodeWKT(text string) (Geometry, error) {
	t, body, err := splitKeyword(text)
	if err != nil {
		return nil, err
	}
	if isEmptyBody(body) {
		return emptyOf(t)
	}
	if err := checkBalanced(body); err != nil {
		return nil, err
	}
	g, err := wkt.Unmarshal(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return FromOrb(g)
}

// checkBalanced verifies parenthesis pairing over the whole body
func checkBalanced(body string) error {
	depth := 0
	for i, r := range body {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unmatched ')' at offset %d", ErrFormat, i)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: %d unclosed '('", ErrFormat, depth)
	}
	return nil
}

func emptyOf(t Type) (Geometry, error) {
	switch t {
	case TypeLineString:
		return NewLineString(), nil
	case TypePolygon:
		return NewPolygon(), nil
	case TypeMultiPoint:
		return NewMultiPoint(), nil
	case TypeMultiLineString:
		return NewMultiLineString(), nil
	case TypeMultiPolygon:
		return NewMultiPolygon(), nil
	case TypeGeometryCollection:
		return NewGeometryCollection(), nil
	default:
		return nil, fmt.Errorf("%w: empty %s", ErrFormat, t)
	}
}
