// pkg/geometry/errors.go - Geometry error kinds
package geometry

import "errors"

var (
	// ErrTypeMismatch is returned when a geometry of the wrong variant is
	// added to a homogeneous collection or decoded where another was expected.
	ErrTypeMismatch = errors.New("geometry type mismatch")

	// ErrIndexOutOfRange is returned by collection accessors
	ErrIndexOutOfRange = errors.New("geometry index out of range")

	// ErrFormat is returned for malformed JSON or WKT input
	ErrFormat = errors.New("malformed geometry")
)
