// pkg/mvt/geometry.go - Tile pixel projection
package mvt

import "github.com/paulmach/orb"

// WebMercatorMax is the half width of the Web Mercator world in metres
const WebMercatorMax = 20037508.342789244

// tileProjection maps pixel coordinates of tile z/x/y (y from the north) at
// the given extent onto Web Mercator metres.
func tileProjection(extent, z, x, y int) orb.Projection {
	n := float64(uint(1) << uint(z))
	size := float64(extent)

	return func(p orb.Point) orb.Point {
		gx := (float64(x) + p[0]/size) / n
		gy := (float64(y) + p[1]/size) / n
		return orb.Point{
			(gx*2.0 - 1.0) * WebMercatorMax,
			(1.0 - gy*2.0) * WebMercatorMax,
		}
	}
}
