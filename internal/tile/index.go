// internal/tile/index.go - Covering map extents with tiles
package tile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"github.com/valpere/tile_render/pkg/geometry"
)

// Index computes the tiles covering an extent at a zoom level
type Index struct {
	Scheme Scheme
}

// NewIndex creates an index producing items in the given scheme
func NewIndex(scheme Scheme) *Index {
	return &Index{Scheme: scheme}
}

// World returns the Web Mercator world extent
func World() geometry.Envelope {
	return geometry.Envelope{
		MinX: -WebMercatorMax,
		MinY: -WebMercatorMax,
		MaxX: WebMercatorMax,
		MaxY: WebMercatorMax,
	}
}

// SnapZoom maps a fractional display zoom onto the even levels tiles are
// requested at: the zoom is truncated and odd levels are raised by one.
func SnapZoom(zoom float64) int {
	z := int(zoom)
	if z%2 != 0 {
		z++
	}
	if z < 0 {
		return 0
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Range returns the tiles covering env at zoom. The second result is false
// when env lies outside the world. Right and top edges are exclusive, so an
// envelope ending on a tile boundary does not reach into the next tile.
func (ix *Index) Range(env geometry.Envelope, zoom int) (TileRange, bool) {
	env = env.Intersection(World())
	if !env.IsInit() {
		return TileRange{}, false
	}

	z := maptile.Zoom(zoom)
	n := 1 << uint(zoom)
	size := tileSize(zoom)

	// maptile rows count from the north, like XYZ
	upperLeft := maptile.At(project.Mercator.ToWGS84(orb.Point{env.MinX, env.MaxY}), z)
	lowerRight := maptile.At(project.Mercator.ToWGS84(orb.Point{env.MaxX, env.MinY}), z)

	// lon/lat round trips can land a corner in the neighbouring tile
	left := func(col int) float64 { return -WebMercatorMax + float64(col)*size }
	top := func(row int) float64 { return WebMercatorMax - float64(row)*size }

	minCol := clamp(int(upperLeft.X), n)
	for minCol > 0 && left(minCol) > env.MinX {
		minCol--
	}
	for minCol < n-1 && left(minCol+1) <= env.MinX {
		minCol++
	}

	maxCol := clamp(int(lowerRight.X), n)
	for maxCol > minCol && left(maxCol) >= env.MaxX {
		maxCol--
	}
	for maxCol < n-1 && left(maxCol+1) < env.MaxX {
		maxCol++
	}
	if maxCol < minCol {
		maxCol = minCol
	}

	minRow := clamp(int(upperLeft.Y), n)
	for minRow > 0 && top(minRow) < env.MaxY {
		minRow--
	}
	for minRow < n-1 && top(minRow+1) >= env.MaxY {
		minRow++
	}

	maxRow := clamp(int(lowerRight.Y), n)
	for maxRow > minRow && top(maxRow) <= env.MinY {
		maxRow--
	}
	for maxRow < n-1 && top(maxRow+1) > env.MinY {
		maxRow++
	}
	if maxRow < minRow {
		maxRow = minRow
	}

	tr := TileRange{Zoom: zoom, MinX: minCol, MaxX: maxCol, MinY: minRow, MaxY: maxRow}
	if ix.Scheme == SchemeTMS {
		tr.MinY, tr.MaxY = flipY(maxRow, zoom), flipY(minRow, zoom)
	}
	return tr, true
}

// flipY converts a row between the TMS and XYZ counting directions
func flipY(row, zoom int) int {
	return (1 << uint(zoom)) - 1 - row
}

// Cover returns the tiles covering env at zoom, column by column with rows
// ascending inside each column.
func (ix *Index) Cover(env geometry.Envelope, zoom int) []Item {
	tr, ok := ix.Range(env, zoom)
	if !ok {
		return nil
	}

	items := make([]Item, 0, tr.Count())
	for x := tr.MinX; x <= tr.MaxX; x++ {
		for y := tr.MinY; y <= tr.MaxY; y++ {
			items = append(items, NewItem(x, y, zoom, ix.Scheme))
		}
	}
	return items
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
