package geo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

const (
	maxLat = 90.0
	maxLon = 180.0
)

// Tile is one cell of the scan grid
type Tile struct {
	Row   int
	Col   int
	Bound orb.Bound
}

// BBox formats the tile in Overpass order: south,west,north,east
func (t Tile) BBox() string {
	return ftoa(t.Bound.Min.Lat()) + "," + ftoa(t.Bound.Min.Lon()) + "," +
		ftoa(t.Bound.Max.Lat()) + "," + ftoa(t.Bound.Max.Lon())
}

func (t Tile) String() string {
	return fmt.Sprintf("[%d,%d] %s", t.Row, t.Col, t.BBox())
}

// Grid partitions area into tiles of step degrees, row-major by increasing
// latitude, then increasing longitude. The last tile of each row and column
// is clipped to the area. No tile edge extends past ±90/±180.
// A zero-size area yields no tiles.
func Grid(area orb.Bound, step float64) ([]Tile, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("tile step must be positive, got %g", step)
	}

	latStart := math.Max(area.Min.Lat(), -maxLat)
	lonStart := math.Max(area.Min.Lon(), -maxLon)
	latEnd := math.Min(area.Max.Lat(), maxLat)
	lonEnd := math.Min(area.Max.Lon(), maxLon)

	var tiles []Tile
	row := 0
	// Indexing from the start avoids drift from repeated float addition
	for lat := latStart; lat < latEnd; lat = latStart + float64(row)*step {
		north := math.Min(lat+step, latEnd)
		col := 0
		for lon := lonStart; lon < lonEnd; lon = lonStart + float64(col)*step {
			east := math.Min(lon+step, lonEnd)
			tiles = append(tiles, Tile{
				Row: row,
				Col: col,
				Bound: orb.Bound{
					Min: orb.Point{lon, lat},
					Max: orb.Point{east, north},
				},
			})
			col++
		}
		row++
	}

	return tiles, nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
