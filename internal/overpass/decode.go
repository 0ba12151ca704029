package overpass

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ladepause/ladepause/internal/model"
	"github.com/paulmach/orb"
)

type response struct {
	Remark   string    `json:"remark"`
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *latLon           `json:"center"`
	Bounds *bounds           `json:"bounds"`
	Tags   map[string]string `json:"tags"`
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// Decode parses an Overpass JSON body into raw points. Elements whose
// position cannot be resolved are dropped.
func Decode(body []byte) ([]model.RawPoint, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Elements == nil {
		return nil, fmt.Errorf("%w: no elements list", ErrMalformedResponse)
	}
	// An aborted query may still carry a truncated element list
	if strings.Contains(resp.Remark, "runtime error") {
		return nil, fmt.Errorf("%w: %s", ErrQueryRemark, resp.Remark)
	}

	points := make([]model.RawPoint, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		loc, ok := el.location()
		if !ok {
			continue
		}
		points = append(points, model.RawPoint{
			SourceID: SourceID(el.Type, el.ID),
			Location: loc,
			Tags:     el.Tags,
		})
	}
	return points, nil
}

// location prefers the computed center, then direct coordinates, then
// the bounding box midpoint
func (el element) location() (orb.Point, bool) {
	var p orb.Point
	switch {
	case el.Center != nil:
		p = orb.Point{el.Center.Lon, el.Center.Lat}
	case el.Lat != nil && el.Lon != nil:
		p = orb.Point{*el.Lon, *el.Lat}
	case el.Bounds != nil:
		p = orb.Bound{
			Min: orb.Point{el.Bounds.MinLon, el.Bounds.MinLat},
			Max: orb.Point{el.Bounds.MaxLon, el.Bounds.MaxLat},
		}.Center()
	default:
		return orb.Point{}, false
	}
	return p, validPoint(p)
}

func validPoint(p orb.Point) bool {
	return p.Lat() >= -90 && p.Lat() <= 90 && p.Lon() >= -180 && p.Lon() <= 180
}

// SourceID builds the element identity used in uniqueness keys ("node/123")
func SourceID(elementType string, id int64) string {
	return elementType + "/" + strconv.FormatInt(id, 10)
}
