package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/paulmach/orb"
	"github.com/serjvanilla/go-overpass"
)

// ClientSource uses the go-overpass client. Ways are positioned at the
// center of their bounding box; relations are not resolved.
type ClientSource struct {
	client       *overpass.Client
	rules        *model.RuleSet
	queryTimeout int
}

// NewClientSource creates a client source for endpoint
func NewClientSource(endpoint string, httpClient *http.Client, rules *model.RuleSet, queryTimeout int) *ClientSource {
	client := overpass.NewWithSettings(endpoint, 1, httpClient)
	return &ClientSource{
		client:       &client,
		rules:        rules,
		queryTimeout: queryTimeout,
	}
}

type queryResult struct {
	result overpass.Result
	err    error
}

// FetchTile fetches the raw points of one tile
func (s *ClientSource) FetchTile(ctx context.Context, tile geo.Tile) ([]model.RawPoint, error) {
	query := BuildQuery(tile.BBox(), s.rules, s.queryTimeout, OutBounds)

	// The client has no context support; the HTTP client timeout bounds the call
	done := make(chan queryResult, 1)
	go func() {
		result, err := s.client.Query(query)
		done <- queryResult{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("overpass query failed: %w", r.err)
		}
		return convertResult(&r.result), nil
	}
}

func convertResult(result *overpass.Result) []model.RawPoint {
	var points []model.RawPoint

	for _, node := range result.Nodes {
		// Way members come back as placeholder nodes without tags
		if len(node.Tags) == 0 {
			continue
		}
		p := orb.Point{node.Lon, node.Lat}
		if !validPoint(p) {
			continue
		}
		points = append(points, model.RawPoint{
			SourceID: SourceID(string(overpass.ElementTypeNode), node.ID),
			Location: p,
			Tags:     node.Tags,
		})
	}

	for _, way := range result.Ways {
		if way.Bounds == nil || len(way.Tags) == 0 {
			continue
		}
		center := orb.Bound{
			Min: orb.Point{way.Bounds.Min.Lon, way.Bounds.Min.Lat},
			Max: orb.Point{way.Bounds.Max.Lon, way.Bounds.Max.Lat},
		}.Center()
		points = append(points, model.RawPoint{
			SourceID: SourceID(string(overpass.ElementTypeWay), way.ID),
			Location: center,
			Tags:     way.Tags,
		})
	}

	// Result maps have no order; keep first-seen policies deterministic
	sort.Slice(points, func(i, j int) bool {
		return lessSourceID(points[i].SourceID, points[j].SourceID)
	})
	return points
}

// lessSourceID orders "type/id" identities by type, then numeric id, so
// node/9 sorts before node/10 as in an Overpass response
func lessSourceID(a, b string) bool {
	aType, aID := splitSourceID(a)
	bType, bID := splitSourceID(b)
	if aType != bType {
		return aType < bType
	}
	return aID < bID
}

func splitSourceID(id string) (string, int64) {
	typ, num, _ := strings.Cut(id, "/")
	n, _ := strconv.ParseInt(num, 10, 64)
	return typ, n
}
