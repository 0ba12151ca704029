package overpass

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ladepause/ladepause/internal/classify"
)

func TestClientSource_FetchTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{
			"osm3s": {"timestamp_osm_base": "2026-10-01T00:00:00Z"},
			"elements": [
				{"type": "node", "id": 11, "lat": 48.6, "lon": 9.1, "tags": {"amenity": "charging_station", "operator": "Tesla"}},
				{"type": "way", "id": 12, "nodes": [21, 22],
				 "bounds": {"minlat": 48.60, "minlon": 9.10, "maxlat": 48.62, "maxlon": 9.12},
				 "tags": {"amenity": "fast_food", "name": "McDonald's"}}
			]
		}`)
	}))
	defer server.Close()

	source := NewClientSource(server.URL, &http.Client{Timeout: 5 * time.Second}, classify.DefaultRules(), 60)
	points, err := source.FetchTile(context.Background(), testTile)
	if err != nil {
		t.Fatalf("FetchTile failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, p := range points {
		seen[p.SourceID] = true
		if p.SourceID == "way/12" {
			if lat := p.Lat(); lat < 48.6099 || lat > 48.6101 {
				t.Errorf("expected way at bbox center, got %v", p.Location)
			}
		}
	}

	if !seen["node/11"] {
		t.Errorf("expected tagged node, got %+v", points)
	}
	if seen["node/21"] || seen["node/22"] {
		t.Errorf("placeholder member nodes must be skipped, got %+v", points)
	}
}

func TestClientSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewClientSource(server.URL, &http.Client{Timeout: 5 * time.Second}, classify.DefaultRules(), 60)
	if _, err := source.FetchTile(context.Background(), testTile); err == nil {
		t.Error("expected error for 429")
	}
}

func TestClientSource_NumericOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"elements": [
			{"type": "node", "id": 10, "lat": 48.6, "lon": 9.1, "tags": {"amenity": "fast_food", "name": "KFC"}},
			{"type": "way", "id": 2, "bounds": {"minlat": 48.6, "minlon": 9.1, "maxlat": 48.61, "maxlon": 9.11}, "tags": {"amenity": "fast_food", "name": "Subway"}},
			{"type": "node", "id": 9, "lat": 48.6, "lon": 9.1, "tags": {"amenity": "fast_food", "name": "Nordsee"}},
			{"type": "node", "id": 100, "lat": 48.6, "lon": 9.1, "tags": {"amenity": "fast_food", "name": "McDonald's"}}
		]}`)
	}))
	defer server.Close()

	source := NewClientSource(server.URL, &http.Client{Timeout: 5 * time.Second}, classify.DefaultRules(), 60)
	points, err := source.FetchTile(context.Background(), testTile)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, p := range points {
		if strings.HasPrefix(p.SourceID, "node/") {
			ids = append(ids, p.SourceID)
		}
	}
	if strings.Join(ids, " ") != "node/9 node/10 node/100" {
		t.Errorf("expected numeric id order, got %v", ids)
	}
}

func TestLessSourceID(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"node/9", "node/10", true},
		{"node/10", "node/9", false},
		{"node/100", "way/1", true},
		{"way/1", "node/100", false},
		{"node/5", "node/5", false},
	}
	for _, tt := range tests {
		if got := lessSourceID(tt.a, tt.b); got != tt.want {
			t.Errorf("lessSourceID(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
