package model

import "github.com/paulmach/orb"

// Category separates classified points into the two sets the matcher pairs
type Category string

const (
	CategoryCharger Category = "charger"
	CategoryPOI     Category = "poi"
)

// RawPoint is one tagged feature returned by the geodata source for a tile.
// Location is orb order: [lon, lat].
type RawPoint struct {
	SourceID string            `json:"source_id"`
	Location orb.Point         `json:"location"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Tag returns the tag value or "" when absent
func (p RawPoint) Tag(key string) string {
	if p.Tags == nil {
		return ""
	}
	return p.Tags[key]
}

// Lat returns the latitude in degrees
func (p RawPoint) Lat() float64 { return p.Location.Lat() }

// Lon returns the longitude in degrees
func (p RawPoint) Lon() float64 { return p.Location.Lon() }

// ClassifiedPoint is a RawPoint that matched a brand rule
type ClassifiedPoint struct {
	RawPoint
	CanonicalID string   `json:"canonical_id"`
	DisplayName string   `json:"display_name"`
	StyleClass  string   `json:"style_class"`
	Category    Category `json:"category"`
}
