package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
)

// NoFoodKey replaces the POI source id in the key of unpaired chargers
const NoFoodKey = "nofood"

// Options are the matching parameters of a tile
type Options struct {
	Radius       float64 // Max charger-to-POI distance in meters
	DedupRadius  float64 // Same-brand chargers closer than this collapse
	PrefilterDeg float64 // Box half-width checked before the exact distance
	Language     string
}

// OptionsFromConfig extracts the matching parameters
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		Radius:       cfg.Scan.Radius,
		DedupRadius:  cfg.Scan.DedupRadius,
		PrefilterDeg: cfg.Scan.PrefilterDeg,
		Language:     cfg.Output.Language,
	}
}

// Processor turns the raw points of one tile into matches
type Processor struct {
	classifier *classify.Classifier
	opts       Options
	text       Text
}

// NewProcessor creates a tile processor
func NewProcessor(classifier *classify.Classifier, opts Options) *Processor {
	return &Processor{
		classifier: classifier,
		opts:       opts,
		text:       TextFor(opts.Language),
	}
}

// Process classifies, deduplicates and pairs the points of one tile.
// Every retained charger yields exactly one match.
func (p *Processor) Process(points []model.RawPoint) []model.Match {
	chargers, pois := p.Partition(points)

	matches := make([]model.Match, 0, len(chargers))
	for _, c := range chargers {
		poi, dist, ok := p.Nearest(c, pois)
		matches = append(matches, p.match(c, poi, dist, ok))
	}
	return matches
}

// Partition splits points into deduplicated chargers and points of interest
func (p *Processor) Partition(points []model.RawPoint) (chargers, pois []model.ClassifiedPoint) {
	for _, raw := range points {
		if !resolvable(raw) {
			continue
		}

		cp, ok := p.classifier.Classify(raw)
		if !ok {
			continue
		}

		switch cp.Category {
		case model.CategoryPOI:
			pois = append(pois, cp)
		case model.CategoryCharger:
			if !p.isDuplicate(cp, chargers) {
				chargers = append(chargers, cp)
			}
		}
	}
	return chargers, pois
}

// isDuplicate reports whether an accepted charger of the same brand lies
// within the dedup radius. The first one seen wins.
func (p *Processor) isDuplicate(c model.ClassifiedPoint, accepted []model.ClassifiedPoint) bool {
	for _, existing := range accepted {
		if existing.CanonicalID != c.CanonicalID {
			continue
		}
		if geo.Distance(existing.Location, c.Location) < p.opts.DedupRadius {
			return true
		}
	}
	return false
}

// Nearest returns the closest point of interest within the radius.
// Equal distances keep the earlier candidate.
func (p *Processor) Nearest(c model.ClassifiedPoint, pois []model.ClassifiedPoint) (model.ClassifiedPoint, float64, bool) {
	var (
		best  model.ClassifiedPoint
		found bool
	)
	bestDist := math.Inf(1)

	for _, poi := range pois {
		if !geo.WithinBox(c.Location, poi.Location, p.opts.PrefilterDeg) {
			continue
		}
		dist := geo.Distance(c.Location, poi.Location)
		if dist <= p.opts.Radius && dist < bestDist {
			best, bestDist, found = poi, dist, true
		}
	}

	if !found {
		return model.ClassifiedPoint{}, 0, false
	}
	return best, bestDist, true
}

func (p *Processor) match(c, poi model.ClassifiedPoint, dist float64, found bool) model.Match {
	m := model.Match{
		Lat:        c.Lat(),
		Lon:        c.Lon(),
		ChargerID:  c.CanonicalID,
		Title:      c.DisplayName,
		BadgeClass: c.StyleClass,
		PopupName:  c.DisplayName,
	}

	radius := int(p.opts.Radius)
	if !found {
		m.Note = p.text.NoFood
		m.Description = Describe(c.DisplayName, "", 0, radius, p.text)
		m.Key = UniqueKey(c.SourceID, "")
		return m
	}

	meters := int(dist)
	foodID := CSSID(poi.CanonicalID)
	m.FoodID = &foodID
	m.Note = fmt.Sprintf(p.text.FoodNote, meters, poi.DisplayName)
	m.Description = Describe(c.DisplayName, poi.DisplayName, meters, radius, p.text)
	m.Key = UniqueKey(c.SourceID, poi.SourceID)
	return m
}

// UniqueKey identifies a charger/POI pairing across overlapping tiles
func UniqueKey(chargerID, poiID string) string {
	if poiID == "" {
		poiID = NoFoodKey
	}
	return chargerID + "_" + poiID
}

// CSSID makes a canonical id usable as a CSS class suffix
func CSSID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), " ", "-")
}

func resolvable(p model.RawPoint) bool {
	lat, lon := p.Lat(), p.Lon()
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
