package classify

import (
	"testing"

	"github.com/ladepause/ladepause/internal/model"
	"github.com/paulmach/orb"
)

func point(tags map[string]string) model.RawPoint {
	return model.RawPoint{SourceID: "node/1", Location: orb.Point{9.0, 48.0}, Tags: tags}
}

func TestSearchText(t *testing.T) {
	tags := map[string]string{"name": "Supercharger Ulm", "brand": "Tesla", "operator": "Tesla, Inc."}
	if got := SearchText(tags); got != "supercharger ulm tesla tesla, inc." {
		t.Errorf("unexpected search text %q", got)
	}

	if got := SearchText(map[string]string{"operator": "EnBW"}); got != "  enbw" {
		t.Errorf("missing tags should be empty strings, got %q", got)
	}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	rules := []model.BrandRule{
		{ID: "first", Keywords: []string{"alpha"}},
		{ID: "second", Keywords: []string{"beta", "alpha"}},
	}

	rule, ok := Match("beta alpha", rules)
	if !ok || rule.ID != "first" {
		t.Errorf("expected first rule, got %q (%v)", rule.ID, ok)
	}

	if _, ok := Match("gamma", rules); ok {
		t.Error("expected no match")
	}
}

func TestClassify_LoungeBeforeBrand(t *testing.T) {
	c := NewClassifier(nil)

	got, ok := c.Classify(point(map[string]string{"amenity": "fast_food", "name": "BK World Leipzig"}))
	if !ok {
		t.Fatal("expected a classification")
	}
	if got.CanonicalID != "lounge" {
		t.Errorf("expected lounge, got %s", got.CanonicalID)
	}
	if got.Category != model.CategoryPOI {
		t.Errorf("expected poi category, got %s", got.Category)
	}
	if got.DisplayName != "BK World Leipzig" {
		t.Errorf("expected raw name, got %q", got.DisplayName)
	}
}

func TestClassify_Synonyms(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		tags map[string]string
		want string
	}{
		{map[string]string{"amenity": "charging_station", "operator": "Aral pulse"}, "aral"},
		{map[string]string{"amenity": "charging_station", "operator": "pulse Station X"}, "aral"},
		{map[string]string{"amenity": "fast_food", "name": "Kentucky Fried Chicken"}, "kfc"},
		{map[string]string{"amenity": "restaurant", "brand": "KFC"}, "kfc"},
		{map[string]string{"amenity": "fast_food", "name": "Burger King"}, "burger-king"},
		{map[string]string{"shop": "convenience", "name": "REWE To Go"}, "lounge"},
	}

	for _, tt := range tests {
		t.Run(tt.want+"/"+SearchText(tt.tags), func(t *testing.T) {
			got, ok := c.Classify(point(tt.tags))
			if !ok {
				t.Fatalf("expected match for %v", tt.tags)
			}
			if got.CanonicalID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.CanonicalID)
			}
		})
	}
}

func TestClassify_CategoryGate(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		desc string
		tags map[string]string
	}{
		{"no category", map[string]string{"name": "Tesla Supercharger"}},
		{"wrong amenity", map[string]string{"amenity": "parking", "name": "McDonald's"}},
		{"wrong shop", map[string]string{"shop": "supermarket", "name": "Subway"}},
		{"charger without brand", map[string]string{"amenity": "charging_station", "operator": "Stadtwerke"}},
		{"poi without brand", map[string]string{"amenity": "cafe", "name": "Café Müller"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got, ok := c.Classify(point(tt.tags)); ok {
				t.Errorf("expected no classification, got %+v", got)
			}
		})
	}
}

func TestClassify_POICategoryWins(t *testing.T) {
	c := NewClassifier(nil)

	// A POI-eligible shop is never re-evaluated as a charger
	_, ok := c.Classify(point(map[string]string{"shop": "kiosk", "amenity": "charging_station", "operator": "Tesla"}))
	if ok {
		t.Error("expected kiosk without food brand to be dropped")
	}
}

func TestClassify_ChargerDisplayName(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		desc string
		tags map[string]string
		want string
	}{
		{
			desc: "raw name verbatim",
			tags: map[string]string{"amenity": "charging_station", "name": "Supercharger Ulm", "operator": "Tesla", "addr:city": "Ulm"},
			want: "Supercharger Ulm",
		},
		{
			desc: "missing name with city",
			tags: map[string]string{"amenity": "charging_station", "operator": "IONITY GmbH", "addr:city": "Leipzig"},
			want: "IONITY (Leipzig)",
		},
		{
			desc: "missing name without city",
			tags: map[string]string{"amenity": "charging_station", "brand": "EnBW"},
			want: "EnBW",
		},
		{
			desc: "unknown placeholder",
			tags: map[string]string{"amenity": "charging_station", "name": "Unknown", "operator": "Fastned"},
			want: "Fastned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := c.Classify(point(tt.tags))
			if !ok {
				t.Fatalf("expected match for %v", tt.tags)
			}
			if got.DisplayName != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.DisplayName)
			}
			if got.Category != model.CategoryCharger {
				t.Errorf("expected charger category, got %s", got.Category)
			}
		})
	}
}

func TestClassify_POIDisplayNameFallback(t *testing.T) {
	c := NewClassifier(nil)

	got, ok := c.Classify(point(map[string]string{"amenity": "fast_food", "brand": "McDonald's", "addr:city": "Ulm"}))
	if !ok {
		t.Fatal("expected a classification")
	}
	if got.DisplayName != "McDonald's" {
		t.Errorf("expected rule name without city, got %q", got.DisplayName)
	}
}

func TestClassify_SyntheticRules(t *testing.T) {
	rules := &model.RuleSet{
		Chargers:         []model.BrandRule{{ID: "acme", Name: "Acme Power", Class: "bg-acme", Keywords: []string{"acme"}}},
		Food:             []model.BrandRule{{ID: "pizza", Name: "Pizza", Class: "bg-pizza", Keywords: []string{"pizza"}}},
		ChargerAmenities: []string{"charging_station"},
		POIAmenities:     []string{"restaurant"},
	}
	c := NewClassifier(rules)

	if got, ok := c.Classify(point(map[string]string{"amenity": "charging_station", "operator": "ACME"})); !ok || got.CanonicalID != "acme" {
		t.Errorf("expected acme charger, got %+v", got)
	}
	if _, ok := c.Classify(point(map[string]string{"amenity": "charging_station", "operator": "Tesla"})); ok {
		t.Error("default rules must not leak into a synthetic rule set")
	}
	if got, ok := c.Classify(point(map[string]string{"amenity": "restaurant", "name": "Pizza Hut"})); !ok || got.StyleClass != "bg-pizza" {
		t.Errorf("expected pizza poi, got %+v", got)
	}
}
