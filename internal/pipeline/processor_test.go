package pipeline

import (
	"math"
	"strings"
	"testing"

	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/paulmach/orb"
)

func testOptions() Options {
	return Options{Radius: 300, DedupRadius: 30, PrefilterDeg: 0.02, Language: "de"}
}

func newTestProcessor() *Processor {
	return NewProcessor(classify.NewClassifier(nil), testOptions())
}

func charger(id string, lat, lon float64, name string) model.RawPoint {
	return model.RawPoint{
		SourceID: id,
		Location: orb.Point{lon, lat},
		Tags:     map[string]string{"amenity": "charging_station", "name": name},
	}
}

func food(id string, lat, lon float64, name string) model.RawPoint {
	return model.RawPoint{
		SourceID: id,
		Location: orb.Point{lon, lat},
		Tags:     map[string]string{"amenity": "fast_food", "name": name},
	}
}

func TestProcess_PairsNearestPOI(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "Tesla Supercharger Ulm"),
		food("node/11", 48.002, 9.0, "KFC"),
		food("node/10", 48.001, 9.0, "McDonald's"),
	})

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.FoodID == nil || *m.FoodID != "mcdonald" {
		t.Fatalf("expected mcdonald, got %v", m.FoodID)
	}
	if m.Note != "111m zu McDonald's" {
		t.Errorf("unexpected note %q", m.Note)
	}
	if m.Key != "node/1_node/10" {
		t.Errorf("unexpected key %q", m.Key)
	}
	if m.ChargerID != "tesla" || m.BadgeClass != "bg-tesla" {
		t.Errorf("unexpected charger presentation %s/%s", m.ChargerID, m.BadgeClass)
	}
	if m.Title != "Tesla Supercharger Ulm" || m.PopupName != m.Title {
		t.Errorf("unexpected title %q / %q", m.Title, m.PopupName)
	}
	if m.Lat != 48.0 || m.Lon != 9.0 {
		t.Errorf("match should sit on the charger, got %f,%f", m.Lat, m.Lon)
	}
}

func TestProcess_NoFoodInRadius(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "IONITY Aichstetten"),
		food("node/10", 48.003, 9.0, "McDonald's"), // ~333 m
	})

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.HasFood() {
		t.Errorf("expected no food, got %s", *m.FoodID)
	}
	if m.Note != "Keine Verpflegung" {
		t.Errorf("unexpected note %q", m.Note)
	}
	if m.Key != "node/1_nofood" {
		t.Errorf("unexpected key %q", m.Key)
	}
	if !strings.Contains(m.Description, "(300m)") {
		t.Errorf("description should mention the radius: %s", m.Description)
	}
}

func TestProcess_RadiusIsInclusive(t *testing.T) {
	c := charger("node/1", 48.0, 9.0, "EnBW")
	f := food("node/10", 48.0017, 9.0013, "Subway")

	opts := testOptions()
	opts.Radius = geo.Distance(c.Location, f.Location)
	p := NewProcessor(classify.NewClassifier(nil), opts)

	matches := p.Process([]model.RawPoint{c, f})
	if len(matches) != 1 || !matches[0].HasFood() {
		t.Fatal("a POI exactly at the radius should be paired")
	}
}

func TestProcess_TieKeepsFirstCandidate(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "Fastned"),
		food("node/10", 48.001, 9.0, "Subway"),
		food("node/11", 48.001, 9.0, "Nordsee"), // same spot, same distance
	})

	if len(matches) != 1 || matches[0].FoodID == nil {
		t.Fatalf("expected one paired match, got %+v", matches)
	}
	if *matches[0].FoodID != "subway" {
		t.Errorf("tie should keep the first candidate, got %s", *matches[0].FoodID)
	}

	reversed := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "Fastned"),
		food("node/11", 48.001, 9.0, "Nordsee"),
		food("node/10", 48.001, 9.0, "Subway"),
	})
	if reversed[0].FoodID == nil || *reversed[0].FoodID != "nordsee" {
		t.Errorf("tie should follow input order, got %v", reversed[0].FoodID)
	}
}

func TestProcess_DedupSameBrand(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "Tesla Supercharger"),
		charger("node/2", 48.0001, 9.0, "Tesla Supercharger"), // ~11 m, same brand
		charger("node/3", 48.0001, 9.0, "IONITY"),             // same spot, other brand
		charger("node/4", 48.001, 9.0, "Tesla Supercharger"),  // ~111 m
	})

	if len(matches) != 3 {
		t.Fatalf("expected 3 chargers, got %d", len(matches))
	}
	want := []string{"node/1_nofood", "node/3_nofood", "node/4_nofood"}
	for i, m := range matches {
		if m.Key != want[i] {
			t.Errorf("match %d: expected key %s, got %s", i, want[i], m.Key)
		}
	}
}

func TestProcess_OneMatchPerCharger(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "EnBW"),
		charger("node/2", 48.0, 9.0005, "Allego"),
		food("node/10", 48.0005, 9.0, "Burger King"),
	})

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.FoodID == nil || *m.FoodID != "burger-king" {
			t.Errorf("both chargers should share the POI, got %v", m.FoodID)
		}
	}
}

func TestProcess_SkipsUnclassifiedAndInvalid(t *testing.T) {
	p := newTestProcessor()

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "Stadtwerke Ladesäule"),
		charger("node/2", math.NaN(), 9.0, "Tesla"),
		charger("node/3", 95.0, 9.0, "Tesla"),
		food("node/10", 48.0, 9.0, "Döner Palast"),
	})

	if len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	p := newTestProcessor()
	if got := p.Process(nil); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestProcess_PrefilterExcludesFarPOIs(t *testing.T) {
	opts := testOptions()
	opts.Radius = 100000
	p := NewProcessor(classify.NewClassifier(nil), opts)

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "EnBW"),
		food("node/10", 48.05, 9.0, "KFC"),
	})

	if len(matches) != 1 || matches[0].HasFood() {
		t.Error("POIs outside the prefilter box should never be paired")
	}
}

func TestProcess_EnglishText(t *testing.T) {
	opts := testOptions()
	opts.Language = "en"
	p := NewProcessor(classify.NewClassifier(nil), opts)

	matches := p.Process([]model.RawPoint{
		charger("node/1", 48.0, 9.0, "EnBW"),
		food("node/10", 48.001, 9.0, "KFC"),
		charger("node/2", 49.0, 9.0, "Allego"),
	})

	if matches[0].Note != "111m to KFC" {
		t.Errorf("unexpected note %q", matches[0].Note)
	}
	if matches[1].Note != "No food nearby" {
		t.Errorf("unexpected note %q", matches[1].Note)
	}
}

func TestUniqueKey(t *testing.T) {
	if got := UniqueKey("node/1", "way/2"); got != "node/1_way/2" {
		t.Errorf("unexpected key %q", got)
	}
	if got := UniqueKey("node/1", ""); got != "node/1_nofood" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestCSSID(t *testing.T) {
	if got := CSSID("burger king"); got != "burger-king" {
		t.Errorf("unexpected id %q", got)
	}
}

func TestDescribe_EscapesNames(t *testing.T) {
	got := Describe("<b>EnBW</b>", "Tom & Jerry's", 42, 300, TextFor("de"))

	if strings.Contains(got, "<b>") {
		t.Errorf("charger name not escaped: %s", got)
	}
	if !strings.Contains(got, "Tom &amp; Jerry") {
		t.Errorf("food name not escaped: %s", got)
	}
	if !strings.Contains(got, "Entfernung: 42m") {
		t.Errorf("missing distance: %s", got)
	}
	if !strings.Contains(got, "color:var(--charger-color)") {
		t.Errorf("missing title style: %s", got)
	}
}

func TestTextFor_FallsBackToGerman(t *testing.T) {
	if TextFor("fr").NoFood != "Keine Verpflegung" {
		t.Error("unknown language should fall back to German")
	}
}
