package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ladepause/ladepause/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultRules returns the built-in brand tables. Every call returns a
// fresh copy so callers cannot mutate shared state.
func DefaultRules() *model.RuleSet {
	return &model.RuleSet{
		Chargers: []model.BrandRule{
			{ID: "tesla", Name: "Tesla Supercharger", Class: "bg-tesla", Keywords: []string{"tesla"}},
			{ID: "ionity", Name: "IONITY", Class: "bg-ionity", Keywords: []string{"ionity"}},
			{ID: "enbw", Name: "EnBW", Class: "bg-enbw", Keywords: []string{"enbw"}},
			{ID: "fastned", Name: "Fastned", Class: "bg-fastned", Keywords: []string{"fastned"}},
			{ID: "allego", Name: "Allego", Class: "bg-allego", Keywords: []string{"allego"}},
			{ID: "aral", Name: "Aral pulse", Class: "bg-aral", Keywords: []string{"aral", "pulse"}},
		},
		Lounge: []model.BrandRule{
			{
				ID:    "lounge",
				Name:  "Lounge / Shop",
				Class: "bg-purple-600",
				Keywords: []string{
					"bk world", "tegut", "rewe ready", "rewe to go",
					"audi charging hub", "porsche", "seed & greet", "seed&greet",
					"lounge", "charging hub",
				},
			},
		},
		Food: []model.BrandRule{
			{ID: "mcdonald", Name: "McDonald's", Class: "bg-mcd", Keywords: []string{"mcdonald"}},
			{ID: "burger-king", Name: "Burger King", Class: "bg-bk", Keywords: []string{"burger king"}},
			{ID: "kfc", Name: "KFC", Class: "bg-kfc", Keywords: []string{"kfc", "kentucky"}},
			{ID: "subway", Name: "Subway", Class: "bg-subway", Keywords: []string{"subway"}},
			{ID: "nordsee", Name: "Nordsee", Class: "bg-nordsee", Keywords: []string{"nordsee"}},
		},
		ChargerAmenities: []string{"charging_station"},
		POIAmenities:     []string{"fast_food", "restaurant", "cafe", "lounge", "vending_machine"},
		POIShops:         []string{"kiosk", "convenience"},
		UnknownNames:     []string{"unknown", "unbekannt"},
		NameFilter: []string{
			"mcdonald", "burger king", "lounge", "world", "hub", "tegut", "rewe",
			"porsche", "audi", "seed", "kfc", "kentucky", "subway", "nordsee",
		},
	}
}

// LoadRules reads a YAML rule file
func LoadRules(path string) (*model.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and validates a YAML rule set. Keywords are
// lowercased; omitted category lists fall back to the defaults.
func ParseRules(data []byte) (*model.RuleSet, error) {
	var rules model.RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	defaults := DefaultRules()
	if len(rules.ChargerAmenities) == 0 {
		rules.ChargerAmenities = defaults.ChargerAmenities
	}
	if len(rules.POIAmenities) == 0 {
		rules.POIAmenities = defaults.POIAmenities
	}
	if len(rules.POIShops) == 0 {
		rules.POIShops = defaults.POIShops
	}
	if len(rules.UnknownNames) == 0 {
		rules.UnknownNames = defaults.UnknownNames
	}

	if err := normalize(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}

// MarshalRules encodes a rule set as YAML
func MarshalRules(rules *model.RuleSet) ([]byte, error) {
	return yaml.Marshal(rules)
}

func normalize(rules *model.RuleSet) error {
	if len(rules.Chargers) == 0 {
		return fmt.Errorf("rule set needs at least one charger rule")
	}

	groups := map[string][]model.BrandRule{
		"chargers": rules.Chargers,
		"lounge":   rules.Lounge,
		"food":     rules.Food,
	}
	for group, list := range groups {
		for i := range list {
			r := &list[i]
			if strings.TrimSpace(r.ID) == "" {
				return fmt.Errorf("%s[%d]: missing id", group, i)
			}
			if len(r.Keywords) == 0 {
				return fmt.Errorf("%s[%d] %q: no keywords", group, i, r.ID)
			}
			if r.Name == "" {
				r.Name = r.ID
			}
			for k, kw := range r.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw == "" {
					return fmt.Errorf("%s[%d] %q: empty keyword", group, i, r.ID)
				}
				r.Keywords[k] = kw
			}
		}
	}
	return nil
}

// NameFilter builds the case-insensitive name regex sent to Overpass. The
// brand and operator tags are only known after fetching, so the regex is
// broader than the keywords: the explicit filter terms plus the first word of
// every lounge and food keyword. Exact keyword matching happens in Classify.
func NameFilter(rules *model.RuleSet) string {
	seen := make(map[string]bool)
	var parts []string
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		parts = append(parts, regexp.QuoteMeta(term))
	}

	for _, term := range rules.NameFilter {
		add(term)
	}
	for _, list := range [][]model.BrandRule{rules.Lounge, rules.Food} {
		for _, r := range list {
			for _, kw := range r.Keywords {
				if fields := strings.Fields(kw); len(fields) > 0 {
					add(fields[0])
				}
			}
		}
	}
	return strings.Join(parts, "|")
}
