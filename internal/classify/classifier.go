package classify

import (
	"strings"

	"github.com/ladepause/ladepause/internal/model"
)

// Classifier decides whether a raw point is a charger, a point of interest,
// or irrelevant, and which brand rule it belongs to
type Classifier struct {
	rules            *model.RuleSet
	chargerAmenities map[string]bool
	poiAmenities     map[string]bool
	poiShops         map[string]bool
	unknownNames     map[string]bool
}

// NewClassifier creates a classifier over an immutable rule set.
// A nil rule set means DefaultRules.
func NewClassifier(rules *model.RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}

	return &Classifier{
		rules:            rules,
		chargerAmenities: toSet(rules.ChargerAmenities),
		poiAmenities:     toSet(rules.POIAmenities),
		poiShops:         toSet(rules.POIShops),
		unknownNames:     toSet(rules.UnknownNames),
	}
}

// Rules returns the rule set the classifier was built with
func (c *Classifier) Rules() *model.RuleSet {
	return c.rules
}

// SearchText builds the lowercase text the keywords are matched against:
// name, brand and operator joined by single spaces
func SearchText(tags map[string]string) string {
	return strings.ToLower(tags["name"] + " " + tags["brand"] + " " + tags["operator"])
}

// Match returns the first rule with a keyword contained in text
func Match(text string, rules []model.BrandRule) (model.BrandRule, bool) {
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, kw) {
				return rule, true
			}
		}
	}
	return model.BrandRule{}, false
}

// Category returns the category a point is eligible for, if any.
// Point-of-interest categories take precedence over the charger category.
func (c *Classifier) Category(tags map[string]string) (model.Category, bool) {
	if c.poiAmenities[tags["amenity"]] || c.poiShops[tags["shop"]] {
		return model.CategoryPOI, true
	}
	if c.chargerAmenities[tags["amenity"]] {
		return model.CategoryCharger, true
	}
	return "", false
}

// Classify returns the classified point, or false when the point is
// ineligible or matches no rule
func (c *Classifier) Classify(p model.RawPoint) (model.ClassifiedPoint, bool) {
	category, ok := c.Category(p.Tags)
	if !ok {
		return model.ClassifiedPoint{}, false
	}

	text := SearchText(p.Tags)

	var rule model.BrandRule
	switch category {
	case model.CategoryPOI:
		rule, ok = Match(text, c.rules.Lounge)
		if !ok {
			rule, ok = Match(text, c.rules.Food)
		}
	case model.CategoryCharger:
		rule, ok = Match(text, c.rules.Chargers)
	}
	if !ok {
		return model.ClassifiedPoint{}, false
	}

	return model.ClassifiedPoint{
		RawPoint:    p,
		CanonicalID: rule.ID,
		DisplayName: c.displayName(p, rule, category),
		StyleClass:  rule.Class,
		Category:    category,
	}, true
}

// displayName keeps a real name verbatim. Chargers without a usable name
// fall back to the rule name plus the city, POIs to the rule name only.
func (c *Classifier) displayName(p model.RawPoint, rule model.BrandRule, category model.Category) string {
	name := strings.TrimSpace(p.Tag("name"))
	if name != "" && !c.unknownNames[strings.ToLower(name)] {
		return p.Tag("name")
	}

	if category != model.CategoryCharger {
		return rule.Name
	}

	if city := strings.TrimSpace(p.Tag("addr:city")); city != "" {
		return rule.Name + " (" + city + ")"
	}
	return rule.Name
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
