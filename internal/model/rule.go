package model

// BrandRule maps a set of lowercase keywords to one canonical brand
type BrandRule struct {
	ID       string   `json:"id" yaml:"id"`             // Canonical id (e.g., "tesla", "kfc")
	Name     string   `json:"name" yaml:"name"`         // Default display name
	Class    string   `json:"class" yaml:"class"`       // CSS badge class for the map front-end
	Keywords []string `json:"keywords" yaml:"keywords"` // Substrings, checked in order
}

// RuleSet holds the ordered rules plus the category gates that decide
// whether a point is a charger or a point-of-interest candidate at all.
// Rule order is priority order: the first matching rule wins.
type RuleSet struct {
	Chargers []BrandRule `json:"chargers" yaml:"chargers"`
	Lounge   []BrandRule `json:"lounge" yaml:"lounge"` // Checked before Food
	Food     []BrandRule `json:"food" yaml:"food"`

	ChargerAmenities []string `json:"charger_amenities" yaml:"charger_amenities"`
	POIAmenities     []string `json:"poi_amenities" yaml:"poi_amenities"`
	POIShops         []string `json:"poi_shops" yaml:"poi_shops"`

	// UnknownNames are placeholder names treated like a missing name tag
	UnknownNames []string `json:"unknown_names" yaml:"unknown_names"`

	// NameFilter adds terms to the server-side name regex. A point is only
	// fetched when its name contains one of these terms or the first word
	// of a lounge or food keyword.
	NameFilter []string `json:"name_filter,omitempty" yaml:"name_filter,omitempty"`
}
