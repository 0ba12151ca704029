package model

// Match is the output unit consumed by the map front-end.
// Key is only used while merging tiles and is never serialized.
type Match struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ChargerID   string  `json:"charger_id,omitempty"`
	FoodID      *string `json:"food_id"` // null when nothing is within the radius
	Title       string  `json:"title"`
	BadgeClass  string  `json:"badge_class"`
	Note        string  `json:"note"`
	PopupName   string  `json:"popup_name"`
	Description string  `json:"description"`

	Key string `json:"-"`
}

// HasFood reports whether a point of interest was paired with the charger
func (m Match) HasFood() bool {
	return m.FoodID != nil
}
