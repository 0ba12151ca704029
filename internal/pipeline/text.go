package pipeline

// Text holds the user-facing strings of a match
type Text struct {
	NoFood       string // Note when nothing qualifies
	FoodNote     string // Note format: meters, food name
	NoFoodNearby string // Description format: radius in meters
	Distance     string // Description format: meters

	Months []string // Month names for the data banner

	SummaryTitle  string
	SummaryIntro  string
	SummaryKind   string
	SummaryCount  string
	SummaryBefore string
	SummaryAfter  string
	SummaryDiff   string
	StatsMessage  string // Format: new count, signed diff
}

var texts = map[string]Text{
	"de": {
		NoFood:       "Keine Verpflegung",
		FoodNote:     "%dm zu %s",
		NoFoodNearby: "Kein Fastfood in direkter Nähe (%dm)",
		Distance:     "Entfernung: %dm",
		Months: []string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		SummaryTitle:  "# 🗺️ Karten-Update Report",
		SummaryIntro:  "Das monatliche Update war erfolgreich.",
		SummaryKind:   "Typ",
		SummaryCount:  "Anzahl",
		SummaryBefore: "📉 Vorher",
		SummaryAfter:  "📈 Nachher",
		SummaryDiff:   "📊 Differenz",
		StatsMessage:  "%d Einträge (%+d)",
	},
	"en": {
		NoFood:       "No food nearby",
		FoodNote:     "%dm to %s",
		NoFoodNearby: "No fast food close by (%dm)",
		Distance:     "Distance: %dm",
		Months: []string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		SummaryTitle:  "# 🗺️ Map update report",
		SummaryIntro:  "The scheduled update succeeded.",
		SummaryKind:   "Kind",
		SummaryCount:  "Count",
		SummaryBefore: "📉 Before",
		SummaryAfter:  "📈 After",
		SummaryDiff:   "📊 Difference",
		StatsMessage:  "%d entries (%+d)",
	},
}

// TextFor returns the strings for lang, German when unknown
func TextFor(lang string) Text {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts["de"]
}
