package overpass

import (
	"fmt"
	"strings"

	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/model"
)

// Output modes for ways and relations. Center is the midpoint of the
// bounding box, so both resolve to the same coordinates.
const (
	OutCenter = "center"
	OutBounds = "bb"
)

// BuildQuery builds the Overpass QL union for one bbox: all charging
// stations plus the POI categories whose name can match a lounge or food rule
func BuildQuery(bbox string, rules *model.RuleSet, timeoutSec int, out string) string {
	if out == "" {
		out = OutCenter
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", timeoutSec)
	fmt.Fprintf(&b, "  nwr[\"amenity\"~\"%s\"](%s);\n", anchored(rules.ChargerAmenities), bbox)

	names := escapeQL(classify.NameFilter(rules))
	if len(rules.POIAmenities) > 0 {
		fmt.Fprintf(&b, "  nwr[\"amenity\"~\"%s\"][\"name\"~\"%s\",i](%s);\n", anchored(rules.POIAmenities), names, bbox)
	}
	if len(rules.POIShops) > 0 {
		fmt.Fprintf(&b, "  nwr[\"shop\"~\"%s\"][\"name\"~\"%s\",i](%s);\n", anchored(rules.POIShops), names, bbox)
	}

	fmt.Fprintf(&b, ");\nout %s;\n", out)
	return b.String()
}

func anchored(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escapeQL(v)
	}
	return "^(" + strings.Join(escaped, "|") + ")$"
}

// escapeQL escapes a value for use inside a double-quoted QL string
func escapeQL(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
