package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ladepause/ladepause/internal/model"
)

// MergeFiles concatenates match files in order, dropping entries whose
// position (to 4 decimals, about 11 m) and title were already seen.
// Files that cannot be read or parsed are reported and skipped.
func MergeFiles(paths []string) ([]model.Match, []error) {
	var (
		merged []model.Match
		errs   []error
	)
	seen := make(map[string]bool)

	for _, path := range paths {
		matches, err := readMatches(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, m := range matches {
			key := positionKey(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, m)
		}
	}
	return merged, errs
}

func positionKey(m model.Match) string {
	return fmt.Sprintf("%.4f|%.4f|%s", m.Lat, m.Lon, m.Title)
}

func readMatches(path string) ([]model.Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var matches []model.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return matches, nil
}
