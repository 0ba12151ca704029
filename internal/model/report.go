package model

import (
	"time"

	"github.com/google/uuid"
)

// RunReport summarizes one grid scan
type RunReport struct {
	RunID     string        `json:"run_id"`
	Area      Area          `json:"area"`
	Step      float64       `json:"step"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Tiles       int `json:"tiles"`        // Tiles attempted
	FailedTiles int `json:"failed_tiles"` // Tiles whose fetch failed (contributed nothing)
	Raw         int `json:"raw_matches"`  // Matches produced before merge
	Matches     int `json:"matches"`      // Matches kept after merge

	Tile []TileReport `json:"tile_reports,omitempty"`
}

// TileReport describes the outcome of a single tile
type TileReport struct {
	Row      int           `json:"row"`
	Col      int           `json:"col"`
	BBox     string        `json:"bbox"`
	Points   int           `json:"points"`
	Matches  int           `json:"matches"`
	New      int           `json:"new"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// NewRunReport starts a report with a fresh run id
func NewRunReport(area Area, step float64) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Area:      area,
		Step:      step,
		StartedAt: time.Now().UTC(),
	}
}
