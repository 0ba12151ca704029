package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/ladepause/ladepause/internal/overpass"
	"github.com/ladepause/ladepause/internal/worker"
)

// RunnerConfig holds the optional collaborators of a Runner
type RunnerConfig struct {
	Limiter  *worker.Limiter         // Paces requests to Endpoint (nil = unpaced)
	Endpoint string                  // URL the limiter keys on
	Log      io.Writer               // Per-tile log lines (nil = silent)
	OnTile   func(model.TileReport) // Called after every tile, failed or not
}

// Runner scans an area tile by tile and merges the matches
type Runner struct {
	source    overpass.Source
	processor *Processor
	cfg       RunnerConfig
}

// NewRunner creates a runner over source
func NewRunner(source overpass.Source, processor *Processor, cfg RunnerConfig) *Runner {
	if cfg.Log == nil {
		cfg.Log = io.Discard
	}
	return &Runner{source: source, processor: processor, cfg: cfg}
}

// Run processes every tile of area in row-major order. A failed tile is
// logged and skipped. On cancellation the matches merged so far are
// returned together with the context error.
func (r *Runner) Run(ctx context.Context, area model.Area, step float64) ([]model.Match, *model.RunReport, error) {
	report := model.NewRunReport(area, step)
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	tiles, err := geo.Grid(area.Bound(), step)
	if err != nil {
		return nil, report, fmt.Errorf("build grid: %w", err)
	}

	merger := NewMerger()
	fmt.Fprintf(r.cfg.Log, "[%s] scanning %s in %d tiles (step %g°)\n", report.RunID[:8], area, len(tiles), step)

	for _, tile := range tiles {
		if err := ctx.Err(); err != nil {
			report.Matches = merger.Len()
			return merger.Results(), report, err
		}

		tr := r.runTile(ctx, tile, merger)
		report.Tiles++
		report.Raw += tr.Matches
		if tr.Error != "" {
			report.FailedTiles++
		}
		report.Tile = append(report.Tile, tr)
		if r.cfg.OnTile != nil {
			r.cfg.OnTile(tr)
		}
	}

	report.Matches = merger.Len()
	if err := ctx.Err(); err != nil {
		return merger.Results(), report, err
	}
	fmt.Fprintf(r.cfg.Log, "[%s] done: %d matches, %d/%d tiles failed\n", report.RunID[:8], report.Matches, report.FailedTiles, report.Tiles)
	return merger.Results(), report, nil
}

func (r *Runner) runTile(ctx context.Context, tile geo.Tile, merger *Merger) model.TileReport {
	start := time.Now()
	tr := model.TileReport{Row: tile.Row, Col: tile.Col, BBox: tile.BBox()}

	points, err := r.fetch(ctx, tile)
	tr.Duration = time.Since(start)
	if err != nil {
		tr.Error = err.Error()
		fmt.Fprintf(r.cfg.Log, "  tile %s failed: %v\n", tile, err)
		return tr
	}

	matches := r.processor.Process(points)
	tr.Points = len(points)
	tr.Matches = len(matches)
	tr.New = merger.Add(matches)
	tr.Duration = time.Since(start)

	fmt.Fprintf(r.cfg.Log, "  tile %s: %d points, %d matches, %d new (%s)\n",
		tile, tr.Points, tr.Matches, tr.New, tr.Duration.Round(time.Millisecond))
	return tr
}

func (r *Runner) fetch(ctx context.Context, tile geo.Tile) ([]model.RawPoint, error) {
	if r.cfg.Limiter != nil && r.cfg.Endpoint != "" {
		if err := r.cfg.Limiter.Wait(ctx, r.cfg.Endpoint); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return r.source.FetchTile(ctx, tile)
}
