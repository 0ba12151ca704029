package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/ladepause/ladepause/internal/cache"
	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/ladepause/ladepause/internal/overpass"
	"github.com/ladepause/ladepause/internal/pipeline"
	"github.com/ladepause/ladepause/internal/util"
	"github.com/ladepause/ladepause/internal/worker"
	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"
)

var (
	areaName      string
	bbox          string
	step          float64
	radius        float64
	rulesFile     string
	sourceKind    string
	endpoint      string
	timeout       time.Duration
	outJSON       string
	outMeta       string
	outXLSX       string
	useCache      bool
	language      string
	respectRobots bool
	maxRetries    int
	httpProxy     string
	httpsProxy    string
	userAgent     string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an area and write the charger/food matches",
	Long: `Scan splits the area into tiles, fetches branded chargers and food
points of interest for every tile, pairs each charger with the nearest
point of interest within the radius and merges the tiles.

A tile that fails to load is logged and skipped.

Example:
  ladepause scan
  ladepause scan --area stuttgart --out stuttgart.json
  ladepause scan --bbox 50.9,13.5,51.2,14.0 --step 0.25 --lang en
  ladepause scan --source client --cache --xlsx data.xlsx`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	d := model.DefaultConfig()
	f := scanCmd.Flags()

	// Area flags
	f.StringVar(&areaName, "area", d.Scan.Area, "area preset ("+joinPresets()+")")
	f.StringVar(&bbox, "bbox", "", "explicit area south,west,north,east (overrides --area)")
	f.Float64Var(&step, "step", d.Scan.Step, "tile size in degrees")
	f.Float64Var(&radius, "radius", d.Scan.Radius, "max charger to food distance in meters")
	f.StringVar(&rulesFile, "rules", "", "YAML brand rules file (default: built-in rules)")

	// Source flags
	f.StringVar(&sourceKind, "source", d.Overpass.Source, "data source: http or client")
	f.StringVar(&endpoint, "endpoint", d.Overpass.Endpoint, "Overpass API interpreter URL")
	f.DurationVar(&timeout, "timeout", d.HTTP.Timeout, "HTTP timeout per tile")
	f.BoolVar(&useCache, "cache", d.Cache.Enabled, "cache tile responses on disk")
	f.BoolVar(&respectRobots, "respect-robots", d.Overpass.RespectRobots, "check robots.txt of the endpoint before scanning")
	f.IntVar(&maxRetries, "retries", d.HTTP.MaxRetries, "retries per tile on transient errors")
	f.StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	f.StringVar(&userAgent, "ua", d.HTTP.UserAgent, "HTTP User-Agent")

	// Output flags
	f.StringVar(&outJSON, "out", d.Output.JSONPath, "output JSON path")
	f.StringVar(&outMeta, "meta", d.Output.MetaPath, "output meta.js path (empty to skip)")
	f.StringVar(&outXLSX, "xlsx", "", "output XLSX path (optional)")
	f.StringVar(&language, "lang", d.Output.Language, "language of notes and descriptions: de or en")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	rules := classify.DefaultRules()
	if cfg.Scan.RulesFile != "" {
		if rules, err = classify.LoadRules(cfg.Scan.RulesFile); err != nil {
			return err
		}
	}

	area, err := cfg.Scan.ResolveArea()
	if err != nil {
		return err
	}
	tiles, err := geo.Grid(area.Bound(), cfg.Scan.Step)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	if cfg.Overpass.RespectRobots {
		if err := checkRobots(ctx, cfg, limiter); err != nil {
			return err
		}
	}

	source, err := newSource(cfg, rules)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Ladepause Scan\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Area:         %s\n", area)
	fmt.Fprintf(os.Stderr, "  Tiles:        %d (step %g°)\n", len(tiles), cfg.Scan.Step)
	fmt.Fprintf(os.Stderr, "  Radius:       %gm\n", cfg.Scan.Radius)
	fmt.Fprintf(os.Stderr, "  Endpoint:     %s (%s)\n", cfg.Overpass.Endpoint, cfg.Overpass.Source)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	runnerCfg := pipeline.RunnerConfig{
		Limiter:  limiter,
		Endpoint: cfg.Overpass.Endpoint,
	}

	var bar *pb.ProgressBar
	if verbose {
		runnerCfg.Log = os.Stderr
	} else if len(tiles) > 0 {
		bar = pb.New(len(tiles)).SetWidth(79)
		bar.Output = os.Stderr
		bar.ShowSpeed = false
		bar.Start()
		runnerCfg.OnTile = func(model.TileReport) { bar.Increment() }
	}

	processor := pipeline.NewProcessor(classify.NewClassifier(rules), pipeline.OptionsFromConfig(cfg))
	runner := pipeline.NewRunner(source, processor, runnerCfg)

	matches, report, err := runner.Run(ctx, area, cfg.Scan.Step)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("scan aborted after %d tiles: %w", report.Tiles, err)
	}

	return writeOutputs(cfg, matches, report)
}

// applyScanFlags overrides config values with flags the user set explicitly
func applyScanFlags(cmd *cobra.Command, cfg *model.Config) {
	f := cmd.Flags()
	if f.Changed("area") {
		cfg.Scan.Area = areaName
		cfg.Scan.BBox = ""
	}
	if f.Changed("bbox") {
		cfg.Scan.BBox = bbox
	}
	if f.Changed("step") {
		cfg.Scan.Step = step
	}
	if f.Changed("radius") {
		cfg.Scan.Radius = radius
	}
	if f.Changed("rules") {
		cfg.Scan.RulesFile = rulesFile
	}
	if f.Changed("source") {
		cfg.Overpass.Source = sourceKind
	}
	if f.Changed("endpoint") {
		cfg.Overpass.Endpoint = endpoint
	}
	if f.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if f.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if f.Changed("respect-robots") {
		cfg.Overpass.RespectRobots = respectRobots
	}
	if f.Changed("retries") {
		cfg.HTTP.MaxRetries = maxRetries
	}
	if f.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if f.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if f.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if f.Changed("out") {
		cfg.Output.JSONPath = outJSON
	}
	if f.Changed("meta") {
		cfg.Output.MetaPath = outMeta
	}
	if f.Changed("xlsx") {
		cfg.Output.XLSXPath = outXLSX
	}
	if f.Changed("lang") {
		cfg.Output.Language = language
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
}

// checkRobots refuses to scan a disallowed endpoint and adopts its crawl delay
func checkRobots(ctx context.Context, cfg *model.Config, limiter *worker.Limiter) error {
	checker := util.NewRobotsChecker(cfg.HTTP.UserAgent, 10*time.Second)
	allowed, delay, err := checker.CanFetch(ctx, cfg.Overpass.Endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: robots.txt check failed: %v\n", err)
		return nil
	}
	if !allowed {
		return fmt.Errorf("robots.txt disallows %s for %q (use --respect-robots=false to override)",
			cfg.Overpass.Endpoint, util.NormalizeUserAgent(cfg.HTTP.UserAgent))
	}
	if delay > 0 {
		if err := limiter.ApplyCrawlDelay(cfg.Overpass.Endpoint, delay); err != nil {
			return fmt.Errorf("apply crawl delay: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Honoring crawl delay of %v\n", delay)
		}
	}
	return nil
}

func newSource(cfg *model.Config, rules *model.RuleSet) (overpass.Source, error) {
	switch cfg.Overpass.Source {
	case "http":
		var c cache.Cache
		if cfg.Cache.Enabled {
			c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		}
		return overpass.NewHTTPSource(cfg, rules, c), nil
	case "client":
		if cfg.Cache.Enabled {
			fmt.Fprintf(os.Stderr, "Warning: the client source does not use the tile cache\n")
		}
		httpClient := overpass.NewHTTPClient(cfg.HTTP)
		return overpass.NewClientSource(cfg.Overpass.Endpoint, httpClient, rules, cfg.Overpass.QueryTimeout), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Overpass.Source)
	}
}

func writeOutputs(cfg *model.Config, matches []model.Match, report *model.RunReport) error {
	text := pipeline.TextFor(cfg.Output.Language)

	oldCount := pipeline.CountExisting(cfg.Output.JSONPath)
	newCount := len(matches)
	withFood := 0
	for _, m := range matches {
		if m.HasFood() {
			withFood++
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Scan Summary (%s)\n", report.RunID)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Tiles:        %s (%d failed)\n", humanize.Comma(int64(report.Tiles)), report.FailedTiles)
	fmt.Fprintf(os.Stderr, "  Matches:      %s (%s with food)\n", humanize.Comma(int64(newCount)), humanize.Comma(int64(withFood)))
	fmt.Fprintf(os.Stderr, "  Duplicates:   %s across tiles\n", humanize.Comma(int64(report.Raw-report.Matches)))
	fmt.Fprintf(os.Stderr, "  Previous:     %s (diff %+d)\n", humanize.Comma(int64(oldCount)), newCount-oldCount)
	fmt.Fprintf(os.Stderr, "  Duration:     %v\n", report.Duration.Round(time.Second))
	fmt.Fprintf(os.Stderr, "\n")

	if err := pipeline.RenderJSON(matches, cfg.Output.JSONPath); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", cfg.Output.JSONPath)

	if cfg.Output.MetaPath != "" {
		if err := pipeline.RenderMeta(cfg.Output.MetaPath, time.Now(), text); err != nil {
			return fmt.Errorf("render meta: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote meta: %s (%s)\n", cfg.Output.MetaPath, pipeline.MonthYear(time.Now(), text))
	}

	if cfg.Output.XLSXPath != "" {
		if err := pipeline.RenderXLSX(matches, cfg.Output.XLSXPath); err != nil {
			return fmt.Errorf("render XLSX: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", cfg.Output.XLSXPath)
	}

	if err := pipeline.WriteGitHubSummary(os.Getenv, oldCount, newCount, text); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}
