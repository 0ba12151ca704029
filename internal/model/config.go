package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Config is the complete runtime configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Overpass     OverpassConfig     `yaml:"overpass" mapstructure:"overpass"`
	Scan         ScanConfig         `yaml:"scan" mapstructure:"scan"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls the outbound HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"` // 0 = a failed tile is skipped immediately
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OverpassConfig selects the data source
type OverpassConfig struct {
	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint"`
	Source        string `yaml:"source" mapstructure:"source"` // "http" or "client"
	QueryTimeout  int    `yaml:"query_timeout" mapstructure:"query_timeout"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ScanConfig describes the area and matching parameters
type ScanConfig struct {
	Area         string  `yaml:"area" mapstructure:"area"` // Preset name
	BBox         string  `yaml:"bbox,omitempty" mapstructure:"bbox"`
	Step         float64 `yaml:"step" mapstructure:"step"`
	Radius       float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	DedupRadius  float64 `yaml:"dedup_radius_meters" mapstructure:"dedup_radius_meters"`
	PrefilterDeg float64 `yaml:"prefilter_degrees" mapstructure:"prefilter_degrees"`
	RulesFile    string  `yaml:"rules_file,omitempty" mapstructure:"rules_file"`
}

// CacheConfig controls the tile response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig paces tile requests against the data source
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls the written artifacts
type OutputConfig struct {
	JSONPath string `yaml:"json_path" mapstructure:"json_path"`
	MetaPath string `yaml:"meta_path" mapstructure:"meta_path"`
	XLSXPath string `yaml:"xlsx_path,omitempty" mapstructure:"xlsx_path"`
	Language string `yaml:"language" mapstructure:"language"` // "de" or "en"
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
}

// Area is a named or ad-hoc scan region in degrees
type Area struct {
	Name  string  `json:"name" yaml:"name"`
	South float64 `json:"south" yaml:"south"`
	West  float64 `json:"west" yaml:"west"`
	North float64 `json:"north" yaml:"north"`
	East  float64 `json:"east" yaml:"east"`
}

// Bound converts the area into an orb.Bound
func (a Area) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.West, a.South},
		Max: orb.Point{a.East, a.North},
	}
}

func (a Area) String() string {
	return fmt.Sprintf("%s (%g,%g)-(%g,%g)", a.Name, a.South, a.West, a.North, a.East)
}

// AreaPresets are the regions the scraper has historically been run on
var AreaPresets = map[string]Area{
	"germany":   {Name: "germany", South: 47.0, West: 5.5, North: 55.2, East: 15.5},
	"stuttgart": {Name: "stuttgart", South: 48.5, West: 9.0, North: 48.9, East: 10.0},
}

// PresetNames returns the sorted preset names
func PresetNames() []string {
	names := make([]string, 0, len(AreaPresets))
	for name := range AreaPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseBBox parses "south,west,north,east"
func ParseBBox(s string) (Area, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Area{}, fmt.Errorf("bbox must be south,west,north,east: %q", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Area{}, fmt.Errorf("bbox value %q: %w", p, err)
		}
		v[i] = f
	}

	return Area{Name: "bbox", South: v[0], West: v[1], North: v[2], East: v[3]}, nil
}

// ResolveArea returns the explicit bbox if set, otherwise the named preset
func (c ScanConfig) ResolveArea() (Area, error) {
	if c.BBox != "" {
		return ParseBBox(c.BBox)
	}
	area, ok := AreaPresets[c.Area]
	if !ok {
		return Area{}, fmt.Errorf("unknown area %q (known: %s)", c.Area, strings.Join(PresetNames(), ", "))
	}
	return area, nil
}

// DefaultConfig returns the configuration the monthly run uses
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      190 * time.Second,
			UserAgent:    "ladepause/0.3 (+https://github.com/ladepause/ladepause)",
			MaxBodyBytes: 64 << 20,
			MaxRetries:   0,
		},
		Overpass: OverpassConfig{
			Endpoint:      "https://overpass.private.coffee/api/interpreter",
			Source:        "http",
			QueryTimeout:  180,
			RespectRobots: true,
		},
		Scan: ScanConfig{
			Area:         "germany",
			Step:         0.5,
			Radius:       300,
			DedupRadius:  30,
			PrefilterDeg: 0.02,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".ladepause-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   12 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Output: OutputConfig{
			JSONPath: "data.json",
			MetaPath: "meta.js",
			Language: "de",
		},
	}
}

// Validate checks values that would make a scan meaningless
func (c *Config) Validate() error {
	if c.Scan.Step <= 0 {
		return fmt.Errorf("scan.step must be positive, got %g", c.Scan.Step)
	}
	if c.Scan.Radius <= 0 {
		return fmt.Errorf("scan.radius_meters must be positive, got %g", c.Scan.Radius)
	}
	if c.Scan.DedupRadius < 0 {
		return fmt.Errorf("scan.dedup_radius_meters must not be negative, got %g", c.Scan.DedupRadius)
	}
	if c.Scan.PrefilterDeg <= 0 {
		return fmt.Errorf("scan.prefilter_degrees must be positive, got %g", c.Scan.PrefilterDeg)
	}

	area, err := c.Scan.ResolveArea()
	if err != nil {
		return err
	}
	if area.South > area.North || area.West > area.East {
		return fmt.Errorf("inverted area %s", area)
	}
	if area.South < -90 || area.North > 90 || area.West < -180 || area.East > 180 {
		return fmt.Errorf("area %s outside ±90/±180", area)
	}

	switch c.Overpass.Source {
	case "http", "client":
	default:
		return fmt.Errorf("overpass.source must be http or client, got %q", c.Overpass.Source)
	}

	switch c.Output.Language {
	case "de", "en":
	default:
		return fmt.Errorf("output.language must be de or en, got %q", c.Output.Language)
	}

	return nil
}
