package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ladepause/ladepause/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envKeys are the settings that can come from LADEPAUSE_* variables.
// Unmarshal only sees env values for keys viper already knows about.
var envKeys = []string{
	"http.timeout", "http.user_agent", "http.max_body_bytes", "http.max_retries",
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
	"overpass.endpoint", "overpass.source", "overpass.query_timeout", "overpass.respect_robots",
	"scan.area", "scan.bbox", "scan.step", "scan.radius_meters", "scan.dedup_radius_meters",
	"scan.prefilter_degrees", "scan.rules_file",
	"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
	"rate_limiting.requests_per_second", "rate_limiting.burst_size",
	"output.json_path", "output.meta_path", "output.xlsx_path", "output.language",
}

func bindEnvKeys() {
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}
}

// loadConfig layers config file and environment over the defaults.
// Command flags are applied afterwards by each command.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Ladepause configuration",
	Long: `Manage Ladepause configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (LADEPAUSE_*, also read from .env)
3. Config file (~/.ladepause/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file and environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.ladepause/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".ladepause", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "\nTo view the configuration:\n  ladepause config show\n")
		return nil
	},
}

// writeDefaultConfig writes the commented default file, refusing to
// overwrite an existing one
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'ladepause config show' to view it, or delete it first to recreate", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	header := `# Ladepause Configuration File
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (LADEPAUSE_SCAN_AREA, LADEPAUSE_OVERPASS_ENDPOINT, ...)
#   3. This config file
#   4. Built-in defaults
#
# Durations use Go syntax, e.g. "3m10s" or "12h0m0s".
# Area presets: germany, stuttgart. Set scan.bbox (south,west,north,east) to override.

`
	if err := os.WriteFile(path, append([]byte(header), yamlData...), 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
