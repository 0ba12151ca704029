package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ladepause", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Ladepause Configuration File") {
		t.Error("missing header comment")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Scan.Area != "germany" || cfg.Scan.Radius != 300 {
		t.Errorf("unexpected scan config: %+v", cfg.Scan)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestRulesCommand_PrintsDefaults(t *testing.T) {
	var out bytes.Buffer
	rulesCmd.SetOut(&out)
	defer rulesCmd.SetOut(nil)

	if err := rulesCmd.RunE(rulesCmd, nil); err != nil {
		t.Fatal(err)
	}

	rules, err := classify.ParseRules(out.Bytes())
	if err != nil {
		t.Fatalf("printed rules do not parse: %v", err)
	}
	if len(rules.Chargers) != len(classify.DefaultRules().Chargers) {
		t.Errorf("expected %d charger rules, got %d", len(classify.DefaultRules().Chargers), len(rules.Chargers))
	}
}

func TestRulesCommand_UsesConfiguredRulesFile(t *testing.T) {
	custom := classify.DefaultRules()
	custom.Chargers = custom.Chargers[:1]
	data, err := classify.MarshalRules(custom)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	viper.Set("scan.rules_file", path)
	defer viper.Set("scan.rules_file", "")

	var out bytes.Buffer
	rulesCmd.SetOut(&out)
	defer rulesCmd.SetOut(nil)

	if err := rulesCmd.RunE(rulesCmd, nil); err != nil {
		t.Fatal(err)
	}

	rules, err := classify.ParseRules(out.Bytes())
	if err != nil {
		t.Fatalf("printed rules do not parse: %v", err)
	}
	if len(rules.Chargers) != 1 {
		t.Errorf("expected the configured file's single charger rule, got %d", len(rules.Chargers))
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestRunMerge(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	os.WriteFile(a, []byte(`[{"lat":48.1,"lon":9.1,"title":"EnBW","food_id":null}]`), 0644)

	mergeOut = filepath.Join(dir, "data.json")
	defer func() { mergeOut = "data.json" }()

	if err := runMerge(mergeCmd, []string{a, filepath.Join(dir, "missing.json")}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if _, err := os.Stat(mergeOut); err != nil {
		t.Errorf("expected output file: %v", err)
	}

	if err := runMerge(mergeCmd, []string{filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error when no input could be read")
	}
}
