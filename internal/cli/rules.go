package cli

import (
	"fmt"
	"strings"

	"github.com/ladepause/ladepause/internal/classify"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active brand rules as YAML",
	Long: `Print the brand rules used for classification. The --rules flag wins over
scan.rules_file from the config file or LADEPAUSE_SCAN_RULES_FILE. With neither
set the built-in rules are printed; redirect the output to start a custom rules file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := rulesFile
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Scan.RulesFile
		}

		rules := classify.DefaultRules()
		if path != "" {
			loaded, err := classify.LoadRules(path)
			if err != nil {
				return err
			}
			rules = loaded
		}

		data, err := classify.MarshalRules(rules)
		if err != nil {
			return fmt.Errorf("marshal rules: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func joinPresets() string {
	return strings.Join(model.PresetNames(), ", ")
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML brand rules file to validate and print")
}
