package cli

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/ladepause/ladepause/internal/pipeline"
	"github.com/spf13/cobra"
)

var mergeOut string

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Merge match files from separate scans",
	Long: `Merge concatenates match files in the given order. Entries at the same
position (4 decimals, about 11 m) with the same title are kept once, so
regional scans with overlapping borders can be combined.

Missing files are reported and skipped.

Example:
  ladepause merge sachsen.json bayern.json -o data.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "data.json", "output JSON path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	merged, errs := pipeline.MergeFiles(args)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
	}
	if len(errs) == len(args) {
		return fmt.Errorf("none of the %d input files could be read", len(args))
	}

	if err := pipeline.RenderJSON(merged, mergeOut); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Merged %d files into %s: %s matches\n",
		len(args)-len(errs), mergeOut, humanize.Comma(int64(len(merged))))
	return nil
}
