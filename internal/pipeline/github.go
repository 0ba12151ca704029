package pipeline

import (
	"fmt"
	"os"
	"strings"
)

// WriteGitHubSummary appends the before/after table to the job summary and
// the stats message to the step outputs. Unset variables are skipped.
func WriteGitHubSummary(getenv func(string) string, oldCount, newCount int, text Text) error {
	diff := newCount - oldCount

	if path := getenv("GITHUB_STEP_SUMMARY"); path != "" {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", text.SummaryTitle)
		fmt.Fprintf(&b, "%s\n\n", text.SummaryIntro)
		fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", text.SummaryKind, text.SummaryCount)
		fmt.Fprintf(&b, "| %s | %d |\n", text.SummaryBefore, oldCount)
		fmt.Fprintf(&b, "| %s | %d |\n", text.SummaryAfter, newCount)
		fmt.Fprintf(&b, "| %s | **%+d** |\n", text.SummaryDiff, diff)
		if err := appendFile(path, b.String()); err != nil {
			return fmt.Errorf("write step summary: %w", err)
		}
	}

	if path := getenv("GITHUB_OUTPUT"); path != "" {
		line := "stats_msg=" + fmt.Sprintf(text.StatsMessage, newCount, diff) + "\n"
		if err := appendFile(path, line); err != nil {
			return fmt.Errorf("write step output: %w", err)
		}
	}
	return nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
