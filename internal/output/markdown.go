package output

import (
	"fmt"
	"strings"

	"a11yscan/internal/shared/util"
)

// RenderMarkdown produces a human-readable report for one or more scans.
func RenderMarkdown(reports map[string]Report) string {
	var b strings.Builder
	b.WriteString("# Accessibility pattern report\n\n")

	for _, source := range util.SortedStringKeys(reports) {
		report := reports[source]
		b.WriteString(fmt.Sprintf("## %s\n\n", source))
		b.WriteString(fmt.Sprintf(
			"%d pattern(s), %d error(s), %d warning(s), %d info\n\n",
			report.Summary.PatternsFound,
			report.Summary.Errors,
			report.Summary.Warnings,
			report.Summary.Info,
		))

		if len(report.Patterns) == 0 {
			b.WriteString("No patterns detected.\n\n")
			continue
		}

		for _, p := range report.Patterns {
			b.WriteString(fmt.Sprintf("### %s `%s`\n\n", p.Type, p.Element))
			b.WriteString(fmt.Sprintf("- confidence: %s\n", p.Confidence))
			b.WriteString(fmt.Sprintf("- detected via: %s\n", p.DetectionMethod))
			if len(p.Issues) == 0 {
				b.WriteString("- no issues\n\n")
				continue
			}
			b.WriteString("\n| rule | severity | message |\n|---|---|---|\n")
			for _, issue := range p.Issues {
				b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", issue.RuleID, issue.Severity, issue.Message))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// WriteMarkdown renders and writes the markdown report.
func WriteMarkdown(path string, reports map[string]Report) error {
	return util.WriteStringWithDirs(path, RenderMarkdown(reports), 0o644)
}
