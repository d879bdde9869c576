package output

import (
	"encoding/json"

	"a11yscan/internal/engine/pattern"
	"a11yscan/internal/shared/util"
)

// Report is the stable serializable result shape. Field names are part of
// the output contract; renames break downstream consumers.
type Report struct {
	Summary  SummaryReport   `json:"summary"`
	Patterns []PatternReport `json:"patterns"`
}

type SummaryReport struct {
	PatternsFound int `json:"patternsFound"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Info          int `json:"info"`
}

type PatternReport struct {
	Type            string              `json:"type"`
	Confidence      string              `json:"confidence"`
	DetectionMethod string              `json:"detectionMethod"`
	Element         string              `json:"element"`
	Issues          []IssueReport       `json:"issues"`
	RelatedElements map[string][]string `json:"relatedElements"`
	Metadata        map[string]any      `json:"metadata"`
}

type IssueReport struct {
	RuleID     string `json:"ruleId"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Element    string `json:"element,omitempty"`
}

// BuildReport flattens an analysis result into the serializable shape.
// Nodes are rendered as selector-like paths.
func BuildReport(result pattern.Result) Report {
	report := Report{
		Summary: SummaryReport{
			PatternsFound: result.Summary.PatternsFound,
			Errors:        result.Summary.Errors,
			Warnings:      result.Summary.Warnings,
			Info:          result.Summary.Info,
		},
		Patterns: make([]PatternReport, 0, len(result.Patterns)),
	}

	for _, m := range result.Patterns {
		pr := PatternReport{
			Type:            m.Type,
			Confidence:      m.Confidence.String(),
			DetectionMethod: string(m.Method),
			Element:         m.Anchor.Path(),
			Issues:          make([]IssueReport, 0, len(m.Issues)),
			RelatedElements: make(map[string][]string, len(m.Related)),
			Metadata:        m.Metadata,
		}

		for _, issue := range m.Issues {
			ir := IssueReport{
				RuleID:     issue.RuleID,
				Severity:   string(issue.Severity),
				Message:    issue.Message,
				Suggestion: issue.Suggestion,
			}
			if issue.Node != nil {
				ir.Element = issue.Node.Path()
			}
			pr.Issues = append(pr.Issues, ir)
		}

		for _, key := range util.SortedStringKeys(m.Related) {
			paths := make([]string, 0, len(m.Related[key]))
			for _, n := range m.Related[key] {
				paths = append(paths, n.Path())
			}
			pr.RelatedElements[key] = paths
		}

		report.Patterns = append(report.Patterns, pr)
	}

	return report
}

// WriteJSON writes the report to path, creating parent directories.
func WriteJSON(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileWithDirs(path, append(data, '\n'), 0o644)
}

// WriteReports writes a per-document report map keyed by source path.
func WriteReports(path string, reports map[string]Report) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileWithDirs(path, append(data, '\n'), 0o644)
}
