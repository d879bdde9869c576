package pattern

import (
	"a11yscan/internal/atree"
)

// Confidence orders how strongly a detector believes a match is a true
// instance of its pattern. It is used for thresholding only.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	}
	return "unknown"
}

// ParseConfidence maps the wire names back to the ordinal. Unknown input
// falls back to low so config typos widen rather than silently narrow scans.
func ParseConfidence(s string) Confidence {
	switch s {
	case "medium":
		return ConfidenceMedium
	case "high":
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// DetectionMethod tags which strategy produced a match.
type DetectionMethod string

const (
	MethodExplicitMarker  DetectionMethod = "explicit-marker"
	MethodNativeConstruct DetectionMethod = "native-construct"
	MethodHeuristic       DetectionMethod = "heuristic"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule is one declarative pass/fail check against a Match. Check returning
// true means the rule is satisfied and no issue is raised. Rules must be pure
// over the match's already-resolved evidence; they never query the tree.
type Rule struct {
	ID         string
	Severity   Severity
	Check      func(*Match) bool
	Message    string
	Suggestion string
}

// Issue records one failed rule for one match.
type Issue struct {
	RuleID     string
	Severity   Severity
	Message    string
	Suggestion string
	Node       *atree.Node
}

// Match is one detected occurrence of a pattern. A detector creates it, a
// validator populates Issues exactly once; nothing else mutates it.
//
// Related nodes are references into the wider document and are not guaranteed
// to be inside the anchor's subtree (triggers usually are not). Scoped
// analysis therefore filters on the anchor alone.
type Match struct {
	Type       string
	Anchor     *atree.Node
	Confidence Confidence
	Method     DetectionMethod
	Related    map[string][]*atree.Node
	Metadata   map[string]any
	Issues     []Issue
}

// Detector scans a subtree for occurrences of one pattern type, in document
// order, without mutating the tree.
type Detector interface {
	DetectAll(root *atree.Node) []*Match
}

// Validator evaluates a pattern type's full rule set against one match.
type Validator interface {
	Validate(m *Match) []Issue
}

// Summary is a pure reduction over a result's matches.
type Summary struct {
	PatternsFound int
	Errors        int
	Warnings      int
	Info          int
}

// Result is the outcome of one analysis. Matches and issues are freshly
// allocated per call; nothing persists between analyses.
type Result struct {
	Summary  Summary
	Patterns []*Match
}

// EmptyResult is what a rejected or failed scan yields.
func EmptyResult() Result {
	return Result{Patterns: []*Match{}}
}

// Summarize recomputes a summary from scratch over the given matches.
func Summarize(patterns []*Match) Summary {
	s := Summary{PatternsFound: len(patterns)}
	for _, m := range patterns {
		for _, issue := range m.Issues {
			switch issue.Severity {
			case SeverityError:
				s.Errors++
			case SeverityWarning:
				s.Warnings++
			case SeverityInfo:
				s.Info++
			}
		}
	}
	return s
}
