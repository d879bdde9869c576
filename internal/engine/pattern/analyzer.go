package pattern

import (
	"a11yscan/internal/atree"
)

// Options configure one analysis call.
type Options struct {
	// EnabledTypes limits analysis to the listed pattern types. Empty means
	// every registered type.
	EnabledTypes []string
	// MinConfidence drops matches below the threshold. Zero value means low.
	MinConfidence Confidence
	// IncludeSuggestions controls whether issues carry fix suggestions.
	IncludeSuggestions bool
}

// DefaultOptions returns the documented defaults: all types, low threshold,
// suggestions included.
func DefaultOptions() Options {
	return Options{
		MinConfidence:      ConfidenceLow,
		IncludeSuggestions: true,
	}
}

func (o Options) normalized() Options {
	if o.MinConfidence < ConfidenceLow {
		o.MinConfidence = ConfidenceLow
	}
	return o
}

func (o Options) typeEnabled(typeName string) bool {
	if len(o.EnabledTypes) == 0 {
		return true
	}
	for _, t := range o.EnabledTypes {
		if t == typeName {
			return true
		}
	}
	return false
}

// Analyzer drives detection and validation over a whole tree. It holds no
// per-scan state; a given tree and options always produce the same result.
type Analyzer struct {
	registry *Registry
}

func NewAnalyzer(registry *Registry) *Analyzer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Analyzer{registry: registry}
}

func (a *Analyzer) Registry() *Registry { return a.registry }

// Analyze runs every enabled pattern type over the tree: detect, validate,
// filter by confidence, then reduce into a summary. Detector or validator
// panics propagate to the caller; the scan session is the recovery boundary.
func (a *Analyzer) Analyze(root *atree.Node, opts Options) Result {
	opts = opts.normalized()
	patterns := make([]*Match, 0)

	for _, typeName := range a.registry.Types() {
		if !opts.typeEnabled(typeName) {
			continue
		}
		detector, validator, ok := a.registry.Lookup(typeName)
		if !ok {
			continue
		}
		for _, m := range detector.DetectAll(root) {
			m.Issues = validator.Validate(m)
			if !opts.IncludeSuggestions {
				for i := range m.Issues {
					m.Issues[i].Suggestion = ""
				}
			}
			if m.Confidence < opts.MinConfidence {
				continue
			}
			patterns = append(patterns, m)
		}
	}

	return Result{
		Summary:  Summarize(patterns),
		Patterns: patterns,
	}
}

// AnalyzeWithin runs a full analysis and keeps only matches whose anchor sits
// inside target's subtree. Related nodes deliberately do not participate in
// the containment test: a match whose trigger lives elsewhere still belongs
// to the target. The summary is recomputed from the filtered set, never
// derived by subtraction.
func (a *Analyzer) AnalyzeWithin(root, target *atree.Node, opts Options) Result {
	full := a.Analyze(root, opts)

	filtered := make([]*Match, 0, len(full.Patterns))
	for _, m := range full.Patterns {
		if target.Contains(m.Anchor) {
			filtered = append(filtered, m)
		}
	}

	return Result{
		Summary:  Summarize(filtered),
		Patterns: filtered,
	}
}
