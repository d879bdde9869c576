package pattern

import (
	"strings"

	"a11yscan/internal/atree"
)

// TypeDialog identifies the dialog pattern type.
const TypeDialog = "dialog"

// Related-node keys produced by the dialog detector.
const (
	RelatedTriggers             = "triggers"
	RelatedDismissControls      = "dismissControls"
	RelatedOverlay              = "overlay"
	RelatedFocusableDescendants = "focusableDescendants"
)

var (
	dismissWords = []string{"close", "dismiss", "cancel"}
	overlayWords = []string{"backdrop", "overlay", "mask"}
)

// DialogDetector finds dialog occurrences in two high-confidence passes:
// explicit role markers first, then native <dialog> elements. A heuristic
// pass can be appended later without touching callers.
type DialogDetector struct{}

func NewDialogDetector() *DialogDetector { return &DialogDetector{} }

func (d *DialogDetector) DetectAll(root *atree.Node) []*Match {
	matches := make([]*Match, 0)

	// Pass 1: explicit role markers.
	for _, n := range atree.DescendantsMatching(root, hasExplicitDialogRole) {
		matches = append(matches, d.buildMatch(n, ConfidenceHigh, MethodExplicitMarker))
	}

	// Pass 2: native dialog elements. Pass criteria are disjoint in practice;
	// a node caught by both passes is reported by both.
	for _, n := range atree.DescendantsMatching(root, func(n *atree.Node) bool {
		return n.Tag == "dialog" && !n.HasAttr("role")
	}) {
		matches = append(matches, d.buildMatch(n, ConfidenceHigh, MethodNativeConstruct))
	}

	return matches
}

func hasExplicitDialogRole(n *atree.Node) bool {
	role, ok := n.Attr("role")
	if !ok {
		return false
	}
	tokens := strings.Fields(role)
	if len(tokens) == 0 {
		return false
	}
	first := strings.ToLower(tokens[0])
	return first == "dialog" || first == "alertdialog"
}

func (d *DialogDetector) buildMatch(anchor *atree.Node, conf Confidence, method DetectionMethod) *Match {
	dismiss := findDismissControls(anchor)
	overlay := findOverlay(anchor)

	related := map[string][]*atree.Node{
		RelatedTriggers:             findTriggers(anchor),
		RelatedDismissControls:      dismiss,
		RelatedFocusableDescendants: atree.FocusableDescendants(anchor),
	}
	if overlay != nil {
		related[RelatedOverlay] = []*atree.Node{overlay}
	} else {
		related[RelatedOverlay] = nil
	}

	unlabeled := 0
	for _, c := range dismiss {
		if !atree.HasAccessibleName(c) {
			unlabeled++
		}
	}

	// Everything a rule needs is resolved here and frozen into the match;
	// rule predicates stay pure over this evidence.
	metadata := map[string]any{
		"isModal":           strings.EqualFold(anchor.AttrValue("aria-modal"), "true"),
		"hasOverlay":        overlay != nil,
		"isAlert":           isAlertVariant(anchor),
		"hasAccessibleName": atree.HasAccessibleName(anchor),
		"initiallyVisible":  atree.IsVisible(anchor),
		"unlabeledDismiss":  unlabeled,
	}

	return &Match{
		Type:       TypeDialog,
		Anchor:     anchor,
		Confidence: conf,
		Method:     method,
		Related:    related,
		Metadata:   metadata,
	}
}

func isAlertVariant(anchor *atree.Node) bool {
	role, ok := anchor.Attr("role")
	if !ok {
		return false
	}
	tokens := strings.Fields(role)
	return len(tokens) > 0 && strings.EqualFold(tokens[0], "alertdialog")
}

// findTriggers collects nodes anywhere in the document that reference the
// anchor's id through aria-controls or data-target. Triggers typically live
// far outside the anchor's subtree.
func findTriggers(anchor *atree.Node) []*atree.Node {
	id := anchor.ID()
	doc := anchor.Document()
	if id == "" || doc == nil {
		return nil
	}

	seen := make(map[*atree.Node]bool)
	out := make([]*atree.Node, 0)

	add := func(nodes []*atree.Node) {
		for _, n := range nodes {
			if n == anchor || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}

	// aria-controls holds a space-separated id list.
	add(atree.DescendantsMatching(doc.Root(), func(n *atree.Node) bool {
		controls, ok := n.Attr("aria-controls")
		if !ok {
			return false
		}
		for _, ref := range strings.Fields(controls) {
			if ref == id {
				return true
			}
		}
		return false
	}))

	add(atree.FindByAttributeValue(doc.Root(), "data-target", id))
	add(atree.FindByAttributeValue(doc.Root(), "data-target", "#"+id))

	return out
}

// findDismissControls returns interactive descendants recognizable as
// dismissal affordances: dismissal vocabulary in their text, accessible name
// or class tokens, or an explicit data-dismiss marker.
func findDismissControls(anchor *atree.Node) []*atree.Node {
	controls := make([]*atree.Node, 0)
	for _, n := range atree.FocusableDescendants(anchor) {
		if n.HasAttr("data-dismiss") {
			controls = append(controls, n)
			continue
		}
		if matchesAnyWord(n.TextContent(), dismissWords) ||
			matchesAnyWord(atree.AccessibleName(n), dismissWords) ||
			classTokenInVocabulary(n, dismissWords) {
			controls = append(controls, n)
		}
	}
	return controls
}

// findOverlay picks the anchor's nearest element sibling carrying an
// overlay-vocabulary class token, scanning all siblings in both directions.
func findOverlay(anchor *atree.Node) *atree.Node {
	parent := anchor.Parent()
	if parent == nil {
		return nil
	}

	siblings := parent.Children()
	anchorIdx := -1
	for i, c := range siblings {
		if c == anchor {
			anchorIdx = i
			break
		}
	}
	if anchorIdx < 0 {
		return nil
	}

	var best *atree.Node
	bestDist := 0
	for i, c := range siblings {
		if i == anchorIdx || c.Kind != atree.KindElement {
			continue
		}
		if !classTokenInVocabulary(c, overlayWords) {
			continue
		}
		dist := anchorIdx - i
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best
}

func matchesAnyWord(text string, vocabulary []string) bool {
	lower := strings.ToLower(text)
	if lower == "" {
		return false
	}
	for _, word := range vocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func classTokenInVocabulary(n *atree.Node, vocabulary []string) bool {
	for _, token := range n.ClassList() {
		lower := strings.ToLower(token)
		for _, word := range vocabulary {
			if lower == word {
				return true
			}
		}
	}
	return false
}

// DialogRules is the dialog pattern's rule table. Order is part of the
// contract: issues surface in this order.
func DialogRules() []Rule {
	return []Rule{
		{
			ID:       "accessible-name",
			Severity: SeverityError,
			Check: func(m *Match) bool {
				return metaBool(m, "hasAccessibleName")
			},
			Message:    "dialog has no accessible name",
			Suggestion: "add aria-label or reference a heading with aria-labelledby",
		},
		{
			ID:       "dismiss-control-present",
			Severity: SeverityError,
			Check: func(m *Match) bool {
				return len(m.Related[RelatedDismissControls]) > 0
			},
			Message:    "dialog has no recognizable dismiss control",
			Suggestion: "provide a close button inside the dialog",
		},
		{
			ID:       "initially-hidden",
			Severity: SeverityWarning,
			Check: func(m *Match) bool {
				return !metaBool(m, "initiallyVisible")
			},
			Message:    "dialog is visible before activation",
			Suggestion: "hide the dialog until it is opened",
		},
		{
			ID:       "focusable-content",
			Severity: SeverityError,
			Check: func(m *Match) bool {
				return len(m.Related[RelatedFocusableDescendants]) > 0
			},
			Message:    "dialog contains no focusable content",
			Suggestion: "a dialog must contain at least one focusable element",
		},
		{
			ID:       "modal-flag-consistency",
			Severity: SeverityWarning,
			Check: func(m *Match) bool {
				// Only applies when an overlay was found.
				return !metaBool(m, "hasOverlay") || metaBool(m, "isModal")
			},
			Message:    "dialog has an overlay but does not declare itself modal",
			Suggestion: "set aria-modal=\"true\" on the dialog",
		},
		{
			ID:       "dismiss-control-labeled",
			Severity: SeverityError,
			Check: func(m *Match) bool {
				return metaInt(m, "unlabeledDismiss") == 0
			},
			Message:    "dialog dismiss control has no accessible name",
			Suggestion: "label icon-only close buttons with aria-label",
		},
	}
}

func metaBool(m *Match, key string) bool {
	v, _ := m.Metadata[key].(bool)
	return v
}

func metaInt(m *Match, key string) int {
	v, _ := m.Metadata[key].(int)
	return v
}
