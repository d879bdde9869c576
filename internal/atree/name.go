package atree

import "strings"

// AccessibleName computes the element's accessible name following the
// labeling priority order: aria-labelledby references, aria-label, native
// control labeling, media alt text, title, visible text for links and
// buttons, then placeholder for form fields. Returns "" when nothing applies.
func AccessibleName(n *Node) string {
	if n == nil || n.Kind != KindElement {
		return ""
	}

	if name, ok := labelledByName(n); ok {
		return name
	}

	if label, ok := n.Attr("aria-label"); ok {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			return trimmed
		}
	}

	if name, ok := nativeLabelName(n); ok {
		return name
	}

	if n.Tag == "img" || n.Tag == "area" {
		// An empty alt is a deliberate statement and terminates the search.
		if alt, ok := n.Attr("alt"); ok {
			return strings.TrimSpace(alt)
		}
	}

	if title, ok := n.Attr("title"); ok {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			return trimmed
		}
	}

	if n.Tag == "a" || n.Tag == "button" || n.Tag == "summary" {
		if text := n.TextContent(); text != "" {
			return text
		}
	}

	if isFormField(n) {
		if placeholder, ok := n.Attr("placeholder"); ok {
			return strings.TrimSpace(placeholder)
		}
	}

	return ""
}

// HasAccessibleName reports whether AccessibleName yields a non-empty string.
func HasAccessibleName(n *Node) bool {
	return AccessibleName(n) != ""
}

// labelledByName resolves aria-labelledby id references. Each referenced
// element contributes its text content; contributions are space-joined.
func labelledByName(n *Node) (string, bool) {
	refs, ok := n.Attr("aria-labelledby")
	if !ok || n.doc == nil {
		return "", false
	}
	parts := make([]string, 0, 2)
	for _, id := range strings.Fields(refs) {
		target := n.doc.ByID(id)
		if target == nil {
			continue
		}
		if text := target.TextContent(); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// nativeLabelName resolves <label for=id> and wrapping <label> elements for
// form controls.
func nativeLabelName(n *Node) (string, bool) {
	if !isFormField(n) {
		return "", false
	}

	if id := n.ID(); id != "" && n.doc != nil {
		labels := FindByAttributeValue(n.doc.Root(), "for", id)
		for _, label := range labels {
			if label.Tag != "label" {
				continue
			}
			if text := label.TextContent(); text != "" {
				return text, true
			}
		}
	}

	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.Tag == "label" {
			if text := cur.TextContent(); text != "" {
				return text, true
			}
		}
	}

	return "", false
}

func isFormField(n *Node) bool {
	switch n.Tag {
	case "input", "select", "textarea", "meter", "output", "progress":
		return true
	}
	return false
}
