package atree

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

var cssLanguage = sitter.NewLanguage(tree_sitter_css.Language())

// IsVisible reports whether the element would render. It consults the hidden
// attribute, aria-hidden, inline style display/visibility declarations, the
// open state of native dialogs, and every ancestor.
func IsVisible(n *Node) bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	for cur := n; cur != nil && cur.Kind == KindElement; cur = cur.parent {
		if cur.Tag == "#document" {
			break
		}
		if hiddenInTree(cur) {
			return false
		}
	}
	return true
}

func hiddenInTree(n *Node) bool {
	if n.HasAttr("hidden") {
		return true
	}
	if strings.EqualFold(n.AttrValue("aria-hidden"), "true") {
		return true
	}
	if n.Tag == "input" && strings.EqualFold(n.AttrValue("type"), "hidden") {
		return true
	}
	// A native dialog renders nothing until opened.
	if n.Tag == "dialog" && !n.HasAttr("open") {
		return true
	}
	if style, ok := n.Attr("style"); ok {
		decls := styleDeclarations(style)
		if strings.EqualFold(decls["display"], "none") {
			return true
		}
		if strings.EqualFold(decls["visibility"], "hidden") {
			return true
		}
	}
	return false
}

// styleDeclarations parses an inline style attribute into a property map.
// Parse failures yield an empty map; visibility checks then see the element
// as rendered, which is the safe default for a reporting tool.
func styleDeclarations(style string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(style) == "" {
		return out
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(cssLanguage); err != nil {
		return out
	}

	// The css grammar parses stylesheets, so wrap the declaration list.
	source := []byte("x{" + style + "}")
	tree := parser.Parse(source, nil)
	if tree == nil {
		return out
	}
	defer tree.Close()

	collectDeclarations(tree.RootNode(), source, out)
	return out
}

func collectDeclarations(node *sitter.Node, source []byte, out map[string]string) {
	if node.Kind() == "declaration" {
		raw := string(source[node.StartByte():node.EndByte()])
		if name, value, ok := strings.Cut(raw, ":"); ok {
			key := strings.ToLower(strings.TrimSpace(name))
			if key != "" {
				out[key] = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
			}
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectDeclarations(node.Child(i), source, out)
	}
}

// IsFocusable reports whether the element can receive focus at all, whether
// natively or through a tabindex. Visibility is deliberately not consulted.
func IsFocusable(n *Node) bool {
	if n == nil || n.Kind != KindElement {
		return false
	}
	if n.HasAttr("disabled") {
		return false
	}
	if raw, ok := n.Attr("tabindex"); ok {
		if _, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return true
		}
	}
	if ce, ok := n.Attr("contenteditable"); ok && !strings.EqualFold(ce, "false") {
		return true
	}
	switch n.Tag {
	case "button", "select", "textarea", "iframe", "summary":
		return true
	case "input":
		return !strings.EqualFold(n.AttrValue("type"), "hidden")
	case "a", "area":
		return n.HasAttr("href")
	}
	return false
}

// FocusableDescendants returns all focusable elements below n in document
// order. No visibility filter is applied: content hidden pending activation
// still counts.
func FocusableDescendants(n *Node) []*Node {
	if n == nil {
		return nil
	}
	out := DescendantsMatching(n, IsFocusable)
	// DescendantsMatching includes the root; callers want strict descendants.
	if len(out) > 0 && out[0] == n {
		out = out[1:]
	}
	return out
}
