package atree

import "strings"

// implicitRoles maps tags whose role does not depend on context.
var implicitRoles = map[string]string{
	"article":  "article",
	"aside":    "complementary",
	"button":   "button",
	"datalist": "listbox",
	"dd":       "definition",
	"dialog":   "dialog",
	"dt":       "term",
	"fieldset": "group",
	"figure":   "figure",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"hr":       "separator",
	"li":       "listitem",
	"main":     "main",
	"menu":     "list",
	"nav":      "navigation",
	"ol":       "list",
	"optgroup": "group",
	"option":   "option",
	"progress": "progressbar",
	"select":   "combobox",
	"summary":  "button",
	"table":    "table",
	"tbody":    "rowgroup",
	"td":       "cell",
	"textarea": "textbox",
	"tfoot":    "rowgroup",
	"th":       "columnheader",
	"thead":    "rowgroup",
	"tr":       "row",
	"ul":       "list",
}

var inputRoles = map[string]string{
	"button":   "button",
	"checkbox": "checkbox",
	"email":    "textbox",
	"image":    "button",
	"number":   "spinbutton",
	"radio":    "radio",
	"range":    "slider",
	"reset":    "button",
	"search":   "searchbox",
	"submit":   "button",
	"tel":      "textbox",
	"text":     "textbox",
	"url":      "textbox",
}

// Role resolves the element's role: the first token of an explicit role
// attribute wins, otherwise the implicit role for the tag with
// context-sensitive exceptions. Returns "" when no role applies.
func Role(n *Node) string {
	if n == nil || n.Kind != KindElement {
		return ""
	}

	if explicit, ok := n.Attr("role"); ok {
		if tokens := strings.Fields(explicit); len(tokens) > 0 {
			return strings.ToLower(tokens[0])
		}
	}

	switch n.Tag {
	case "a", "area":
		if n.HasAttr("href") {
			return "link"
		}
		return ""
	case "img":
		// An explicitly empty alt marks decorative imagery.
		if alt, ok := n.Attr("alt"); ok && strings.TrimSpace(alt) == "" {
			return "presentation"
		}
		return "img"
	case "input":
		typ := strings.ToLower(n.AttrValue("type"))
		if typ == "" {
			typ = "text"
		}
		if typ == "hidden" {
			return ""
		}
		if role, ok := inputRoles[typ]; ok {
			return role
		}
		return "textbox"
	case "header":
		if !withinSectioningContent(n) {
			return "banner"
		}
		return ""
	case "footer":
		if !withinSectioningContent(n) {
			return "contentinfo"
		}
		return ""
	case "section":
		// A generic section is only a landmark once it carries a name.
		if HasAccessibleName(n) {
			return "region"
		}
		return ""
	case "form":
		if HasAccessibleName(n) {
			return "form"
		}
		return ""
	}

	if role, ok := implicitRoles[n.Tag]; ok {
		return role
	}
	return ""
}

func withinSectioningContent(n *Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Tag {
		case "article", "aside", "main", "nav", "section":
			return true
		}
	}
	return false
}
