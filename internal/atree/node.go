package atree

import (
	"fmt"
	"strings"
)

// NodeKind distinguishes element nodes from raw text nodes.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
)

// Node is one node of a parsed accessible tree. Nodes are built once by a
// Document and never mutated afterwards; identity is pointer identity.
type Node struct {
	doc      *Document
	parent   *Node
	children []*Node

	Kind NodeKind
	Tag  string // lowercase element name, "" for text nodes
	Text string // raw content for text nodes

	attrs map[string]string
	line  int
	col   int
}

func (n *Node) Document() *Document { return n.doc }

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns all child nodes, including text nodes, in document order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildElements returns element children only, in document order.
func (n *Node) ChildElements() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.Kind == KindElement {
			out = append(out, c)
		}
	}
	return out
}

// Siblings returns all element siblings of n (not just adjacent ones),
// excluding n itself, in document order.
func (n *Node) Siblings() []*Node {
	if n == nil || n.parent == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.parent.children))
	for _, c := range n.parent.children {
		if c != n && c.Kind == KindElement {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the attribute value and whether the attribute is present.
// Attribute names are matched case-insensitively.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.attrs == nil {
		return "", false
	}
	v, ok := n.attrs[strings.ToLower(name)]
	return v, ok
}

func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

func (n *Node) ID() string { return n.AttrValue("id") }

// ClassList returns the whitespace-separated class tokens.
func (n *Node) ClassList() []string {
	return strings.Fields(n.AttrValue("class"))
}

// HasClassToken reports whether the class attribute contains token,
// compared case-insensitively.
func (n *Node) HasClassToken(token string) bool {
	token = strings.ToLower(token)
	for _, c := range n.ClassList() {
		if strings.ToLower(c) == token {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text, whitespace-normalized.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.collectText(&b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (n *Node) collectText(b *strings.Builder) {
	if n.Kind == KindText {
		b.WriteString(n.Text)
		b.WriteString(" ")
		return
	}
	for _, c := range n.children {
		c.collectText(b)
	}
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Path renders a selector-like location for reporting, e.g.
// "html > body > div#cart". Text nodes report their parent's path.
func (n *Node) Path() string {
	if n == nil {
		return ""
	}
	if n.Kind == KindText {
		return n.parent.Path()
	}
	segments := []string{}
	for cur := n; cur != nil && cur.Kind == KindElement; cur = cur.parent {
		if cur.Tag == "#document" {
			break
		}
		seg := cur.Tag
		if id := cur.ID(); id != "" {
			seg = fmt.Sprintf("%s#%s", cur.Tag, id)
		} else if idx := cur.elementIndex(); idx > 0 {
			seg = fmt.Sprintf("%s:nth(%d)", cur.Tag, idx+1)
		}
		segments = append([]string{seg}, segments...)
	}
	return strings.Join(segments, " > ")
}

// elementIndex returns n's position among same-tag element siblings, or 0.
func (n *Node) elementIndex() int {
	if n.parent == nil {
		return 0
	}
	idx := 0
	for _, c := range n.parent.children {
		if c == n {
			return idx
		}
		if c.Kind == KindElement && c.Tag == n.Tag {
			idx++
		}
	}
	return 0
}

func (n *Node) Line() int   { return n.line }
func (n *Node) Column() int { return n.col }
