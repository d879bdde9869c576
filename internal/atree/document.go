package atree

import (
	"errors"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Document owns one parsed accessible tree. The engine only ever reads it;
// how the markup was obtained (file, live capture, driver snapshot) is the
// caller's concern.
type Document struct {
	Source string // origin label for reporting, e.g. a file path
	root   *Node
	byID   map[string]*Node
}

var htmlLanguage = sitter.NewLanguage(tree_sitter_html.Language())

// Parse builds a Document from raw markup. source labels the origin.
func Parse(source string, content []byte) (*Document, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(htmlLanguage); err != nil {
		return nil, err
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("markup parse failed")
	}
	defer tree.Close()

	doc := &Document{
		Source: source,
		byID:   make(map[string]*Node),
	}
	doc.root = &Node{doc: doc, Kind: KindElement, Tag: "#document"}
	buildChildren(doc, doc.root, tree.RootNode(), content)
	doc.indexIDs(doc.root)
	return doc, nil
}

func (d *Document) Root() *Node { return d.root }

// ByID returns the first element carrying the given id, or nil.
func (d *Document) ByID(id string) *Node {
	if d == nil || id == "" {
		return nil
	}
	return d.byID[id]
}

func (d *Document) indexIDs(n *Node) {
	if n.Kind == KindElement {
		if id := n.ID(); id != "" {
			if _, taken := d.byID[id]; !taken {
				d.byID[id] = n
			}
		}
	}
	for _, c := range n.children {
		d.indexIDs(c)
	}
}

func buildChildren(doc *Document, parent *Node, tsNode *sitter.Node, content []byte) {
	for i := uint(0); i < tsNode.ChildCount(); i++ {
		child := tsNode.Child(i)
		switch child.Kind() {
		case "element", "script_element", "style_element":
			if el := buildElement(doc, parent, child, content); el != nil {
				parent.children = append(parent.children, el)
			}
		case "text", "entity", "raw_text":
			raw := textOf(child, content)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			parent.children = append(parent.children, &Node{
				doc:    doc,
				parent: parent,
				Kind:   KindText,
				Text:   raw,
				line:   int(child.StartPosition().Row) + 1,
				col:    int(child.StartPosition().Column) + 1,
			})
		case "doctype", "comment", "erroneous_end_tag":
			// Not part of the accessible tree.
		default:
			// ERROR and other recovery nodes may still wrap real content.
			buildChildren(doc, parent, child, content)
		}
	}
}

func buildElement(doc *Document, parent *Node, tsNode *sitter.Node, content []byte) *Node {
	el := &Node{
		doc:    doc,
		parent: parent,
		Kind:   KindElement,
		attrs:  make(map[string]string),
		line:   int(tsNode.StartPosition().Row) + 1,
		col:    int(tsNode.StartPosition().Column) + 1,
	}

	for i := uint(0); i < tsNode.ChildCount(); i++ {
		child := tsNode.Child(i)
		switch child.Kind() {
		case "start_tag", "self_closing_tag":
			extractTag(el, child, content)
		case "end_tag", "erroneous_end_tag":
			// Structural only.
		case "element", "script_element", "style_element":
			if nested := buildElement(doc, el, child, content); nested != nil {
				el.children = append(el.children, nested)
			}
		case "text", "entity", "raw_text":
			raw := textOf(child, content)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			el.children = append(el.children, &Node{
				doc:    doc,
				parent: el,
				Kind:   KindText,
				Text:   raw,
				line:   int(child.StartPosition().Row) + 1,
				col:    int(child.StartPosition().Column) + 1,
			})
		}
	}

	if el.Tag == "" {
		return nil
	}
	return el
}

func extractTag(el *Node, tagNode *sitter.Node, content []byte) {
	for i := uint(0); i < tagNode.ChildCount(); i++ {
		child := tagNode.Child(i)
		switch child.Kind() {
		case "tag_name":
			el.Tag = strings.ToLower(textOf(child, content))
		case "attribute":
			name, value := extractAttribute(child, content)
			if name != "" {
				if _, dup := el.attrs[name]; !dup {
					el.attrs[name] = value
				}
			}
		}
	}
}

func extractAttribute(attrNode *sitter.Node, content []byte) (string, string) {
	var name, value string
	for i := uint(0); i < attrNode.ChildCount(); i++ {
		child := attrNode.Child(i)
		switch child.Kind() {
		case "attribute_name":
			name = strings.ToLower(textOf(child, content))
		case "attribute_value":
			value = textOf(child, content)
		case "quoted_attribute_value":
			for j := uint(0); j < child.ChildCount(); j++ {
				inner := child.Child(j)
				if inner.Kind() == "attribute_value" {
					value = textOf(inner, content)
				}
			}
		}
	}
	return name, value
}

func textOf(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
