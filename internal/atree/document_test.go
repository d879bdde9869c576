package atree

import (
	"testing"
)

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := Parse("test.html", []byte(markup))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestParseBuildsTree(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="main" class="wrap outer"><p>Hello <b>world</b></p></div></body></html>`)

	div := doc.ByID("main")
	if div == nil {
		t.Fatal("expected element with id main")
	}
	if div.Tag != "div" {
		t.Errorf("expected tag div, got %q", div.Tag)
	}
	if !div.HasClassToken("outer") {
		t.Error("expected class token outer")
	}
	if div.HasClassToken("out") {
		t.Error("partial class token must not match")
	}
	if got := div.TextContent(); got != "Hello world" {
		t.Errorf("TextContent = %q, want %q", got, "Hello world")
	}

	p := div.ChildElements()
	if len(p) != 1 || p[0].Tag != "p" {
		t.Fatalf("expected one p child, got %v", p)
	}
	if p[0].Parent() != div {
		t.Error("parent link broken")
	}
}

func TestParseAttributes(t *testing.T) {
	doc := mustParse(t, `<div ID="x" Role="dialog" data-flag aria-label="Cart"></div>`)

	div := doc.ByID("x")
	if div == nil {
		t.Fatal("expected element with id x")
	}

	// Attribute lookup is case-insensitive on both sides.
	if got := div.AttrValue("ROLE"); got != "dialog" {
		t.Errorf("AttrValue(ROLE) = %q, want dialog", got)
	}
	if !div.HasAttr("data-flag") {
		t.Error("valueless attribute should be present")
	}
	if v := div.AttrValue("data-flag"); v != "" {
		t.Errorf("valueless attribute value = %q, want empty", v)
	}
	if div.HasAttr("missing") {
		t.Error("absent attribute reported present")
	}
	if got := div.AttrValue("aria-label"); got != "Cart" {
		t.Errorf("quoted attribute value = %q, want Cart", got)
	}
}

func TestByIDFirstWins(t *testing.T) {
	doc := mustParse(t, `<div id="dup" class="first"></div><div id="dup" class="second"></div>`)

	n := doc.ByID("dup")
	if n == nil {
		t.Fatal("expected element with id dup")
	}
	if !n.HasClassToken("first") {
		t.Error("duplicate id lookup should return the first element")
	}
	if doc.ByID("") != nil {
		t.Error("empty id must resolve to nil")
	}
	if doc.ByID("nope") != nil {
		t.Error("unknown id must resolve to nil")
	}
}

func TestContainsAndPath(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="outer"><span>a</span><span id="inner">b</span></div></body></html>`)

	outer := doc.ByID("outer")
	inner := doc.ByID("inner")
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if !outer.Contains(outer) {
		t.Error("containment includes the node itself")
	}
	if inner.Contains(outer) {
		t.Error("inner must not contain outer")
	}

	if got := inner.Path(); got != "html > body > div#outer > span#inner" {
		t.Errorf("Path = %q", got)
	}

	spans := outer.ChildElements()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if got := spans[1].Siblings(); len(got) != 1 || got[0] != spans[0] {
		t.Errorf("Siblings should return the other span, got %v", got)
	}
}

func TestPathDisambiguatesRepeatedTags(t *testing.T) {
	doc := mustParse(t, `<ul><li>a</li><li id="x">b</li></ul>`)

	n := doc.ByID("x")
	if got := n.Path(); got != "ul > li#x" {
		t.Errorf("Path = %q", got)
	}

	first := n.Siblings()[0]
	if got := first.Path(); got != "ul > li" {
		t.Errorf("Path = %q", got)
	}
}

func TestParseSkipsCommentsAndDoctype(t *testing.T) {
	doc := mustParse(t, "<!DOCTYPE html><!-- note --><div id=\"d\">text</div>")

	children := doc.Root().ChildElements()
	if len(children) != 1 || children[0].Tag != "div" {
		t.Fatalf("expected only the div element, got %v", children)
	}
}

func TestParseRecordsPositions(t *testing.T) {
	doc := mustParse(t, "<div>\n  <span id=\"s\">x</span>\n</div>")

	s := doc.ByID("s")
	if s.Line() != 2 {
		t.Errorf("Line = %d, want 2", s.Line())
	}
	if s.Column() != 3 {
		t.Errorf("Column = %d, want 3", s.Column())
	}
}

func TestFindByAttributeValue(t *testing.T) {
	doc := mustParse(t, `<form><label for="name">Name</label><input id="name"><label for="other">Other</label></form>`)

	labels := FindByAttributeValue(doc.Root(), "for", "name")
	if len(labels) != 1 {
		t.Fatalf("expected 1 match, got %d", len(labels))
	}
	if labels[0].Tag != "label" {
		t.Errorf("expected label, got %q", labels[0].Tag)
	}

	if got := FindByAttributeValue(nil, "for", "name"); got != nil {
		t.Errorf("nil root should yield nil, got %v", got)
	}
}

func TestDescendantsMatching(t *testing.T) {
	doc := mustParse(t, `<div id="root"><p>a</p><div><p>b</p></div></div>`)

	root := doc.ByID("root")
	ps := DescendantsMatching(root, func(n *Node) bool { return n.Tag == "p" })
	if len(ps) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(ps))
	}
	// Document order.
	if ps[0].TextContent() != "a" || ps[1].TextContent() != "b" {
		t.Errorf("expected document order, got %q then %q", ps[0].TextContent(), ps[1].TextContent())
	}

	all := DescendantsMatching(root, func(n *Node) bool { return true })
	if len(all) == 0 || all[0] != root {
		t.Error("matching root should be included first")
	}
}
