package atree

// FindByAttributeValue returns all elements in root's subtree whose attribute
// exactly equals value, in document order. Malformed input (nil root, empty
// attribute name) yields an empty result, never an error.
func FindByAttributeValue(root *Node, attr, value string) []*Node {
	if root == nil || attr == "" {
		return nil
	}
	return DescendantsMatching(root, func(n *Node) bool {
		v, ok := n.Attr(attr)
		return ok && v == value
	})
}

// DescendantsMatching returns all elements in root's subtree (root included)
// for which pred returns true, in document order.
func DescendantsMatching(root *Node, pred func(*Node) bool) []*Node {
	if root == nil || pred == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == KindElement && n.Tag != "#document" && pred(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}
