package identity

import "github.com/vango-dev/splice/pkg/node"

// Site is one dynamic position: a block, a component invocation or an
// expression attribute.
type Site struct {
	Node *node.Node
	// Attr is the index into Node.Attrs for attribute sites, -1 otherwise.
	Attr int
}

// IsAttr reports whether the site is an expression attribute.
func (s Site) IsAttr() bool {
	return s.Attr >= 0
}

// Content returns the source text hashed into the site's Tracker.
func (s Site) Content() string {
	if s.IsAttr() {
		return s.Node.Attrs[s.Attr].String()
	}
	if s.Node.Kind == node.KindComponent {
		return s.Node.Tag + " " + s.Node.Source
	}
	return "{" + s.Node.Source + "}"
}

// Tracker returns the Tracker currently stored at the site.
func (s Site) Tracker() node.Tracker {
	if s.IsAttr() {
		return s.Node.Attrs[s.Attr].Tracker
	}
	return s.Node.Tracker
}

// Idx returns the ExprIdx currently stored at the site.
func (s Site) Idx() node.ExprIdx {
	if s.IsAttr() {
		return s.Node.Attrs[s.Attr].Idx
	}
	return s.Node.Idx
}

// Kind names the site in diagnostics: "Block", "Component" or "Attr".
func (s Site) Kind() string {
	if s.IsAttr() {
		return "Attr"
	}
	return s.Node.Kind.String()
}

func (s Site) set(t node.Tracker, idx node.ExprIdx) {
	if s.IsAttr() {
		s.Node.Attrs[s.Attr].Tracker = t
		s.Node.Attrs[s.Attr].Idx = idx
		return
	}
	s.Node.Tracker = t
	s.Node.Idx = idx
}

// Walk visits every dynamic site under root in the one traversal order both
// producers share:
//
//   - nodes are visited in pre-order;
//   - an element's Expr and Spread attributes, in declaration order, come
//     before its children;
//   - a block is a site and its payload is never descended;
//   - a component is a site, followed by its slot children; its props are
//     part of the component's own content and its body is never descended.
//
// Returning false from fn for a node site skips that node's children.
func Walk(root *node.Node, fn func(Site) bool) {
	walk(root, fn)
}

func walk(n *node.Node, fn func(Site) bool) {
	if n == nil {
		return
	}

	switch n.Kind {
	case node.KindElement:
		for i, a := range n.Attrs {
			if a.IsDynamic() {
				fn(Site{Node: n, Attr: i})
			}
		}
	case node.KindBlock:
		fn(Site{Node: n, Attr: -1})
		return
	case node.KindComponent:
		if !fn(Site{Node: n, Attr: -1}) {
			return
		}
	}

	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Sites returns every dynamic site under root in traversal order.
func Sites(root *node.Node) []Site {
	var sites []Site
	Walk(root, func(s Site) bool {
		sites = append(sites, s)
		return true
	})
	return sites
}
