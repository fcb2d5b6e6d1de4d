package template

import (
	"github.com/vango-dev/splice/pkg/identity"
	"github.com/vango-dev/splice/pkg/node"
)

// Instance stamps loc onto a freshly built instance tree, assigns the
// identity of every dynamic site and marks it as an instance root.
func Instance(loc node.Location, root *node.Node) *node.Node {
	identity.Assign(root)
	root.Location = &loc
	root.Mark(node.MarkerInstanceRoot)
	return root
}

// Snippet stamps loc onto a hand-written or scanned template tree and
// assigns its identity. Payloads and bodies are dropped.
func Snippet(loc node.Location, root *node.Node) *node.Node {
	strip(root)
	identity.Assign(root)
	root.Location = &loc
	root.Mark(node.MarkerSnippetRoot)
	return root
}

// Extract returns the template of the invocation site rooted at inst: a
// copy with every payload, component body and pipeline marker removed.
// Nested invocation sites, which only live in bodies and payloads, are
// not part of the result.
func Extract(inst *node.Node) *node.Node {
	tmpl := node.Clone(inst)
	strip(tmpl)
	return tmpl
}

// ExtractAll returns one entry for every located node under inst, including
// those nested in component bodies and node payloads.
func ExtractAll(inst *node.Node) []Entry {
	var entries []Entry
	node.WalkAll(inst, func(n *node.Node) bool {
		if n.Location != nil {
			entries = append(entries, Entry{Location: *n.Location, Template: Extract(n)})
		}
		return true
	})
	return entries
}

// strip removes live data from the tree under root.
func strip(root *node.Node) {
	node.Walk(root, func(n *node.Node) bool {
		n.Payload = nil
		n.Body = nil
		n.Markers = 0
		for i := range n.Attrs {
			n.Attrs[i].Payload = nil
		}
		return true
	})
}
