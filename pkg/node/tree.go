package node

// Walk visits n and its structural descendants in pre-order. Component
// bodies and block payloads are not visited; they belong to other
// invocation sites. Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// WalkAll is like Walk but also descends into component bodies and into
// *Node and []*Node block payloads.
func WalkAll(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		WalkAll(c, fn)
	}
	switch n.Kind {
	case KindComponent:
		WalkAll(n.Body, fn)
	case KindBlock:
		for _, c := range PayloadNodes(n.Payload) {
			WalkAll(c, fn)
		}
	}
}

// Count returns the number of nodes reachable through WalkAll for which
// pred returns true.
func Count(n *Node, pred func(*Node) bool) int {
	count := 0
	WalkAll(n, func(c *Node) bool {
		if pred(c) {
			count++
		}
		return true
	})
	return count
}

// PayloadNodes returns the nodes held by a block payload, if any.
func PayloadNodes(payload any) []*Node {
	switch v := payload.(type) {
	case *Node:
		if v != nil {
			return []*Node{v}
		}
	case []*Node:
		return v
	}
	return nil
}

// Clone returns a deep copy of n. The copy has no parent.
func Clone(n *Node) *Node {
	c := cloneNode(n, 0)
	if c != nil {
		c.Parent = nil
	}
	return c
}

func cloneNode(n *Node, deny Marker) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Markers &^= deny
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if n.Location != nil {
		loc := *n.Location
		c.Location = &loc
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = cloneNode(child, deny)
		}
	}
	c.Body = cloneNode(n.Body, deny)
	switch v := n.Payload.(type) {
	case *Node:
		c.Payload = cloneNode(v, deny)
	case []*Node:
		nodes := make([]*Node, len(v))
		for i, child := range v {
			nodes[i] = cloneNode(child, deny)
		}
		c.Payload = nodes
	}
	linkDirect(&c)
	return &c
}

// CopyOptions controls CopyInto.
type CopyOptions struct {
	// Deny lists markers stripped from every copied node.
	Deny Marker
	// Keep lists markers of the destination preserved across the copy.
	Keep Marker
}

// CopyInto overwrites dst with a deep copy of src. dst.Parent is never
// written: the copy cannot override the destination's existing place in
// its tree.
func CopyInto(dst, src *Node, opts CopyOptions) {
	kept := dst.Markers & opts.Keep
	parent := dst.Parent

	c := cloneNode(src, opts.Deny)
	*dst = *c
	dst.Parent = parent
	dst.Markers |= kept
	linkDirect(dst)
}

// linkDirect points the parent of every direct descendant at n.
func linkDirect(n *Node) {
	for _, c := range n.Children {
		if c != nil {
			c.Parent = n
		}
	}
	if n.Body != nil {
		n.Body.Parent = n
	}
	for _, c := range PayloadNodes(n.Payload) {
		if c != nil {
			c.Parent = n
		}
	}
}

// Relink recomputes parent pointers for the whole tree under root.
func Relink(root *Node) {
	WalkAll(root, func(n *Node) bool {
		linkDirect(n)
		return true
	})
}

// ReplaceChild replaces old with replacement in parent's children and
// reports whether old was found.
func ReplaceChild(parent, old, replacement *Node) bool {
	for i, c := range parent.Children {
		if c == old {
			parent.Children[i] = replacement
			if replacement != nil {
				replacement.Parent = parent
			}
			old.Parent = nil
			return true
		}
	}
	return false
}
