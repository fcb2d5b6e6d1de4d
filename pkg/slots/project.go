package slots

import "github.com/vango-dev/splice/pkg/node"

// SlotTag is the tag of slot placeholder elements.
const SlotTag = "slot"

// Apply resolves every component's slots under root in place. Content
// forwarded past root is reported as unconsumed, as is any bucket a
// component never declares. All problems are collected into one
// *SlotsError.
func Apply(root *node.Node) error {
	_, forwarded, err := Project(root)

	var items []Unconsumed
	if se, ok := err.(*SlotsError); ok {
		items = append(items, se.Unconsumed...)
	}
	for _, e := range forwarded {
		items = append(items, Unconsumed{Name: e.Name, Kinds: kindsOf(e.Nodes)})
	}
	if len(items) == 0 {
		return nil
	}
	return newSlotsError(items)
}

// Project resolves slots bottom-up in the tree under n and returns the
// rewritten node together with the content n forwards to its enclosing
// component. Errors from every component are collected into one
// *SlotsError; projection continues past them.
func Project(n *node.Node) (*node.Node, []Entry, error) {
	p := &projector{}
	forwarded := p.visit(n)
	if len(p.unconsumed) > 0 {
		return n, forwarded, newSlotsError(p.unconsumed)
	}
	return n, forwarded, nil
}

type projector struct {
	unconsumed []Unconsumed
}

// visit projects every component under n, deepest first, and returns the
// entries forwarded out of n.
func (p *projector) visit(n *node.Node) []Entry {
	if n == nil {
		return nil
	}
	if n.Kind == node.KindComponent {
		return p.component(n)
	}

	var forwarded []Entry
	for _, c := range n.Children {
		forwarded = append(forwarded, p.visit(c)...)
	}
	if n.Kind == node.KindBlock {
		for _, c := range node.PayloadNodes(n.Payload) {
			forwarded = append(forwarded, p.visit(c)...)
		}
	}
	return forwarded
}

// component runs the Visit, Collect, Apply and Verify steps for one
// component and returns what its own template forwards to its parent.
func (p *projector) component(c *node.Node) []Entry {
	if c.Has(node.MarkerProjected) {
		return nil
	}

	// Visit: slot children first, then the body. Anything they forward
	// is offered to this component.
	var local []Entry
	for _, child := range c.Children {
		local = append(local, p.visit(child)...)
	}
	local = append(local, p.visit(c.Body)...)

	// Collect
	m := NewSlotMap()
	collect(m, c.Children)
	for _, e := range local {
		m.Add(e.Name, e.Nodes...)
	}

	// Apply
	a := &applier{slots: m}
	c.SetBody(a.fill(c.Body, true))

	// Verify
	for _, name := range m.Names() {
		nodes := m.Get(name)
		if len(nodes) == 0 {
			continue
		}
		var loc *node.Location
		if c.Body != nil {
			loc = c.Body.Origin()
		}
		p.unconsumed = append(p.unconsumed, Unconsumed{
			Component: c.Tag,
			Location:  loc,
			Name:      name,
			Kinds:     kindsOf(nodes),
		})
	}

	c.Children = nil
	c.Mark(node.MarkerProjected)
	return a.forwarded
}

// collect buckets a component's top-level slot children. Fragments are
// transparent; elements and components go to the bucket named by their
// slot attribute, which is removed; everything else goes to the default
// bucket.
func collect(m *SlotMap, children []*node.Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		switch child.Kind {
		case node.KindFragment:
			collect(m, child.Children)
		case node.KindElement, node.KindComponent:
			name, ok := child.AttrValue("slot")
			if !ok || name == "" {
				name = DefaultSlot
			}
			child.RemoveAttr("slot")
			child.Parent = nil
			m.Add(name, child)
		default:
			child.Parent = nil
			m.Add(DefaultSlot, child)
		}
	}
}

type applier struct {
	slots     *SlotMap
	forwarded []Entry
}

// fill searches n for slot placeholders and returns the node to put in
// its place. own is false inside nested components, where only content
// they received through slots is searched.
func (a *applier) fill(n *node.Node, own bool) *node.Node {
	if n == nil {
		return nil
	}
	if own && n.IsElement(SlotTag) {
		return a.replace(n)
	}

	switch n.Kind {
	case node.KindComponent:
		own = false
		n.SetBody(a.fill(n.Body, false))
	case node.KindFragment:
		if n.Has(node.MarkerSlotted) {
			own = true
		}
	case node.KindBlock:
		a.fillPayload(n, own)
	}

	for i, c := range n.Children {
		r := a.fill(c, own)
		n.Children[i] = r
		if r != nil {
			r.Parent = n
		}
	}
	return n
}

func (a *applier) fillPayload(n *node.Node, own bool) {
	switch v := n.Payload.(type) {
	case *node.Node:
		if r := a.fill(v, own); r != nil {
			r.Parent = n
			n.Payload = r
		}
	case []*node.Node:
		for i, c := range v {
			if r := a.fill(c, own); r != nil {
				r.Parent = n
				v[i] = r
			}
		}
	}
}

// replace resolves one <slot> placeholder. Replacements are not searched
// again, except fallback content, which belongs to the same template.
func (a *applier) replace(slot *node.Node) *node.Node {
	name, ok := slot.AttrValue("name")
	if !ok || name == "" {
		name = DefaultSlot
	}

	// <slot name="x" slot="y"/> hands bucket x to the enclosing component as y.
	if target, ok := slot.AttrValue("slot"); ok {
		if target == "" {
			target = DefaultSlot
		}
		if nodes, _ := a.slots.Take(name); len(nodes) > 0 {
			a.forwarded = append(a.forwarded, Entry{Name: target, Nodes: nodes})
		}
		return &node.Node{Kind: node.KindFragment}
	}

	if nodes, ok := a.slots.Take(name); ok {
		frag := &node.Node{Kind: node.KindFragment, Markers: node.MarkerSlotted}
		frag.SetChildren(nodes)
		return frag
	}

	// Fallback content
	frag := &node.Node{Kind: node.KindFragment}
	frag.SetChildren(slot.Children)
	for i, c := range frag.Children {
		r := a.fill(c, true)
		frag.Children[i] = r
		if r != nil {
			r.Parent = frag
		}
	}
	return frag
}
