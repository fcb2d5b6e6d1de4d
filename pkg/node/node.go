package node

import (
	"fmt"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindFragment  Kind = iota // Grouping without wrapper
	KindDoctype               // <!DOCTYPE html>
	KindComment               // <!-- comment -->
	KindText                  // Plain text node
	KindBlock                 // Dynamic expression, ie {value}
	KindElement               // <div>, <slot>, etc.
	KindComponent             // Nested component invocation
)

var kindNames = [...]string{
	KindFragment:  "Fragment",
	KindDoctype:   "Doctype",
	KindComment:   "Comment",
	KindText:      "Text",
	KindBlock:     "Block",
	KindElement:   "Element",
	KindComponent: "Component",
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("node: unknown kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("node: unknown kind %q", text)
}

// Tracker identifies one dynamic expression within a single traversal:
// its ordinal and the hash of its canonical source text.
type Tracker struct {
	Index uint32 `json:"index"`
	Hash  uint64 `json:"hash"`
}

// String returns the tracker as "#index:hash".
func (t Tracker) String() string {
	return fmt.Sprintf("#%d:%016x", t.Index, t.Hash)
}

// ExprIdx is the ordinal of a dynamic position, used to splice payloads
// back into a cloned template.
type ExprIdx uint32

// String returns the index as "expr#n".
func (i ExprIdx) String() string {
	return fmt.Sprintf("expr#%d", uint32(i))
}

// Marker is a set of bookkeeping flags attached to a node by the pipeline.
type Marker uint8

const (
	// MarkerSnippetRoot marks the root of a registered template.
	MarkerSnippetRoot Marker = 1 << iota
	// MarkerInstanceRoot marks the root of a live instance tree.
	MarkerInstanceRoot
	// MarkerResolved is set once a template has been applied to an instance.
	MarkerResolved
	// MarkerProjected is set once a component's slots have been applied.
	MarkerProjected
	// MarkerSlotted marks a fragment holding content projected from an
	// enclosing template.
	MarkerSlotted
)

var markerNames = []struct {
	m    Marker
	name string
}{
	{MarkerSnippetRoot, "SnippetRoot"},
	{MarkerInstanceRoot, "InstanceRoot"},
	{MarkerResolved, "Resolved"},
	{MarkerProjected, "Projected"},
	{MarkerSlotted, "Slotted"},
}

// Has reports whether all markers in o are set.
func (m Marker) Has(o Marker) bool {
	return m&o == o
}

// String returns the set markers joined with "|".
func (m Marker) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	for _, entry := range markerNames {
		if m.Has(entry.m) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, "|")
}

// Node is a template, instance or resolved tree node.
type Node struct {
	Kind        Kind    `json:"kind"`
	Tag         string  `json:"tag,omitempty"`      // Element or component tag
	Text        string  `json:"text,omitempty"`     // For KindText and KindComment
	Attrs       []Attr  `json:"attrs,omitempty"`    // Element attributes, component props
	Children    []*Node `json:"children,omitempty"` // Element/fragment children, component slot children
	SelfClosing bool    `json:"selfClosing,omitempty"`

	// Tracker and Idx identify block and component positions.
	Tracker Tracker `json:"tracker"`
	Idx     ExprIdx `json:"idx,omitempty"`
	// Source is the expression source used to compute the Tracker.
	Source string `json:"source,omitempty"`

	// Payload is the live value of a block (instances only).
	Payload any `json:"payload,omitempty"`
	// Body is the rendered tree of a component (instances only).
	Body *Node `json:"body,omitempty"`

	// Location is set on macro roots.
	Location *Location `json:"location,omitempty"`
	Markers  Marker    `json:"markers,omitempty"`

	// Parent is the containment back-pointer. It is never serialized.
	Parent *Node `json:"-" msgpack:"-" cbor:"-"`
}

// IsDynamic reports whether the node is a block or component position.
func (n *Node) IsDynamic() bool {
	return n != nil && (n.Kind == KindBlock || n.Kind == KindComponent)
}

// IsElement reports whether the node is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Kind == KindElement && n.Tag == tag
}

// Has reports whether the node carries all markers in m.
func (n *Node) Has(m Marker) bool {
	return n != nil && n.Markers.Has(m)
}

// Mark sets markers on the node.
func (n *Node) Mark(m Marker) {
	n.Markers |= m
}

// Unmark clears markers on the node.
func (n *Node) Unmark(m Marker) {
	n.Markers &^= m
}

// AttrValue returns the value of the first static attribute with the given key.
func (n *Node) AttrValue(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Key == key && a.Kind == AttrValue {
			return a.Value, true
		}
	}
	return "", false
}

// RemoveAttr removes all attributes with the given key and reports whether
// any were removed.
func (n *Node) RemoveAttr(key string) bool {
	kept := n.Attrs[:0]
	removed := false
	for _, a := range n.Attrs {
		if a.Key == key && a.Kind != AttrSpread {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	n.Attrs = kept
	return removed
}

// SetChildren replaces the children and links them to n.
func (n *Node) SetChildren(children []*Node) {
	n.Children = children
	for _, c := range children {
		if c != nil {
			c.Parent = n
		}
	}
}

// AppendChild appends children and links them to n.
func (n *Node) AppendChild(children ...*Node) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
}

// SetBody sets a component's rendered tree and links it to n.
func (n *Node) SetBody(body *Node) {
	n.Body = body
	if body != nil {
		body.Parent = n
	}
}

// Origin returns the Location of the closest located ancestor, including n.
func (n *Node) Origin() *Location {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Location != nil {
			return cur.Location
		}
	}
	return nil
}

// String returns a short description used in diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindElement:
		return "<" + n.Tag + ">"
	case KindComponent:
		return "<" + n.Tag + "/> " + n.Idx.String()
	case KindBlock:
		return "{" + n.Source + "} " + n.Idx.String()
	case KindText:
		return fmt.Sprintf("%q", n.Text)
	default:
		return n.Kind.String()
	}
}
