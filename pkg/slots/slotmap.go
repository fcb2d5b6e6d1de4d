package slots

import "github.com/vango-dev/splice/pkg/node"

// DefaultSlot is the bucket of slot children without a slot attribute.
const DefaultSlot = "default"

// Entry is content forwarded to an enclosing component under Name.
type Entry struct {
	Name  string
	Nodes []*node.Node
}

// SlotMap buckets slot content by name. Names keep their first insertion
// order and content under one name keeps source order, so a name supplied
// twice concatenates.
type SlotMap struct {
	names   []string
	buckets map[string][]*node.Node
}

// NewSlotMap creates an empty SlotMap.
func NewSlotMap() *SlotMap {
	return &SlotMap{buckets: make(map[string][]*node.Node)}
}

// Add appends nodes to the named bucket.
func (m *SlotMap) Add(name string, nodes ...*node.Node) {
	if _, ok := m.buckets[name]; !ok {
		m.names = append(m.names, name)
	}
	m.buckets[name] = append(m.buckets[name], nodes...)
}

// Take removes and returns the named bucket.
func (m *SlotMap) Take(name string) ([]*node.Node, bool) {
	nodes, ok := m.buckets[name]
	if !ok {
		return nil, false
	}
	delete(m.buckets, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
	return nodes, true
}

// Get returns the named bucket without removing it.
func (m *SlotMap) Get(name string) []*node.Node {
	return m.buckets[name]
}

// Names returns the remaining bucket names in insertion order.
func (m *SlotMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of remaining buckets.
func (m *SlotMap) Len() int {
	return len(m.names)
}
