package node

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// Element creates an element node. Arguments can be: nil, Attr, []Attr,
// *Node, []*Node, string.
func Element(tag string, args ...any) *Node {
	n := &Node{Kind: KindElement, Tag: tag}
	appendArgs(n, args)
	return n
}

// SelfClosing creates a self-closing element, ie <br/>.
func SelfClosing(tag string, attrs ...Attr) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, SelfClosing: true}
}

func appendArgs(n *Node, args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			n.Attrs = append(n.Attrs, v)

		case []Attr:
			n.Attrs = append(n.Attrs, v...)

		case *Node:
			if v != nil {
				n.AppendChild(v)
			}

		case []*Node:
			n.AppendChild(v...)

		case string:
			// Shorthand for text node
			n.AppendChild(Text(v))
		}
	}
}

// Document structure elements

func HTML(args ...any) *Node { return Element("html", args...) }
func Head(args ...any) *Node { return Element("head", args...) }
func Body(args ...any) *Node { return Element("body", args...) }
func Main(args ...any) *Node { return Element("main", args...) }

// Content sectioning

func Header(args ...any) *Node  { return Element("header", args...) }
func Footer(args ...any) *Node  { return Element("footer", args...) }
func Nav(args ...any) *Node     { return Element("nav", args...) }
func Section(args ...any) *Node { return Element("section", args...) }
func H1(args ...any) *Node      { return Element("h1", args...) }
func H2(args ...any) *Node      { return Element("h2", args...) }

// Text content

func Div(args ...any) *Node  { return Element("div", args...) }
func P(args ...any) *Node    { return Element("p", args...) }
func Span(args ...any) *Node { return Element("span", args...) }
func Ul(args ...any) *Node   { return Element("ul", args...) }
func Li(args ...any) *Node   { return Element("li", args...) }
func A(args ...any) *Node    { return Element("a", args...) }

// Void elements

func Br() *Node                 { return SelfClosing("br") }
func Hr() *Node                 { return SelfClosing("hr") }
func Input(attrs ...Attr) *Node { return SelfClosing("input", attrs...) }
func Img(attrs ...Attr) *Node   { return SelfClosing("img", attrs...) }

// Slot creates a <slot> placeholder. Children are rendered as fallback
// content when the caller supplies nothing for the slot.
func Slot(args ...any) *Node { return Element("slot", args...) }
