package node

import "fmt"

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(content string) *Node {
	return &Node{
		Kind: KindComment,
		Text: content,
	}
}

// Doctype creates a <!DOCTYPE html> node.
func Doctype() *Node {
	return &Node{Kind: KindDoctype}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	n := &Node{Kind: KindFragment}
	appendArgs(n, children)
	n.Attrs = nil
	return n
}

// Block creates a dynamic expression position {source}. The payload is the
// live value and is nil on templates.
func Block(source string, payload any) *Node {
	n := &Node{
		Kind:    KindBlock,
		Source:  source,
		Payload: payload,
	}
	if child, ok := payload.(*Node); ok && child != nil {
		child.Parent = n
	}
	return n
}

// Component creates a component invocation. props is the source of the
// props expression, body is the component's rendered tree (nil on
// templates) and args are the caller's slot children and attributes.
func Component(tag, props string, body *Node, args ...any) *Node {
	n := &Node{
		Kind:   KindComponent,
		Tag:    tag,
		Source: props,
	}
	appendArgs(n, args)
	n.SetBody(body)
	return n
}

// Located stamps loc onto n and returns n.
func Located(loc Location, n *Node) *Node {
	n.Location = &loc
	return n
}
