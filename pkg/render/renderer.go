package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vango-dev/splice/pkg/node"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// Strict makes unresolved positions an error: slot placeholders and
	// components whose body was never filled in.
	Strict bool
}

// Renderer serializes resolved node trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a node tree to an HTML string.
func (r *Renderer) RenderToString(n *node.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, n *node.Node) error {
	return r.renderNode(w, n, 0)
}

// RenderToString renders n with the default configuration.
func RenderToString(n *node.Node) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(n)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, n *node.Node, depth int) error {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case node.KindElement:
		return r.renderElement(w, n, depth)
	case node.KindText:
		return r.renderText(w, n)
	case node.KindFragment:
		return r.renderChildren(w, n.Children, depth)
	case node.KindBlock:
		return r.renderPayload(w, n.Payload, depth)
	case node.KindComponent:
		return r.renderComponent(w, n, depth)
	case node.KindComment:
		_, err := fmt.Fprintf(w, "<!--%s-->", escapeComment(n.Text))
		return err
	case node.KindDoctype:
		_, err := io.WriteString(w, "<!DOCTYPE html>")
		return err
	default:
		return fmt.Errorf("unknown node kind: %d", n.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, n *node.Node, depth int) error {
	tag := n.Tag
	if r.config.Strict && tag == "slot" {
		return fmt.Errorf("unresolved <slot> placeholder in %s", originOf(n))
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, n.Attrs); err != nil {
		return err
	}

	switch {
	case n.SelfClosing:
		if _, err := io.WriteString(w, "/>"); err != nil {
			return err
		}
		r.newline(w)
		return nil
	case isVoidElement(tag):
		if _, err := io.WriteString(w, ">"); err != nil {
			return err
		}
		r.newline(w)
		return nil
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	hasBlockChildren := !isInlineElement(tag) && hasElementChild(n)
	if r.config.Pretty && hasBlockChildren {
		io.WriteString(w, "\n")
	}
	if err := r.renderChildren(w, n.Children, depth+1); err != nil {
		return err
	}
	if r.config.Pretty && hasBlockChildren {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	r.newline(w)
	return nil
}

// renderText renders a text node with HTML escaping.
func (r *Renderer) renderText(w io.Writer, n *node.Node) error {
	_, err := io.WriteString(w, escapeHTML(n.Text))
	return err
}

func (r *Renderer) renderChildren(w io.Writer, children []*node.Node, depth int) error {
	for _, child := range children {
		if err := r.renderNode(w, child, depth); err != nil {
			return err
		}
	}
	return nil
}

// renderComponent renders a component's body. Slot children that were
// never projected are not output.
func (r *Renderer) renderComponent(w io.Writer, n *node.Node, depth int) error {
	if n.Body == nil {
		if r.config.Strict {
			return fmt.Errorf("component %s at %s has no body", n.Tag, originOf(n))
		}
		return nil
	}
	return r.renderNode(w, n.Body, depth)
}

// renderPayload renders the live value of a block.
func (r *Renderer) renderPayload(w io.Writer, payload any, depth int) error {
	switch v := payload.(type) {
	case nil:
		return nil
	case *node.Node:
		return r.renderNode(w, v, depth)
	case []*node.Node:
		return r.renderChildren(w, v, depth)
	case []string:
		for _, s := range v {
			if _, err := io.WriteString(w, escapeHTML(s)); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range v {
			if err := r.renderPayload(w, item, depth); err != nil {
				return err
			}
		}
		return nil
	case bool:
		// false and true render nothing, so conditions can sit in blocks
		return nil
	default:
		_, err := io.WriteString(w, escapeHTML(attrToString(v)))
		return err
	}
}

// renderAttributes renders attributes in source order. Spread payloads
// that are maps are expanded in key order.
func (r *Renderer) renderAttributes(w io.Writer, attrs []node.Attr) error {
	for _, a := range attrs {
		switch a.Kind {
		case node.AttrKey:
			if _, err := fmt.Fprintf(w, " %s", a.Key); err != nil {
				return err
			}
		case node.AttrValue:
			if err := writeAttr(w, a.Key, a.Value); err != nil {
				return err
			}
		case node.AttrExpr:
			if err := writeValue(w, a.Key, a.Payload); err != nil {
				return err
			}
		case node.AttrSpread:
			if err := r.renderSpread(w, a.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) renderSpread(w io.Writer, payload any) error {
	switch v := payload.(type) {
	case nil:
		return nil
	case node.Attr:
		return r.renderAttributes(w, []node.Attr{v})
	case []node.Attr:
		return r.renderAttributes(w, v)
	case map[string]string:
		for _, key := range sortedKeys(v) {
			if err := writeAttr(w, key, v[key]); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if err := writeValue(w, key, v[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot spread %T as attributes", payload)
	}
}

// writeValue renders an expression attribute. nil and false omit it;
// true on a boolean attribute renders the bare name.
func writeValue(w io.Writer, key string, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return nil
		}
		if isBooleanAttr(key) {
			_, err := fmt.Fprintf(w, " %s", key)
			return err
		}
	}
	return writeAttr(w, key, attrToString(value))
}

func writeAttr(w io.Writer, key, value string) error {
	_, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(value))
	return err
}

// attrToString converts a payload value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasElementChild(n *node.Node) bool {
	for _, c := range n.Children {
		if c != nil && c.Kind != node.KindText {
			return true
		}
	}
	return false
}

func originOf(n *node.Node) string {
	if loc := n.Origin(); loc != nil {
		return loc.String()
	}
	return "unknown location"
}

func (r *Renderer) newline(w io.Writer) {
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
