package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/splice/pkg/node"
)

func TestRenderText(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(node.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Hello, World!" {
		t.Errorf("got %q, want %q", html, "Hello, World!")
	}
}

func TestRenderTextEscaping(t *testing.T) {
	html, err := RenderToString(node.Text("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	n := node.Div(node.Class("container"),
		node.H1(node.Text("Title")),
		node.P(node.Text("Content")),
	)
	html, err := RenderToString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderVoidElements(t *testing.T) {
	tests := []struct {
		name string
		node *node.Node
		want string
	}{
		{
			name: "self-closing input",
			node: node.Input(node.Type("text"), node.NewAttr("name", "email")),
			want: `<input type="text" name="email"/>`,
		},
		{
			name: "self-closing br",
			node: node.Br(),
			want: `<br/>`,
		},
		{
			name: "void br",
			node: node.Element("br"),
			want: `<br>`,
		},
		{
			name: "void img",
			node: node.Element("img", node.NewAttr("src", "/a.png")),
			want: `<img src="/a.png">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if html != tt.want {
				t.Errorf("got %q, want %q", html, tt.want)
			}
		})
	}
}

func TestRenderAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs []node.Attr
		want  string
	}{
		{"key only", []node.Attr{node.Key("hidden")}, `<div hidden></div>`},
		{"value escaped", []node.Attr{node.NewAttr("title", `a "b" <c>`)}, `<div title="a &quot;b&quot; &lt;c&gt;"></div>`},
		{"expr string", []node.Attr{node.Expr("id", "id", "main")}, `<div id="main"></div>`},
		{"expr int", []node.Attr{node.Expr("data-n", "n", 42)}, `<div data-n="42"></div>`},
		{"expr nil omitted", []node.Attr{node.Expr("id", "id", nil)}, `<div></div>`},
		{"expr false omitted", []node.Attr{node.Expr("disabled", "off", false)}, `<div></div>`},
		{"boolean true", []node.Attr{node.Expr("disabled", "on", true)}, `<div disabled></div>`},
		{"non-boolean true", []node.Attr{node.Expr("data-x", "on", true)}, `<div data-x="true"></div>`},
		{
			"spread map in key order",
			[]node.Attr{node.Spread("rest", map[string]any{"role": "main", "aria-hidden": "true", "skip": nil})},
			`<div aria-hidden="true" role="main"></div>`,
		},
		{
			"spread attrs",
			[]node.Attr{node.Spread("rest", []node.Attr{node.ID("x"), node.Class("y")})},
			`<div id="x" class="y"></div>`,
		},
		{
			"source order",
			[]node.Attr{node.NewAttr("z", "1"), node.NewAttr("a", "2")},
			`<div z="1" a="2"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderToString(node.Div(tt.attrs))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if html != tt.want {
				t.Errorf("got %q, want %q", html, tt.want)
			}
		})
	}
}

func TestRenderSpreadUnsupported(t *testing.T) {
	_, err := RenderToString(node.Div(node.Spread("rest", 12)))
	if err == nil || !strings.Contains(err.Error(), "cannot spread int") {
		t.Errorf("error = %v", err)
	}
}

type stringer struct{}

func (stringer) String() string { return "<stringer>" }

func TestRenderBlockPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"nil", nil, `<p></p>`},
		{"string escaped", "a & b", `<p>a &amp; b</p>`},
		{"int", 7, `<p>7</p>`},
		{"float", 1.5, `<p>1.5</p>`},
		{"bool", true, `<p></p>`},
		{"stringer", stringer{}, `<p>&lt;stringer&gt;</p>`},
		{"strings", []string{"a", "<b>"}, `<p>a&lt;b&gt;</p>`},
		{"node", node.Span("x"), `<p><span>x</span></p>`},
		{"nodes", []*node.Node{node.Span("x"), node.Text("y")}, `<p><span>x</span>y</p>`},
		{"mixed", []any{"a", 1, node.Br()}, `<p>a1<br/></p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderToString(node.P(node.Block("x", tt.payload)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if html != tt.want {
				t.Errorf("got %q, want %q", html, tt.want)
			}
		})
	}
}

func TestRenderFragment(t *testing.T) {
	n := node.Fragment(
		node.Span("a"),
		node.Fragment(node.Span("b"), node.Fragment("c")),
	)
	html, err := RenderToString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != `<span>a</span><span>b</span>c` {
		t.Errorf("got %q", html)
	}
}

func TestRenderComponent(t *testing.T) {
	body := node.Header(node.Slot())
	comp := node.Component("Layout", "{}", body, node.P("slot child"))

	html, err := RenderToString(node.Div(comp))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != `<div><header><slot></slot></header></div>` {
		t.Errorf("component should render its body only, got %q", html)
	}

	html, err = RenderToString(node.Component("Empty", "", nil))
	if err != nil || html != "" {
		t.Errorf("component without body = %q, %v", html, err)
	}
}

func TestRenderStrict(t *testing.T) {
	r := NewRenderer(RendererConfig{Strict: true})
	loc := node.NewLocation("app/page.go", 3, 1)

	_, err := r.RenderToString(node.Located(loc, node.Div(node.Slot())))
	if err == nil || !strings.Contains(err.Error(), "app/page.go:3:1") {
		t.Errorf("leftover slot error = %v", err)
	}

	_, err = r.RenderToString(node.Component("Card", "", nil))
	if err == nil || !strings.Contains(err.Error(), "Card") {
		t.Errorf("missing body error = %v", err)
	}
}

func TestRenderCommentAndDoctype(t *testing.T) {
	html, err := RenderToString(node.Fragment(node.Doctype(), node.Comment("a -- b")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != `<!DOCTYPE html><!--a - - b-->` {
		t.Errorf("got %q", html)
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	html, err := r.RenderToString(node.Div(node.P("x"), node.Span("y")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<div>\n  <p>x</p>\n  <span>y</span>\n</div>\n"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderNilNode(t *testing.T) {
	html, err := RenderToString(nil)
	if err != nil || html != "" {
		t.Errorf("nil node = %q, %v", html, err)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := RenderToString(&node.Node{Kind: node.Kind(99)})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestRenderToWriter(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(RendererConfig{})
	if err := r.RenderToWriter(&buf, node.Div("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "<div>x</div>" {
		t.Errorf("got %q", buf.String())
	}

	if err := r.RenderToWriter(failingWriter{}, node.Div("x")); err == nil {
		t.Error("write errors should propagate")
	}
}
