package render

import (
	"testing"

	"github.com/vango-dev/splice/pkg/node"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"text plain", escapeHTML, "Hello, World!", "Hello, World!"},
		{"text empty", escapeHTML, "", ""},
		{"text markup", escapeHTML, `<a href="x">Tom & 'Jerry'</a>`, "&lt;a href=&quot;x&quot;&gt;Tom &amp; &#39;Jerry&#39;&lt;/a&gt;"},
		{"text keeps whitespace", escapeHTML, "a\n\tb", "a\n\tb"},
		{"text unicode", escapeHTML, "日本 <3", "日本 &lt;3"},
		{"attr quotes", escapeAttr, `say "hi"`, "say &quot;hi&quot;"},
		{"attr whitespace", escapeAttr, "a\nb\rc\td", "a&#10;b&#13;c&#9;d"},
		{"attr no double escape", escapeAttr, "&amp;", "&amp;amp;"},
		{"comment close", escapeComment, "a --> b", "a - -> b"},
		{"comment runs", escapeComment, "----", "- -- -"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscapeInTrees(t *testing.T) {
	tests := []struct {
		name string
		n    *node.Node
		want string
	}{
		{"text node", node.P("1 < 2"), "<p>1 &lt; 2</p>"},
		{"block payload", node.P(node.Block("v", "<b>")), "<p>&lt;b&gt;</p>"},
		{"static attr", node.Div(node.NewAttr("title", "a\"b")), `<div title="a&quot;b"></div>`},
		{"expr attr", node.Div(node.Expr("title", "t", "x\ny")), `<div title="x&#10;y"></div>`},
		{"comment", node.Comment(" -- "), "<!-- - - -->"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderToString(tt.n)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkEscapeHTML(b *testing.B) {
	s := `<script>alert("xss & more")</script> plain text follows`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		escapeHTML(s)
	}
}
