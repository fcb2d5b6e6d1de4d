package render

import (
	"fmt"
	"io"
	"testing"

	"github.com/vango-dev/splice/pkg/node"
)

func BenchmarkRenderSimple(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	n := node.Div(node.Class("card"),
		node.H1(node.Text("Title")),
		node.P(node.Text("Content")),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderer.RenderToString(n)
	}
}

func BenchmarkRenderLargeTree(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})

	items := make([]*node.Node, 1000)
	for i := range items {
		items[i] = node.Li(node.Text(fmt.Sprintf("Item %d", i)))
	}
	n := node.Ul(items)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderer.RenderToString(n)
	}
}

func BenchmarkRenderBlocks(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})

	blocks := make([]*node.Node, 100)
	for i := range blocks {
		blocks[i] = node.Span(node.Block("count", i), node.Expr("data-i", "i", i))
	}
	n := node.Div(blocks)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderer.RenderToString(n)
	}
}

func BenchmarkRenderToWriter(b *testing.B) {
	renderer := NewRenderer(RendererConfig{})
	n := node.Div(node.Class("card"), node.P(node.Text("Content")))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderer.RenderToWriter(io.Discard, n)
	}
}

func BenchmarkRenderPretty(b *testing.B) {
	renderer := NewRenderer(RendererConfig{Pretty: true})
	n := node.Div(node.Section(node.H2("Title"), node.P("Body")))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		renderer.RenderToString(n)
	}
}
