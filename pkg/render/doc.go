// Package render serializes resolved node trees to HTML.
//
// It is the last stage of the splice pipeline: once an instance has been
// reconciled and its slots projected, the tree contains only elements, text,
// fragments, blocks carrying live payloads and components carrying bodies.
//
//   - Text and block payloads are escaped
//   - Void elements render without a closing tag, self-closing ones as <tag/>
//   - Blocks render their payload: nodes, strings, numbers or Stringers
//   - Components render their body; slot children never reach the output
//   - Expression attributes render their payload, spreads expand maps in key order
//
// # Basic Usage
//
//	html, err := render.RenderToString(resolved)
//
// To stream HTML to a writer:
//
//	renderer := render.NewRenderer(render.RendererConfig{Pretty: true})
//	err := renderer.RenderToWriter(w, resolved)
//
// # Preview Pages
//
// RenderPage wraps a tree in a minimal document. StreamingRenderer does the
// same and flushes after each section when writing to an http.ResponseWriter.
//
// # Strict Mode
//
// With RendererConfig.Strict, leftover <slot> placeholders and components
// without a body are reported instead of silently dropped.
package render
