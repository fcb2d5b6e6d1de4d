package render

import "github.com/vango-dev/splice/pkg/node"

func isVoidElement(tag string) bool {
	return node.IsVoidElement(tag)
}

// Phrasing elements stay on one line in pretty output.
var inlineElements = setOf(
	"a", "abbr", "b", "bdi", "bdo", "br", "cite", "code", "data", "dfn",
	"em", "i", "kbd", "mark", "q", "s", "samp", "small", "span", "strong",
	"sub", "sup", "time", "u", "var", "wbr",
)

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// booleanAttrs render as a bare name when their expression is true.
var booleanAttrs = setOf(
	"allowfullscreen", "async", "autofocus", "autoplay", "checked",
	"controls", "default", "defer", "disabled", "formnovalidate", "hidden",
	"inert", "ismap", "itemscope", "loop", "multiple", "muted", "nomodule",
	"novalidate", "open", "playsinline", "readonly", "required", "reversed",
	"selected",
)

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
