package render

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)

	// Attribute values additionally keep their whitespace literal.
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML escapes text and block payloads.
func escapeHTML(s string) string {
	return textEscaper.Replace(s)
}

// escapeAttr escapes attribute values.
func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// escapeComment keeps comment text from closing the comment early.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}
