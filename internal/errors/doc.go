// Package errors provides structured, actionable error messages for splice.
//
// Every failure the pipeline reports to a user is a *Error built from a
// registered code. The code maps to a short message, a longer explanation and
// a documentation URL; callers attach the invocation site, the diagnostic
// detail and a fix suggestion.
//
// # Error Categories
//
//   - template: registry lookups (missing or stale templates)
//   - reconcile: identity mismatches between a template and an instance
//   - slots: unconsumed slot content after projection
//   - config: splice.json / splice.yaml problems
//   - artifact: template table encoding, compression and fetching
//   - cli: command-line usage
//
// # Error Codes
//
//	E100-E109  template and reconcile
//	E110-E119  slots
//	E120-E129  config
//	E130-E139  artifact
//	E150-E159  cli
//
// # Usage
//
//	err := errors.New("E100").
//	    WithLocation("app/page.go", 15, 12).
//	    WithDetail("expected app/page.go:15:12, registry holds 3 templates").
//	    WithSuggestion("Regenerate the template table")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E100: No template for an owned location
//	//
//	//   app/page.go:15:12
//	//
//	//     13 │ func Page() *node.Node {
//	//     14 │     return template.Instance(here,
//	//   → 15 │         node.Div(node.Block("count", count)),
//	//        │            ^
//	//
//	//   Hint: Regenerate the template table
package errors
