// Package splicetest provides testing helpers for code that builds
// templates and instances.
//
// A Fixture pairs each invocation site with a BuildFunc producing either
// its template shape or a live instance, so the two never drift apart.
//
// # Quick Start
//
//	func card(live bool) *node.Node {
//	    return node.Div(node.Slot(), node.Block("footer", splicetest.Live(live, "f")))
//	}
//
//	func TestCard(t *testing.T) {
//	    fx := splicetest.New("app").Site(cardLoc, card)
//	    html := splicetest.Resolve(t, fx.Engine(), fx.Instance(cardLoc))
//	    if html != "<div>f</div>" {
//	        t.Errorf("got %q", html)
//	    }
//	}
//
// # Render Assertions
//
//	splicetest.ExpectHTML(t, inst, `<div class="card">hi</div>`)
//	splicetest.ExpectNotContains(t, inst, "<slot")
//	splicetest.ExpectCode(t, err, "E110")
package splicetest
