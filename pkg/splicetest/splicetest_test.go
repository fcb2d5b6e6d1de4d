package splicetest_test

import (
	"context"
	"testing"

	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/splicetest"
	"github.com/vango-dev/splice/pkg/template"
)

var (
	pageLoc = splicetest.Loc("app/page.go:12:2")
	cardLoc = splicetest.Loc("app/card.go:5:9")
)

func card(live bool) *node.Node {
	return node.Div(node.Class("card"), node.Slot(), node.Block("footer", splicetest.Live(live, "f")))
}

func page(live bool) *node.Node {
	var body *node.Node
	if live {
		body = template.Instance(cardLoc, card(true))
	}
	return node.Main(
		node.Component("Card", "{}", body, node.P(node.Block("msg", splicetest.Live(live, "hi")))),
	)
}

func fixture() *splicetest.Fixture {
	return splicetest.New("app").Site(cardLoc, card).Site(pageLoc, page)
}

func TestFixtureRegistry(t *testing.T) {
	reg := fixture().Registry()
	if reg.Len() != 2 || reg.Root() != "app" {
		t.Fatalf("registry has %d templates under %q", reg.Len(), reg.Root())
	}
	keys := reg.Keys()
	if keys[0] != cardLoc || keys[1] != pageLoc {
		t.Errorf("keys = %v", keys)
	}

	tmpl, _ := reg.Lookup(cardLoc)
	if !tmpl.Markers.Has(node.MarkerSnippetRoot) {
		t.Error("templates should be snippet roots")
	}
	// Template shapes carry no payloads.
	splicetest.ExpectHTML(t, tmpl, `<div class="card"><slot></slot></div>`)
}

func TestFixtureSiteReplaces(t *testing.T) {
	fx := fixture().Site(cardLoc, func(bool) *node.Node { return node.Span() })
	if fx.Registry().Len() != 2 {
		t.Error("re-registering a site should not add a template")
	}
	splicetest.ExpectHTML(t, fx.Instance(cardLoc), `<span></span>`)
}

func TestResolve(t *testing.T) {
	fx := fixture()
	inst := fx.Instance(pageLoc)
	html := splicetest.Resolve(t, fx.Engine(), inst)

	want := `<main><div class="card"><p>hi</p>f</div></main>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
	splicetest.ExpectHTML(t, inst, want)
	splicetest.ExpectContains(t, inst, "<p>hi</p>")
	splicetest.ExpectNotContains(t, inst, "<slot")
	splicetest.ExpectElement(t, inst, "main")
	splicetest.ExpectAttribute(t, inst, "class", "card")
}

func TestExpectCode(t *testing.T) {
	fx := splicetest.New("app").Site(cardLoc, card)
	eng := fx.Engine()

	// The page site is owned but was never registered.
	inst := template.Instance(pageLoc, page(true))
	_, err := eng.Resolve(context.Background(), inst)
	splicetest.ExpectCode(t, err, "E100")
}

func TestInstancePanicsOnUnknownSite(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	splicetest.New("app").Instance(pageLoc)
}

func TestLocPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	splicetest.Loc("nowhere")
}
