package splicetest

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/engine"
	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/render"
	"github.com/vango-dev/splice/pkg/template"
)

// BuildFunc builds the tree of one invocation site. With live false it
// must return the template shape: no payloads and no component bodies.
// With live true it returns an instance of the same shape.
type BuildFunc func(live bool) *node.Node

// Fixture holds template/instance pairs keyed by location.
type Fixture struct {
	root  string
	sites map[node.Location]BuildFunc
	order []node.Location
	opts  []engine.Option
}

// New creates an empty fixture owning templates under root.
//
// Example:
//
//	fx := splicetest.New("app").
//	    Site(cardLoc, card).
//	    Site(pageLoc, page)
//	html := splicetest.Resolve(t, fx.Engine(), fx.Instance(pageLoc))
func New(root string) *Fixture {
	return &Fixture{root: root, sites: make(map[node.Location]BuildFunc)}
}

// Site registers build for loc. Registering a location twice replaces it.
func (f *Fixture) Site(loc node.Location, build BuildFunc) *Fixture {
	if _, ok := f.sites[loc]; !ok {
		f.order = append(f.order, loc)
	}
	f.sites[loc] = build
	return f
}

// WithOptions adds engine options used by Engine.
func (f *Fixture) WithOptions(opts ...engine.Option) *Fixture {
	f.opts = append(f.opts, opts...)
	return f
}

// Registry returns a registry holding the template of every site.
func (f *Fixture) Registry() *template.Registry {
	reg := template.NewRegistry(f.root)
	for _, loc := range f.order {
		reg.Register(loc, template.Snippet(loc, f.sites[loc](false)))
	}
	return reg
}

// Engine returns an engine over a fresh Registry.
func (f *Fixture) Engine() *engine.Engine {
	return engine.New(f.Registry(), f.opts...)
}

// Instance returns a new live instance of the site at loc. It panics if
// loc was never registered.
func (f *Fixture) Instance(loc node.Location) *node.Node {
	build, ok := f.sites[loc]
	if !ok {
		panic("splicetest: no site at " + loc.String())
	}
	return template.Instance(loc, build(true))
}

// Live returns x when live is set and nil otherwise. It keeps payloads out
// of template shapes in BuildFuncs.
func Live(live bool, x any) any {
	if live {
		return x
	}
	return nil
}

// Loc parses "file:line:col" and panics on malformed input.
func Loc(s string) node.Location {
	loc, err := node.ParseLocation(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// RenderToString renders n and returns the HTML string, or "" if
// rendering fails.
func RenderToString(n *node.Node) string {
	html, err := render.RenderToString(n)
	if err != nil {
		return ""
	}
	return html
}

// Resolve resolves inst with eng and returns its HTML. Any error fails
// the test.
func Resolve(t testing.TB, eng *engine.Engine, inst *node.Node) string {
	t.Helper()
	html, err := eng.Render(context.Background(), inst)
	if err != nil {
		t.Fatalf("resolve %s: %v", locationOf(inst), err)
	}
	return html
}

// ExpectHTML asserts that n renders exactly to want.
func ExpectHTML(t testing.TB, n *node.Node, want string) {
	t.Helper()
	if got := RenderToString(n); got != want {
		t.Errorf("rendered output mismatch\n got: %s\nwant: %s", truncate(got, 500), truncate(want, 500))
	}
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t testing.TB, n *node.Node, expected string) {
	t.Helper()
	html := RenderToString(n)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
//
// Example:
//
//	splicetest.ExpectNotContains(t, inst, "<slot")
func ExpectNotContains(t testing.TB, n *node.Node, unexpected string) {
	t.Helper()
	html := RenderToString(n)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, n *node.Node, tag string) {
	t.Helper()
	html := RenderToString(n)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t testing.TB, n *node.Node, attr, value string) {
	t.Helper()
	html := RenderToString(n)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectCode asserts that err carries the error code.
func ExpectCode(t testing.TB, err error, code string) {
	t.Helper()
	if !errors.HasCode(err, code) {
		t.Errorf("expected error %s, got %v", code, err)
	}
}

func locationOf(n *node.Node) string {
	if n == nil || n.Location == nil {
		return "<unlocated>"
	}
	return n.Location.String()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
