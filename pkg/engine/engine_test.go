package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/template"
)

var (
	pageLoc = node.NewLocation("app/page.go", 12, 2)
	cardLoc = node.NewLocation("app/card.go", 5, 9)
	// Outside the registry root, so instances pass through untouched.
	vendorLoc = node.NewLocation("vendor/lib.go", 3, 3)
)

func value(live bool, x any) any {
	if live {
		return x
	}
	return nil
}

// card is <div class="card"><slot/>{footer}</div>.
func card(live bool) *node.Node {
	return node.Div(node.Class("card"), node.Slot(), node.Block("footer", value(live, "f")))
}

// page is <main><Card><p>{msg}</p></Card></main>. The card body is only
// present on instances.
func page(live bool, msg string) *node.Node {
	var body *node.Node
	if live {
		body = template.Instance(cardLoc, card(true))
	}
	return node.Main(
		node.Component("Card", "{}", body, node.P(node.Block("msg", value(live, msg)))),
	)
}

// unownedCard invokes a card whose template is not registered.
func unownedCard(children ...any) *node.Node {
	return node.Component("Card", "{}", node.Div(node.Slot()), children...)
}

func newRegistry() *template.Registry {
	reg := template.NewRegistry("app")
	reg.Register(pageLoc, template.Snippet(pageLoc, page(false, "")))
	reg.Register(cardLoc, template.Snippet(cardLoc, card(false)))
	return reg
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *Metrics) {
	t.Helper()
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	opts = append([]Option{WithMetrics(m)}, opts...)
	return New(newRegistry(), opts...), m
}

func TestResolveEndToEnd(t *testing.T) {
	eng, m := newEngine(t)

	inst := template.Instance(pageLoc, page(true, "hi"))
	res, err := eng.Resolve(context.Background(), inst)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Root != inst || res.Stats.Resolved != 2 {
		t.Errorf("result = %+v", res)
	}

	html, err := eng.renderer.RenderToString(inst)
	if err != nil {
		t.Fatal(err)
	}
	want := `<main><div class="card"><p>hi</p>f</div></main>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}

	if got := testutil.ToFloat64(m.resolvesTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("resolves_total{ok} = %v", got)
	}
	if got := testutil.ToFloat64(m.nodesTotal.WithLabelValues("resolved")); got != 2 {
		t.Errorf("nodes_total{resolved} = %v", got)
	}
	if got := testutil.ToFloat64(m.templatesLoaded); got != 2 {
		t.Errorf("templates_loaded = %v", got)
	}
	if got := testutil.CollectAndCount(m.resolveDuration); got != 1 {
		t.Errorf("resolve_duration_seconds series = %d", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	eng, _ := newEngine(t)
	inst := template.Instance(pageLoc, page(true, "hi"))

	first, err := eng.Render(context.Background(), inst)
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Resolve(context.Background(), inst)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Resolved != 0 {
		t.Errorf("second pass resolved %d nodes", res.Stats.Resolved)
	}
	second, _ := eng.renderer.RenderToString(inst)
	if first != second {
		t.Errorf("output changed: %q -> %q", first, second)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		inst func() *node.Node
		code string
	}{
		{
			name: "no template for owned location",
			inst: func() *node.Node {
				return template.Instance(node.NewLocation("app/other.go", 1, 1), node.Div())
			},
			code: "E100",
		},
		{
			name: "instance provides an extra expression",
			inst: func() *node.Node {
				body := card(true)
				body.AppendChild(node.Block("extra", 1))
				return template.Instance(cardLoc, body)
			},
			code: "E102",
		},
		{
			name: "unconsumed slot",
			inst: func() *node.Node {
				return template.Instance(vendorLoc, unownedCard(node.Span(node.SlotAttr("nope"))))
			},
			code: "E110",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, m := newEngine(t)
			_, err := eng.Resolve(context.Background(), tt.inst())
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if got := testutil.ToFloat64(m.resolvesTotal.WithLabelValues(tt.code)); got != 1 {
				t.Errorf("resolves_total{%s} = %v", tt.code, got)
			}
		})
	}
}

func TestResolveCountsUnconsumed(t *testing.T) {
	eng, m := newEngine(t)
	root := template.Instance(vendorLoc, unownedCard(
		node.Span(node.SlotAttr("a")),
		node.Span(node.SlotAttr("b")),
	))

	if _, err := eng.Resolve(context.Background(), root); err == nil {
		t.Fatal("expected slots error")
	}
	if got := testutil.ToFloat64(m.unconsumedTotal); got != 2 {
		t.Errorf("unconsumed_slots_total = %v", got)
	}
}

func TestResolvePassThroughLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	eng, m := newEngine(t, WithLogger(logger))

	inst := template.Instance(vendorLoc, node.Div("x"))
	res, err := eng.Resolve(context.Background(), inst)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Stats.PassedThrough != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if !strings.Contains(buf.String(), "passing through") || !strings.Contains(buf.String(), "instance resolved") {
		t.Errorf("log output = %s", buf.String())
	}
	if got := testutil.ToFloat64(m.nodesTotal.WithLabelValues("passthrough")); got != 1 {
		t.Errorf("nodes_total{passthrough} = %v", got)
	}
}

func TestResolveCanceled(t *testing.T) {
	eng, m := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Resolve(ctx, template.Instance(pageLoc, page(true, "hi")))
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got := testutil.ToFloat64(m.resolvesTotal.WithLabelValues("canceled")); got != 1 {
		t.Errorf("resolves_total{canceled} = %v", got)
	}
}

func TestResolveBatch(t *testing.T) {
	eng, m := newEngine(t, WithWorkers(4))

	insts := make([]*node.Node, 20)
	for i := range insts {
		insts[i] = template.Instance(pageLoc, page(true, strings.Repeat("x", i)))
	}

	results, err := eng.ResolveBatch(context.Background(), insts)
	if err != nil {
		t.Fatalf("ResolveBatch() error = %v", err)
	}
	for i, res := range results {
		if res.Root != insts[i] || res.Stats.Resolved != 2 {
			t.Errorf("results[%d] = %+v", i, res)
		}
	}
	if got := testutil.ToFloat64(m.resolvesTotal.WithLabelValues("ok")); got != 20 {
		t.Errorf("resolves_total{ok} = %v", got)
	}
	if got := testutil.ToFloat64(m.batchesInFlight); got != 0 {
		t.Errorf("batches_in_flight = %v", got)
	}
}

func TestResolveBatchError(t *testing.T) {
	eng, _ := newEngine(t, WithWorkers(1))

	insts := []*node.Node{
		template.Instance(pageLoc, page(true, "a")),
		template.Instance(node.NewLocation("app/missing.go", 1, 1), node.Div()),
	}
	_, err := eng.ResolveBatch(context.Background(), insts)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "instance 1 (app/missing.go:1:1)") || !errors.HasCode(err, "E100") {
		t.Errorf("error = %v", err)
	}
}

func TestRender(t *testing.T) {
	eng, _ := newEngine(t)

	html, err := eng.Render(context.Background(), template.Instance(pageLoc, page(true, "<b>")))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if html != `<main><div class="card"><p>&lt;b&gt;</p>f</div></main>` {
		t.Errorf("got %q", html)
	}

	if _, err := eng.Render(context.Background(), template.Instance(node.NewLocation("app/x.go", 1, 1), node.Div())); err == nil {
		t.Error("Render should return resolve errors")
	}
}

func TestNilMetrics(t *testing.T) {
	eng := New(newRegistry())
	if _, err := eng.Resolve(context.Background(), template.Instance(pageLoc, page(true, "hi"))); err != nil {
		t.Fatalf("Resolve() without metrics error = %v", err)
	}
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("E104"), "E104"},
		{stderrors.New("plain"), "error"},
	}
	for _, tt := range tests {
		if got := resultLabel(tt.err); got != tt.want {
			t.Errorf("resultLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
