package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/splice/internal/artifact"
	"github.com/vango-dev/splice/internal/config"
	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/template"
)

var (
	pageLoc = node.NewLocation("app/page.go", 12, 2)
	cardLoc = node.NewLocation("app/card.go", 5, 9)
)

func card(footer any) *node.Node {
	return node.Div(node.Class("card"), node.Slot(), node.Block("footer", footer))
}

func page(body *node.Node, msg any) *node.Node {
	return node.Main(
		node.Component("Card", "{}", body, node.P(node.Block("msg", msg))),
	)
}

// project writes a template table and a splice.json into a temp dir and
// returns the config path.
func project(t *testing.T, tableName string) string {
	t.Helper()
	dir := t.TempDir()

	reg := template.NewRegistry("app")
	reg.Register(pageLoc, template.Snippet(pageLoc, page(nil, nil)))
	reg.Register(cardLoc, template.Snippet(cardLoc, card(nil)))
	if _, err := artifact.WriteFile(filepath.Join(dir, tableName), reg.Table()); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Root = "app"
	cfg.Templates = tableName
	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// instanceJSON returns a page instance fixture saying msg.
func instanceJSON(t *testing.T, msg string) []byte {
	t.Helper()
	body := template.Instance(cardLoc, card("f"))
	inst := template.Instance(pageLoc, page(body, msg))
	data, err := json.Marshal(inst)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func run(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestDecodeInstance(t *testing.T) {
	data := instanceJSON(t, "hi")
	inst, err := decodeInstance(data)
	if err != nil {
		t.Fatalf("decodeInstance() error = %v", err)
	}
	if inst.Location == nil || *inst.Location != pageLoc || !inst.Markers.Has(node.MarkerInstanceRoot) {
		t.Errorf("root = %v %v", inst.Location, inst.Markers)
	}
	comp := inst.Children[0]
	if comp.Parent != inst || comp.Body == nil || comp.Body.Parent != comp {
		t.Error("parent pointers should be rebuilt")
	}

	_, err = decodeInstance([]byte(`{"kind": "Element", "tag": "div"}`))
	if err == nil {
		t.Error("an instance without a location should be rejected")
	}
	_, err = decodeInstance([]byte(`{"kind": "Widget"}`))
	if err == nil {
		t.Error("an unknown kind should be rejected")
	}
}

func TestDecodeNodePayloads(t *testing.T) {
	data := []byte(`{
		"kind": "Element", "tag": "ul", "location": "app/list.go:1:1",
		"children": [
			{"kind": "Block", "source": "items", "payload": [
				{"kind": "Element", "tag": "li", "children": [{"kind": "Text", "text": "a"}]},
				{"kind": "Element", "tag": "li", "children": [{"kind": "Text", "text": "b"}]}
			]},
			{"kind": "Block", "source": "one", "payload": {"kind": "Text", "text": "c"}},
			{"kind": "Block", "source": "data", "payload": {"x": 1}}
		]
	}`)
	inst, err := decodeInstance(data)
	if err != nil {
		t.Fatalf("decodeInstance() error = %v", err)
	}
	items, ok := inst.Children[0].Payload.([]*node.Node)
	if !ok || len(items) != 2 || items[1].Parent != inst.Children[0] {
		t.Errorf("list payload = %#v", inst.Children[0].Payload)
	}
	if one, ok := inst.Children[1].Payload.(*node.Node); !ok || one.Text != "c" {
		t.Errorf("node payload = %#v", inst.Children[1].Payload)
	}
	if _, ok := inst.Children[2].Payload.(map[string]any); !ok {
		t.Errorf("plain object payload = %#v", inst.Children[2].Payload)
	}
}

func TestDecodeMixedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"node then value", `[{"kind": "Text", "text": "a"}, "b"]`},
		{"value then node", `["a", {"kind": "Text", "text": "b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"kind": "Element", "tag": "ul", "location": "app/list.go:1:1",
				"children": [{"kind": "Block", "source": "items", "payload": ` + tt.payload + `}]}`)
			if _, err := decodeInstance(data); err == nil {
				t.Error("a list mixing nodes and values should be rejected")
			}
		})
	}

	data := []byte(`{"kind": "Element", "tag": "ul", "location": "app/list.go:1:1",
		"children": [{"kind": "Block", "source": "items", "payload": ["a", "b"]}]}`)
	inst, err := decodeInstance(data)
	if err != nil {
		t.Fatalf("decodeInstance() error = %v", err)
	}
	if _, ok := inst.Children[0].Payload.([]any); !ok {
		t.Errorf("plain list payload = %#v", inst.Children[0].Payload)
	}
}

func TestInspectCommand(t *testing.T) {
	cfgPath := project(t, "templates.cbor.zst")

	out, err := run(t, nil, "inspect", "-c", cfgPath, "--keys")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"cbor+zstd", "Templates: 2", "app/card.go:5:9", "<main>", "expr#0"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, nil, "inspect", "-c", cfgPath, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var report inspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("inspect --json output: %v", err)
	}
	if report.Root != "app" || len(report.Templates) != 2 || len(report.Digest) != 64 {
		t.Errorf("report = %+v", report)
	}
}

func TestConvertCommand(t *testing.T) {
	cfgPath := project(t, "templates.json")
	dest := filepath.Join(filepath.Dir(cfgPath), "out.msgpack.lz4")

	out, err := run(t, nil, "convert", "-c", cfgPath, dest)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(out, "msgpack+lz4") {
		t.Errorf("convert output = %q", out)
	}
	table, _, err := artifact.ReadFile(dest)
	if err != nil || len(table.Templates) != 2 {
		t.Errorf("converted table = %v, %v", table, err)
	}

	_, err = run(t, nil, "convert", "-c", cfgPath)
	if !errors.HasCode(err, "E150") {
		t.Errorf("missing dest error = %v", err)
	}
}

func TestResolveCommand(t *testing.T) {
	cfgPath := project(t, "templates.msgpack")

	out, err := run(t, instanceJSON(t, "<hi>"), "resolve", "-c", cfgPath, "-")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	want := "<main><div class=\"card\"><p>&lt;hi&gt;</p>f</div></main>\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	fixture := filepath.Join(t.TempDir(), "page.json")
	if err := os.WriteFile(fixture, instanceJSON(t, "x"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, nil, "resolve", "-c", cfgPath, "--page", "--title", "T", fixture)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.Contains(out, "<title>T</title>") {
		t.Errorf("page output = %q", out)
	}

	_, err = run(t, []byte("{"), "resolve", "-c", cfgPath, "-")
	if !errors.HasCode(err, "E150") {
		t.Errorf("bad fixture error = %v", err)
	}
}

func TestTemplatesFlagWithoutConfig(t *testing.T) {
	cfgPath := project(t, "templates.json")
	table := filepath.Join(filepath.Dir(cfgPath), "templates.json")

	// The working directory of the test has no splice.json above it.
	out, err := run(t, nil, "inspect", "-t", table)
	if err != nil {
		t.Fatalf("inspect -t error = %v", err)
	}
	if !strings.Contains(out, "Templates: 2") {
		t.Errorf("output = %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, nil, "version", "--short")
	if err != nil || out != "dev\n" {
		t.Errorf("version = %q, %v", out, err)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfgPath := project(t, "templates.cbor")
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := newLogger(&bytes.Buffer{}, cfg)
	registry, info, err := loadRegistry(context.Background(), cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	promReg := prometheus.NewRegistry()
	s := &previewServer{
		engine:  newEngine(cfg, registry, logger, promReg),
		info:    info,
		logger:  logger,
		metrics: promReg,
	}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	return resp.StatusCode, b.String()
}

func post(t *testing.T, url string, body []byte) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var b bytes.Buffer
	b.ReadFrom(resp.Body)
	return resp.StatusCode, b.String()
}

func TestServeRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"healthz", "/healthz", http.StatusOK, "ok"},
		{"list", "/templates", http.StatusOK, `"app/card.go:5:9"`},
		{"one", "/templates/app/card.go:5:9", http.StatusOK, `"fingerprint"`},
		{"unknown", "/templates/app/nope.go:1:1", http.StatusNotFound, `"E100"`},
		{"malformed", "/templates/nope", http.StatusBadRequest, `"E150"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, srv.URL+tt.path)
			if status != tt.status || !strings.Contains(body, tt.want) {
				t.Errorf("GET %s = %d %q", tt.path, status, body)
			}
		})
	}
}

func TestServeResolve(t *testing.T) {
	srv := newTestServer(t)

	status, body := post(t, srv.URL+"/resolve", instanceJSON(t, "hi"))
	if status != http.StatusOK || body != `<main><div class="card"><p>hi</p>f</div></main>` {
		t.Errorf("POST /resolve = %d %q", status, body)
	}

	status, body = post(t, srv.URL+"/resolve?page=1&title=Preview", instanceJSON(t, "hi"))
	if status != http.StatusOK || !strings.Contains(body, "<title>Preview</title>") {
		t.Errorf("POST /resolve?page = %d %q", status, body)
	}

	status, body = post(t, srv.URL+"/resolve", []byte(`{"kind":"Element","tag":"p","location":"app/missing.go:1:1"}`))
	if status != http.StatusUnprocessableEntity || !strings.Contains(body, `"E100"`) {
		t.Errorf("unknown template = %d %q", status, body)
	}

	status, _ = post(t, srv.URL+"/resolve", []byte("nope"))
	if status != http.StatusBadRequest {
		t.Errorf("bad body status = %d", status)
	}

	_, metrics := get(t, srv.URL+"/metrics")
	if !strings.Contains(metrics, `splice_resolves_total{result="ok"} 2`) {
		t.Errorf("metrics missing resolve count:\n%s", metrics)
	}
}
