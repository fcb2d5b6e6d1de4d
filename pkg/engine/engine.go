package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/splice/pkg/node"
	"github.com/vango-dev/splice/pkg/render"
	"github.com/vango-dev/splice/pkg/slots"
	"github.com/vango-dev/splice/pkg/template"
)

// Default tracer name for splice spans.
const defaultTracerName = "splice"

// Engine runs the full pipeline on instance trees: reconciliation against
// the registry, then slot projection.
type Engine struct {
	registry   *template.Registry
	reconciler *template.Reconciler
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	renderer   *render.Renderer

	tracerName string
	workers    int
	shapeCheck bool
	renderCfg  render.RendererConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics makes the engine report to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracerName sets the tracer name (default: "splice"). The tracer comes
// from the global OpenTelemetry tracer provider.
func WithTracerName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.tracerName = name
		}
	}
}

// WithWorkers bounds the number of instances ResolveBatch resolves at once.
// Zero or less means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithShapeCheck enables the template fingerprint check (E104).
func WithShapeCheck(enabled bool) Option {
	return func(e *Engine) {
		e.shapeCheck = enabled
	}
}

// WithRenderer sets the configuration used by Render.
func WithRenderer(config render.RendererConfig) Option {
	return func(e *Engine) {
		e.renderCfg = config
	}
}

// New creates an Engine over registry.
func New(registry *template.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:   registry,
		logger:     slog.Default(),
		tracerName: defaultTracerName,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}

	e.tracer = otel.Tracer(e.tracerName)
	e.reconciler = template.NewReconciler(registry,
		template.WithLogger(e.logger),
		template.WithShapeCheck(e.shapeCheck),
	)
	e.renderer = render.NewRenderer(e.renderCfg)
	e.metrics.SetTemplates(registry.Len())
	return e
}

// Registry returns the registry the engine resolves against.
func (e *Engine) Registry() *template.Registry {
	return e.registry
}

// Result describes one resolved instance.
type Result struct {
	Root     *node.Node
	Stats    template.Stats
	Duration time.Duration
}

// Resolve reconciles inst against its templates and projects its slots, in
// place. Identity mismatches are returned as errors rather than panics.
func (e *Engine) Resolve(ctx context.Context, inst *node.Node) (Result, error) {
	start := time.Now()
	loc := locationOf(inst)
	ctx, span := e.tracer.Start(ctx, "splice.Resolve",
		trace.WithAttributes(attribute.String("splice.location", loc)))
	defer span.End()

	res := Result{Root: inst}
	unconsumed, err := e.resolve(ctx, &res)
	res.Duration = time.Since(start)
	e.metrics.observe(res.Stats, unconsumed, res.Duration, err)

	span.SetAttributes(
		attribute.Int("splice.resolved", res.Stats.Resolved),
		attribute.Int("splice.passthrough", res.Stats.PassedThrough),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn("resolve failed",
			"location", loc,
			"error", err)
		return res, err
	}

	e.logger.Debug("instance resolved",
		"location", loc,
		"resolved", res.Stats.Resolved,
		"passthrough", res.Stats.PassedThrough,
		"duration", res.Duration)
	return res, nil
}

// resolve runs both passes and returns the number of unconsumed buckets.
func (e *Engine) resolve(ctx context.Context, res *Result) (int, error) {
	rctx, span := e.tracer.Start(ctx, "splice.Reconcile")
	err := template.Catch(func() error {
		var err error
		res.Stats, err = e.reconciler.Apply(rctx, res.Root)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return 0, err
	}

	_, span = e.tracer.Start(ctx, "splice.Project")
	err = slots.Apply(res.Root)
	endSpan(span, err)

	var se *slots.SlotsError
	if stderrors.As(err, &se) {
		return len(se.Unconsumed), err
	}
	return 0, err
}

// ResolveBatch resolves disjoint instances concurrently, at most WithWorkers
// at a time. It stops at the first error, which names the failing index.
func (e *Engine) ResolveBatch(ctx context.Context, insts []*node.Node) ([]Result, error) {
	e.metrics.batchStarted()
	defer e.metrics.batchDone()

	results := make([]Result, len(insts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, inst := range insts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Resolve(gctx, inst)
			results[i] = res
			if err != nil {
				return fmt.Errorf("instance %d (%s): %w", i, locationOf(inst), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Render resolves inst and serializes it to HTML.
func (e *Engine) Render(ctx context.Context, inst *node.Node) (string, error) {
	if _, err := e.Resolve(ctx, inst); err != nil {
		return "", err
	}
	return e.renderer.RenderToString(inst)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func locationOf(n *node.Node) string {
	if n == nil || n.Location == nil {
		return ""
	}
	return n.Location.String()
}
