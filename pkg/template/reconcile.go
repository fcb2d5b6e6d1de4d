package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/identity"
	"github.com/vango-dev/splice/pkg/node"
)

// Outcome is the result of applying a template to one node.
type Outcome uint8

const (
	// Skipped means the node has no location or was already resolved.
	Skipped Outcome = iota
	// PassedThrough means no template exists and the location is not owned.
	PassedThrough
	// Resolved means the template was spliced onto the node.
	Resolved
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case PassedThrough:
		return "passthrough"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Stats counts the outcomes of one Apply pass.
type Stats struct {
	Resolved      int
	PassedThrough int
	Skipped       int
}

func (s *Stats) add(o Outcome) {
	switch o {
	case Resolved:
		s.Resolved++
	case PassedThrough:
		s.PassedThrough++
	default:
		s.Skipped++
	}
}

// Reconciler splices instances onto their registered templates.
type Reconciler struct {
	registry   *Registry
	logger     *slog.Logger
	shapeCheck bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithShapeCheck makes ApplyNode compare the tracker fingerprints of the
// template and the instance and fail with E104 when they differ.
func WithShapeCheck(enabled bool) Option {
	return func(r *Reconciler) {
		r.shapeCheck = enabled
	}
}

// NewReconciler creates a Reconciler reading from registry.
func NewReconciler(registry *Registry, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the reconciler reads from.
func (r *Reconciler) Registry() *Registry {
	return r.registry
}

// Apply resolves every located node under root in pre-order, descending
// into the spliced structure, component bodies and node payloads.
//
// A missing template for an owned location is returned as an E100 error.
// An identity mismatch between a template and its instance panics with a
// *errors.Error; use Catch to turn it into an error.
func (r *Reconciler) Apply(ctx context.Context, root *node.Node) (Stats, error) {
	var stats Stats
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	err := r.apply(root, &stats)
	return stats, err
}

func (r *Reconciler) apply(n *node.Node, stats *Stats) error {
	if n == nil {
		return nil
	}
	outcome, err := r.ApplyNode(n)
	if err != nil {
		return err
	}
	stats.add(outcome)

	for _, c := range n.Children {
		if err := r.apply(c, stats); err != nil {
			return err
		}
	}
	switch n.Kind {
	case node.KindComponent:
		return r.apply(n.Body, stats)
	case node.KindBlock:
		for _, c := range node.PayloadNodes(n.Payload) {
			if err := r.apply(c, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyNode looks up the template for inst's location and splices it onto
// inst in place.
func (r *Reconciler) ApplyNode(inst *node.Node) (Outcome, error) {
	if inst == nil || inst.Location == nil || inst.Has(node.MarkerResolved) {
		return Skipped, nil
	}
	loc := *inst.Location

	tmpl, ok := r.registry.Lookup(loc)
	if !ok {
		if r.registry.Owns(loc) {
			return Skipped, r.noTemplate(loc)
		}
		r.logger.Debug("template not owned, passing through",
			"location", loc.String(),
			"root", r.registry.Root())
		return PassedThrough, nil
	}

	if r.shapeCheck {
		if want, got := identity.Fingerprint(tmpl), identity.Fingerprint(inst); want != got {
			return Skipped, errors.New("E104").
				WithLocationString(loc.String()).
				WithDetailf("template fingerprint %016x, instance fingerprint %016x", want, got).
				WithSuggestion("Regenerate the template table")
		}
	}

	// Collect every dynamic payload before the structure is replaced.
	s := newSplice(loc, tmpl, inst)

	// The clone must not override inst's place in its tree.
	parent := inst.Parent
	clearStructure(inst)
	node.CopyInto(inst, tmpl, node.CopyOptions{
		Deny: node.MarkerSnippetRoot,
		Keep: node.MarkerInstanceRoot,
	})
	inst.Parent = parent
	inst.Location = &loc

	s.attach(inst)
	inst.Mark(node.MarkerResolved)

	r.logger.Debug("template applied",
		"location", loc.String(),
		"exprs", len(s.taken))
	return Resolved, nil
}

func clearStructure(n *node.Node) {
	n.Children = nil
	n.Attrs = nil
	n.Body = nil
	n.Payload = nil
	n.Unmark(node.MarkerSnippetRoot | node.MarkerProjected)
}

func (r *Reconciler) noTemplate(loc node.Location) error {
	keys := r.registry.Keys()
	known := make([]string, len(keys))
	for i, k := range keys {
		known[i] = k.String()
	}
	return errors.New("E100").
		WithLocationString(loc.String()).
		WithDetailf("expected: %s\nowned root: %s\nknown locations (%d): %s",
			loc, r.registry.Root(), len(keys), strings.Join(known, ", ")).
		WithSuggestion("Regenerate the template table, or move the location out of the owned root")
}

// expr is the dynamic content of one instance site, copied by value so it
// survives the instance node being overwritten.
type expr struct {
	key  identity.Key
	attr bool
	// Attribute sites.
	payload any
	// Node sites.
	node node.Node
}

// splice holds the side table of one ApplyNode call.
type splice struct {
	loc      node.Location
	tmpl     *node.Node
	exprs    map[node.ExprIdx]expr
	received []identity.Key
	taken    []identity.Key
}

func newSplice(loc node.Location, tmpl, inst *node.Node) *splice {
	s := &splice{
		loc:   loc,
		tmpl:  tmpl,
		exprs: make(map[node.ExprIdx]expr),
	}
	identity.Walk(inst, func(site identity.Site) bool {
		e := expr{
			key:  identity.Key{Idx: site.Idx(), Tracker: site.Tracker(), Kind: site.Kind()},
			attr: site.IsAttr(),
		}
		if e.attr {
			e.payload = site.Node.Attrs[site.Attr].Payload
		} else {
			e.node = *site.Node
		}
		if _, dup := s.exprs[e.key.Idx]; dup {
			s.received = append(s.received, e.key)
			s.fail("E105", fmt.Sprintf("duplicate: %s", e.key))
		}
		s.exprs[e.key.Idx] = e
		s.received = append(s.received, e.key)
		return true
	})
	return s
}

// attach walks the spliced tree and moves every collected payload to the
// position with the same ExprIdx.
func (s *splice) attach(root *node.Node) {
	identity.Walk(root, func(site identity.Site) bool {
		idx := site.Idx()
		e, ok := s.exprs[idx]
		if !ok {
			s.fail("E101", fmt.Sprintf("missing: %s %s", idx, site.Kind()))
		}
		delete(s.exprs, idx)
		s.taken = append(s.taken, e.key)

		if e.attr != site.IsAttr() {
			s.fail("E103", fmt.Sprintf("template %s is %s, instance %s is %s",
				idx, site.Kind(), idx, e.key.Kind))
		}
		if e.attr {
			site.Node.Attrs[site.Attr].Payload = e.payload
			return true
		}
		return s.attachNode(site.Node, &e.node)
	})

	if len(s.exprs) > 0 {
		left := make([]identity.Key, 0, len(s.exprs))
		for _, e := range s.exprs {
			left = append(left, e.key)
		}
		identity.SortKeys(left)
		s.fail("E102", "left over: "+joinKeys(left))
	}
}

// attachNode fills a block or component position. A block and a component
// may stand in for each other only when neither carries dynamic sites in
// its slot children; otherwise the two ordinal streams would diverge.
func (s *splice) attachNode(dst, src *node.Node) bool {
	if dst.Kind == src.Kind {
		dst.Payload = src.Payload
		if dst.Kind == node.KindComponent {
			dst.SetBody(src.Body)
			copyPropPayloads(dst.Attrs, src.Attrs)
		}
		for _, c := range node.PayloadNodes(dst.Payload) {
			c.Parent = dst
		}
		return true
	}

	if n := nestedSites(dst); n > 0 {
		s.fail("E103", fmt.Sprintf("template %s is %s with %d slot-children sites, instance is %s",
			dst.Idx, dst.Kind, n, src.Kind))
	}
	if n := nestedSites(src); n > 0 {
		s.fail("E103", fmt.Sprintf("template %s is %s, instance is %s with %d slot-children sites",
			dst.Idx, dst.Kind, src.Kind, n))
	}

	dst.Kind = src.Kind
	dst.Tag = src.Tag
	dst.Source = src.Source
	dst.Attrs = src.Attrs
	dst.Payload = src.Payload
	dst.SetBody(src.Body)
	dst.SetChildren(src.Children)
	for _, c := range node.PayloadNodes(dst.Payload) {
		c.Parent = dst
	}
	return false
}

// nestedSites counts the dynamic sites under n's slot children.
func nestedSites(n *node.Node) int {
	count := 0
	for _, c := range n.Children {
		count += len(identity.Sites(c))
	}
	return count
}

// copyPropPayloads moves the live values of a component's expression props.
// Props are matched by position and key.
func copyPropPayloads(dst, src []node.Attr) {
	for i := range dst {
		if i < len(src) && dst[i].IsDynamic() && dst[i].Key == src[i].Key {
			dst[i].Payload = src[i].Payload
		}
	}
}

// fail panics with a mismatch diagnostic listing every known key.
func (s *splice) fail(code, reason string) {
	expected := identity.Stream(s.tmpl)
	panic(errors.New(code).
		WithLocationString(s.loc.String()).
		WithDetailf("%s\nexpected (template): %s\nreceived (instance): %s\ntaken: %s",
			reason, joinKeys(expected), joinKeys(s.received), joinKeys(s.taken)).
		WithSuggestion("The template table and the instance were generated from different source; regenerate the table"))
}

func joinKeys(keys []identity.Key) string {
	if len(keys) == 0 {
		return "(none)"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// Catch runs fn and converts a reconcile mismatch panic into an error.
// Other panics are re-raised.
func Catch(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ve, ok := rec.(*errors.Error)
			if !ok || ve.Category != errors.CategoryReconcile {
				panic(rec)
			}
			err = ve
		}
	}()
	return fn()
}
