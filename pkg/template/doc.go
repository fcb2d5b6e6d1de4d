// Package template binds live instance trees to their statically extracted
// templates.
//
// A Registry maps each invocation site (node.Location) to the template the
// scanner extracted for it. A Reconciler looks the template up for every
// located instance node, copies the template's static structure onto the
// instance in place and re-attaches the instance's dynamic payloads at the
// positions with the same ExprIdx.
//
// Missing templates for owned locations are returned as errors. Identity
// mismatches between a template and its instance mean the template table is
// stale and panic with a *errors.Error carrying every known key.
//
//	reg := template.NewRegistry("app")
//	reg.Register(loc, template.Snippet(loc, node.Div(node.Block("count", nil))))
//
//	inst := template.Instance(loc, node.Div(node.Block("count", 3)))
//	stats, err := template.NewReconciler(reg).Apply(ctx, inst)
package template
