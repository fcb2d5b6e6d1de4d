// Package engine wires the splice passes into one pipeline.
//
// An Engine owns a template.Reconciler over a shared, read-only registry.
// Resolve runs reconciliation and then slot projection on one instance,
// converting identity-mismatch panics into returned errors, recording
// Prometheus metrics and OpenTelemetry spans along the way:
//
//	reg := template.NewRegistry("app")
//	eng := engine.New(reg,
//	    engine.WithMetrics(engine.NewMetrics(engine.WithRegistry(promReg))),
//	    engine.WithWorkers(8),
//	)
//	res, err := eng.Resolve(ctx, inst)
//
// ResolveBatch resolves disjoint instances concurrently through an errgroup
// bounded by WithWorkers. Instances must not share nodes.
package engine
