// Package trace records what the compiler driver is doing.
//
// Events are spans (begin/end pairs) and points, tagged with a Scope:
//
//	driver  one span for the whole invocation
//	phase   load, check, lower, emit
//	module  one span per syntax tree file or lowered module
//	func    per-function lowering, debug level only
//
// The Level decides which scopes are recorded. A tracer streams events to a
// writer as text or NDJSON, keeps the most recent ones in a ring buffer, or
// both. The ring can be dumped after an internal error to show what ran last.
//
// The tracer travels through context.Context:
//
//	ctx = trace.WithTracer(ctx, t)
//	sp := trace.Start(ctx, trace.ScopePhase, "check")
//	defer sp.End("")
//
// Start links the new span to the one already stored in ctx, if any.
package trace
