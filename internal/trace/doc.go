// Package trace observes the report pipeline itself.
//
// It is unrelated to the compilation traces the report describes: spans here
// time the phases of report generation (dedup, aggregate, annotate, render)
// so slow reports can be diagnosed.
//
// # Usage
//
//	tracereport report --trace=- --trace-level=phase events.ndjson
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelReport: One span per report
//   - LevelPhase: Pipeline phases
//   - LevelDetail: Per-trace rendering
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "dedup", parentID)
//	defer span.End("")
package trace
