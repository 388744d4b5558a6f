// Package trace records what the toolchain probe is doing.
//
// Every compiler discovery, probe run and trial compile opens a span. Each
// spawned compiler process is an attempt nested under its stage, so a hung
// compiler shows up as a begin event with no matching end.
//
// # Levels
//
//   - LevelOff: nothing is recorded
//   - LevelError: events go to the ring only and are dumped on failure
//   - LevelPhase: driver and stage boundaries
//   - LevelDetail: every compiler invocation
//   - LevelDebug: everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "probe", 0)
//	defer span.End("")
package trace
