// Package plan defines the value types exchanged between planners, the
// response extractor and the execution engine:
//
//   - PlanStep / MultiStepPlan (ordered tool invocations with optional
//     preconditions)
//   - AgentMemory (per-session execution log, mutable context map and a
//     FIFO-capped conversation transcript)
//   - ExtractionMetadata (provenance, confidence and language information
//     attached to every produced plan)
//
// Plans and metadata are immutable once produced; every producer (local
// rules, remote planner, extractor) converges on these types so the engine
// never branches on provenance.
package plan
