// Package engine gates development operations behind readiness checks.
//
// # Overview
//
// Before an automated operation proceeds (writing code, planning a sprint,
// publishing a release, pushing, running tests) the engine evaluates its
// prerequisites, scores the triggering task's confidence, detects systemic
// gaps, and decides whether the operation must pause for explicit human
// approval (a critical junction).
//
// # Control flow
//
//	CheckWorkflow(type, context)
//	  → cache lookup
//	  → on miss: prerequisites ∥ confidence ∥ gap detection (10s deadline)
//	  → aggregate, log gaps, cache, return
//
// The three sub-evaluations run concurrently against distinct collaborators
// and share no mutable state. The aggregation point either joins all three
// or is preempted by the deadline, in which case the partial result is
// returned with an explicit timeout indicator. Abandoned collaborator calls
// run to their natural completion; their results are discarded, not
// cancelled.
//
// # Failure policy
//
// CheckWorkflow raises only on an unknown workflow type or a nil context.
// Collaborator failures degrade to failed prerequisites with manual
// remediation hints, a scorer outage substitutes a neutral 0.5 confidence,
// and gap-log write failures are swallowed. The caller always receives a
// result, never an exception, except for programmer misuse.
//
// # Critical junction invariant
//
// A check is a critical junction when any of these hold:
//   - confidence is below the threshold (default 0.80)
//   - the workflow type is publish (unconditionally)
//   - the merged gap set has two or more entries
//
// # Collaborators
//
// All external services are ports injected at construction: ConfidenceScorer,
// TestValidator, GitProbe, PatternCatalog, AgentCatalog, GapSink. Tests
// substitute plain fakes; no mocking machinery is required.
package engine
