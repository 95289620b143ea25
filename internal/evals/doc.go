// Package evals defines the domain model shared across cadence: recordings,
// evaluations with their weighted stage scores, policy violations, transcripts,
// media-access references, and human-review records.
//
// The types here mirror what the processing platform serves over its API, after
// the evalapi client has normalized wire shapes. Helpers cover the lifecycle
// questions the rest of the codebase keeps asking: is a status terminal, how
// should a failure message be presented, what label does a bare stage
// identifier get in a table.
//
// Keep this package free of I/O. Scoring arithmetic lives in internal/scoring
// and reconciliation in internal/review; both operate on these types.
package evals
