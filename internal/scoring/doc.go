// Package scoring computes weighted evaluation outcomes and review routing.
//
// Everything here is a pure function of its inputs plus injected thresholds.
// Aggregate reproduces the platform's overall-score rule locally so the
// tracker can verify platform math and score merged human reviews on the
// identical basis. ReviewSignals derives the local review routing decision.
// Weight anomalies (drifting or zero totals) are recoverable conditions
// reported on the outcome, never errors: partial data must stay displayable.
package scoring
