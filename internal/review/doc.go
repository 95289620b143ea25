// Package review reconciles reviewer stage overrides with AI evaluations.
//
// Reconcile merges the two score sets (an override of zero means the reviewer
// accepts the AI score), recomputes the overall with the same weighted rule
// the AI overall uses so both numbers stay comparable, and reports per-stage
// disagreements for model-quality analytics. Submission to the platform and
// the local review log live elsewhere; this package is pure.
package review
