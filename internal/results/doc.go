// Package results assembles the full result bundle for a completed recording.
//
// The evaluation, transcript, and media access reference are fetched
// concurrently. Only the evaluation is load-bearing: its failure fails the
// whole fetch, while transcript and media failures are absorbed onto the
// bundle as warnings so one flaky side fetch never hides a finished score.
package results
