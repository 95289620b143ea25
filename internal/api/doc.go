// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal tracking and evaluation models into
// transport-friendly DTOs that the CLI and other consumers can render without
// coupling to internal types.
//
// # Key Types
//
// TrackedRecording: transport representation of a watched recording with its
// watch state, attempt count, and decoded evaluation snapshot.
//
// Evaluation/StageScore/Violation: evaluation detail for score tables.
//
// WatchStatus: watch manager running state, active watch count, tracking stats.
//
// DaemonStatus: aggregated daemon runtime information including preflight
// checks.
//
// # Converters
//
// FromTrackedRecording: tracking.TrackedRecording -> TrackedRecording with the
// evaluation snapshot decoded when present.
//
// FromStatusSummary: watch.StatusSummary -> WatchStatus.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (tracking.WatchState, evals.RecordingStatus) are exposed as lowercase
// strings. Timestamps use RFC3339 with milliseconds.
//
// Evaluation detail is decoded from the stored snapshot rather than re-fetched,
// so the API always reflects exactly what the watch persisted.
package api
