// Package services defines shared utilities consumed by the watch manager and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp recording IDs, watch states, attempt counts,
//     and correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into retryable vs permanent outcomes.
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability, retries) stays uniform across the system.
package services
