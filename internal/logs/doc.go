// Package logs provides file tailing and offset helpers shared by the CLI and
// daemon diagnostics.
//
// It streams log files with bounded memory usage, supports negative offsets for
// "tail last N lines" operations, and powers follow-mode updates for
// `cadence show --follow`. Callers supply context deadlines so background
// polling shuts down cleanly when the CLI exits. StreamClient reads the richer
// structured event feed from the daemon HTTP API when it is reachable.
//
// Use this package whenever you need consistent log viewing semantics instead
// of re-implementing ad-hoc tail logic.
package logs
