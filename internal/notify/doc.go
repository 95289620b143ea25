// Package notify delivers watch events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event toggles let operators silence routine outcomes while
// keeping the alerts that need a human, without touching the watch manager.
//
// Extend this package if you need alternative transports; all watch code
// depends only on the simple Service interface.
package notify
