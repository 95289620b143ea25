// Package daemon coordinates the long-running Cadence process and its
// control surfaces.
//
// It wires configuration, the tracking store, and the watch manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon exposes tracking maintenance helpers, proxies review submissions
// to the evaluation platform, runs readiness checks at startup, and serves
// runtime status plus structured logs over a loopback HTTP API.
//
// Keep orchestration logic here: polling and verdict decisions belong to the
// watch package while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
