// Package tracking persists watched recordings in SQLite and exposes helpers
// for driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, watch-state transitions, and the review log. Tracked recordings
// capture the last platform status, attempt counts, failure classification,
// and an evaluation snapshot so the daemon can resume watches and the CLI can
// answer without a network round trip.
//
// The platform remains the system of record for evaluations; this database is
// the local snapshot cache. Schema changes bump the version in schema.go;
// users delete the tracking database to adopt the new schema.
package tracking
