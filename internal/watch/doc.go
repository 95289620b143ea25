// Package watch drives tracked recordings from submission to verdict.
//
// Poller is the per-recording state machine: it polls the platform status
// endpoint at a fixed interval until the job completes, fails, exhausts its
// attempt budget, or is cancelled, and fetches the result bundle for
// completed jobs. Manager owns one poller goroutine per tracked recording,
// persists every transition to the tracking store, supersedes in-flight
// watches when a recording is tracked again, and resumes stored active
// watches when the daemon restarts.
package watch
