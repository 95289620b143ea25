// Package preflight provides readiness checks for the evaluation platform
// and filesystem paths that Cadence depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and reports the results through its
//     status endpoint, so a misconfigured install is visible before the first
//     watch stalls.
//   - The CLI "cadence daemon status" command uses individual check functions
//     (CheckPlatform, CheckDirectoryAccess) to display service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
