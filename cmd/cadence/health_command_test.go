package main

import (
	"encoding/json"
	"testing"

	"cadence/internal/testsupport"
)

func TestHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.TrackRecording(t, env.store, "rec-a", "Alpha Call")

	out, _, err := runCLI(t, []string{"health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "tracked_recordings table present: yes")
	requireContains(t, out, "Integrity check: yes")
	requireContains(t, out, "Total recordings: 1")
	requireContains(t, out, "Missing columns: none")
}

func TestHealthCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health --json: %v", err)
	}

	var health map[string]any
	if err := json.Unmarshal([]byte(out), &health); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	for _, key := range []string{"db_path", "database_exists", "table_exists", "integrity_check", "total_records"} {
		if _, ok := health[key]; !ok {
			t.Fatalf("missing %q key in health JSON", key)
		}
	}
	if health["database_exists"] != true {
		t.Fatalf("expected database_exists=true, got %v", health["database_exists"])
	}
}

func TestHealthCommandFallsBackToStore(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health"}, env.deadSocketPath(), env.configPath)
	if err != nil {
		t.Fatalf("health fallback: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "Readable: yes")
}
