package main

import (
	"strings"
	"testing"
)

func TestLogsPrintsOldestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddLog("info", "collect started")
	env.svc.AddLog("success", "collect finished")

	out, _, err := runCLI(t, env, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	started := strings.Index(out, "collect started")
	finished := strings.Index(out, "collect finished")
	if started == -1 || finished == -1 {
		t.Fatalf("log lines missing:\n%s", out)
	}
	if started > finished {
		t.Fatalf("expected chronological order:\n%s", out)
	}
}

func TestLogsShowSubcommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddLog("error", "publish failed for candidate 7")

	out, _, err := runCLI(t, env, "logs", "show")
	if err != nil {
		t.Fatalf("logs show: %v", err)
	}
	requireContains(t, out, "publish failed for candidate 7")
}

func TestLogsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	out, _, err := runCLI(t, env, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log events.")
}

func TestLogsClear(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddLog("info", "stale entry")

	out, _, err := runCLI(t, env, "logs", "clear")
	if err != nil {
		t.Fatalf("logs clear: %v", err)
	}
	requireContains(t, out, "Logs cleared")

	if len(env.svc.Logs) != 0 {
		t.Fatalf("server logs not cleared: %+v", env.svc.Logs)
	}
}

func TestLogsLimit(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddLog("info", "first")
	env.svc.AddLog("info", "second")
	env.svc.AddLog("info", "third")

	out, _, err := runCLI(t, env, "logs", "--limit", "2")
	if err != nil {
		t.Fatalf("logs --limit: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("oldest entry should be trimmed:\n%s", out)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
}
