package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigShowReflectsWorkspace(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Approval required: yes")
	requireContains(t, out, "manual approval")
}

func TestConfigSetUpdatesWorkspace(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	out, _, err := runCLI(t, env, "config", "set", "--approval-required=false", "--interval-days", "7")
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	requireContains(t, out, "Configuration saved")
	requireContains(t, out, "auto-publish")

	if env.svc.Config.ApprovalRequired {
		t.Fatal("approval_required should be off")
	}
	if env.svc.Config.IntervalDays != 7 {
		t.Fatalf("interval_days = %d, want 7", env.svc.Config.IntervalDays)
	}
	// Settings not named on the command line stay untouched.
	if env.svc.Config.MaxCandidates != 25 || env.svc.Config.PickTopN != 5 {
		t.Fatalf("unrelated settings changed: %+v", env.svc.Config)
	}
}

func TestConfigSetWarnsOnOversizedPick(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	out, _, err := runCLI(t, env, "config", "set", "--pick-top-n", "50")
	if err != nil {
		t.Fatalf("config set: %v", err)
	}
	requireContains(t, out, "exceeds max_candidates")
}

func TestConfigSetRequiresAFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	_, _, err := runCLI(t, env, "config", "set")
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("expected nothing-to-change error, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	env := setupCLITestEnv(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite guard, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("CURATOR_CONFIG", env.configPath)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.svc.URL())
}
