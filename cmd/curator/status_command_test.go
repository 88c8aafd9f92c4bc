package main

import (
	"strings"
	"testing"

	"curator/internal/workspace"
)

func TestStatusRendersDashboard(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddCandidate(workspace.Candidate{
		Platform:  workspace.PlatformInstagram,
		MediaType: "image",
		Status:    workspace.StatusAwaitingApproval,
		Generated: &workspace.Generated{TitleEN: "Cat meets cucumber"},
	})
	env.svc.AddCandidate(workspace.Candidate{
		Platform:  workspace.PlatformFacebook,
		MediaType: "video",
		Status:    workspace.StatusPublished,
	})

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Default Workspace")
	requireContains(t, out, "manual approval")
	requireContains(t, out, "awaiting approval")
	requireContains(t, out, "Cat meets cucumber")
}

func TestStatusWithoutSessionFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "status")
	if err == nil {
		t.Fatal("expected status to fail without a session")
	}
}

func TestStatusJSONIncludesEffectiveMode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)

	out, _, err := runCLI(t, env, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	requireContains(t, out, `"effective_auto": false`)
}

func TestStatusCachedAfterSync(t *testing.T) {
	env := setupCLITestEnv(t)
	env.signIn(t)
	env.svc.AddCandidate(workspace.Candidate{
		Platform:  workspace.PlatformInstagram,
		MediaType: "image",
		Status:    workspace.StatusPublished,
	})

	// First invocation syncs and persists the snapshot cache.
	if _, _, err := runCLI(t, env, "status"); err != nil {
		t.Fatalf("status: %v", err)
	}

	// The cached view must work even when the server is unreachable.
	env.svc.ForceStatus = 503
	out, _, err := runCLI(t, env, "status", "--cached")
	if err != nil {
		t.Fatalf("status --cached: %v", err)
	}
	requireContains(t, out, "Cached snapshot from")
	requireContains(t, out, "published")
}

func TestStatusCachedWithoutSnapshot(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "status", "--cached")
	if err == nil || !strings.Contains(err.Error(), "no cached snapshot") {
		t.Fatalf("expected missing snapshot error, got %v", err)
	}
}
