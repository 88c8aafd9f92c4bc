package api_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"curator/internal/api"
	"curator/internal/testsupport"
	"curator/internal/workspace"
)

type staticCreds string

func (c staticCreds) Token() (string, bool) { return string(c), c != "" }

func newClient(t *testing.T, svc *testsupport.ControlService, creds api.Credentials) *api.Client {
	t.Helper()
	client, err := api.New(svc.URL(), creds, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestLoginReturnsToken(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, nil)

	token, err := client.Login(context.Background(), testsupport.OperatorEmail, testsupport.OperatorPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != testsupport.IssuedToken {
		t.Fatalf("token = %q, want %q", token, testsupport.IssuedToken)
	}
}

func TestLoginRejectedIsAuthError(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, nil)

	_, err := client.Login(context.Background(), testsupport.OperatorEmail, "wrong")
	if !api.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestAuthenticatedRequestCarriesBearer(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))

	identity, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if identity.Email != testsupport.OperatorEmail {
		t.Fatalf("email = %q, want %q", identity.Email, testsupport.OperatorEmail)
	}
	if identity.WorkspaceName == "" {
		t.Fatal("workspace name missing")
	}
}

func TestStaleTokenIsAuthError(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, staticCreds("stale"))

	_, err := client.Me(context.Background())
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != 401 {
		t.Fatalf("status = %d, want 401", authErr.Status)
	}
}

func TestServerFailureIsRequestError(t *testing.T) {
	svc := testsupport.NewControlService(t)
	svc.ForceStatus = 500
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))

	_, err := client.FetchStats(context.Background())
	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Status != 500 {
		t.Fatalf("status = %d, want 500", reqErr.Status)
	}
	if api.IsAuth(err) {
		t.Fatal("server failure must not classify as auth error")
	}
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	client, err := api.New("http://127.0.0.1:1", staticCreds(testsupport.IssuedToken), time.Second, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Me(context.Background())
	var netErr *api.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Unwrap() == nil {
		t.Fatal("network error must wrap the transport error")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))
	ctx := context.Background()

	want := workspace.Config{ApprovalRequired: false, IntervalDays: 3, MaxCandidates: 40, PickTopN: 8}
	saved, err := client.SaveConfig(ctx, want)
	if err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if saved != want {
		t.Fatalf("saved = %+v, want %+v", saved, want)
	}

	fetched, err := client.FetchConfig(ctx)
	if err != nil {
		t.Fatalf("FetchConfig: %v", err)
	}
	if fetched != want {
		t.Fatalf("fetched = %+v, want %+v", fetched, want)
	}
}

func TestAddSourceThenList(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))
	ctx := context.Background()

	added, err := client.AddSource(ctx, workspace.PlatformInstagram, "humor.daily", true)
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if added.ID == 0 {
		t.Fatal("source id not assigned")
	}

	sources, err := client.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Handle != "humor.daily" {
		t.Fatalf("sources = %+v", sources)
	}
}

func TestCandidateRoundTripKeepsGenerated(t *testing.T) {
	svc := testsupport.NewControlService(t)
	id := svc.AddCandidate(workspace.Candidate{
		Platform:    workspace.PlatformInstagram,
		OriginalURL: "https://instagram.com/p/abc",
		MediaType:   "image",
		Status:      workspace.StatusAwaitingApproval,
		Generated: &workspace.Generated{
			TitleEN:    "Morning chaos",
			CaptionEN:  "When the alarm wins",
			HashtagsEN: []string{"#funny", "#morning"},
		},
	})
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))

	candidates, err := client.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	got := candidates[0]
	if got.ID != id {
		t.Fatalf("id = %d, want %d", got.ID, id)
	}
	if !got.HasGenerated() || got.Generated.TitleEN != "Morning chaos" {
		t.Fatalf("generated content lost: %+v", got.Generated)
	}
	if len(got.Generated.HashtagsEN) != 2 {
		t.Fatalf("hashtags = %v", got.Generated.HashtagsEN)
	}
}

func TestApproveMovesCandidateAndMissingIs404(t *testing.T) {
	svc := testsupport.NewControlService(t)
	id := svc.AddCandidate(workspace.Candidate{
		Platform:  workspace.PlatformFacebook,
		MediaType: "video",
		Status:    workspace.StatusAwaitingApproval,
	})
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))
	ctx := context.Background()

	if err := client.Approve(ctx, id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	candidates, err := client.ListCandidates(ctx)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if candidates[0].Status != workspace.StatusApproved {
		t.Fatalf("status = %q, want approved", candidates[0].Status)
	}

	err = client.Approve(ctx, id+100)
	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != 404 {
		t.Fatalf("expected 404 RequestError, got %v", err)
	}
}

func TestRunEnqueuesDistinctJobs(t *testing.T) {
	svc := testsupport.NewControlService(t)
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))
	ctx := context.Background()

	first, err := client.Run(ctx, true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := client.Run(ctx, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.EnqueuedJobID == second.EnqueuedJobID {
		t.Fatalf("both runs got job %d", first.EnqueuedJobID)
	}
	if got := svc.RunRequests; len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("run requests = %v, want [true false]", got)
	}
}

func TestClearLogsEmptiesLog(t *testing.T) {
	svc := testsupport.NewControlService(t)
	svc.AddLog("info", "collected 12 posts")
	client := newClient(t, svc, staticCreds(testsupport.IssuedToken))
	ctx := context.Background()

	if err := client.ClearLogs(ctx); err != nil {
		t.Fatalf("ClearLogs: %v", err)
	}
	logs, err := client.ListLogs(ctx)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("logs = %+v, want empty", logs)
	}
}
