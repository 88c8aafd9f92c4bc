package workspace_test

import (
	"testing"
	"time"

	"curator/internal/workspace"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  workspace.Status
		ok    bool
	}{
		{"awaiting_approval", workspace.StatusAwaitingApproval, true},
		{"  Published ", workspace.StatusPublished, true},
		{"NEW", workspace.StatusNew, true},
		{"", "", false},
		{"in_review", "", false},
	}
	for _, tc := range cases {
		got, ok := workspace.ParseStatus(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	if p, ok := workspace.ParsePlatform(" Instagram "); !ok || p != workspace.PlatformInstagram {
		t.Fatalf("expected instagram, got (%q, %v)", p, ok)
	}
	if _, ok := workspace.ParsePlatform("tiktok"); ok {
		t.Fatal("expected tiktok to be rejected")
	}
}

func TestPastGenerationMatchesGeneratedPresence(t *testing.T) {
	// Statuses at or past generation are exactly the ones for which the
	// control service attaches generated content.
	expect := map[workspace.Status]bool{
		workspace.StatusNew:              false,
		workspace.StatusSelected:         false,
		workspace.StatusGenerated:        true,
		workspace.StatusAwaitingApproval: true,
		workspace.StatusApproved:         true,
		workspace.StatusPublished:        true,
		workspace.StatusFailed:           false,
		workspace.StatusSkipped:          false,
	}
	for _, status := range workspace.AllStatuses() {
		want, known := expect[status]
		if !known {
			t.Fatalf("status %q missing from expectation table", status)
		}
		if got := status.PastGeneration(); got != want {
			t.Errorf("%q.PastGeneration() = %v, want %v", status, got, want)
		}
	}
}

func TestPendingApproval(t *testing.T) {
	now := time.Now().UTC()
	candidates := make([]workspace.Candidate, 0, 10)
	for i := 1; i <= 10; i++ {
		status := workspace.StatusSelected
		if i%3 == 0 {
			status = workspace.StatusAwaitingApproval
		}
		candidates = append(candidates, workspace.Candidate{
			ID:        int64(i),
			Platform:  workspace.PlatformInstagram,
			Status:    status,
			CreatedAt: now,
		})
	}

	pending := workspace.PendingApproval(candidates)
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending candidates, got %d", len(pending))
	}
	if pending[0].ID != 3 || pending[1].ID != 6 || pending[2].ID != 9 {
		t.Fatalf("pending order not preserved: %#v", pending)
	}

	counts := workspace.CountByStatus(candidates)
	if counts[workspace.StatusAwaitingApproval] != 3 {
		t.Fatalf("expected awaiting_approval count 3, got %d", counts[workspace.StatusAwaitingApproval])
	}
	if counts[workspace.StatusSelected] != 7 {
		t.Fatalf("expected selected count 7, got %d", counts[workspace.StatusSelected])
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !workspace.StatusPublished.IsTerminal() {
		t.Fatal("published should be terminal")
	}
	if workspace.StatusApproved.IsTerminal() {
		t.Fatal("approved should not be terminal")
	}
}
