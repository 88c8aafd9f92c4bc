package main

import (
	"strings"
	"testing"
	"time"

	"curator/internal/workspace"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Run mode", statusOK, "manual approval", false)
	if !strings.Contains(line, "Run mode:") || !strings.Contains(line, "[OK] manual approval") {
		t.Fatalf("unexpected line %q", line)
	}

	colored := renderStatusLine("Run mode", statusError, "down", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red wrapping, got %q", colored)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Pipeline", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %v", lines)
	}
	if lines[0] != "== Pipeline ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d != header length %d", len(lines[1]), len(lines[0]))
	}
}

func TestHelpersFormatting(t *testing.T) {
	if got := platformLabel(workspace.PlatformInstagram); got != "Instagram" {
		t.Fatalf("platformLabel = %q", got)
	}
	if got := statusLabel(workspace.StatusAwaitingApproval); got != "awaiting approval" {
		t.Fatalf("statusLabel = %q", got)
	}
	if got := runModeLabel(true, true); got != "auto-publish (session override)" {
		t.Fatalf("runModeLabel = %q", got)
	}
	if got := formatTimePtr(nil); got != "-" {
		t.Fatalf("formatTimePtr(nil) = %q", got)
	}
	if got := formatTime(time.Time{}); got != "-" {
		t.Fatalf("formatTime(zero) = %q", got)
	}
	if got := truncate("a very long caption that keeps going", 12); got != "a very lo..." {
		t.Fatalf("truncate = %q", got)
	}
}
