package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"curator/internal/workspace"
)

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// platformLabel renders a platform identifier for display.
func platformLabel(platform workspace.Platform) string {
	return cases.Title(language.Und).String(string(platform))
}

// statusLabel renders a candidate status for display.
func statusLabel(status workspace.Status) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func runModeLabel(auto, overridden bool) string {
	label := "manual approval"
	if auto {
		label = "auto-publish"
	}
	if overridden {
		label += " (session override)"
	}
	return label
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 3 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

func formatCount(label string, count int) string {
	return fmt.Sprintf("%d %s", count, label)
}
