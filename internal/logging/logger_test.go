package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"curator/internal/logging"
)

func TestConsoleFormatFlattensAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("refresh complete", logging.String("resource", "candidates"), logging.Int("count", 12))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "INFO refresh complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "resource=candidates") || !strings.Contains(line, "count=12") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Warn("poll failed", logging.String("reason", "connection refused"))
	if !strings.Contains(buf.String(), `reason="connection refused"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONFormatUsesLowercaseLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Error("run request failed", logging.Int64("job_id", 7))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload["level"] != "error" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if payload["msg"] != "run request failed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("should be dropped")
	logger.Warn("should appear")
	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Fatalf("info leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn missing: %q", out)
	}
}
