package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogCloseReportsFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	logClose("store", func() error { return nil })
	if buf.Len() != 0 {
		t.Fatalf("expected no output for a clean close, got %q", buf.String())
	}

	logClose("store", func() error { return errors.New("database is locked") })
	out := buf.String()
	if !strings.Contains(out, "Failed to close store") || !strings.Contains(out, "database is locked") || !strings.Contains(out, "level=ERROR") {
		t.Fatalf("unexpected log output %q", out)
	}
}
