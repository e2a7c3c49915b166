// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("Level(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "memorygraph", Output: &buf})

	logger.Info("exploration finished", "seed_id", "N1", "paths", 3)

	out := buf.String()
	if !strings.Contains(out, "exploration finished") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "service=memorygraph") {
		t.Errorf("output missing service attribute: %q", out)
	}
	if !strings.Contains(out, "seed_id=N1") {
		t.Errorf("output missing seed_id attribute: %q", out)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "memorygraph", JSON: true, Output: &buf})

	logger.Warn("expand retry", "attempt", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "expand retry" {
		t.Errorf("msg = %v, want 'expand retry'", entry["msg"])
	}
	if entry["service"] != "memorygraph" {
		t.Errorf("service = %v, want 'memorygraph'", entry["service"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", entry["attempt"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestComponent_AttachesAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).Component("neo4j_connector")

	logger.Info("seed fetched")

	if !strings.Contains(buf.String(), "component=neo4j_connector") {
		t.Errorf("output missing component attribute: %q", buf.String())
	}
}

func TestFromSlog_NilFallsBack(t *testing.T) {
	logger := FromSlog(nil)
	if logger.Slog() == nil {
		t.Fatal("FromSlog(nil) returned logger with nil slog")
	}
}
