package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", slog.String("k", "v"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	newLogger(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "debug", "text").Debug("kept")
	if !strings.Contains(buf.String(), "msg=kept") || !strings.Contains(buf.String(), "source=") {
		t.Errorf("debug text output = %s", buf.String())
	}
}

func TestRedactURL(t *testing.T) {
	cases := map[string]string{
		"":                                "",
		"redis://:pw@cache:6379/0":        "redis://redacted@cache:6379/0",
		"postgres://app:pw@db/todos":      "postgres://app@db/todos",
		"postgres://db/todos":             "postgres://db/todos",
		"postgres://app:pw@[::1:bad/todo": "[redacted]",
	}
	for in, want := range cases {
		if got := redactURL(in); got != want {
			t.Errorf("redactURL(%q) = %q, want %q", in, got, want)
		}
	}
}
