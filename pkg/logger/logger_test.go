package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	wrap "github.com/Temutjin2k/skytrack/pkg/logger/wrapper"
)

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "map-service", LevelDebug)

	ctx := wrap.WithAction(context.Background(), "reconcile")
	ctx = wrap.WithIcaoAddress(ctx, "4840D6")
	l.Warn(ctx, "skipping malformed record")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	want := map[string]string{
		"message":      "skipping malformed record",
		"service":      "map-service",
		"action":       "reconcile",
		"icao_address": "4840D6",
		"level":        "WARN",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %q", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Errorf("timestamp must be present")
	}
}

func TestLogger_ErrorGroup(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "api-service", LevelInfo)

	l.Error(context.Background(), "query failed", errors.New("connection refused"))

	var entry struct {
		Message string `json:"message"`
		Error   struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry.Message != "query failed" {
		t.Fatalf("unexpected message %q", entry.Message)
	}
	if entry.Error.Msg != "connection refused" {
		t.Fatalf("unexpected error msg %q", entry.Error.Msg)
	}
	if entry.Error.Message != "" {
		t.Fatalf("error group key renamed: %s", buf.String())
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "store-service", LevelWarn)

	l.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at WARN level, got %s", buf.String())
	}
}

func TestValidateLogLevel(t *testing.T) {
	if !ValidateLogLevel(LevelInfo) || ValidateLogLevel("TRACE") {
		t.Fatalf("unexpected level validation")
	}
}
