package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	log.WithContext(ctx).Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}
	if record["request_id"] != "req-123" {
		t.Fatalf("expected request_id req-123, got %v", record["request_id"])
	}
}

func TestUpstreamErrorIncludesStatus(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.UpstreamError("nominatim", 429, errors.New("slow down"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "upstream_error" {
		t.Fatalf("unexpected message %v", record["msg"])
	}
	if record["status"] != float64(429) {
		t.Fatalf("expected status 429, got %v", record["status"])
	}
	if record["error"] != "slow down" {
		t.Fatalf("expected error text, got %v", record["error"])
	}
}
