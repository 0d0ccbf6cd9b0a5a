package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerTo_LevelAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := WithProjectID(WithComponent(NewLoggerTo(&buf, "warn"), "catalog"), "p1")

	logger.Info("dropped")
	logger.Warn("kept", "records", 3)

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "kept" || rec["component"] != "catalog" || rec["project_id"] != "p1" || rec["records"] != float64(3) {
		t.Fatalf("record = %v", rec)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"short", "****"},
		{"12345678", "****"},
		{"abcdefghijkl", "abcd...ijkl"},
	}
	for _, tt := range tests {
		if got := SanitizeToken(tt.token); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
