package push

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pingpal/pingpal-server/internal/logging"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abcdef", "abcdef"},
		{"abcdefghij", "...efghij"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestLogSender_MasksToken(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New().SetLevel(logging.LevelInfo).SetOutput(&buf)

	sender := NewLogSender(logger)
	if err := sender.Send(context.Background(), "secret-device-token", "alice", "Yo!", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "secret-device-token") {
		t.Fatal("expected token to be masked in log output")
	}
	if !strings.Contains(out, "-token") {
		t.Fatalf("expected masked suffix in log output: %s", out)
	}
}
