package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		verbosity int
		want      logrus.Level
	}{
		{-1, logrus.PanicLevel},
		{0, logrus.PanicLevel},
		{1, logrus.WarnLevel},
		{2, logrus.InfoLevel},
		{3, logrus.DebugLevel},
		{4, logrus.DebugLevel},
		{9, logrus.DebugLevel},
	}

	for _, tt := range tests {
		if got := logging.New(tt.verbosity, &bytes.Buffer{}).GetLevel(); got != tt.want {
			t.Errorf("New(%d) level = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestNew_SilentAtZero(t *testing.T) {
	var buf bytes.Buffer

	l := logging.New(0, &buf)
	l.Error("should not appear")
	l.Warn("nor this")

	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNew_Timestamps(t *testing.T) {
	var plain, stamped bytes.Buffer

	logging.New(3, &plain).Debug("x")
	logging.New(4, &stamped).Debug("x")

	if strings.Contains(plain.String(), "time=") {
		t.Errorf("verbosity 3 should not print timestamps: %q", plain.String())
	}

	if !strings.Contains(stamped.String(), "time=") {
		t.Errorf("verbosity 4 should print timestamps: %q", stamped.String())
	}
}

func TestFromLevel(t *testing.T) {
	var buf bytes.Buffer

	l := logging.FromLevel("debug", &buf)
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v", l.GetLevel())
	}

	l.WithField("run_id", "r1").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}

	if entry["run_id"] != "r1" || entry["msg"] != "hello" {
		t.Errorf("entry = %v", entry)
	}

	if logging.FromLevel("chatty", &buf).GetLevel() != logrus.InfoLevel {
		t.Error("unknown level should fall back to info")
	}
}
