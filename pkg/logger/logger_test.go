package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/robfig/cron/v3"
)

func TestNewCronNilDiscards(t *testing.T) {
	t.Parallel()

	if got := NewCron(nil); got != cron.DiscardLogger {
		t.Fatalf("expected discard logger, got %T", got)
	}
}

func TestCronLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	l := NewCron(base)

	l.Info("wake", "now", "t0")
	if buf.Len() != 0 {
		t.Fatalf("cron info should log at debug, got %q", buf.String())
	}

	l.Error(errors.New("boom"), "panic", "job", "ingestion")
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=boom") || !strings.Contains(out, "job=ingestion") {
		t.Fatalf("unexpected error output: %q", out)
	}
}
