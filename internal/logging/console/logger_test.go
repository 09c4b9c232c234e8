package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docref/internal/logging"
	"github.com/goliatone/go-docref/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("docref.bookmark")
	logger = logger.WithFields(map[string]any{"module": "docref.bookmark"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"build_id": "b-42"})
	logger = logger.WithContext(ctx)

	logger.Warn("bookmark.missing", "fragment", "sec 2", "output_file", "a.html")

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z WARN bookmark.missing build_id=b-42 fragment="sec 2" logger=docref.bookmark module=docref.bookmark output_file=a.html`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("docref.test")
	logger.Debug("ignored.debug")
	logger.Info("included.info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestConsoleLogger_OddArgsBecomePositional(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("docref.test").Info("odd", "key", 1, "dangling")

	if !strings.Contains(buf.String(), "field_1=dangling") {
		t.Fatalf("expected positional field, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "key=1") {
		t.Fatalf("expected paired field, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel("WARNING"); !ok || level != console.LevelWarn {
		t.Fatalf("expected warn, got %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
