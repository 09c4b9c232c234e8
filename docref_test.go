package docref_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docref"
	"github.com/goliatone/go-docref/internal/site"
)

func TestModuleMarkup(t *testing.T) {
	module, err := docref.New(docref.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	out, err := module.Markup("Use `x` with @System.String.\n")
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	want := `<p>Use <code>x</code> with <xref href="System.String" data-throw-if-not-resolved="False" data-raw-source="@System.String"></xref>.</p>`
	if !strings.Contains(out, want) {
		t.Fatalf("unexpected markup %q", out)
	}
}

func TestModuleBuildSite(t *testing.T) {
	writer := site.NewMemoryWriter()
	source := fstest.MapFS{
		"a.md": {Data: []byte("---\nuid: A\ntitle: Page A\n---\nSee <xref:B>.\n")},
		"b.md": {Data: []byte("---\nuid: B\ntitle: Page B\n---\nBack to @A.\n")},
	}
	module, err := docref.New(docref.DefaultConfig(), docref.WithSource(source), docref.WithWriter(writer))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := module.BuildSite(context.Background(), docref.BuildRequest{})
	if err != nil {
		t.Fatalf("BuildSite: %v", err)
	}
	if result.Resolved != 2 || len(result.Unresolved) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	a, _ := writer.File("a.html")
	if !strings.Contains(a, `<a class="xref" href="b.html" anchor="#B">Page B</a>`) {
		t.Fatalf("unexpected a.html: %s", a)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := docref.DefaultConfig()
	cfg.Build.Workers = -1
	if _, err := docref.New(cfg); !errors.Is(err, docref.ErrBuildWorkersInvalid) {
		t.Fatalf("expected ErrBuildWorkersInvalid, got %v", err)
	}
}
