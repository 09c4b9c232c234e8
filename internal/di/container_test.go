package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	sitecmd "github.com/goliatone/go-docref/internal/commands/site"
	"github.com/goliatone/go-docref/internal/logging/gologger"
	"github.com/goliatone/go-docref/internal/runtimeconfig"
	"github.com/goliatone/go-docref/internal/site"
	"github.com/goliatone/go-docref/internal/xref"
	"github.com/goliatone/go-docref/pkg/interfaces"
	"github.com/goliatone/go-docref/pkg/testsupport"
)

type recordedEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingProvider struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	return &recordingLogger{provider: p, fields: map[string]any{"logger": name}}
}

func (p *recordingProvider) find(level, msg string) *recordedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].level == level && p.entries[i].msg == msg {
			return &p.entries[i]
		}
	}
	return nil
}

type recordingLogger struct {
	provider *recordingProvider
	fields   map[string]any
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("TRACE", msg) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("FATAL", msg) }

func (l *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{provider: l.provider, fields: merged}
}

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *recordingLogger) log(level, msg string) {
	l.provider.mu.Lock()
	defer l.provider.mu.Unlock()
	l.provider.entries = append(l.provider.entries, recordedEntry{level: level, msg: msg, fields: l.fields})
}

func docsFS() fstest.MapFS {
	return fstest.MapFS{
		"index.md": {Data: []byte("---\nuid: docs.Index\n---\n# Home\n\nSee @System.String and [broken](#nowhere).\n")},
	}
}

func TestContainerBuildsSiteWithInjectedSourceAndWriter(t *testing.T) {
	provider := &recordingProvider{}
	writer := site.NewMemoryWriter()
	cfg := runtimeconfig.DefaultConfig()

	container, err := NewContainer(cfg,
		WithLoggerProvider(provider),
		WithSource(docsFS()),
		WithWriter(writer),
		WithResolver(xref.NewMemoryStore(xref.NewSpec("System.String", "https://example.com/string", "String"))),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	result, err := container.BuildSite(context.Background(), site.Request{})
	if err != nil {
		t.Fatalf("BuildSite: %v", err)
	}
	if result.Resolved != 1 {
		t.Fatalf("expected extra resolver to be used, got %+v", result)
	}
	if _, ok := writer.File("index.html"); !ok {
		t.Fatalf("expected index.html, got %v", writer.Paths())
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected one bookmark warning, got %+v", result.Warnings)
	}
	warn := provider.find("WARN", result.Warnings[0].Message())
	if warn == nil {
		t.Fatalf("bookmark warning not logged")
	}
	if warn.fields["module"] != "docref.bookmark" {
		t.Fatalf("expected bookmark module, got %+v", warn.fields)
	}
	if entry := provider.find("INFO", "site.build.complete"); entry == nil || entry.fields["module"] != "docref.site" {
		t.Fatalf("expected build completion log, got %+v", entry)
	}
}

func TestContainerStrictOverride(t *testing.T) {
	source := fstest.MapFS{"a.md": {Data: []byte("<xref:Nope>\n")}}
	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithSource(source), WithWriter(site.NewMemoryWriter()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if _, err := container.BuildSite(context.Background(), site.Request{}); err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	strict := true
	if _, err := container.BuildSite(context.Background(), site.Request{Strict: &strict}); !errors.Is(err, site.ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestContainerBuildsFromDirectories(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "docs")
	out := filepath.Join(root, "_site")
	if err := testsupport.WriteTree(src, map[string]string{"guide/a.md": "# A\n"}); err != nil {
		t.Fatalf("write tree: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Build.SourceDir = src
	cfg.Build.OutputDir = out
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if err := container.BuildSiteHandler().Execute(context.Background(), sitecmd.BuildSiteCommand{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "guide", "a.html")); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	if _, err := container.BuildSite(context.Background(), site.Request{SourceDir: filepath.Join(root, "missing")}); err == nil {
		t.Fatal("expected missing source directory error")
	}
}

func TestContainerImportsXrefMapIntoBunStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.DSN = "file:di_import?mode=memory&cache=shared"
	cfg.Cache.Enabled = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()
	if _, ok := container.SpecStore().(*xref.BunStore); !ok {
		t.Fatalf("expected bun store, got %T", container.SpecStore())
	}

	path := filepath.Join(t.TempDir(), "xrefmap.json")
	data := `{"baseUrl":"https://docs.example.com/","references":[{"uid":"A.B","name":"B","href":"a/b.html"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}

	count, err := container.ImportXrefMap(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportXrefMap: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one spec, got %d", count)
	}
	spec, err := container.SpecStore().Resolve(context.Background(), "A.B")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Href() != "https://docs.example.com/a/b.html" {
		t.Fatalf("unexpected href %q", spec.Href())
	}
}

func TestContainerResolverIncludesMapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xrefmap.json")
	if err := os.WriteFile(path, []byte(`{"references":[{"uid":"M.N","href":"https://x.example/m"}]}`), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Xref.MapFile = path
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	resolver, err := container.Resolver()
	if err != nil {
		t.Fatalf("Resolver: %v", err)
	}
	spec, err := resolver.Resolve(context.Background(), "M.N")
	if err != nil || spec.Href() != "https://x.example/m" {
		t.Fatalf("unexpected resolution %v %v", spec, err)
	}
	if _, err := resolver.Resolve(context.Background(), "Other"); !errors.Is(err, xref.ErrSpecNotFound) {
		t.Fatalf("expected ErrSpecNotFound, got %v", err)
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.TabWidth = 0
	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrTabWidthInvalid) {
		t.Fatalf("expected ErrTabWidthInvalid, got %v", err)
	}
	cfg = runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	if _, err := NewContainer(cfg); !strings.Contains(err.Error(), "cache requires a storage driver") {
		t.Fatalf("unexpected error %v", err)
	}
}
