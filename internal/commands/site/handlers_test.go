package sitecmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-docref/internal/bookmark"
	"github.com/goliatone/go-docref/internal/site"
)

type fakeService struct {
	buildFunc  func(ctx context.Context, req site.Request) (*site.Result, error)
	importFunc func(ctx context.Context, path string) (int, error)
}

func (f *fakeService) BuildSite(ctx context.Context, req site.Request) (*site.Result, error) {
	if f.buildFunc == nil {
		return &site.Result{}, nil
	}
	return f.buildFunc(ctx, req)
}

func (f *fakeService) ImportXrefMap(ctx context.Context, path string) (int, error) {
	if f.importFunc == nil {
		return 0, nil
	}
	return f.importFunc(ctx, path)
}

func loadBuildFixture(t *testing.T, name string) BuildSiteCommand {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var cmd BuildSiteCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return cmd
}

func TestBuildSiteHandler_Execute(t *testing.T) {
	cmd := loadBuildFixture(t, "build_basic.json")

	var captured site.Request
	svc := &fakeService{
		buildFunc: func(ctx context.Context, req site.Request) (*site.Result, error) {
			captured = req
			return &site.Result{Documents: 4, Warnings: []bookmark.Warning{{Fragment: "x"}}}, nil
		},
	}

	var envelope ResultEnvelope
	cmd.ResultCallback = func(env ResultEnvelope) { envelope = env }

	if err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	if captured.SourceDir != "docs" || captured.OutputDir != "_site" {
		t.Fatalf("unexpected request %+v", captured)
	}
	if captured.Strict == nil || !*captured.Strict {
		t.Fatalf("expected strict override, got %+v", captured.Strict)
	}
	if envelope.Result == nil || envelope.Result.Documents != 4 {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
	if envelope.Metadata["operation"] != "build" {
		t.Fatalf("expected operation build, got %v", envelope.Metadata["operation"])
	}
}

func TestBuildSiteHandler_PropagatesFailuresWithResult(t *testing.T) {
	svc := &fakeService{
		buildFunc: func(ctx context.Context, req site.Request) (*site.Result, error) {
			return &site.Result{Documents: 1}, site.ErrUnresolvedReference
		},
	}
	var envelope ResultEnvelope
	err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), BuildSiteCommand{
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	})
	if err == nil {
		t.Fatal("expected build error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if envelope.Result == nil || envelope.Result.Documents != 1 {
		t.Fatalf("expected partial result to reach the callback, got %+v", envelope)
	}
}

func TestBuildSiteCommandValidation(t *testing.T) {
	cases := map[string]BuildSiteCommand{
		"blank source": {SourceDir: "  "},
		"same dirs":    {SourceDir: "docs", OutputDir: "docs"},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			svc := &fakeService{buildFunc: func(context.Context, site.Request) (*site.Result, error) {
				called = true
				return nil, nil
			}}
			err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), cmd)
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
			if called {
				t.Fatal("service must not run for invalid commands")
			}
		})
	}

	if err := (BuildSiteCommand{}).Validate(); err != nil {
		t.Fatalf("empty command should use configured dirs, got %v", err)
	}
}

func TestBuildSiteHandler_RequiresService(t *testing.T) {
	err := NewBuildSiteHandler(nil, nil).Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestImportXrefMapHandler(t *testing.T) {
	var path string
	svc := &fakeService{importFunc: func(ctx context.Context, p string) (int, error) {
		path = p
		return 3, nil
	}}
	handler := NewImportXrefMapHandler(svc, nil)

	if err := handler.Execute(context.Background(), ImportXrefMapCommand{Path: "xrefmap.json"}); err != nil {
		t.Fatalf("execute import: %v", err)
	}
	if path != "xrefmap.json" {
		t.Fatalf("unexpected path %q", path)
	}

	err := handler.Execute(context.Background(), ImportXrefMapCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}
