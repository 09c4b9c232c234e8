// Package docref turns markdown documentation into html pages with
// resolved cross references and validated fragment links.
package docref

import (
	"context"

	"github.com/goliatone/go-docref/internal/bookmark"
	sitecmd "github.com/goliatone/go-docref/internal/commands/site"
	"github.com/goliatone/go-docref/internal/di"
	"github.com/goliatone/go-docref/internal/markup"
	"github.com/goliatone/go-docref/internal/site"
	"github.com/goliatone/go-docref/internal/xref"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

type (
	// Engine is the rule engine that turns markup into html.
	Engine = markup.Engine
	// Spec is a resolved cross reference target.
	Spec = xref.Spec
	// SpecStore persists specs by uid.
	SpecStore = xref.Store
	// BuildRequest overrides configuration for one build.
	BuildRequest = site.Request
	// BuildResult reports the outcome of a build.
	BuildResult = site.Result
	// BookmarkWarning describes one broken fragment link.
	BookmarkWarning = bookmark.Warning

	BuildSiteCommand        = sitecmd.BuildSiteCommand
	BuildSiteResultEnvelope = sitecmd.ResultEnvelope
	ImportXrefMapCommand    = sitecmd.ImportXrefMapCommand
	BuildSiteHandler        = sitecmd.BuildSiteHandler
	ImportXrefMapHandler    = sitecmd.ImportXrefMapHandler
	Option                  = di.Option
)

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithBunDB          = di.WithBunDB
	WithCache          = di.WithCache
	WithSpecStore      = di.WithSpecStore
	WithResolver       = di.WithResolver
	WithRenderer       = di.WithRenderer
	WithSource         = di.WithSource
	WithWriter         = di.WithWriter

	ErrUnresolvedReference = site.ErrUnresolvedReference
)

// Module is the top level docref runtime.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container { return m.container }

// Engine returns the configured engine. Clone it before using it from
// several goroutines.
func (m *Module) Engine() *Engine { return m.container.Engine() }

// Markup renders one markdown text with a clone of the configured engine.
func (m *Module) Markup(text string) (string, error) {
	return m.container.Engine().Clone().Markup(text)
}

func (m *Module) SpecStore() SpecStore { return m.container.SpecStore() }

// Logger returns the logger for module.
func (m *Module) Logger(module string) interfaces.Logger { return m.container.Logger(module) }

// BuildSite builds the configured site, with req overriding directories
// and the strict policy.
func (m *Module) BuildSite(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	return m.container.BuildSite(ctx, req)
}

// ImportXrefMap stores the specs of an xrefmap file.
func (m *Module) ImportXrefMap(ctx context.Context, path string) (int, error) {
	return m.container.ImportXrefMap(ctx, path)
}

func (m *Module) BuildSiteHandler() *BuildSiteHandler { return m.container.BuildSiteHandler() }

func (m *Module) ImportXrefMapHandler() *ImportXrefMapHandler {
	return m.container.ImportXrefMapHandler()
}

// Close releases resources opened from the configuration.
func (m *Module) Close() error { return m.container.Close() }
