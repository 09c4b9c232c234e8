// Package di wires the docref runtime from a Config.
package di

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docref/internal/bookmark"
	sitecmd "github.com/goliatone/go-docref/internal/commands/site"
	"github.com/goliatone/go-docref/internal/logging"
	"github.com/goliatone/go-docref/internal/logging/console"
	"github.com/goliatone/go-docref/internal/logging/gologger"
	"github.com/goliatone/go-docref/internal/markup"
	"github.com/goliatone/go-docref/internal/runtimeconfig"
	"github.com/goliatone/go-docref/internal/site"
	"github.com/goliatone/go-docref/internal/xref"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

// Container holds the wired services of one docref runtime.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	store     xref.Store
	resolvers []xref.Resolver
	renderer  markup.Renderer
	engine    *markup.Engine
	validator *bookmark.Validator

	source fs.FS
	writer site.Writer
}

// Option overrides a dependency of the container.
type Option func(*Container)

// WithLoggerProvider replaces the provider selected by the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB stores specs in db regardless of the storage config. The caller
// keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache injects the cache used around the bun spec store.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithSpecStore replaces the spec store.
func WithSpecStore(store xref.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithResolver appends a resolver consulted after the spec store.
func WithResolver(resolver xref.Resolver) Option {
	return func(c *Container) {
		if resolver != nil {
			c.resolvers = append(c.resolvers, resolver)
		}
	}
}

// WithRenderer replaces the built-in html renderer.
func WithRenderer(renderer markup.Renderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithSource reads documents from fsys instead of Build.SourceDir.
func WithSource(fsys fs.FS) Option {
	return func(c *Container) {
		c.source = fsys
	}
}

// WithWriter writes outputs through w instead of Build.OutputDir.
func WithWriter(w site.Writer) Option {
	return func(c *Container) {
		c.writer = w
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStore(context.Background()); err != nil {
		return nil, err
	}
	c.configureEngine()
	c.configureValidator()
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.cacheService != nil {
		return
	}
	cfg := repocache.DefaultConfig()
	if c.Config.Cache.TTL > 0 {
		cfg.TTL = c.Config.Cache.TTL
	}
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		c.Logger("docref.di").Warn("cache.init.failed", "error", err)
		return
	}
	c.cacheService = service
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	if c.bunDB == nil && c.Config.Storage.Driver != "" {
		db, err := openBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB, c.ownsDB = db, true
	}
	if c.bunDB == nil {
		c.store = xref.NewMemoryStore()
		return nil
	}
	if err := xref.EnsureSchema(ctx, c.bunDB); err != nil {
		return fmt.Errorf("di: prepare spec store: %w", err)
	}
	if c.cacheService != nil {
		c.store = xref.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.store = xref.NewBunStore(c.bunDB)
	}
	return nil
}

func (c *Container) configureEngine() {
	renderer := c.renderer
	if renderer == nil {
		renderer = markup.NewHTMLRenderer()
	}
	c.engine = markup.NewEngine(markup.BlockContext(), renderer,
		markup.WithOptions(markup.Options{
			TabWidth:   c.Config.Markup.TabWidth,
			HeadingIDs: c.Config.Markup.HeadingIDs,
			Sanitize:   c.Config.Markup.Sanitize,
		}),
		markup.WithLogger(logging.MarkupLogger(c.loggerProvider)),
	)
}

func (c *Container) configureValidator() {
	opts := []bookmark.Option{
		bookmark.WithWhitelist(c.Config.Bookmark.Whitelist...),
		bookmark.WithSink(logging.BookmarkLogger(c.loggerProvider)),
	}
	if c.Config.Bookmark.CaseInsensitivePaths != nil {
		opts = append(opts, bookmark.WithCaseInsensitivePaths(*c.Config.Bookmark.CaseInsensitivePaths))
	}
	c.validator = bookmark.NewValidator(opts...)
}

// Logger returns the logger for module.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Engine() *markup.Engine { return c.engine }

func (c *Container) SpecStore() xref.Store { return c.store }

func (c *Container) Validator() *bookmark.Validator { return c.validator }

// Resolver chains the spec store, the configured xrefmap and any extra
// resolvers, in that order.
func (c *Container) Resolver() (xref.Resolver, error) {
	chain := xref.Chain{c.store}
	if path := strings.TrimSpace(c.Config.Xref.MapFile); path != "" {
		m, err := loadMapFile(path)
		if err != nil {
			return nil, err
		}
		chain = append(chain, m.Store())
	}
	return append(chain, c.resolvers...), nil
}

// Builder returns a site builder for req merged over the build config.
func (c *Container) Builder(req site.Request) (*site.Builder, error) {
	build := c.Config.Build
	sourceDir := firstNonBlank(req.SourceDir, build.SourceDir)
	outputDir := firstNonBlank(req.OutputDir, build.OutputDir)
	strict := c.Config.Xref.Strict
	if req.Strict != nil {
		strict = *req.Strict
	}

	source := c.source
	if source == nil || req.SourceDir != "" {
		info, err := os.Stat(sourceDir)
		if err != nil {
			return nil, fmt.Errorf("di: source directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("di: source %s is not a directory", sourceDir)
		}
		source = os.DirFS(sourceDir)
	}
	writer := c.writer
	if writer == nil || req.OutputDir != "" {
		writer = site.NewDirWriter(outputDir)
	}

	resolver, err := c.Resolver()
	if err != nil {
		return nil, err
	}

	return site.NewBuilder(site.Config{
		Pattern:   build.Pattern,
		Recursive: build.Recursive,
		Workers:   build.Workers,
		Xref:      c.Config.Features.Xref,
		Strict:    strict,
		Language:  c.Config.Xref.Language,
		Properties: xref.Properties{
			Display: c.Config.Xref.DisplayProperty,
			Alt:     c.Config.Xref.AltProperty,
		},
		Bookmarks:     c.Config.Features.Bookmarks,
		RenderTimeout: build.RenderTimeout,
		DryRun:        req.DryRun,
	}, site.Dependencies{
		Source:    source,
		Writer:    writer,
		Engine:    c.engine,
		Resolver:  resolver,
		Validator: c.validator,
		Logger:    logging.SiteLogger(c.loggerProvider),
	}), nil
}

// BuildSite runs one build.
func (c *Container) BuildSite(ctx context.Context, req site.Request) (*site.Result, error) {
	builder, err := c.Builder(req)
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx)
}

// ImportXrefMap stores every spec of the xrefmap at path and returns how
// many were stored.
func (c *Container) ImportXrefMap(ctx context.Context, path string) (int, error) {
	m, err := loadMapFile(path)
	if err != nil {
		return 0, err
	}
	for i, spec := range m.References {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := c.store.Put(ctx, spec); err != nil {
			return i, fmt.Errorf("di: import %s: %w", spec.UID(), err)
		}
	}
	c.Logger("docref.xref").Info("xref.import", "path", path, "specs", len(m.References))
	return len(m.References), nil
}

// BuildSiteHandler exposes BuildSite as a command handler.
func (c *Container) BuildSiteHandler() *sitecmd.BuildSiteHandler {
	return sitecmd.NewBuildSiteHandler(c, c.commandLogger())
}

// ImportXrefMapHandler exposes ImportXrefMap as a command handler.
func (c *Container) ImportXrefMapHandler() *sitecmd.ImportXrefMapHandler {
	return sitecmd.NewImportXrefMapHandler(c, c.commandLogger())
}

func (c *Container) commandLogger() interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, "docref.commands.site")
}

// Close releases the database opened from the storage config.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		return err
	}
	return nil
}

func loadMapFile(path string) (*xref.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("di: open xrefmap: %w", err)
	}
	defer f.Close()
	m, err := xref.LoadMap(f)
	if err != nil {
		return nil, fmt.Errorf("di: load xrefmap %s: %w", path, err)
	}
	return m, nil
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
