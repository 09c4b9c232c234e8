// Package site builds a directory of markdown documents into html pages,
// resolving cross references and validating fragment links on the way.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-docref/internal/bookmark"
	"github.com/goliatone/go-docref/internal/dom"
	"github.com/goliatone/go-docref/internal/logging"
	"github.com/goliatone/go-docref/internal/markup"
	"github.com/goliatone/go-docref/internal/xref"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

var (
	// ErrUnresolvedReference is returned after a strict build when a marker
	// flagged as must-resolve found no spec.
	ErrUnresolvedReference = errors.New("site: unresolved cross reference")
	// ErrSourceRequired indicates the builder has no filesystem to read.
	ErrSourceRequired = errors.New("site: source filesystem is required")
	// ErrEngineRequired indicates the builder has no markup engine.
	ErrEngineRequired = errors.New("site: markup engine is required")
)

const documentType = "Conceptual"

// Config captures the build behaviour toggles.
type Config struct {
	Pattern   string
	Recursive bool
	Workers   int
	// Xref enables marker resolution.
	Xref       bool
	Strict     bool
	Language   string
	Properties xref.Properties
	// Bookmarks enables fragment link validation.
	Bookmarks bool
	// RenderTimeout bounds each document when positive.
	RenderTimeout time.Duration
	DryRun        bool
}

// Dependencies lists the collaborators of a Builder.
type Dependencies struct {
	Source fs.FS
	Writer Writer
	// Engine is the template every document engine is derived from.
	Engine *markup.Engine
	// Resolver is consulted after the specs registered by the documents.
	Resolver  xref.Resolver
	Validator *bookmark.Validator
	Logger    interfaces.Logger
}

// Result reports aggregated build metadata.
type Result struct {
	Documents  int
	Written    []string
	Resolved   int
	Unresolved []UnresolvedReference
	Warnings   []bookmark.Warning
	Manifest   interfaces.Manifest
	Duration   time.Duration
	DryRun     bool
}

// UnresolvedReference is a marker left unresolved in one output file.
type UnresolvedReference struct {
	Source string
	Output string
	UID    string
	Strict bool
}

// Builder runs site builds.
type Builder struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

func NewBuilder(cfg Config, deps Dependencies) *Builder {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Validator == nil {
		deps.Validator = bookmark.NewValidator(bookmark.WithSink(deps.Logger))
	}
	if deps.Writer == nil || cfg.DryRun {
		deps.Writer = NewMemoryWriter()
	}
	if cfg.Properties == (xref.Properties{}) {
		cfg.Properties = xref.DefaultProperties()
	}
	return &Builder{cfg: cfg, deps: deps, now: time.Now}
}

type renderOutcome struct {
	source     *Source
	output     string
	resolved   int
	unresolved []xref.Unresolved
	err        error
}

// Build loads, renders and writes every document, then checks bookmarks.
// Rendering errors are joined; a strict build with unresolved must-resolve
// markers fails with ErrUnresolvedReference once everything is written.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.deps.Source == nil {
		return nil, ErrSourceRequired
	}
	if b.deps.Engine == nil {
		return nil, ErrEngineRequired
	}
	start := b.now()

	sources, err := NewLoader(b.deps.Source, LoaderConfig{Pattern: b.cfg.Pattern, Recursive: b.cfg.Recursive}).Load(ctx)
	if err != nil {
		return nil, err
	}

	local := xref.NewMemoryStore()
	for _, source := range sources {
		if source.UID == "" {
			continue
		}
		if err := local.Put(ctx, xref.NewSpec(source.UID, source.OutputPath(), source.DisplayName())); err != nil {
			return nil, err
		}
	}

	manifest := buildManifest(sources)
	session, manifest := b.deps.Validator.Init(manifest)
	ctx = logging.ContextWithFields(ctx, map[string]any{"build_session": session.ID().String()})
	logger := b.deps.Logger.WithContext(ctx)
	logger.Debug("site.build.start", "documents", len(sources))

	var (
		mu       sync.Mutex
		outcomes = make([]renderOutcome, 0, len(sources))
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, outcome)
	}

	workerCount := b.effectiveWorkerCount(len(sources))
	jobs := make(chan *Source)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				collect(b.renderDocument(ctx, session, local, source))
			}
		}()
	}
	var cancelErr error
	for _, source := range sources {
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
		case jobs <- source:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	_, warnings, err := session.Check(manifest)
	if err != nil {
		return nil, err
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].source.Path < outcomes[j].source.Path
	})
	result := &Result{
		Documents: len(sources),
		Warnings:  warnings,
		Manifest:  manifest,
		DryRun:    b.cfg.DryRun,
	}
	var errs []error
	if cancelErr != nil {
		errs = append(errs, cancelErr)
	}
	var strict []string
	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			continue
		}
		result.Written = append(result.Written, outcome.output)
		result.Resolved += outcome.resolved
		for _, u := range outcome.unresolved {
			result.Unresolved = append(result.Unresolved, UnresolvedReference{
				Source: outcome.source.Path,
				Output: outcome.output,
				UID:    u.UID,
				Strict: u.Strict,
			})
			if u.Strict {
				strict = append(strict, u.UID)
			}
		}
	}
	if b.cfg.Strict && len(strict) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnresolvedReference, strings.Join(strict, ", ")))
	}
	result.Duration = b.now().Sub(start)

	logger.Info("site.build.complete",
		"documents", result.Documents,
		"written", len(result.Written),
		"resolved", result.Resolved,
		"unresolved", len(result.Unresolved),
		"warnings", len(result.Warnings),
		"duration", result.Duration,
	)
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	return result, nil
}

func (b *Builder) renderDocument(ctx context.Context, session *bookmark.Session, local *xref.MemoryStore, source *Source) renderOutcome {
	output := source.OutputPath()
	outcome := renderOutcome{source: source, output: output}
	logger := logging.WithDocumentContext(b.deps.Logger.WithContext(ctx), source.Path, output)

	if b.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.RenderTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		outcome.err = fmt.Errorf("site: %s: %w", source.Path, err)
		return outcome
	}

	engine := b.documentEngine()
	fragment, err := engine.Markup(string(source.Body))
	if err != nil {
		outcome.err = fmt.Errorf("site: render %s: %w", source.Path, err)
		return outcome
	}
	doc, err := dom.ParseString(wrapPage(source.DisplayName(), fragment))
	if err != nil {
		outcome.err = fmt.Errorf("site: parse %s: %w", output, err)
		return outcome
	}

	if b.cfg.Xref {
		processor := xref.NewProcessor(b.resolverFor(local, output),
			xref.WithLanguage(b.cfg.Language),
			xref.WithProperties(b.cfg.Properties),
			xref.WithLogger(logger),
		)
		res, err := processor.Process(ctx, doc)
		if err != nil {
			outcome.err = fmt.Errorf("site: xref %s: %w", source.Path, err)
			return outcome
		}
		outcome.resolved = res.Resolved
		outcome.unresolved = res.Unresolved
		for _, u := range res.Unresolved {
			logger.Warn("site.xref.unresolved", "uid", u.UID, "strict", u.Strict)
		}
	}

	if err := b.deps.Writer.WriteFile(ctx, output, []byte(doc.String())); err != nil {
		outcome.err = fmt.Errorf("site: write %s: %w", output, err)
		return outcome
	}

	if b.cfg.Bookmarks {
		item := interfaces.ManifestItem{Type: documentType, SourceRelativePath: source.Path}
		if err := session.Collect(doc, item, source.Path, output); err != nil {
			outcome.err = fmt.Errorf("site: bookmarks %s: %w", output, err)
			return outcome
		}
	}
	logger.Debug("site.document.rendered")
	return outcome
}

// documentEngine derives an engine with its own link definitions so
// reference definitions do not leak between documents.
func (b *Builder) documentEngine() *markup.Engine {
	base := b.deps.Engine
	return markup.NewEngine(base.Context(), base.Renderer(),
		markup.WithOptions(base.Options()),
		markup.WithLinks(markup.NewLinkDefinitions()),
		markup.WithLogger(base.Logger()),
	)
}

// resolverFor consults the document specs first, rewriting their hrefs
// relative to output, then the configured resolver.
func (b *Builder) resolverFor(local *xref.MemoryStore, output string) xref.Resolver {
	relative := xref.ResolverFunc(func(ctx context.Context, uid string) (xref.Spec, error) {
		spec, err := local.Resolve(ctx, uid)
		if err != nil {
			return nil, err
		}
		spec[xref.HrefKey] = relativeHref(output, spec.Href())
		return spec, nil
	})
	return xref.Chain{relative, b.deps.Resolver}
}

func (b *Builder) effectiveWorkerCount(documents int) int {
	workers := b.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if documents > 0 && workers > documents {
		workers = documents
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func buildManifest(sources []*Source) interfaces.Manifest {
	manifest := interfaces.Manifest{Files: make([]interfaces.ManifestItem, 0, len(sources))}
	for _, source := range sources {
		manifest.Files = append(manifest.Files, interfaces.ManifestItem{
			Type:               documentType,
			SourceRelativePath: source.Path,
			OutputFiles: map[string]interfaces.OutputFileInfo{
				".html": {RelativePath: source.OutputPath()},
			},
			Metadata: map[string]any{"uid": source.UID, "checksum": source.Checksum},
		})
	}
	return manifest
}
