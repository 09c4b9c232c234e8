// Package sitecmd exposes site builds and xref imports as commands.
package sitecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-docref/internal/commands"
	"github.com/goliatone/go-docref/internal/site"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

// ErrServiceRequired is returned when a handler has no service to call.
var ErrServiceRequired = errors.New("sitecmd: service is required")

// Service is the build surface the handlers delegate to.
type Service interface {
	BuildSite(ctx context.Context, req site.Request) (*site.Result, error)
	ImportXrefMap(ctx context.Context, path string) (int, error)
}

// BuildSiteHandler runs site builds through the shared command handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

func NewBuildSiteHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		result, err := service.BuildSite(ctx, msg.request())
		if msg.ResultCallback != nil {
			metadata := map[string]any{"operation": "build"}
			if msg.DryRun {
				metadata["dry_run"] = true
			}
			msg.ResultCallback(ResultEnvelope{Result: result, Metadata: metadata})
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](logger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.SourceDir != "" {
				fields["source_dir"] = msg.SourceDir
			}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if msg.Strict != nil {
				fields["strict"] = *msg.Strict
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand]()),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ImportXrefMapHandler stores the specs of an xrefmap file.
type ImportXrefMapHandler struct {
	inner *commands.Handler[ImportXrefMapCommand]
}

func NewImportXrefMapHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[ImportXrefMapCommand]) *ImportXrefMapHandler {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg ImportXrefMapCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		count, err := service.ImportXrefMap(ctx, msg.Path)
		if err != nil {
			return err
		}
		logger.Info("xref.import.complete", "path", msg.Path, "specs", count)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportXrefMapCommand]{
		commands.WithLogger[ImportXrefMapCommand](logger),
		commands.WithOperation[ImportXrefMapCommand]("xref.import"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportXrefMapHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportXrefMapCommand].
func (h *ImportXrefMapHandler) Execute(ctx context.Context, msg ImportXrefMapCommand) error {
	return h.inner.Execute(ctx, msg)
}
