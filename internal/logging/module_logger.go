package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-docref/pkg/interfaces"
)

const (
	rootModule     = "docref"
	markupModule   = "docref.markup"
	xrefModule     = "docref.xref"
	bookmarkModule = "docref.bookmark"
	siteModule     = "docref.site"
)

const (
	fieldSourceFile = "source_file"
	fieldOutputFile = "output_file"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// has no logger for the name, yields NoOp. Every returned logger carries a
// "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if strings.TrimSpace(module) == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// MarkupLogger is the namespace used by the rule engine.
func MarkupLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markupModule)
}

// XrefLogger is the namespace used by cross-reference resolution.
func XrefLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, xrefModule)
}

// BookmarkLogger is the namespace the bookmark validator reports through.
func BookmarkLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bookmarkModule)
}

// SiteLogger is the namespace used by the build pipeline.
func SiteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, siteModule)
}

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it untouched otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}

// WithDocumentContext tags a logger with the source and output file of the
// document being processed. Blank values are skipped.
func WithDocumentContext(logger interfaces.Logger, source, output string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(source); trimmed != "" {
		fields[fieldSourceFile] = trimmed
	}
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		fields[fieldOutputFile] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
