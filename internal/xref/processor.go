package xref

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-docref/internal/dom"
	"github.com/goliatone/go-docref/internal/logging"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

// Unresolved records a marker no resolver knew. Strict mirrors the marker's
// must-resolve flag; enforcing it is up to the caller.
type Unresolved struct {
	UID    string
	Strict bool
}

// Result summarizes one Process call.
type Result struct {
	Resolved   int
	Unresolved []Unresolved
}

// HasStrictFailures reports whether any strict marker stayed unresolved.
func (r Result) HasStrictFailures() bool {
	for _, u := range r.Unresolved {
		if u.Strict {
			return true
		}
	}
	return false
}

// Processor replaces every marker in a document with its final markup.
type Processor struct {
	resolver   Resolver
	properties Properties
	language   string
	logger     interfaces.Logger
}

// ProcessorOption customizes NewProcessor.
type ProcessorOption func(*Processor)

// WithLanguage selects language specific spec properties.
func WithLanguage(language string) ProcessorOption {
	return func(p *Processor) {
		p.language = language
	}
}

// WithProperties overrides the default display and alt properties.
func WithProperties(props Properties) ProcessorOption {
	return func(p *Processor) {
		p.properties = props
	}
}

func WithLogger(logger interfaces.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewProcessor(resolver Resolver, opts ...ProcessorOption) *Processor {
	p := &Processor{
		resolver:   resolver,
		properties: DefaultProperties(),
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Process converts xref author links into markers, then resolves and
// replaces every marker in doc.
func (p *Processor) Process(ctx context.Context, doc *dom.Document) (Result, error) {
	var result Result

	for _, node := range doc.Filter(func(n *dom.Node) bool { return IsLinkNode(n) }) {
		markup, err := ConvertLinkNode(node)
		if err != nil {
			return result, err
		}
		if err := node.ReplaceWithHTML(markup); err != nil {
			return result, fmt.Errorf("xref: replace link: %w", err)
		}
	}

	for _, node := range doc.Elements("xref") {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		details, err := p.properties.From(node)
		if err != nil {
			return result, err
		}
		spec, err := p.resolve(ctx, details.UID)
		if err != nil {
			return result, err
		}
		details.ApplySpec(spec)

		if err := node.ReplaceWithHTML(details.ConvertToHTML(p.language)); err != nil {
			return result, fmt.Errorf("xref: replace marker %s: %w", details.UID, err)
		}
		if details.Resolved() {
			result.Resolved++
			continue
		}
		result.Unresolved = append(result.Unresolved, Unresolved{UID: details.UID, Strict: details.ThrowIfNotResolved})
		p.logger.Debug("xref.unresolved", "uid", details.UID, "strict", details.ThrowIfNotResolved)
	}
	return result, nil
}

func (p *Processor) resolve(ctx context.Context, uid string) (Spec, error) {
	if uid == "" || p.resolver == nil {
		return nil, nil
	}
	spec, err := p.resolver.Resolve(ctx, uid)
	if errors.Is(err, ErrSpecNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xref: resolve %s: %w", uid, err)
	}
	return spec, nil
}
