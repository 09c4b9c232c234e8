package markup

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-docref/internal/logging"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

// Options tune normalization and the built-in HTML renderer.
type Options struct {
	// TabWidth is the number of spaces a tab expands to. Values below 1 use 4.
	TabWidth int
	// HeadingIDs adds slug ids to rendered headings.
	HeadingIDs bool
	// Sanitize escapes raw HTML blocks instead of passing them through.
	Sanitize bool
}

// DefaultOptions mirrors runtimeconfig defaults.
func DefaultOptions() Options {
	return Options{TabWidth: 4, HeadingIDs: true}
}

// Engine tokenizes and renders markup. An Engine is not safe for concurrent
// use; give each goroutine its own Clone.
type Engine struct {
	context  Context
	renderer Renderer
	links    *LinkDefinitions
	options  Options
	logger   interfaces.Logger
}

// EngineOption customizes NewEngine.
type EngineOption func(*Engine)

func WithOptions(opts Options) EngineOption {
	return func(e *Engine) {
		e.options = opts
	}
}

// WithLinks makes the engine share an existing definitions table.
func WithLinks(links *LinkDefinitions) EngineOption {
	return func(e *Engine) {
		if links != nil {
			e.links = links
		}
	}
}

func WithLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine starting in ctx and rendering with renderer.
func NewEngine(ctx Context, renderer Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		context:  ctx,
		renderer: renderer,
		options:  DefaultOptions(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.links == nil {
		e.links = NewLinkDefinitions()
	}
	if e.options.TabWidth < 1 {
		e.options.TabWidth = 4
	}
	return e
}

// Context returns the active context.
func (e *Engine) Context() Context { return e.context }

func (e *Engine) Renderer() Renderer { return e.renderer }

func (e *Engine) Links() *LinkDefinitions { return e.links }

func (e *Engine) Options() Options { return e.options }

func (e *Engine) Logger() interfaces.Logger { return e.logger }

// SwitchContext installs ctx and returns the context it replaced.
func (e *Engine) SwitchContext(ctx Context) Context {
	prev := e.context
	e.context = ctx
	return prev
}

// SwitchVariable installs a copy of the active context with key bound to
// value and returns the context it replaced.
func (e *Engine) SwitchVariable(key string, value any) (Context, error) {
	if strings.TrimSpace(key) == "" {
		return e.context, ErrEmptyVariableKey
	}
	return e.SwitchContext(e.context.WithVariable(key, value)), nil
}

// Clone returns an engine with the same renderer, options, logger and link
// definitions. Context switches on the clone do not affect e.
func (e *Engine) Clone() *Engine {
	clone := *e
	return &clone
}

var (
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ", "\u2424", "\n")
	blankLines  = regexp.MustCompile(`(?m)^ +$`)
)

// Normalize unifies line endings and expands tabs.
func (e *Engine) Normalize(text string) string {
	text = lineEndings.Replace(text)
	return strings.ReplaceAll(text, "\t", strings.Repeat(" ", e.options.TabWidth))
}

// Preprocess empties lines that contain only spaces.
func (e *Engine) Preprocess(text string) string {
	return blankLines.ReplaceAllString(text, "")
}

// Tokenize preprocesses text and splits it into tokens using the active
// context. The spans of the returned tokens cover the preprocessed text
// exactly and in order.
func (e *Engine) Tokenize(text string) ([]Token, error) {
	src := e.Preprocess(text)
	cursor := newCursor(src)
	var tokens []Token
	for !cursor.Done() {
		tok, err := e.next(cursor)
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	e.logger.Trace("markup.tokenize", "context", e.context.name, "tokens", len(tokens), "bytes", len(src))
	return tokens, nil
}

func (e *Engine) next(c *Cursor) (Token, error) {
	start := c.Offset()
	for _, rule := range e.context.rules {
		tok := rule.TryMatch(e, c)
		if tok == nil {
			if c.Offset() != start {
				return nil, &RuleError{Rule: rule.Name(), Offset: start, Err: ErrSpanMismatch}
			}
			continue
		}
		span := tok.Span()
		switch {
		case c.Offset() == start || span.Len() == 0:
			return nil, &RuleError{Rule: rule.Name(), Offset: start, Err: ErrEmptyMatch}
		case span.Start != start || span.End != c.Offset():
			return nil, &RuleError{Rule: rule.Name(), Offset: start, Err: ErrSpanMismatch}
		}
		return tok, nil
	}
	line, _, _ := strings.Cut(c.Remaining(), "\n")
	return nil, &ParseError{Context: e.context.name, Offset: start, Line: line}
}

// Mark tokenizes text without normalizing it and renders every token against
// the context active at the time the token is rendered.
func (e *Engine) Mark(text string) (string, error) {
	tokens, err := e.Tokenize(text)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, tok := range tokens {
		rendered, err := e.Render(tok, e.context)
		if err != nil {
			return "", err
		}
		out.WriteString(rendered)
	}
	return out.String(), nil
}

// Markup normalizes text, then marks it.
func (e *Engine) Markup(text string) (string, error) {
	return e.Mark(e.Normalize(text))
}
