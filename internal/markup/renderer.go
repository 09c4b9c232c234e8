package markup

import (
	"fmt"
	"strings"
)

// Renderer is the marker for render capabilities. A renderer supports a token
// variant by implementing the matching interface below; Engine.Render fails
// with a RenderError for any variant it does not.
type Renderer interface{}

type NewlineRenderer interface {
	RenderNewline(e *Engine, t *NewlineToken, ctx Context) (string, error)
}

type CodeBlockRenderer interface {
	RenderCodeBlock(e *Engine, t *CodeBlockToken, ctx Context) (string, error)
}

type FenceRenderer interface {
	RenderFence(e *Engine, t *FenceToken, ctx Context) (string, error)
}

type HeadingRenderer interface {
	RenderHeading(e *Engine, t *HeadingToken, ctx Context) (string, error)
}

type HrRenderer interface {
	RenderHr(e *Engine, t *HrToken, ctx Context) (string, error)
}

type BlockquoteRenderer interface {
	RenderBlockquote(e *Engine, t *BlockquoteToken, ctx Context) (string, error)
}

type ListRenderer interface {
	RenderList(e *Engine, t *ListToken, ctx Context) (string, error)
}

type HTMLBlockRenderer interface {
	RenderHTMLBlock(e *Engine, t *HTMLBlockToken, ctx Context) (string, error)
}

type DefinitionRenderer interface {
	RenderDefinition(e *Engine, t *DefinitionToken, ctx Context) (string, error)
}

type ParagraphRenderer interface {
	RenderParagraph(e *Engine, t *ParagraphToken, ctx Context) (string, error)
}

type TextRenderer interface {
	RenderText(e *Engine, t *TextToken, ctx Context) (string, error)
}

type EscapeRenderer interface {
	RenderEscape(e *Engine, t *EscapeToken, ctx Context) (string, error)
}

type XrefRenderer interface {
	RenderXref(e *Engine, t *XrefToken, ctx Context) (string, error)
}

type AutoLinkRenderer interface {
	RenderAutoLink(e *Engine, t *AutoLinkToken, ctx Context) (string, error)
}

type LinkRenderer interface {
	RenderLink(e *Engine, t *LinkToken, ctx Context) (string, error)
}

type InlineHTMLRenderer interface {
	RenderInlineHTML(e *Engine, t *InlineHTMLToken, ctx Context) (string, error)
}

type StrongRenderer interface {
	RenderStrong(e *Engine, t *StrongToken, ctx Context) (string, error)
}

type EmRenderer interface {
	RenderEm(e *Engine, t *EmToken, ctx Context) (string, error)
}

type CodeSpanRenderer interface {
	RenderCodeSpan(e *Engine, t *CodeSpanToken, ctx Context) (string, error)
}

type BreakRenderer interface {
	RenderBreak(e *Engine, t *BreakToken, ctx Context) (string, error)
}

type InlineTextRenderer interface {
	RenderInlineText(e *Engine, t *InlineTextToken, ctx Context) (string, error)
}

// Render dispatches tok to the capability of the engine's renderer matching
// its variant.
func (e *Engine) Render(tok Token, ctx Context) (string, error) {
	r := e.renderer
	switch t := tok.(type) {
	case *NewlineToken:
		if h, ok := r.(NewlineRenderer); ok {
			return h.RenderNewline(e, t, ctx)
		}
	case *CodeBlockToken:
		if h, ok := r.(CodeBlockRenderer); ok {
			return h.RenderCodeBlock(e, t, ctx)
		}
	case *FenceToken:
		if h, ok := r.(FenceRenderer); ok {
			return h.RenderFence(e, t, ctx)
		}
	case *HeadingToken:
		if h, ok := r.(HeadingRenderer); ok {
			return h.RenderHeading(e, t, ctx)
		}
	case *HrToken:
		if h, ok := r.(HrRenderer); ok {
			return h.RenderHr(e, t, ctx)
		}
	case *BlockquoteToken:
		if h, ok := r.(BlockquoteRenderer); ok {
			return h.RenderBlockquote(e, t, ctx)
		}
	case *ListToken:
		if h, ok := r.(ListRenderer); ok {
			return h.RenderList(e, t, ctx)
		}
	case *HTMLBlockToken:
		if h, ok := r.(HTMLBlockRenderer); ok {
			return h.RenderHTMLBlock(e, t, ctx)
		}
	case *DefinitionToken:
		if h, ok := r.(DefinitionRenderer); ok {
			return h.RenderDefinition(e, t, ctx)
		}
	case *ParagraphToken:
		if h, ok := r.(ParagraphRenderer); ok {
			return h.RenderParagraph(e, t, ctx)
		}
	case *TextToken:
		if h, ok := r.(TextRenderer); ok {
			return h.RenderText(e, t, ctx)
		}
	case *EscapeToken:
		if h, ok := r.(EscapeRenderer); ok {
			return h.RenderEscape(e, t, ctx)
		}
	case *XrefToken:
		if h, ok := r.(XrefRenderer); ok {
			return h.RenderXref(e, t, ctx)
		}
	case *AutoLinkToken:
		if h, ok := r.(AutoLinkRenderer); ok {
			return h.RenderAutoLink(e, t, ctx)
		}
	case *LinkToken:
		if h, ok := r.(LinkRenderer); ok {
			return h.RenderLink(e, t, ctx)
		}
	case *InlineHTMLToken:
		if h, ok := r.(InlineHTMLRenderer); ok {
			return h.RenderInlineHTML(e, t, ctx)
		}
	case *StrongToken:
		if h, ok := r.(StrongRenderer); ok {
			return h.RenderStrong(e, t, ctx)
		}
	case *EmToken:
		if h, ok := r.(EmRenderer); ok {
			return h.RenderEm(e, t, ctx)
		}
	case *CodeSpanToken:
		if h, ok := r.(CodeSpanRenderer); ok {
			return h.RenderCodeSpan(e, t, ctx)
		}
	case *BreakToken:
		if h, ok := r.(BreakRenderer); ok {
			return h.RenderBreak(e, t, ctx)
		}
	case *InlineTextToken:
		if h, ok := r.(InlineTextRenderer); ok {
			return h.RenderInlineText(e, t, ctx)
		}
	}
	return "", &RenderError{Variant: variantName(tok), Rule: ruleName(tok)}
}

func variantName(tok Token) string {
	name := fmt.Sprintf("%T", tok)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimPrefix(name, "*")
}

func ruleName(tok Token) string {
	if tok == nil || tok.Rule() == nil {
		return "<none>"
	}
	return tok.Rule().Name()
}
