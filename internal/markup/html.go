package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark/util"
)

// HTMLRenderer renders every built-in token variant to HTML.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

func (*HTMLRenderer) RenderNewline(*Engine, *NewlineToken, Context) (string, error) {
	return "", nil
}

func (*HTMLRenderer) RenderCodeBlock(_ *Engine, t *CodeBlockToken, _ Context) (string, error) {
	return "<pre><code>" + escapeHTML(t.Code) + "\n</code></pre>\n", nil
}

func (*HTMLRenderer) RenderFence(_ *Engine, t *FenceToken, _ Context) (string, error) {
	if t.Lang == "" {
		return "<pre><code>" + escapeHTML(t.Code) + "\n</code></pre>\n", nil
	}
	return fmt.Sprintf("<pre><code class=\"lang-%s\">%s\n</code></pre>\n", escapeHTML(t.Lang), escapeHTML(t.Code)), nil
}

func (r *HTMLRenderer) RenderHeading(e *Engine, t *HeadingToken, ctx Context) (string, error) {
	content, err := r.inline(e, ctx, t.Text)
	if err != nil {
		return "", err
	}
	tag := "h" + strconv.Itoa(t.Level)
	if e.Options().HeadingIDs {
		if id, err := slug.Normalize(t.Text); err == nil && id != "" {
			return fmt.Sprintf("<%s id=\"%s\">%s</%s>\n", tag, escapeHTML(id), content, tag), nil
		}
	}
	return fmt.Sprintf("<%s>%s</%s>\n", tag, content, tag), nil
}

func (*HTMLRenderer) RenderHr(*Engine, *HrToken, Context) (string, error) {
	return "<hr>\n", nil
}

func (r *HTMLRenderer) RenderBlockquote(e *Engine, t *BlockquoteToken, ctx Context) (string, error) {
	depth := ctx.Variables().Int(VarQuoteDepth)
	body, err := r.block(e, ctx.WithVariable(VarQuoteDepth, depth+1).WithVariable(VarTightList, false), t.Content)
	if err != nil {
		return "", err
	}
	return "<blockquote>\n" + body + "</blockquote>\n", nil
}

func (r *HTMLRenderer) RenderList(e *Engine, t *ListToken, ctx Context) (string, error) {
	depth := ctx.Variables().Int(VarListDepth)
	var out strings.Builder
	switch {
	case !t.Ordered:
		out.WriteString("<ul>\n")
	case t.Start != 1:
		fmt.Fprintf(&out, "<ol start=\"%d\">\n", t.Start)
	default:
		out.WriteString("<ol>\n")
	}
	for _, item := range t.Items {
		itemCtx := ctx.WithVariable(VarListDepth, depth+1).WithVariable(VarTightList, !item.Loose)
		body, err := r.block(e, itemCtx, item.Content)
		if err != nil {
			return "", err
		}
		out.WriteString("<li>" + strings.TrimSuffix(body, "\n") + "</li>\n")
	}
	if t.Ordered {
		out.WriteString("</ol>\n")
	} else {
		out.WriteString("</ul>\n")
	}
	return out.String(), nil
}

func (*HTMLRenderer) RenderHTMLBlock(e *Engine, t *HTMLBlockToken, _ Context) (string, error) {
	if e.Options().Sanitize {
		return "<p>" + escapeHTML(t.HTML) + "</p>\n", nil
	}
	return t.HTML + "\n", nil
}

func (*HTMLRenderer) RenderDefinition(*Engine, *DefinitionToken, Context) (string, error) {
	return "", nil
}

func (r *HTMLRenderer) RenderParagraph(e *Engine, t *ParagraphToken, ctx Context) (string, error) {
	content, err := r.inline(e, ctx, t.Text)
	if err != nil {
		return "", err
	}
	if ctx.Variables().Bool(VarTightList) {
		return content + "\n", nil
	}
	return "<p>" + content + "</p>\n", nil
}

func (r *HTMLRenderer) RenderText(e *Engine, t *TextToken, ctx Context) (string, error) {
	content, err := r.inline(e, ctx, t.Text)
	if err != nil {
		return "", err
	}
	return content + "\n", nil
}

func (*HTMLRenderer) RenderEscape(_ *Engine, t *EscapeToken, _ Context) (string, error) {
	return escapeHTML(t.Char), nil
}

// RenderXref emits the placeholder element resolved later by the xref
// processor.
func (*HTMLRenderer) RenderXref(_ *Engine, t *XrefToken, _ Context) (string, error) {
	throw := "False"
	if t.Strict {
		throw = "True"
	}
	return fmt.Sprintf("<xref href=\"%s\" data-throw-if-not-resolved=\"%s\" data-raw-source=\"%s\"></xref>",
		escapeURL(t.Target), throw, escapeHTML(t.Span().Raw)), nil
}

func (*HTMLRenderer) RenderAutoLink(_ *Engine, t *AutoLinkToken, _ Context) (string, error) {
	return fmt.Sprintf("<a href=\"%s\">%s</a>", escapeURL(t.Href), escapeHTML(t.Text)), nil
}

func (r *HTMLRenderer) RenderLink(e *Engine, t *LinkToken, _ Context) (string, error) {
	href, title := t.Href, t.Title
	if t.Ref != "" {
		link, ok := e.Links().Lookup(t.Ref)
		if !ok {
			return escapeHTML(t.Span().Raw), nil
		}
		href, title = link.Href, link.Title
	}

	if t.Image {
		out := fmt.Sprintf("<img src=\"%s\" alt=\"%s\"", escapeURL(href), escapeHTML(t.Text))
		if title != "" {
			out += fmt.Sprintf(" title=\"%s\"", escapeHTML(title))
		}
		return out + ">", nil
	}

	prev, err := e.SwitchVariable(VarInLink, true)
	if err != nil {
		return "", err
	}
	content, err := e.Mark(t.Text)
	e.SwitchContext(prev)
	if err != nil {
		return "", err
	}

	out := fmt.Sprintf("<a href=\"%s\"", escapeURL(href))
	if title != "" {
		out += fmt.Sprintf(" title=\"%s\"", escapeHTML(title))
	}
	return out + ">" + content + "</a>", nil
}

func (*HTMLRenderer) RenderInlineHTML(e *Engine, t *InlineHTMLToken, _ Context) (string, error) {
	if e.Options().Sanitize {
		return escapeHTML(t.HTML), nil
	}
	return t.HTML, nil
}

func (*HTMLRenderer) RenderStrong(e *Engine, t *StrongToken, _ Context) (string, error) {
	content, err := e.Mark(t.Content)
	if err != nil {
		return "", err
	}
	return "<strong>" + content + "</strong>", nil
}

func (*HTMLRenderer) RenderEm(e *Engine, t *EmToken, _ Context) (string, error) {
	content, err := e.Mark(t.Content)
	if err != nil {
		return "", err
	}
	return "<em>" + content + "</em>", nil
}

func (*HTMLRenderer) RenderCodeSpan(_ *Engine, t *CodeSpanToken, _ Context) (string, error) {
	return "<code>" + escapeHTML(t.Code) + "</code>", nil
}

func (*HTMLRenderer) RenderBreak(*Engine, *BreakToken, Context) (string, error) {
	return "<br>\n", nil
}

func (*HTMLRenderer) RenderInlineText(_ *Engine, t *InlineTextToken, _ Context) (string, error) {
	return escapeHTML(t.Text), nil
}

// inline renders text with the inline grammar bound to ctx on a clone of e.
func (*HTMLRenderer) inline(e *Engine, ctx Context, text string) (string, error) {
	inlineCtx, ok := ctx.Variables().Context(VarInlineContext)
	if !ok {
		inlineCtx = InlineContext()
	}
	nested := e.Clone()
	nested.SwitchContext(inlineCtx)
	return nested.Mark(text)
}

// block renders nested block content in ctx on a clone of e.
func (*HTMLRenderer) block(e *Engine, ctx Context, text string) (string, error) {
	nested := e.Clone()
	nested.SwitchContext(ctx)
	return nested.Mark(text)
}

func escapeHTML(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}

func escapeURL(s string) string {
	return escapeHTML(string(util.URLEscape([]byte(s), false)))
}
