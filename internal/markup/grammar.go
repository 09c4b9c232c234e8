package markup

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-docref/internal/util"
)

// Context names of the built-in grammar.
const (
	BlockContextName  = "block"
	InlineContextName = "inline"
)

// Variables understood by the built-in grammar and renderer.
const (
	// VarInlineContext holds the Context used for inline content of blocks.
	VarInlineContext = "inline.context"
	// VarInLink is true while link text is rendered.
	VarInLink = "inline.inLink"
	// VarQuoteDepth counts enclosing blockquotes.
	VarQuoteDepth = "block.quoteDepth"
	// VarListDepth counts enclosing lists.
	VarListDepth = "block.listDepth"
	// VarTightList is true while the items of a tight list are rendered.
	VarTightList = "block.tightList"
)

// BlockContext returns the built-in block grammar with the inline grammar
// bound under VarInlineContext.
func BlockContext() Context {
	return NewContext(BlockContextName, BlockRules(), NewVariables(map[string]any{
		VarInlineContext: InlineContext(),
	}))
}

// InlineContext returns the built-in inline grammar.
func InlineContext() Context {
	return NewContext(InlineContextName, InlineRules(), NewVariables(nil))
}

// BlockRules returns the block rules in priority order.
func BlockRules() []Rule {
	return []Rule{
		newlineRule, codeRule, fenceRule, headingRule, lheadingRule, hrRule,
		blockquoteRule, listRule, htmlRule, defRule, paragraphRule, blockTextRule,
	}
}

// InlineRules returns the inline rules in priority order.
func InlineRules() []Rule {
	return []Rule{
		escapeRule, xrefRule, autolinkRule, tagRule, xrefShorthandRule, linkRule, reflinkRule,
		nolinkRule, strongRule, emRule, codeSpanRule, breakRule, inlineTextRule,
	}
}

var (
	blockNewline    = regexp.MustCompile(`^\n+`)
	blockCode       = regexp.MustCompile(`^(?: {4}[^\n]+\n*)+`)
	blockCodeIndent = regexp.MustCompile(`(?m)^ {4}`)
	blockFenceOpen  = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ ]*([^\n`]*)(?:\n|$)")
	blockHeading    = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ ]+([^\n]*?))?(?:[ ]+#+)?[ ]*(?:\n+|$)`)
	blockLHeading   = regexp.MustCompile(`^([^\n]+)\n {0,3}(=+|-+)[ ]*(?:\n+|$)`)
	blockHr         = regexp.MustCompile(`^ {0,3}(?:(?:-[ ]*){3,}|(?:\*[ ]*){3,}|(?:_[ ]*){3,})(?:\n+|$)`)
	blockQuote      = regexp.MustCompile(`^(?: {0,3}>[^\n]*(?:\n|$))+\n*`)
	blockQuoteMark  = regexp.MustCompile(`(?m)^ {0,3}> ?`)
	blockListItem   = regexp.MustCompile(`^( {0,3})([*+-]|\d{1,9}[.)])( +|$)`)
	blockHTMLTag    = regexp.MustCompile(`^ {0,3}<(/?)([a-zA-Z][a-zA-Z0-9-]*)(?:[ \t\n/>]|$)`)
	blockHTMLNote   = regexp.MustCompile(`^ {0,3}<!--`)
	blockDef        = regexp.MustCompile(`^ {0,3}\[([^\]\n]+)\]:[ ]*\n?[ ]*<?([^\s>]+)>?(?:[ ]+(?:"([^"\n]*)"|'([^'\n]*)'|\(([^)\n]*)\)))?[ ]*(?:\n+|$)`)
	blockText       = regexp.MustCompile(`^[^\n]+\n*`)

	inlineEscape    = regexp.MustCompile("^\\\\([\\\\`*{}\\[\\]()#+\\-.!_>@<|~])")
	inlineXref      = regexp.MustCompile(`^<xref:([^\s>]+)>`)
	inlineAutolink  = regexp.MustCompile(`^<(?:((?:https?|ftp)://[^\s<>]+|mailto:[^\s<>]+)|([^\s<>@:]+@[^\s<>@]+\.[^\s<>@]+))>`)
	inlineTag       = regexp.MustCompile(`^(?:<!--[\s\S]*?-->|</?[a-zA-Z][\w-]*(?:\s+[a-zA-Z_:][\w:.-]*(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'=<>` + "`" + `]+))?)*\s*/?>)`)
	inlineShorthand = regexp.MustCompile(`^@(?:"([^"\n]+)"|'([^'\n]+)'|([a-zA-Z](?:[^\s<]*[^\s<>.,;:!?'")\]])?))`)
	inlineLink      = regexp.MustCompile(`^(!?)\[((?:\[[^\]]*\]|[^\[\]])*)\]\([ \t]*<?([^\s>)]*)>?(?:[ \t]+(?:"([^"]*)"|'([^']*)'))?[ \t]*\)`)
	inlineRefLink   = regexp.MustCompile(`^(!?)\[((?:\[[^\]]*\]|[^\[\]])*)\][ ]?\[([^\]]*)\]`)
	inlineNoLink    = regexp.MustCompile(`^(!?)\[((?:\[[^\]]*\]|[^\[\]])*)\]`)
	inlineStrong    = regexp.MustCompile(`^(?:__([\s\S]+?)__|\*\*([\s\S]+?)\*\*)`)
	inlineEm        = regexp.MustCompile(`^(?:_([^_\n]+)_|\*([^*\n]+)\*)`)
	inlineBreak     = regexp.MustCompile(`^ {2,}\n`)
)

// inlineSpecials are the bytes at which inline text stops so that another
// rule gets a chance to match.
const inlineSpecials = "\\<![_*`@"

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "details": true,
	"dialog": true, "dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "hr": true, "iframe": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true, "pre": true, "script": true,
	"section": true, "style": true, "summary": true, "table": true, "ul": true,
}

var (
	newlineRule = &regexRule{
		name: "newline",
		re:   blockNewline,
		build: func(r Rule, _ *Engine, _ []string, span Span) Token {
			return &NewlineToken{TokenBase: NewTokenBase(r, span)}
		},
	}

	codeRule = &regexRule{
		name: "code",
		re:   blockCode,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			code := blockCodeIndent.ReplaceAllString(m[0], "")
			return &CodeBlockToken{TokenBase: NewTokenBase(r, span), Code: strings.TrimRight(code, "\n")}
		},
	}

	fenceRule = &scanRule{name: "fences", scan: scanFence}

	headingRule = &regexRule{
		name: "heading",
		re:   blockHeading,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &HeadingToken{TokenBase: NewTokenBase(r, span), Level: len(m[1]), Text: strings.TrimSpace(m[2])}
		},
	}

	lheadingRule = &regexRule{
		name: "lheading",
		re:   blockLHeading,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			level := 2
			if m[2][0] == '=' {
				level = 1
			}
			return &HeadingToken{TokenBase: NewTokenBase(r, span), Level: level, Text: strings.TrimSpace(m[1])}
		},
	}

	hrRule = &regexRule{
		name: "hr",
		re:   blockHr,
		build: func(r Rule, _ *Engine, _ []string, span Span) Token {
			return &HrToken{TokenBase: NewTokenBase(r, span)}
		},
	}

	blockquoteRule = &regexRule{
		name: "blockquote",
		re:   blockQuote,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			content := blockQuoteMark.ReplaceAllString(strings.TrimRight(m[0], "\n"), "")
			return &BlockquoteToken{TokenBase: NewTokenBase(r, span), Content: content}
		},
	}

	listRule = &scanRule{name: "list", scan: scanList}

	htmlRule = &scanRule{name: "html", scan: scanHTMLBlock}

	defRule = &regexRule{
		name: "def",
		re:   blockDef,
		build: func(r Rule, e *Engine, m []string, span Span) Token {
			title := util.FirstNonEmpty(m[3], m[4], m[5])
			e.Links().Define(m[1], Link{Href: m[2], Title: title})
			return &DefinitionToken{TokenBase: NewTokenBase(r, span), Label: m[1], Href: m[2], Title: title}
		},
	}

	paragraphRule = &scanRule{name: "paragraph", scan: scanParagraph}

	blockTextRule = &regexRule{
		name: "text",
		re:   blockText,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &TextToken{TokenBase: NewTokenBase(r, span), Text: strings.TrimRight(m[0], "\n")}
		},
	}
)

var (
	escapeRule = &regexRule{
		name: "escape",
		re:   inlineEscape,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &EscapeToken{TokenBase: NewTokenBase(r, span), Char: m[1]}
		},
	}

	xrefRule = &regexRule{
		name: "xref",
		re:   inlineXref,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &XrefToken{TokenBase: NewTokenBase(r, span), Target: m[1], Strict: true}
		},
	}

	autolinkRule = &regexRule{
		name:  "autolink",
		re:    inlineAutolink,
		guard: notInLink,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			if m[2] != "" {
				return &AutoLinkToken{TokenBase: NewTokenBase(r, span), Href: "mailto:" + m[2], Text: m[2]}
			}
			return &AutoLinkToken{TokenBase: NewTokenBase(r, span), Href: m[1], Text: strings.TrimPrefix(m[1], "mailto:")}
		},
	}

	tagRule = &regexRule{
		name: "tag",
		re:   inlineTag,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &InlineHTMLToken{TokenBase: NewTokenBase(r, span), HTML: m[0]}
		},
	}

	xrefShorthandRule = &scanRule{name: "xrefShorthand", guard: notInLink, scan: scanXrefShorthand}

	linkRule = &regexRule{
		name: "link",
		re:   inlineLink,
		build: func(r Rule, e *Engine, m []string, span Span) Token {
			image := m[1] == "!"
			if !image && e.Context().Variables().Bool(VarInLink) {
				return nil
			}
			return &LinkToken{
				TokenBase: NewTokenBase(r, span),
				Text:      m[2],
				Href:      m[3],
				Title:     util.FirstNonEmpty(m[4], m[5]),
				Image:     image,
			}
		},
	}

	reflinkRule = &regexRule{
		name: "reflink",
		re:   inlineRefLink,
		build: func(r Rule, e *Engine, m []string, span Span) Token {
			return referenceLink(r, e, m[1] == "!", m[2], util.FirstNonEmpty(m[3], m[2]), span)
		},
	}

	nolinkRule = &regexRule{
		name: "nolink",
		re:   inlineNoLink,
		build: func(r Rule, e *Engine, m []string, span Span) Token {
			return referenceLink(r, e, m[1] == "!", m[2], m[2], span)
		},
	}

	strongRule = &regexRule{
		name: "strong",
		re:   inlineStrong,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &StrongToken{TokenBase: NewTokenBase(r, span), Content: util.FirstNonEmpty(m[1], m[2])}
		},
	}

	emRule = &regexRule{
		name: "em",
		re:   inlineEm,
		build: func(r Rule, _ *Engine, m []string, span Span) Token {
			return &EmToken{TokenBase: NewTokenBase(r, span), Content: util.FirstNonEmpty(m[1], m[2])}
		},
	}

	codeSpanRule = &scanRule{name: "codespan", scan: scanCodeSpan}

	breakRule = &regexRule{
		name: "br",
		re:   inlineBreak,
		build: func(r Rule, _ *Engine, _ []string, span Span) Token {
			return &BreakToken{TokenBase: NewTokenBase(r, span)}
		},
	}

	inlineTextRule = &scanRule{name: "text", scan: scanInlineText}
)

func notInLink(e *Engine) bool {
	return !e.Context().Variables().Bool(VarInLink)
}

func referenceLink(r Rule, e *Engine, image bool, text, ref string, span Span) Token {
	if !image && e.Context().Variables().Bool(VarInLink) {
		return nil
	}
	if _, ok := e.Links().Lookup(ref); !ok {
		return nil
	}
	return &LinkToken{TokenBase: NewTokenBase(r, span), Text: text, Ref: ref, Image: image}
}

func scanFence(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	m := blockFenceOpen.FindStringSubmatch(src)
	if m == nil {
		return 0, nil
	}
	marker := m[1]
	bodyStart := len(m[0])
	bodyEnd, end := len(src), len(src)
	for pos := bodyStart; pos < len(src); {
		line, next := lineAt(src, pos)
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) <= 3 && isClosingFence(strings.TrimRight(trimmed, " "), marker) {
			bodyEnd, end = pos, next
			break
		}
		pos = next
	}
	end = skipNewlines(src, end)

	info := strings.Fields(m[2])
	lang := ""
	if len(info) > 0 {
		lang = info[0]
	}
	code := strings.TrimSuffix(src[bodyStart:bodyEnd], "\n")
	return end, func(r Rule, span Span) Token {
		return &FenceToken{TokenBase: NewTokenBase(r, span), Lang: lang, Code: code}
	}
}

func isClosingFence(line, marker string) bool {
	if len(line) < len(marker) {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != marker[0] {
			return false
		}
	}
	return true
}

type listItemBuilder struct {
	lines []string
	loose bool
}

func scanList(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	firstLine, _ := lineAt(src, 0)
	if blockHr.MatchString(firstLine) {
		return 0, nil
	}
	first := blockListItem.FindStringSubmatch(firstLine)
	if first == nil {
		return 0, nil
	}
	ordered := isOrderedMarker(first[2])
	start := 1
	if ordered {
		start, _ = strconv.Atoi(strings.TrimRight(first[2], ".)"))
	}

	var items []*listItemBuilder
	var current *listItemBuilder
	contentIndent, end := 0, 0
	sawBlank := false
	for pos := 0; pos < len(src); {
		line, next := lineAt(src, pos)
		if line == "" {
			sawBlank = true
			pos = next
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		m := blockListItem.FindStringSubmatch(line)
		switch {
		case current != nil && indent < contentIndent && blockHr.MatchString(line):
			return listEnd(end, items, ordered, start)
		case m != nil && (current == nil || indent < contentIndent):
			if isOrderedMarker(m[2]) != ordered {
				return listEnd(end, items, ordered, start)
			}
			current = &listItemBuilder{lines: []string{line[len(m[0]):]}}
			if sawBlank && len(items) > 0 {
				items[len(items)-1].loose = true
				current.loose = true
			}
			items = append(items, current)
			contentIndent = len(m[1]) + len(m[2]) + max(len(m[3]), 1)
		case indent >= contentIndent:
			if sawBlank {
				current.lines = append(current.lines, "")
				current.loose = true
			}
			current.lines = append(current.lines, line[contentIndent:])
		case !sawBlank && !interruptsParagraph(line):
			current.lines = append(current.lines, strings.TrimLeft(line, " "))
		default:
			return listEnd(end, items, ordered, start)
		}
		sawBlank = false
		pos, end = next, next
	}
	return listEnd(end, items, ordered, start)
}

func listEnd(end int, builders []*listItemBuilder, ordered bool, start int) (int, func(Rule, Span) Token) {
	if end == 0 || len(builders) == 0 {
		return 0, nil
	}
	items := make([]ListItem, 0, len(builders))
	loose := false
	for _, b := range builders {
		loose = loose || b.loose
		items = append(items, ListItem{Content: strings.Join(b.lines, "\n")})
	}
	for i := range items {
		items[i].Loose = loose
	}
	return end, func(r Rule, span Span) Token {
		return &ListToken{TokenBase: NewTokenBase(r, span), Ordered: ordered, Start: start, Items: items}
	}
}

func isOrderedMarker(marker string) bool {
	return marker != "" && marker[0] >= '0' && marker[0] <= '9'
}

func scanHTMLBlock(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	var end int
	switch {
	case blockHTMLNote.MatchString(src):
		closing := strings.Index(src, "-->")
		if closing < 0 {
			end = len(src)
		} else {
			_, end = lineAt(src, closing)
		}
	default:
		m := blockHTMLTag.FindStringSubmatch(src)
		if m == nil || !blockTags[strings.ToLower(m[2])] {
			return 0, nil
		}
		end = len(src)
		if idx := strings.Index(src, "\n\n"); idx >= 0 {
			end = idx + 1
		}
	}
	html := strings.TrimRight(src[:end], "\n")
	end = skipNewlines(src, end)
	return end, func(r Rule, span Span) Token {
		return &HTMLBlockToken{TokenBase: NewTokenBase(r, span), HTML: html}
	}
}

func scanParagraph(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	if src == "" || src[0] == '\n' {
		return 0, nil
	}
	_, pos := lineAt(src, 0)
	for pos < len(src) {
		line, next := lineAt(src, pos)
		if line == "" || interruptsParagraph(line) {
			break
		}
		pos = next
	}
	text := strings.TrimRight(src[:pos], "\n")
	end := skipNewlines(src, pos)
	return end, func(r Rule, span Span) Token {
		return &ParagraphToken{TokenBase: NewTokenBase(r, span), Text: text}
	}
}

// interruptsParagraph reports whether line starts a block that ends a
// running paragraph.
func interruptsParagraph(line string) bool {
	switch {
	case blockHeading.MatchString(line), blockHr.MatchString(line), blockFenceOpen.MatchString(line):
		return true
	case strings.HasPrefix(strings.TrimLeft(line, " "), ">"):
		return true
	}
	if m := blockHTMLTag.FindStringSubmatch(line); m != nil && blockTags[strings.ToLower(m[2])] {
		return true
	}
	if m := blockListItem.FindStringSubmatch(line); m != nil && m[3] != "" {
		return !isOrderedMarker(m[2]) || strings.HasPrefix(m[2], "1")
	}
	return false
}

func scanXrefShorthand(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	if prev, ok := c.PrecedingRune(); ok && isWordRune(prev) {
		return 0, nil
	}
	m := inlineShorthand.FindStringSubmatch(c.Remaining())
	if m == nil {
		return 0, nil
	}
	target := util.FirstNonEmpty(m[1], m[2], m[3])
	return len(m[0]), func(r Rule, span Span) Token {
		return &XrefToken{TokenBase: NewTokenBase(r, span), Target: target}
	}
}

func scanCodeSpan(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	ticks := countPrefix(src, '`')
	if ticks == 0 {
		return 0, nil
	}
	for pos := ticks; pos < len(src); {
		idx := strings.IndexByte(src[pos:], '`')
		if idx < 0 {
			return 0, nil
		}
		run := countPrefix(src[pos+idx:], '`')
		if run == ticks {
			code := strings.TrimSpace(src[ticks : pos+idx])
			return pos + idx + run, func(r Rule, span Span) Token {
				return &CodeSpanToken{TokenBase: NewTokenBase(r, span), Code: code}
			}
		}
		pos += idx + run
	}
	return 0, nil
}

func scanInlineText(_ *Engine, c *Cursor) (int, func(Rule, Span) Token) {
	src := c.Remaining()
	if src == "" {
		return 0, nil
	}
	i := 1
	for i < len(src) {
		ch := src[i]
		if strings.IndexByte(inlineSpecials, ch) >= 0 {
			if (ch == '_' || ch == '@') && isWordByte(src[i-1]) {
				i++
				continue
			}
			break
		}
		if ch == ' ' && inlineBreak.MatchString(src[i:]) {
			break
		}
		i++
	}
	text := src[:i]
	return i, func(r Rule, span Span) Token {
		return &InlineTextToken{TokenBase: NewTokenBase(r, span), Text: text}
	}
}

// lineAt returns the line starting at pos without its newline and the offset
// of the following line.
func lineAt(src string, pos int) (string, int) {
	idx := strings.IndexByte(src[pos:], '\n')
	if idx < 0 {
		return src[pos:], len(src)
	}
	return src[pos : pos+idx], pos + idx + 1
}

func skipNewlines(src string, pos int) int {
	for pos < len(src) && src[pos] == '\n' {
		pos++
	}
	return pos
}

func countPrefix(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
