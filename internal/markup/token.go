package markup

// Token is a lexical unit produced by a Rule. The variant set is closed: only
// types embedding TokenBase satisfy it.
type Token interface {
	Rule() Rule
	Span() Span
	sealed()
}

// TokenBase carries the fields shared by every variant.
type TokenBase struct {
	rule Rule
	span Span
}

// NewTokenBase is used by rules to stamp a token with its origin.
func NewTokenBase(rule Rule, span Span) TokenBase {
	return TokenBase{rule: rule, span: span}
}

func (b TokenBase) Rule() Rule { return b.rule }

func (b TokenBase) Span() Span { return b.span }

func (TokenBase) sealed() {}

// Block tokens.

type NewlineToken struct {
	TokenBase
}

// CodeBlockToken is an indented code block.
type CodeBlockToken struct {
	TokenBase
	Code string
}

// FenceToken is a fenced code block with an optional info string.
type FenceToken struct {
	TokenBase
	Lang string
	Code string
}

type HeadingToken struct {
	TokenBase
	Level int
	Text  string
}

type HrToken struct {
	TokenBase
}

// BlockquoteToken holds the quoted markup with the leading markers removed.
type BlockquoteToken struct {
	TokenBase
	Content string
}

type ListToken struct {
	TokenBase
	Ordered bool
	Start   int
	Items   []ListItem
}

// ListItem is one entry of a list; Loose items were separated by blank lines
// and render as blocks.
type ListItem struct {
	Content string
	Loose   bool
}

type HTMLBlockToken struct {
	TokenBase
	HTML string
}

// DefinitionToken is a link reference definition. It renders to nothing; its
// target is recorded in the engine's LinkDefinitions when matched.
type DefinitionToken struct {
	TokenBase
	Label string
	Href  string
	Title string
}

type ParagraphToken struct {
	TokenBase
	Text string
}

type TextToken struct {
	TokenBase
	Text string
}

// Inline tokens.

type EscapeToken struct {
	TokenBase
	Char string
}

// XrefToken is a cross reference written as <xref:uid> (Strict) or @uid.
type XrefToken struct {
	TokenBase
	Target string
	Strict bool
}

type AutoLinkToken struct {
	TokenBase
	Href string
	Text string
}

// LinkToken is an inline or reference link. Ref is set for reference links
// and resolved against the engine's LinkDefinitions at render time.
type LinkToken struct {
	TokenBase
	Text  string
	Href  string
	Title string
	Ref   string
	Image bool
}

// InlineHTMLToken is a raw inline tag or comment.
type InlineHTMLToken struct {
	TokenBase
	HTML string
}

type StrongToken struct {
	TokenBase
	Content string
}

type EmToken struct {
	TokenBase
	Content string
}

type CodeSpanToken struct {
	TokenBase
	Code string
}

type BreakToken struct {
	TokenBase
}

type InlineTextToken struct {
	TokenBase
	Text string
}
