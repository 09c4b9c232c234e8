package markup

import (
	"errors"
	"strings"
	"testing"
)

func literalRule(name, literal string) Rule {
	return RuleFunc{
		RuleName: name,
		Match: func(_ *Engine, c *Cursor) Token {
			if !strings.HasPrefix(c.Remaining(), literal) {
				return nil
			}
			return &InlineTextToken{TokenBase: NewTokenBase(nil, c.Consume(len(literal))), Text: literal}
		},
	}
}

func TestTokenizeCoversPreprocessedInput(t *testing.T) {
	engine := NewEngine(BlockContext(), NewHTMLRenderer())
	doc := strings.Join([]string{
		"# Title",
		"",
		"Intro with **bold**, @Some.Uid and [a link](other.md#part).",
		"   ",
		"> quoted",
		"> text",
		"",
		"- one",
		"- two",
		"",
		"```go",
		"fmt.Println(1)",
		"```",
		"",
		"    indented",
		"",
		"---",
		"<div>",
		"raw",
		"</div>",
		"",
		"[ref]: https://example.com \"Example\"",
		"trailing",
	}, "\r\n")

	src := engine.Preprocess(engine.Normalize(doc))
	tokens, err := engine.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	var rebuilt strings.Builder
	offset := 0
	for _, tok := range tokens {
		span := tok.Span()
		if span.Start != offset {
			t.Fatalf("token %T starts at %d, expected %d", tok, span.Start, offset)
		}
		rebuilt.WriteString(span.Raw)
		offset = span.End
	}
	if rebuilt.String() != src {
		t.Fatalf("spans do not cover input:\n%q\n%q", rebuilt.String(), src)
	}
}

func TestTokenizeFirstMatchingRuleWins(t *testing.T) {
	long := literalRule("long", "ab")
	short := literalRule("short", "a")
	rest := literalRule("b", "b")

	engine := NewEngine(NewContext("test", []Rule{long, short, rest}, NewVariables(nil)), nil)
	tokens, err := engine.Tokenize("ab")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Span().Raw != "ab" {
		t.Fatalf("expected single long token, got %d tokens", len(tokens))
	}

	engine.SwitchContext(NewContext("test", []Rule{short, long, rest}, NewVariables(nil)))
	tokens, err = engine.Tokenize("ab")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 2 || tokens[0].Span().Raw != "a" || tokens[1].Span().Raw != "b" {
		t.Fatalf("expected short rule to win, got %d tokens", len(tokens))
	}
}

func TestTokenizeReportsUnmatchedInput(t *testing.T) {
	engine := NewEngine(NewContext("newlines", []Rule{newlineRule}, NewVariables(nil)), nil)

	_, err := engine.Tokenize("\n\nabc\ndef")
	if !errors.Is(err, ErrNoRuleMatched) {
		t.Fatalf("expected ErrNoRuleMatched, got %v", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if parseErr.Offset != 2 || err.Error() != "cannot parse: abc" {
		t.Fatalf("unexpected parse error %+v (%q)", parseErr, err.Error())
	}
}

func TestTokenizeRejectsRuleThatConsumesNothing(t *testing.T) {
	lazy := RuleFunc{
		RuleName: "lazy",
		Match: func(_ *Engine, c *Cursor) Token {
			return &InlineTextToken{TokenBase: NewTokenBase(nil, c.Peek(1))}
		},
	}
	engine := NewEngine(NewContext("lazy", []Rule{lazy}, NewVariables(nil)), nil)

	_, err := engine.Tokenize("x")
	if !errors.Is(err, ErrEmptyMatch) {
		t.Fatalf("expected ErrEmptyMatch, got %v", err)
	}
}

func TestSwitchVariableKeepsPriorContext(t *testing.T) {
	engine := NewEngine(BlockContext(), NewHTMLRenderer())
	original := engine.Context()

	prev, err := engine.SwitchVariable(VarQuoteDepth, 3)
	if err != nil {
		t.Fatalf("SwitchVariable: %v", err)
	}
	if prev.Variables().Int(VarQuoteDepth) != 0 || original.Variables().Int(VarQuoteDepth) != 0 {
		t.Fatalf("prior context was modified")
	}
	if engine.Context().Variables().Int(VarQuoteDepth) != 3 {
		t.Fatalf("expected active context to carry the new binding")
	}

	engine.SwitchContext(prev)
	if _, ok := engine.Context().Variables().Lookup(VarQuoteDepth); ok {
		t.Fatalf("expected restored context without binding")
	}
}

func TestSwitchVariableRejectsEmptyKey(t *testing.T) {
	engine := NewEngine(BlockContext(), NewHTMLRenderer())
	before := engine.Context()

	if _, err := engine.SwitchVariable("  ", true); !errors.Is(err, ErrEmptyVariableKey) {
		t.Fatalf("expected ErrEmptyVariableKey, got %v", err)
	}
	if engine.Context().Variables().Len() != before.Variables().Len() {
		t.Fatalf("context changed after rejected switch")
	}
}

func TestContextRulesReturnsCopy(t *testing.T) {
	ctx := InlineContext()
	rules := ctx.Rules()
	rules[0] = nil
	if ctx.Rules()[0] == nil {
		t.Fatalf("mutating returned rules altered the context")
	}
}

func TestCloneIsolatesContextAndSharesLinks(t *testing.T) {
	engine := NewEngine(BlockContext(), NewHTMLRenderer())
	clone := engine.Clone()

	if _, err := clone.SwitchVariable("custom", "value"); err != nil {
		t.Fatalf("SwitchVariable: %v", err)
	}
	if _, ok := engine.Context().Variables().Lookup("custom"); ok {
		t.Fatalf("clone context switch leaked into original")
	}

	if _, err := clone.Tokenize("[Docs Home]: /index.html\n"); err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	link, ok := engine.Links().Lookup("docs   home")
	if !ok || link.Href != "/index.html" {
		t.Fatalf("expected definition from clone to be visible, got %+v %v", link, ok)
	}
}

func TestNormalizeAndPreprocess(t *testing.T) {
	engine := NewEngine(BlockContext(), NewHTMLRenderer(), WithOptions(Options{TabWidth: 2}))

	got := engine.Normalize("a\r\nb\rc\td e␤f")
	if got != "a\nb\nc  d e\nf" {
		t.Fatalf("unexpected normalized text %q", got)
	}
	if got := engine.Preprocess("a\n   \nb\n \n"); got != "a\n\nb\n\n" {
		t.Fatalf("unexpected preprocessed text %q", got)
	}
}

type paragraphOnlyRenderer struct{}

func (paragraphOnlyRenderer) RenderParagraph(_ *Engine, t *ParagraphToken, _ Context) (string, error) {
	return t.Text, nil
}

func TestRenderReportsUnhandledToken(t *testing.T) {
	engine := NewEngine(BlockContext(), paragraphOnlyRenderer{})

	_, err := engine.Markup("# Title\n")
	if !errors.Is(err, ErrUnhandledToken) {
		t.Fatalf("expected ErrUnhandledToken, got %v", err)
	}
	if err.Error() != "unable to handle token: HeadingToken, rule: heading" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	out, err := engine.Markup("plain text")
	if err != nil || out != "plain text" {
		t.Fatalf("expected paragraph to render, got %q %v", out, err)
	}
}
