package markup

import "regexp"

// Rule recognizes one construct. TryMatch inspects the cursor and either
// consumes a prefix and returns its token, or returns nil without consuming.
type Rule interface {
	Name() string
	TryMatch(e *Engine, c *Cursor) Token
}

// RuleFunc adapts a function to Rule.
type RuleFunc struct {
	RuleName string
	Match    func(e *Engine, c *Cursor) Token
}

func (r RuleFunc) Name() string { return r.RuleName }

func (r RuleFunc) TryMatch(e *Engine, c *Cursor) Token {
	if r.Match == nil {
		return nil
	}
	return r.Match(e, c)
}

// regexRule matches an anchored expression and builds a token from the
// submatches. build may still decline by returning nil.
type regexRule struct {
	name  string
	re    *regexp.Regexp
	guard func(e *Engine) bool
	build func(r Rule, e *Engine, m []string, span Span) Token
}

func (r *regexRule) Name() string { return r.name }

func (r *regexRule) TryMatch(e *Engine, c *Cursor) Token {
	if r.guard != nil && !r.guard(e) {
		return nil
	}
	m := r.re.FindStringSubmatch(c.Remaining())
	if m == nil || m[0] == "" {
		return nil
	}
	tok := r.build(r, e, m, c.Peek(len(m[0])))
	if tok == nil {
		return nil
	}
	c.Consume(len(m[0]))
	return tok
}

// scanRule consumes a prefix measured by scan. scan returns 0 to decline.
type scanRule struct {
	name  string
	guard func(e *Engine) bool
	scan  func(e *Engine, c *Cursor) (int, func(r Rule, span Span) Token)
}

func (r *scanRule) Name() string { return r.name }

func (r *scanRule) TryMatch(e *Engine, c *Cursor) Token {
	if r.guard != nil && !r.guard(e) {
		return nil
	}
	n, build := r.scan(e, c)
	if n <= 0 || build == nil {
		return nil
	}
	return build(r, c.Consume(n))
}
