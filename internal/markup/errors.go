package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRuleMatched reports input no rule of the current context accepts.
	ErrNoRuleMatched = errors.New("markup: no rule matched")
	// ErrUnhandledToken reports a token variant the renderer cannot render.
	ErrUnhandledToken = errors.New("markup: unhandled token")
	// ErrEmptyMatch reports a rule that returned a token without consuming input.
	ErrEmptyMatch = errors.New("markup: rule matched without consuming input")
	// ErrSpanMismatch reports a token whose span disagrees with the cursor.
	ErrSpanMismatch = errors.New("markup: token span does not match consumed input")
	// ErrEmptyVariableKey is returned by SwitchVariable for a blank key.
	ErrEmptyVariableKey = errors.New("markup: variable key is required")
)

// ParseError is returned when tokenization stops on unmatched input.
type ParseError struct {
	Context string
	Offset  int
	Line    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse: %s", e.Line)
}

func (e *ParseError) Unwrap() error { return ErrNoRuleMatched }

// RenderError is returned when the active renderer has no method for a token
// variant.
type RenderError struct {
	Variant string
	Rule    string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("unable to handle token: %s, rule: %s", e.Variant, e.Rule)
}

func (e *RenderError) Unwrap() error { return ErrUnhandledToken }

// RuleError reports a rule that broke the matching contract.
type RuleError struct {
	Rule   string
	Offset int
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s at offset %d: %v", e.Rule, e.Offset, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
