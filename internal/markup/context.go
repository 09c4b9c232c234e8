package markup

import (
	"maps"
	"slices"
)

// Variables is a persistent key/value map. With returns a modified copy and
// never touches the receiver, so a Variables value can be shared freely.
type Variables struct {
	values map[string]any
}

// NewVariables copies values into a new Variables.
func NewVariables(values map[string]any) Variables {
	return Variables{values: maps.Clone(values)}
}

// Lookup returns the value bound to key.
func (v Variables) Lookup(key string) (any, bool) {
	value, ok := v.values[key]
	return value, ok
}

// Bool returns the boolean bound to key, false when absent or not a bool.
func (v Variables) Bool(key string) bool {
	b, _ := v.values[key].(bool)
	return b
}

// Int returns the int bound to key, 0 when absent or not an int.
func (v Variables) Int(key string) int {
	n, _ := v.values[key].(int)
	return n
}

// String returns the string bound to key.
func (v Variables) String(key string) string {
	s, _ := v.values[key].(string)
	return s
}

// Context returns a Context stored under key.
func (v Variables) Context(key string) (Context, bool) {
	ctx, ok := v.values[key].(Context)
	return ctx, ok
}

// With returns a copy with key bound to value.
func (v Variables) With(key string, value any) Variables {
	next := make(map[string]any, len(v.values)+1)
	maps.Copy(next, v.values)
	next[key] = value
	return Variables{values: next}
}

// Len reports the number of bindings.
func (v Variables) Len() int { return len(v.values) }

// Keys returns the bound keys in sorted order.
func (v Variables) Keys() []string {
	return slices.Sorted(maps.Keys(v.values))
}

// Context is the active rule set plus variable bindings. The zero value has
// no rules and matches nothing.
type Context struct {
	name      string
	rules     []Rule
	variables Variables
}

// NewContext builds a context. rules is copied; its order is the match
// priority.
func NewContext(name string, rules []Rule, variables Variables) Context {
	return Context{
		name:      name,
		rules:     slices.Clone(rules),
		variables: variables,
	}
}

func (c Context) Name() string { return c.name }

// Rules returns a copy of the ordered rule list.
func (c Context) Rules() []Rule { return slices.Clone(c.rules) }

func (c Context) Variables() Variables { return c.variables }

// WithVariables returns a copy of c using variables.
func (c Context) WithVariables(variables Variables) Context {
	c.variables = variables
	return c
}

// WithVariable returns a copy of c with a single binding changed.
func (c Context) WithVariable(key string, value any) Context {
	return c.WithVariables(c.variables.With(key, value))
}

// WithRules returns a copy of c using rules, keeping its name and variables.
func (c Context) WithRules(rules []Rule) Context {
	c.rules = slices.Clone(rules)
	return c
}
