// Package markup implements a rule-driven lexer and renderer for lightweight
// markup.
//
// An Engine tokenizes text by asking the rules of its current Context, in
// order, to consume a prefix of the remaining input; the first rule that
// matches wins, so rule order is part of the grammar. Tokens are then handed
// to the engine's Renderer, which must implement one capability interface per
// token variant it supports.
//
// Contexts are immutable values. SwitchContext and SwitchVariable install a
// new context and return the previous one; callers restore it themselves when
// they leave a nested scope. Clones share the LinkDefinitions of the engine
// they were cloned from but track their own context.
package markup
