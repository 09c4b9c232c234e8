// Package bookmark checks that fragment links in a built site point at
// anchors that exist.
//
// A Validator starts a Session per build with Init. Every rendered output
// file is handed to Session.Collect, possibly from several goroutines, and
// once all of them have been collected Session.Check reports each link whose
// target file is unknown or does not declare the fragment.
package bookmark

import (
	"errors"
	"path"
	"runtime"
	"strings"

	"github.com/goliatone/go-docref/internal/logging"
)

var (
	// ErrSessionClosed is returned by Collect after Check has run.
	ErrSessionClosed = errors.New("bookmark: session already checked")
	// ErrAlreadyChecked is returned by a second Check call.
	ErrAlreadyChecked = errors.New("bookmark: check already ran")
	// ErrOutputFileRequired rejects Collect calls without an output path.
	ErrOutputFileRequired = errors.New("bookmark: output file is required")
)

// Sink receives one warning per broken link.
type Sink interface {
	Warn(msg string, args ...any)
}

// PathComparer maps an output path to the key paths are compared by.
type PathComparer func(p string) string

// DefaultWhitelist holds fragments that never name a bookmark.
var DefaultWhitelist = []string{"top"}

// Validator holds the policy shared by its sessions.
type Validator struct {
	whitelist map[string]struct{}
	compare   PathComparer
	sink      Sink
}

// Option customizes NewValidator.
type Option func(*Validator)

// WithWhitelist replaces the default whitelist.
func WithWhitelist(fragments ...string) Option {
	return func(v *Validator) {
		v.whitelist = make(map[string]struct{}, len(fragments))
		for _, fragment := range fragments {
			v.whitelist[fragment] = struct{}{}
		}
	}
}

// WithPathComparer replaces the path comparison rule.
func WithPathComparer(compare PathComparer) Option {
	return func(v *Validator) {
		if compare != nil {
			v.compare = compare
		}
	}
}

// WithCaseInsensitivePaths chooses between the case-folding and the exact
// path comparer.
func WithCaseInsensitivePaths(insensitive bool) Option {
	return func(v *Validator) {
		v.compare = comparer(insensitive)
	}
}

// WithSink routes warnings to sink.
func WithSink(sink Sink) Option {
	return func(v *Validator) {
		if sink != nil {
			v.sink = sink
		}
	}
}

func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		compare: comparer(runtime.GOOS == "windows"),
		sink:    logging.NoOp(),
	}
	WithWhitelist(DefaultWhitelist...)(v)
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

func (v *Validator) whitelisted(fragment string) bool {
	_, ok := v.whitelist[fragment]
	return ok
}

// CleanPath converts backslashes, drops leading "./" segments and cleans p.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(p), "./")
}

func comparer(insensitive bool) PathComparer {
	if insensitive {
		return func(p string) string { return strings.ToLower(CleanPath(p)) }
	}
	return CleanPath
}
