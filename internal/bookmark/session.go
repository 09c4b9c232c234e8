package bookmark

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-docref/internal/dom"
	"github.com/goliatone/go-docref/internal/util"
	"github.com/goliatone/go-docref/pkg/interfaces"
)

// link is one fragment reference found in an output file. target is the
// decoded path as written; empty means the same file.
type link struct {
	target   string
	fragment string
}

// Session is the state of one build. Collect is safe for concurrent use;
// Check must only run after every Collect call has returned.
type Session struct {
	id        uuid.UUID
	validator *Validator

	mu      sync.Mutex
	anchors map[string]map[string]struct{}
	links   map[string][]link
	sources map[string]string
	display map[string]string
	checked bool
}

// Init starts a session for manifest and returns the manifest unchanged.
func (v *Validator) Init(manifest interfaces.Manifest) (*Session, interfaces.Manifest) {
	return &Session{
		id:        uuid.New(),
		validator: v,
		anchors:   make(map[string]map[string]struct{}),
		links:     make(map[string][]link),
		sources:   make(map[string]string),
		display:   make(map[string]string),
	}, manifest
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Collect records the anchors and fragment links of one output file.
// inputFile defaults to the item's source path.
func (s *Session) Collect(doc *dom.Document, item interfaces.ManifestItem, inputFile, outputFile string) error {
	key := s.validator.compare(outputFile)
	if key == "" {
		return ErrOutputFileRequired
	}
	links, anchors := s.scan(doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked {
		return ErrSessionClosed
	}
	s.display[key] = CleanPath(outputFile)
	s.sources[key] = util.FirstNonEmpty(inputFile, item.SourceRelativePath)
	s.links[key] = links
	s.anchors[key] = anchors
	return nil
}

func (s *Session) scan(doc *dom.Document) ([]link, map[string]struct{}) {
	var srcs, hrefs []string
	anchors := make(map[string]struct{})
	if doc == nil {
		return nil, anchors
	}
	doc.Walk(func(n *dom.Node) bool {
		if value, ok := n.Attr("src"); ok {
			srcs = append(srcs, value)
		}
		if value, ok := n.Attr("href"); ok {
			hrefs = append(hrefs, value)
		}
		if value, ok := n.Attr("id"); ok {
			anchors[value] = struct{}{}
		}
		if value, ok := n.Attr("name"); ok {
			anchors[value] = struct{}{}
		}
		return true
	})

	var links []link
	for _, value := range append(srcs, hrefs...) {
		target, fragment, ok := util.SplitFragment(value)
		if !ok || !util.IsRelativePath(value) {
			continue
		}
		if fragment == "" || s.validator.whitelisted(fragment) {
			continue
		}
		target, _, _ = strings.Cut(target, "?")
		links = append(links, link{target: util.URLDecode(target), fragment: fragment})
	}
	return links, anchors
}

// Check reports every collected link whose target file is unknown or lacks
// the fragment. Warnings are sent to the validator's sink and returned in
// output path order. The manifest is returned unchanged.
func (s *Session) Check(manifest interfaces.Manifest) (interfaces.Manifest, []Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checked {
		return manifest, nil, ErrAlreadyChecked
	}
	s.checked = true

	keys := make([]string, 0, len(s.links))
	for key := range s.links {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var warnings []Warning
	for _, key := range keys {
		for _, l := range s.links[key] {
			targetKey, targetDisplay := key, s.display[key]
			if l.target != "" {
				targetDisplay = CleanPath(path.Join(path.Dir(s.display[key]), CleanPath(l.target)))
				targetKey = s.validator.compare(targetDisplay)
			}

			anchors, known := s.anchors[targetKey]
			if known {
				if _, ok := anchors[l.fragment]; ok {
					continue
				}
				targetDisplay = s.display[targetKey]
			}
			w := Warning{
				OutputFile:       s.display[key],
				SourceFile:       s.sources[key],
				TargetFile:       targetDisplay,
				TargetSourceFile: s.sources[targetKey],
				Fragment:         l.fragment,
				UnknownTarget:    !known,
			}
			warnings = append(warnings, w)
			s.validator.sink.Warn(w.Message(), "session", s.id.String(), "output_file", w.OutputFile, "fragment", w.Fragment)
		}
	}
	return manifest, warnings, nil
}

// Warning describes one broken fragment link.
type Warning struct {
	OutputFile       string
	SourceFile       string
	TargetFile       string
	TargetSourceFile string
	Fragment         string
	UnknownTarget    bool
}

func (w Warning) Message() string {
	prefix := fmt.Sprintf("Output file %s which is built from src file %s contains illegal link %s#%s: ",
		w.OutputFile, w.SourceFile, w.TargetFile, w.Fragment)
	if w.UnknownTarget {
		return prefix + fmt.Sprintf("the file %s is not part of the build output.", w.TargetFile)
	}
	return prefix + fmt.Sprintf("the file %s which is built from src %s doesn't contain a bookmark named %s.",
		w.TargetFile, w.TargetSourceFile, w.Fragment)
}

func (w Warning) String() string { return w.Message() }
