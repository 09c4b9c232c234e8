package site

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// Source is one markdown document discovered under the source directory.
type Source struct {
	// Path is slash separated and relative to the source directory.
	Path     string
	UID      string
	Title    string
	Metadata map[string]any
	Body     []byte
	Checksum string
}

// OutputPath maps the source path onto its html output path.
func (s *Source) OutputPath() string {
	return strings.TrimSuffix(s.Path, path.Ext(s.Path)) + ".html"
}

// DisplayName is the name registered for the document's uid.
func (s *Source) DisplayName() string {
	if s.Title != "" {
		return s.Title
	}
	if s.UID != "" {
		return s.UID
	}
	return strings.TrimSuffix(path.Base(s.Path), path.Ext(s.Path))
}

// parseFrontMatter splits the YAML header from the markdown body. Documents
// without a header yield empty metadata.
func parseFrontMatter(source []byte) (frontMatter, []byte, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return frontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

type frontMatter struct {
	UID    string         `yaml:"uid"`
	Title  string         `yaml:"title"`
	Custom map[string]any `yaml:",inline"`
}

// LoaderConfig configures how documents are discovered.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern   string
	Recursive bool
}

// Loader turns files of a filesystem into Sources.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and parses one document.
func (l *Loader) LoadFile(ctx context.Context, rel string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel = path.Clean(strings.ReplaceAll(rel, `\`, "/"))

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("site loader read %s: %w", rel, err)
	}
	meta, body, err := parseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("site loader %s: %w", rel, err)
	}
	sum := sha256.Sum256(data)

	return &Source{
		Path:     rel,
		UID:      strings.TrimSpace(meta.UID),
		Title:    strings.TrimSpace(meta.Title),
		Metadata: meta.Custom,
		Body:     body,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// Load discovers every matching document, sorted by path.
func (l *Loader) Load(ctx context.Context) ([]*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sources []*Source
	walkErr := fs.WalkDir(l.fs, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != "." && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.matches(p) {
			return nil
		}
		source, err := l.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		sources = append(sources, source)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})
	return sources, nil
}

func (l *Loader) matches(p string) bool {
	pattern := strings.ReplaceAll(l.pattern, "**/", "")
	target := path.Base(p)
	if strings.Contains(pattern, "/") {
		target = p
	}
	match, err := path.Match(pattern, target)
	return err == nil && match
}
