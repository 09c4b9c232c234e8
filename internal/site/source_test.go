package site

import (
	"context"
	"testing"
	"testing/fstest"
)

func TestLoaderParsesFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"doc.md": {Data: []byte("---\nuid: My.Type\ntitle: My Type\nauthor: sam\n---\nbody\n")},
	}
	source, err := NewLoader(fsys, LoaderConfig{}).LoadFile(context.Background(), "doc.md")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if source.UID != "My.Type" || source.Title != "My Type" {
		t.Fatalf("unexpected metadata %+v", source)
	}
	if source.Metadata["author"] != "sam" {
		t.Fatalf("custom metadata missing: %+v", source.Metadata)
	}
	if string(source.Body) != "body\n" {
		t.Fatalf("unexpected body %q", source.Body)
	}
	if source.OutputPath() != "doc.html" || source.DisplayName() != "My Type" {
		t.Fatalf("unexpected derived names %q %q", source.OutputPath(), source.DisplayName())
	}
	if len(source.Checksum) != 64 {
		t.Fatalf("unexpected checksum %q", source.Checksum)
	}
}

func TestLoaderHonoursPatternAndRecursion(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md":         {Data: []byte("a")},
		"b.markdown":   {Data: []byte("b")},
		"nested/c.md":  {Data: []byte("c")},
		"nested/d.txt": {Data: []byte("d")},
	}

	flat, err := NewLoader(fsys, LoaderConfig{}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(flat) != 1 || flat[0].Path != "a.md" {
		t.Fatalf("unexpected flat load %+v", flat)
	}

	deep, err := NewLoader(fsys, LoaderConfig{Recursive: true}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(deep) != 2 || deep[1].Path != "nested/c.md" {
		t.Fatalf("unexpected recursive load %+v", deep)
	}

	markdown, err := NewLoader(fsys, LoaderConfig{Pattern: "*.markdown"}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(markdown) != 1 || markdown[0].OutputPath() != "b.html" || markdown[0].DisplayName() != "b" {
		t.Fatalf("unexpected pattern load %+v", markdown)
	}
}
