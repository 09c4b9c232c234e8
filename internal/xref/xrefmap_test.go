package xref

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-docref/internal/validation"
	"github.com/goliatone/go-docref/pkg/testsupport"
)

func TestLoadMapResolvesHrefsAgainstBaseURL(t *testing.T) {
	data, err := testsupport.LoadFixture("testdata/xrefmap.json")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	m, err := LoadMap(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if len(m.References) != 3 {
		t.Fatalf("expected 3 references, got %d", len(m.References))
	}

	store := m.Store()
	spec, err := store.Resolve(context.Background(), "System.String.Length")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Href() != "https://docs.example.com/api/System.String.html#System_String_Length" {
		t.Fatalf("unexpected href %q", spec.Href())
	}
	if v, _ := LanguageValue(spec, "vb", "", NameKey); v != "Length()" {
		t.Fatalf("expected language property to survive, got %q", v)
	}

	external, err := store.Resolve(context.Background(), "External.Thing")
	if err != nil || external.Href() != "https://other.example.com/thing.html" {
		t.Fatalf("absolute href rewritten: %v %v", external, err)
	}
}

func TestLoadMapRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"no references":   `{"baseUrl": "x"}`,
		"missing uid":     `{"references": [{"href": "a.html"}]}`,
		"non string prop": `{"references": [{"uid": "A", "weight": 3}]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMap(strings.NewReader(input))
			if !errors.Is(err, ErrInvalidMap) {
				t.Fatalf("expected ErrInvalidMap, got %v", err)
			}
		})
	}

	_, err := LoadMap(strings.NewReader(`{"references": [{"uid": ""}]}`))
	if len(validation.Issues(err)) == 0 {
		t.Fatalf("expected schema issues, got %v", err)
	}
}
