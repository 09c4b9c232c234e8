package xref

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-docref/internal/dom"
)

const processorPage = `<html><body><p>See <xref href="A.B" data-throw-if-not-resolved="False" data-raw-source="@A.B"></xref>, <a href="xref:Missing.Thing">missing</a> and <xref href="Other"></xref>.</p></body></html>`

func TestProcessorResolvesAndReportsUnresolved(t *testing.T) {
	doc, err := dom.ParseString(processorPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	store := NewMemoryStore(NewSpec("A.B", "a/b.html", "AB"))

	result, err := NewProcessor(store).Process(context.Background(), doc)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Resolved != 1 {
		t.Fatalf("expected one resolved marker, got %d", result.Resolved)
	}
	want := []Unresolved{{UID: "Missing.Thing", Strict: true}, {UID: "Other", Strict: false}}
	if len(result.Unresolved) != len(want) {
		t.Fatalf("unexpected unresolved %+v", result.Unresolved)
	}
	for i := range want {
		if result.Unresolved[i] != want[i] {
			t.Fatalf("unresolved[%d] = %+v, want %+v", i, result.Unresolved[i], want[i])
		}
	}
	if !result.HasStrictFailures() {
		t.Fatalf("expected strict failure to be reported")
	}

	out := doc.String()
	for _, fragment := range []string{
		`<a class="xref" href="a/b.html" anchor="#A_B">AB</a>`,
		`<a href="xref:Missing.Thing">missing</a>`,
		`<span class="xref">Other</span>`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("missing %q in %s", fragment, out)
		}
	}
	if strings.Contains(out, "<xref") {
		t.Fatalf("markers left in output: %s", out)
	}
}

func TestProcessorPropagatesResolverFailures(t *testing.T) {
	doc, err := dom.ParseString(processorPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	boom := errors.New("boom")
	resolver := ResolverFunc(func(context.Context, string) (Spec, error) { return nil, boom })

	if _, err := NewProcessor(resolver).Process(context.Background(), doc); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestProcessorStopsOnCanceledContext(t *testing.T) {
	doc, err := dom.ParseString(processorPage)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProcessor(NewMemoryStore()).Process(ctx, doc); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProcessorUsesLanguageAndProperties(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p><xref href="T"></xref></p></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spec := NewSpec("T", "https://example.com/t", "T")
	spec["title.fr"] = "Titre"
	processor := NewProcessor(NewMemoryStore(spec), WithLanguage("fr"), WithProperties(Properties{Display: "title", Alt: "title"}))

	if _, err := processor.Process(context.Background(), doc); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(doc.String(), `<a class="xref" href="https://example.com/t">Titre</a>`) {
		t.Fatalf("unexpected output %s", doc.String())
	}
}

func TestChainResolvesInOrder(t *testing.T) {
	first := NewMemoryStore(NewSpec("A", "first.html", ""))
	second := NewMemoryStore(NewSpec("A", "second.html", ""), NewSpec("B", "b.html", ""))
	chain := Chain{nil, first, second}

	spec, err := chain.Resolve(context.Background(), "A")
	if err != nil || spec.Href() != "first.html" {
		t.Fatalf("expected first store to win, got %v %v", spec, err)
	}
	spec, err = chain.Resolve(context.Background(), "B")
	if err != nil || spec.Href() != "b.html" {
		t.Fatalf("expected fallback store, got %v %v", spec, err)
	}
	if _, err := chain.Resolve(context.Background(), "C"); !errors.Is(err, ErrSpecNotFound) {
		t.Fatalf("expected ErrSpecNotFound, got %v", err)
	}
}

func TestMemoryStoreCopiesSpecs(t *testing.T) {
	store := NewMemoryStore()
	spec := NewSpec("A", "a.html", "")
	if err := store.Put(context.Background(), spec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	spec[HrefKey] = "changed.html"

	got, err := store.Resolve(context.Background(), "A")
	if err != nil || got.Href() != "a.html" {
		t.Fatalf("store shares caller storage: %v %v", got, err)
	}
	if err := store.Put(context.Background(), Spec{HrefKey: "x"}); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
	if store.Len() != 1 || store.UIDs()[0] != "A" {
		t.Fatalf("unexpected store contents %v", store.UIDs())
	}
}
