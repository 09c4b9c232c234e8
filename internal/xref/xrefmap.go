package xref

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-docref/internal/util"
	"github.com/goliatone/go-docref/internal/validation"
)

// mapSchema describes an xrefmap document: an optional base URL and a list
// of references, each a flat object of string properties with a uid.
const mapSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["references"],
	"properties": {
		"baseUrl": {"type": "string"},
		"sorted": {"type": "boolean"},
		"references": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["uid"],
				"properties": {
					"uid": {"type": "string", "minLength": 1},
					"href": {"type": "string"}
				},
				"additionalProperties": {"type": "string"}
			}
		}
	}
}`

var compiledMapSchema = validation.MustCompile("xrefmap.json", []byte(mapSchema))

// Map is a decoded xrefmap document.
type Map struct {
	BaseURL    string `json:"baseUrl,omitempty"`
	Sorted     bool   `json:"sorted,omitempty"`
	References []Spec `json:"references"`
}

// LoadMap reads and validates an xrefmap document. Relative hrefs are
// resolved against the map's base URL when one is given.
func LoadMap(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xref: read xrefmap: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if err := compiledMapSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if err := m.resolveHrefs(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Map) resolveHrefs() error {
	base := strings.TrimSpace(m.BaseURL)
	if base == "" {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("%w: base url: %v", ErrInvalidMap, err)
	}
	for _, spec := range m.References {
		href := spec.Href()
		if !util.IsRelativePath(href) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		spec[HrefKey] = baseURL.ResolveReference(ref).String()
	}
	return nil
}

// Store returns a MemoryStore holding every reference of the map.
func (m *Map) Store() *MemoryStore {
	return NewMemoryStore(m.References...)
}
