package xref

import "github.com/goliatone/go-docref/internal/util"

// Well-known Spec keys.
const (
	UIDKey      = "uid"
	NameKey     = "name"
	HrefKey     = "href"
	FullNameKey = "fullname"
)

// Spec is the property bag a resolver returns for a uid. Keys are case
// sensitive; language specific variants use a "key.lang" suffix.
type Spec map[string]string

// NewSpec builds a spec for uid pointing at href.
func NewSpec(uid, href, name string) Spec {
	spec := Spec{UIDKey: uid, HrefKey: href}
	if name != "" {
		spec[NameKey] = name
	}
	return spec
}

func (s Spec) UID() string  { return s[UIDKey] }
func (s Spec) Href() string { return s[HrefKey] }
func (s Spec) Name() string { return s[NameKey] }

// Get returns the value stored under key.
func (s Spec) Get(key string) (string, bool) {
	value, ok := s[key]
	return value, ok
}

// Clone returns a copy that does not share storage with s.
func (s Spec) Clone() Spec {
	if s == nil {
		return nil
	}
	return Spec(util.CloneStringMap(s))
}

// LanguageValue looks keys up in order, trying "key.language" before the
// bare key, and returns fallback when none is present.
func LanguageValue(spec Spec, language, fallback string, keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoLookupKeys
	}
	suffix := ""
	if language != "" {
		suffix = "." + language
	}
	for _, key := range keys {
		if value, ok := spec[key+suffix]; ok {
			return value, nil
		}
		if value, ok := spec[key]; ok {
			return value, nil
		}
	}
	return fallback, nil
}
