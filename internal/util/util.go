package util

import (
	"net/url"
	"strings"
)

// FirstNonEmpty returns the first non-empty string in values.
func FirstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// CloneStringMap returns a shallow copy of input.
// It returns a non-nil map even when input is nil.
func CloneStringMap(input map[string]string) map[string]string {
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

// IsRelativePath reports whether p is a non-empty reference without a scheme
// or host that does not start at a root. Fragment-only references such as
// "#top" are relative.
func IsRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return !strings.Contains(p, "://")
	}
	return u.Scheme == "" && u.Host == ""
}

// URLDecode unescapes percent-encoding and '+', returning value unchanged
// when it is not validly encoded.
func URLDecode(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

// SplitFragment splits value at the first '#'. The fragment is returned
// without the '#'; ok is false when there is none.
func SplitFragment(value string) (path, fragment string, ok bool) {
	return strings.Cut(value, "#")
}
