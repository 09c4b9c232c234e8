package xref

import "errors"

var (
	// ErrUnsupportedNode is returned when a node of the wrong kind is parsed
	// or converted.
	ErrUnsupportedNode = errors.New("xref: unsupported node")
	// ErrNoLookupKeys is returned by LanguageValue without keys.
	ErrNoLookupKeys = errors.New("xref: at least one lookup key is required")
	// ErrSpecNotFound is returned by resolvers for unknown uids.
	ErrSpecNotFound = errors.New("xref: spec not found")
	// ErrInvalidSpec rejects specs without a uid.
	ErrInvalidSpec = errors.New("xref: spec uid is required")
	// ErrInvalidMap is returned when an xrefmap document fails validation.
	ErrInvalidMap = errors.New("xref: invalid xrefmap")
)
