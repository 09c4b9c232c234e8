package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
// Keys are hashed as given; case is significant.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// SpecUUID is the record id of a stored cross-reference spec.
func SpecUUID(uid string) uuid.UUID {
	return UUID("docref:xref:" + strings.TrimSpace(uid))
}

// DocumentUUID identifies a source document by its slash-separated path
// relative to the source root.
func DocumentUUID(relativePath string) uuid.UUID {
	return UUID("docref:document:" + strings.TrimSpace(relativePath))
}
