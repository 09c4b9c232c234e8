package xref

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Resolver looks up the spec for a uid. Unknown uids yield ErrSpecNotFound.
type Resolver interface {
	Resolve(ctx context.Context, uid string) (Spec, error)
}

// Store is a Resolver that specs can be registered with.
type Store interface {
	Resolver
	Put(ctx context.Context, spec Spec) error
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, uid string) (Spec, error)

func (f ResolverFunc) Resolve(ctx context.Context, uid string) (Spec, error) {
	return f(ctx, uid)
}

// Chain consults resolvers in order and returns the first spec found.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, uid string) (Spec, error) {
	for _, resolver := range c {
		if resolver == nil {
			continue
		}
		spec, err := resolver.Resolve(ctx, uid)
		switch {
		case err == nil && spec != nil:
			return spec, nil
		case err == nil, errors.Is(err, ErrSpecNotFound):
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, uid)
}

// MemoryStore keeps specs in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewMemoryStore returns a store seeded with specs. Specs without a uid are
// skipped.
func NewMemoryStore(specs ...Spec) *MemoryStore {
	store := &MemoryStore{specs: make(map[string]Spec, len(specs))}
	for _, spec := range specs {
		if uid := strings.TrimSpace(spec.UID()); uid != "" {
			store.specs[uid] = spec.Clone()
		}
	}
	return store
}

func (s *MemoryStore) Put(_ context.Context, spec Spec) error {
	uid := strings.TrimSpace(spec.UID())
	if uid == "" {
		return ErrInvalidSpec
	}
	s.mu.Lock()
	s.specs[uid] = spec.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Resolve(_ context.Context, uid string) (Spec, error) {
	s.mu.RLock()
	spec, ok := s.specs[uid]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSpecNotFound, uid)
	}
	return spec.Clone(), nil
}

// UIDs returns the registered uids in sorted order.
func (s *MemoryStore) UIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.specs))
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.specs)
}
