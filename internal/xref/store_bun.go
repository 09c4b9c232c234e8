package xref

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docref/internal/identity"
	"github.com/goliatone/go-docref/internal/util"
)

// SpecRecord is the persisted form of a Spec.
type SpecRecord struct {
	bun.BaseModel `bun:"table:xref_specs,alias:xs"`

	ID         uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	UID        string            `bun:"uid,notnull,unique" json:"uid"`
	Href       string            `bun:"href" json:"href"`
	Name       string            `bun:"name" json:"name,omitempty"`
	Properties map[string]string `bun:"properties,type:jsonb" json:"properties,omitempty"`
	CreatedAt  time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Spec rebuilds the property bag, with the dedicated columns taking
// precedence over stored properties.
func (r *SpecRecord) Spec() Spec {
	spec := Spec(util.CloneStringMap(r.Properties))
	spec[UIDKey] = r.UID
	spec[HrefKey] = r.Href
	if r.Name != "" {
		spec[NameKey] = r.Name
	}
	return spec
}

func recordFromSpec(spec Spec, now time.Time) *SpecRecord {
	uid := strings.TrimSpace(spec.UID())
	props := util.CloneStringMap(spec)
	delete(props, UIDKey)
	delete(props, HrefKey)
	delete(props, NameKey)
	return &SpecRecord{
		ID:         identity.SpecUUID(uid),
		UID:        uid,
		Href:       spec.Href(),
		Name:       spec.Name(),
		Properties: props,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewSpecRepository creates a repository for spec records keyed by uid.
func NewSpecRepository(db *bun.DB) repository.Repository[*SpecRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SpecRecord]{
		NewRecord: func() *SpecRecord { return &SpecRecord{} },
		GetID: func(record *SpecRecord) uuid.UUID {
			return record.ID
		},
		SetID: func(record *SpecRecord, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "uid"
		},
		GetIdentifierValue: func(record *SpecRecord) string {
			return record.UID
		},
	})
}

// EnsureSchema creates the spec table when it does not exist.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*SpecRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("xref: create spec table: %w", err)
	}
	return nil
}

// BunStore persists specs through go-repository-bun, optionally behind a
// go-repository-cache layer.
type BunStore struct {
	repo repository.Repository[*SpecRecord]
	now  func() time.Time
}

// NewBunStore creates a store without caching.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache creates a store whose reads go through cacheService.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunStore {
	base := NewSpecRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunStore{repo: base, now: time.Now}
}

// Resolve implements Resolver.
func (s *BunStore) Resolve(ctx context.Context, uid string) (Spec, error) {
	record, err := s.repo.GetByIdentifier(ctx, uid)
	if err != nil {
		return nil, mapRepositoryError(err, uid)
	}
	return record.Spec(), nil
}

// Put inserts spec or replaces the stored spec with the same uid.
func (s *BunStore) Put(ctx context.Context, spec Spec) error {
	if strings.TrimSpace(spec.UID()) == "" {
		return ErrInvalidSpec
	}
	record := recordFromSpec(spec, s.now().UTC())

	existing, err := s.repo.GetByIdentifier(ctx, record.UID)
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		_, err = s.repo.Update(ctx, record,
			repository.UpdateByID(record.ID.String()),
			repository.UpdateColumns("href", "name", "properties", "updated_at"),
		)
	case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		_, err = s.repo.Create(ctx, record)
	}
	if err != nil {
		return fmt.Errorf("xref: store spec %s: %w", record.UID, err)
	}
	return nil
}

// List returns every stored spec.
func (s *BunStore) List(ctx context.Context) ([]Spec, error) {
	records, _, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	specs := make([]Spec, 0, len(records))
	for _, record := range records {
		specs = append(specs, record.Spec())
	}
	return specs, nil
}

// Delete removes the spec stored for uid.
func (s *BunStore) Delete(ctx context.Context, uid string) error {
	record, err := s.repo.GetByIdentifier(ctx, uid)
	if err != nil {
		return mapRepositoryError(err, uid)
	}
	return s.repo.Delete(ctx, record)
}

func mapRepositoryError(err error, uid string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return fmt.Errorf("%w: %s", ErrSpecNotFound, uid)
	}
	return fmt.Errorf("xref: spec repository error: %w", err)
}
