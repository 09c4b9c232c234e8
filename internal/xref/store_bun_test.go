package xref_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docref/internal/identity"
	"github.com/goliatone/go-docref/internal/xref"
	"github.com/goliatone/go-docref/pkg/testsupport"
)

func newSpecDB(t *testing.T, name string) *bun.DB {
	t.Helper()
	db, err := testsupport.NewBunMemoryDB(name)
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := xref.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func TestBunStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := xref.NewBunStore(newSpecDB(t, "xref_store_crud"))

	spec := xref.NewSpec("System.String", "api/System.String.html", "String")
	spec[xref.FullNameKey] = "System.String"
	spec["name.vb"] = "String"
	if err := store.Put(ctx, spec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Resolve(ctx, "System.String")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Href() != "api/System.String.html" || got.Name() != "String" || got["name.vb"] != "String" || got[xref.FullNameKey] != "System.String" {
		t.Fatalf("unexpected spec %v", got)
	}

	spec[xref.HrefKey] = "api/string.html"
	if err := store.Put(ctx, spec); err != nil {
		t.Fatalf("put update: %v", err)
	}
	got, err = store.Resolve(ctx, "System.String")
	if err != nil || got.Href() != "api/string.html" {
		t.Fatalf("expected updated href, got %v %v", got, err)
	}

	all, err := store.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected one stored spec, got %d %v", len(all), err)
	}

	if err := store.Delete(ctx, "System.String"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Resolve(ctx, "System.String"); !errors.Is(err, xref.ErrSpecNotFound) {
		t.Fatalf("expected ErrSpecNotFound after delete, got %v", err)
	}
	if err := store.Put(ctx, xref.Spec{xref.HrefKey: "x"}); !errors.Is(err, xref.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestBunStoreRecordIDsAreDeterministic(t *testing.T) {
	ctx := context.Background()
	db := newSpecDB(t, "xref_store_ids")
	store := xref.NewBunStore(db)

	if err := store.Put(ctx, xref.NewSpec("A.B", "a.html", "")); err != nil {
		t.Fatalf("put: %v", err)
	}
	var record xref.SpecRecord
	if err := db.NewSelect().Model(&record).Where("uid = ?", "A.B").Scan(ctx); err != nil {
		t.Fatalf("select: %v", err)
	}
	if record.ID != identity.SpecUUID("A.B") {
		t.Fatalf("expected deterministic id, got %s", record.ID)
	}
}

func TestBunStoreWithCacheResolves(t *testing.T) {
	ctx := context.Background()

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	store := xref.NewBunStoreWithCache(newSpecDB(t, "xref_store_cache"), cacheSvc, repocache.NewDefaultKeySerializer())

	if err := store.Put(ctx, xref.NewSpec("Cached.Uid", "cached.html", "Cached")); err != nil {
		t.Fatalf("put: %v", err)
	}
	for i := 0; i < 2; i++ {
		spec, err := store.Resolve(ctx, "Cached.Uid")
		if err != nil || spec.Href() != "cached.html" {
			t.Fatalf("resolve %d: %v %v", i, spec, err)
		}
	}
	if _, err := store.Resolve(ctx, "Unknown"); !errors.Is(err, xref.ErrSpecNotFound) {
		t.Fatalf("expected ErrSpecNotFound, got %v", err)
	}
}
