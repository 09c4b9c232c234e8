package di

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-docref/internal/runtimeconfig"
)

// openBunDB opens the sqlite database named by cfg.
func openBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("di: open %s storage: %w", cfg.Driver, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	return db, nil
}
