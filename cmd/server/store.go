package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/protectmyphone/pmp/internal/api"
	dbstore "github.com/protectmyphone/pmp/internal/db"
)

// openStore returns the configured Store and a close function. With
// PMP_SQLITE_PATH set the store is SQLite with migrations applied on
// startup; otherwise an in-memory store is used (dev only, data is lost
// on restart).
func openStore() (api.Store, func(), error) {
	sqlitePath := os.Getenv("PMP_SQLITE_PATH")
	if sqlitePath == "" {
		log.Printf("PMP_SQLITE_PATH not set, using in-memory store")
		return api.NewMemoryStore(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := dbstore.RunMigrations(sqliteDB, os.Getenv("PMP_MIGRATIONS_DIR")); err != nil {
		_ = sqliteDB.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		_ = sqliteDB.Close()
		return nil, nil, fmt.Errorf("init sqlite store: %w", err)
	}

	closeFn := func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}
	log.Printf("using sqlite store at %s", sqlitePath)
	return store, closeFn, nil
}
