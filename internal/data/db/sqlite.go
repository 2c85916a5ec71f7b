package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenSQLite opens a file-backed or in-memory ("", ":memory:") database.
// Local runs and tests use it in place of Postgres.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", dsn, err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Open selects the backend by driver name.
func Open(driver, sqlitePath string, svc func() (*PostgresService, error)) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql":
		pg, err := svc()
		if err != nil {
			return nil, err
		}
		return pg.DB(), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}
