package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mutecomm/go-sqlcipher/v4"
	_ "modernc.org/sqlite"
)

// Supported store drivers.
const (
	DriverSQLCipher = "sqlcipher"
	DriverSQLite    = "sqlite"
	DriverMySQL     = "mysql"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

type DB struct {
	*sql.DB
	Driver string
}

// Options selects and addresses a store.
type Options struct {
	Driver string
	Path   string // sqlcipher and sqlite
	Key    string // sqlcipher encryption key
	DSN    string // mysql
}

// Open opens the store described by opts and verifies the connection.
func Open(ctx context.Context, opts Options) (*DB, error) {
	switch opts.Driver {
	case DriverSQLCipher, "":
		return openSQLite(ctx, "sqlite3", DriverSQLCipher, opts.Path, fmt.Sprintf("%s?_key=%s", opts.Path, opts.Key))
	case DriverSQLite:
		return openSQLite(ctx, "sqlite", DriverSQLite, opts.Path, opts.Path)
	case DriverMySQL:
		return openMySQL(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// OpenMemory opens an empty, migrated in-memory SQLite store.
func OpenMemory(ctx context.Context) (*DB, error) {
	d, err := Open(ctx, Options{Driver: DriverSQLite, Path: MemoryPath})
	if err != nil {
		return nil, err
	}
	if err := d.RunMigrations(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func openSQLite(ctx context.Context, driverName, dialect, path, dsn string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs are per connection, and an in-memory database lives only as
	// long as its single connection.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if path != MemoryPath {
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: dialect}, nil
}

func openMySQL(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	// Dates and timestamps are stored as text and parsed by the repositories.
	cfg.ParseTime = false
	// Report matched rather than changed rows so an unchanged update is not
	// mistaken for a vanished record.
	cfg.ClientFoundRows = true

	sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: DriverMySQL}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Data tables, children first.
const (
	TableTasks   = "tasks"
	TableClients = "clients"
)

// Clear deletes every row of tables, in the order given, in one transaction.
func (db *DB) Clear(ctx context.Context, tables ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if table != TableTasks && table != TableClients {
			return fmt.Errorf("unknown table %q", table)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
