package db

import (
	"context"
	"fmt"
)

type migration struct {
	version    int
	statements []string
}

var schemaVersionDDL = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS schema_version (
    version INT PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB`,
}

// Dates are stored as YYYY-MM-DD text and timestamps as RFC 3339 text on
// every dialect so queries and scans stay identical.
var migrations = map[string][]migration{
	DriverSQLite: {
		{
			version: 1,
			statements: []string{
				`CREATE TABLE clients (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    hourly_rate NUMERIC NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1
)`,
				`CREATE TABLE tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
    task_date TEXT NOT NULL,
    task_link TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL,
    hours_worked NUMERIC NOT NULL,
    created_at TEXT NOT NULL
)`,
				`CREATE INDEX idx_tasks_client ON tasks(client_id)`,
				`CREATE INDEX idx_tasks_date ON tasks(task_date)`,
			},
		},
		{
			version: 2,
			statements: []string{
				`ALTER TABLE clients ADD COLUMN currency TEXT NOT NULL DEFAULT 'INR'`,
				`ALTER TABLE clients ADD COLUMN conversion_rate NUMERIC NOT NULL DEFAULT 1`,
			},
		},
	},
	DriverMySQL: {
		{
			version: 1,
			statements: []string{
				`CREATE TABLE clients (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    hourly_rate DECIMAL(18,2) NOT NULL,
    description VARCHAR(500) NOT NULL DEFAULT '',
    email VARCHAR(100) NOT NULL DEFAULT '',
    phone VARCHAR(20) NOT NULL DEFAULT '',
    created_at VARCHAR(40) NOT NULL,
    is_active TINYINT(1) NOT NULL DEFAULT 1
) ENGINE=InnoDB`,
				`CREATE TABLE tasks (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    client_id BIGINT NOT NULL,
    task_date CHAR(10) NOT NULL,
    task_link VARCHAR(500) NOT NULL DEFAULT '',
    description VARCHAR(1000) NOT NULL,
    hours_worked DECIMAL(18,2) NOT NULL,
    created_at VARCHAR(40) NOT NULL,
    INDEX idx_tasks_date (task_date),
    CONSTRAINT fk_tasks_client FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
			},
		},
		{
			version: 2,
			statements: []string{
				`ALTER TABLE clients
    ADD COLUMN currency VARCHAR(3) NOT NULL DEFAULT 'INR',
    ADD COLUMN conversion_rate DECIMAL(18,4) NOT NULL DEFAULT 1`,
			},
		},
	},
}

// dialect maps a driver onto its SQL flavour.
func (db *DB) dialect() string {
	if db.Driver == DriverMySQL {
		return DriverMySQL
	}
	return DriverSQLite
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	dialect := db.dialect()

	if _, err := db.ExecContext(ctx, schemaVersionDDL[dialect]); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	// MySQL commits DDL implicitly; the transaction still keeps the
	// version bookkeeping together on SQLite.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations[dialect] {
		if m.version <= currentVersion {
			continue
		}

		for _, stmt := range m.statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the highest applied migration version
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return v, nil
}
