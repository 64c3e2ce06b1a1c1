package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB holding directory data.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database location.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	if _, err := d.Exec(schema); err != nil {
		return err
	}
	for _, c := range addedColumns {
		if err := d.addColumn(c.table, c.name, c.decl); err != nil {
			return err
		}
	}
	return nil
}

// addedColumns were introduced after their table first shipped. Databases
// created earlier gain them on open.
var addedColumns = []struct{ table, name, decl string }{
	{"directories", "meta_last_updated", "DATETIME"},
	{"directories", "meta_last_fetched", "DATETIME"},
}

// addColumn adds column name to table unless it already exists.
func (d *DB) addColumn(table, name, decl string) error {
	var exists int
	err := d.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", table, err)
	}
	if exists > 0 {
		return nil
	}
	if _, err := d.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, name, decl)); err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, name, err)
	}
	return nil
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS directories (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    nice_name TEXT NOT NULL DEFAULT '',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    meta_keywords TEXT NOT NULL DEFAULT '',
    last_updated DATETIME,
    meta_last_updated DATETIME,
    meta_last_fetched DATETIME,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS listings (
    directory_slug TEXT NOT NULL REFERENCES directories(slug) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    listing_id INTEGER NOT NULL DEFAULT 0,
    name TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    rating REAL,
    reviews INTEGER,
    price_range TEXT NOT NULL DEFAULT '',
    availability TEXT NOT NULL DEFAULT '',
    website TEXT NOT NULL DEFAULT '',
    services TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (directory_slug, position)
);

CREATE INDEX IF NOT EXISTS idx_listings_directory ON listings(directory_slug, position);
`
