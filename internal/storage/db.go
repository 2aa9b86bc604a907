package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps SQLite database operations for the ships table.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode so the sweep's writes never block read handlers
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	storage := &DB{db: db}

	if err := storage.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates tables if they don't exist
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ships (
		id TEXT PRIMARY KEY,
		heard_through TEXT,
		github_username TEXT,
		country TEXT,
		hours REAL,
		screenshot_url TEXT,
		code_url TEXT,
		demo_url TEXT,
		description TEXT,
		approved_at DATE,
		ysws TEXT,
		embedding BLOB
	);

	CREATE INDEX IF NOT EXISTS idx_approved ON ships(approved_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Upsert inserts or replaces a ship by ID. Every non-key column is
// overwritten unconditionally; there is no field-level merge.
func (d *DB) Upsert(ship *Ship) error {
	query := `
	INSERT INTO ships (
		id, heard_through, github_username, country, hours,
		screenshot_url, code_url, demo_url, description, approved_at, ysws, embedding
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		heard_through = excluded.heard_through,
		github_username = excluded.github_username,
		country = excluded.country,
		hours = excluded.hours,
		screenshot_url = excluded.screenshot_url,
		code_url = excluded.code_url,
		demo_url = excluded.demo_url,
		description = excluded.description,
		approved_at = excluded.approved_at,
		ysws = excluded.ysws,
		embedding = excluded.embedding
	`

	_, err := d.db.Exec(query,
		ship.ID, ship.HeardThrough, ship.GithubUsername, ship.Country, ship.Hours,
		ship.ScreenshotURL, ship.CodeURL, ship.DemoURL, ship.Description, ship.ApprovedAt,
		ship.YSWS, ship.Embedding,
	)
	return err
}

const selectColumns = `
	SELECT id, heard_through, github_username, country, hours,
	       screenshot_url, code_url, demo_url, description, approved_at, ysws, embedding
	FROM ships`

// Get retrieves a ship by ID, or nil when absent.
func (d *DB) Get(id string) (*Ship, error) {
	ship := &Ship{}
	err := d.db.QueryRow(selectColumns+" WHERE id = ?", id).Scan(
		&ship.ID, &ship.HeardThrough, &ship.GithubUsername, &ship.Country, &ship.Hours,
		&ship.ScreenshotURL, &ship.CodeURL, &ship.DemoURL, &ship.Description, &ship.ApprovedAt,
		&ship.YSWS, &ship.Embedding,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ship, nil
}

// List retrieves all ships ordered by approval date ascending. SQLite sorts
// rows with NULL approved_at first under ascending order.
func (d *DB) List() ([]*Ship, error) {
	rows, err := d.db.Query(selectColumns + " ORDER BY approved_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ships []*Ship
	for rows.Next() {
		ship := &Ship{}
		err := rows.Scan(
			&ship.ID, &ship.HeardThrough, &ship.GithubUsername, &ship.Country, &ship.Hours,
			&ship.ScreenshotURL, &ship.CodeURL, &ship.DemoURL, &ship.Description, &ship.ApprovedAt,
			&ship.YSWS, &ship.Embedding,
		)
		if err != nil {
			return nil, err
		}
		ships = append(ships, ship)
	}

	return ships, rows.Err()
}

// Count returns the total number of ships
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM ships").Scan(&count)
	return count, err
}
