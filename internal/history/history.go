// Package history keeps a SQLite log of catalog imports and artifact
// downloads so maintainers can see what changed between runs.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Import is one record written to the catalog by the importer.
type Import struct {
	ID        int64
	RecordID  string
	FlatpakID string
	Replaced  bool
	CreatedAt time.Time
}

// Download is one artifact fetched by the re-download tool.
type Download struct {
	ID        int64
	RecordID  string
	URL       string
	Path      string
	Bytes     int64
	CreatedAt time.Time
}

// Store persists history to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path.
func Open(dbPath string) (*Store, error) {
	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id  TEXT NOT NULL,
			flatpak_id TEXT NOT NULL,
			replaced   INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_imports_record_id ON imports(record_id);

		CREATE TABLE IF NOT EXISTS downloads (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id  TEXT NOT NULL,
			url        TEXT NOT NULL,
			path       TEXT NOT NULL,
			bytes      INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_downloads_record_id ON downloads(record_id);
	`)
	return err
}

// RecordImport appends an import entry. A zero CreatedAt is set to now.
func (s *Store) RecordImport(imp *Import) error {
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO imports (record_id, flatpak_id, replaced, created_at) VALUES (?, ?, ?, ?)`,
		imp.RecordID, imp.FlatpakID, boolToInt(imp.Replaced), imp.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording import: %w", err)
	}
	imp.ID, _ = res.LastInsertId()
	return nil
}

// RecordDownload appends a download entry. A zero CreatedAt is set to now.
func (s *Store) RecordDownload(d *Download) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO downloads (record_id, url, path, bytes, created_at) VALUES (?, ?, ?, ?, ?)`,
		d.RecordID, d.URL, d.Path, d.Bytes, d.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

// ListImports returns the most recent imports first. A non-positive limit
// returns all.
func (s *Store) ListImports(limit int) ([]*Import, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT id, record_id, flatpak_id, replaced, created_at FROM imports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing imports: %w", err)
	}
	defer rows.Close()

	var imports []*Import
	for rows.Next() {
		var (
			imp      Import
			replaced int
			created  string
		)
		if err := rows.Scan(&imp.ID, &imp.RecordID, &imp.FlatpakID, &replaced, &created); err != nil {
			return nil, err
		}
		imp.Replaced = replaced != 0
		imp.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		imports = append(imports, &imp)
	}
	return imports, rows.Err()
}

// ListDownloads returns downloads for a record in insertion order. An empty
// recordID returns all downloads.
func (s *Store) ListDownloads(recordID string) ([]*Download, error) {
	query := `SELECT id, record_id, url, path, bytes, created_at FROM downloads`
	var args []any
	if recordID != "" {
		query += ` WHERE record_id = ?`
		args = append(args, recordID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*Download
	for rows.Next() {
		var (
			d       Download
			created string
		)
		if err := rows.Scan(&d.ID, &d.RecordID, &d.URL, &d.Path, &d.Bytes, &created); err != nil {
			return nil, err
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		downloads = append(downloads, &d)
	}
	return downloads, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
