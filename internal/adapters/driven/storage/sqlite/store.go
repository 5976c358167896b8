// Package sqlite provides a SQLite-backed document store for the
// section catalog. The database is written once during the corpus
// load and read concurrently afterwards; WAL mode keeps readers from
// blocking each other.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/eldin/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-based document store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store at the specified data directory.
// If dataDir is empty, defaults to ~/.eldin/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".eldin", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveDocument stores or replaces a document and its sections in one
// transaction.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, tags, date, authority)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			tags = excluded.tags,
			date = excluded.date,
			authority = excluded.authority
	`, doc.ID, doc.Title, string(tags), doc.Date, doc.Authority)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sections WHERE doc_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing sections: %w", err)
	}

	for i := range doc.Sections {
		sec := &doc.Sections[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sections (doc_id, id, heading, anchor, body, start_off, end_off, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, sec.ID, sec.Heading, sec.Anchor, sec.Body, sec.Start, sec.End, sec.Position)
		if err != nil {
			return fmt.Errorf("inserting section %s: %w", sec.ID, err)
		}
	}

	return tx.Commit()
}

// GetDocument retrieves a document with its sections.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, tags, date, authority FROM documents WHERE id = ?", id)

	var doc domain.Document
	var tags string
	if err := row.Scan(&doc.ID, &doc.Title, &tags, &doc.Date, &doc.Authority); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}

	sections, err := s.querySections(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Sections = sections

	return &doc, nil
}

// ListDocuments returns all documents ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// ListSections returns a document's sections in document order.
func (s *Store) ListSections(ctx context.Context, docID string) ([]domain.Section, error) {
	var exists int
	row := s.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE id = ?", docID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("checking document: %w", err)
	}
	return s.querySections(ctx, docID)
}

func (s *Store) querySections(ctx context.Context, docID string) ([]domain.Section, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, heading, anchor, body, start_off, end_off, position
		FROM sections WHERE doc_id = ? ORDER BY position
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		var sec domain.Section
		if err := rows.Scan(&sec.ID, &sec.Heading, &sec.Anchor, &sec.Body,
			&sec.Start, &sec.End, &sec.Position); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// migrate applies pending *.up.sql migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
