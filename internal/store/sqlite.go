package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/newswatch/scout/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	url          TEXT PRIMARY KEY,
	id           TEXT NOT NULL,
	source       TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	author       TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	preview      TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL,
	fetched_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
CREATE INDEX IF NOT EXISTS idx_records_fetched ON records(fetched_at);
`

// RecordStore is the SQLite-backed record repository. Upserts are
// idempotent by URL, so concurrent writers for the same record converge.
type RecordStore struct {
	db *sql.DB
}

// OpenRecordStore opens (creating if necessary) the SQLite database at
// path and ensures the schema exists.
func OpenRecordStore(path string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	// SQLite serializes writers; a single connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init record store schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Record store opened")
	return &RecordStore{db: db}, nil
}

// Close releases the database handle.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

const upsertSQL = `
INSERT INTO records (url, id, source, title, description, category, author, content_type, content, preview, published_at, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	source = excluded.source,
	title = excluded.title,
	description = excluded.description,
	category = excluded.category,
	author = excluded.author,
	content_type = excluded.content_type,
	content = CASE WHEN excluded.content != '' THEN excluded.content ELSE records.content END,
	preview = excluded.preview,
	published_at = excluded.published_at,
	fetched_at = excluded.fetched_at
`

// Upsert writes records keyed by URL. Re-upserting the same URL updates in
// place; an empty incoming body never clobbers a previously stored one.
func (s *RecordStore) Upsert(ctx context.Context, records []models.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.URL, r.ID, r.Source, r.Title, r.Description, r.Category,
			r.Author, r.ContentType, r.Content, r.Preview, r.PublishedAt, r.FetchedAt,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", r.URL, err)
		}
	}

	return tx.Commit()
}

// DistinctSources lists every source name present in the store.
func (s *RecordStore) DistinctSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM records ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// FindRecent returns records fetched within the last windowMinutes, newest
// first.
func (s *RecordStore) FindRecent(ctx context.Context, windowMinutes int) ([]models.NormalizedRecord, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(windowMinutes) * time.Minute).Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, id, source, title, description, category, author, content_type, content, preview, published_at, fetched_at
		 FROM records WHERE fetched_at >= ? ORDER BY fetched_at DESC`, cutoff)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

// FindBySource returns up to limit records for one source, newest first.
func (s *RecordStore) FindBySource(ctx context.Context, name string, limit int) ([]models.NormalizedRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, id, source, title, description, category, author, content_type, content, preview, published_at, fetched_at
		 FROM records WHERE source = ? ORDER BY fetched_at DESC LIMIT ?`, name, limit)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.NormalizedRecord, error) {
	defer rows.Close()

	var out []models.NormalizedRecord
	for rows.Next() {
		var r models.NormalizedRecord
		if err := rows.Scan(
			&r.URL, &r.ID, &r.Source, &r.Title, &r.Description, &r.Category,
			&r.Author, &r.ContentType, &r.Content, &r.Preview, &r.PublishedAt, &r.FetchedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
