package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const mediaIndexSchema = `
CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uri TEXT NOT NULL UNIQUE,
	data TEXT,
	display_name TEXT NOT NULL DEFAULT '',
	date_added INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_images_date_added ON images(date_added);
`

// ContentURIPrefix is used for index entries added without an explicit URI.
const ContentURIPrefix = "content://media/external/images/media/"

// MediaEntry is one row of the media index.
type MediaEntry struct {
	ID          int64
	URI         string
	// Data is the local file backing the entry. Empty means the resource has no local projection.
	Data        string
	DisplayName string
	DateAdded   time.Time
}

// MediaIndex is a SQLite table mapping content URIs to local files.
type MediaIndex struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMediaIndex opens the media index database at dbPath.
func NewMediaIndex(dbPath string, logger zerolog.Logger) (*MediaIndex, error) {
	idxLogger := logger.With().Str("component", "MediaIndex").Logger()
	db, err := openSQLite(dbPath, mediaIndexSchema, idxLogger)
	if err != nil {
		return nil, err
	}
	return &MediaIndex{db: db, logger: idxLogger}, nil
}

// Close closes the underlying database.
func (m *MediaIndex) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Add inserts an entry and returns its URI. A blank URI gets a generated content:// URI.
func (m *MediaIndex) Add(ctx context.Context, entry MediaEntry) (string, error) {
	if entry.DateAdded.IsZero() {
		entry.DateAdded = time.Now()
	}

	var data any
	if entry.Data != "" {
		data = entry.Data
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", WrapError(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	uri := strings.TrimSpace(entry.URI)
	// Placeholder URI keeps the UNIQUE constraint satisfied until the id is known.
	insertURI := uri
	if insertURI == "" {
		insertURI = fmt.Sprintf("pending:%d", time.Now().UnixNano())
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO images (uri, data, display_name, date_added) VALUES (?, ?, ?, ?)`,
		insertURI, data, entry.DisplayName, entry.DateAdded.UnixMilli())
	if err != nil {
		return "", WrapError(err, fmt.Sprintf("failed to insert media entry %q", insertURI))
	}

	if uri == "" {
		id, err := res.LastInsertId()
		if err != nil {
			return "", WrapError(err, "failed to read inserted id")
		}
		uri = fmt.Sprintf("%s%d", ContentURIPrefix, id)
		if _, err := tx.ExecContext(ctx, `UPDATE images SET uri = ? WHERE id = ?`, uri, id); err != nil {
			return "", WrapError(err, "failed to assign content uri")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", WrapError(err, "failed to commit media entry")
	}

	m.logger.Debug().Str("uri", uri).Str("data", entry.Data).Msg("Media entry added")
	return uri, nil
}

// LookupPath returns the local path stored for uri. found is false when no row exists.
// A row with a NULL data column returns found=true and an empty path.
func (m *MediaIndex) LookupPath(ctx context.Context, uri string) (string, bool, error) {
	var data sql.NullString
	err := m.db.QueryRowContext(ctx, `SELECT data FROM images WHERE uri = ?`, uri).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, WrapError(err, fmt.Sprintf("failed to query media index for %q", uri))
	}
	return data.String, true, nil
}

// List returns all entries, newest first.
func (m *MediaIndex) List(ctx context.Context) ([]MediaEntry, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, uri, data, display_name, date_added FROM images ORDER BY date_added DESC, id DESC`)
	if err != nil {
		return nil, WrapError(err, "failed to list media entries")
	}
	defer func() { _ = rows.Close() }()

	var entries []MediaEntry
	for rows.Next() {
		var (
			e     MediaEntry
			data  sql.NullString
			added int64
		)
		if err := rows.Scan(&e.ID, &e.URI, &data, &e.DisplayName, &added); err != nil {
			return nil, WrapError(err, "failed to scan media entry")
		}
		e.Data = data.String
		e.DateAdded = time.UnixMilli(added)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "error iterating media entries")
	}
	return entries, nil
}

// Remove deletes the entry for uri. Removing an unknown URI is not an error.
func (m *MediaIndex) Remove(ctx context.Context, uri string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM images WHERE uri = ?`, uri); err != nil {
		return WrapError(err, fmt.Sprintf("failed to remove media entry %q", uri))
	}
	return nil
}
