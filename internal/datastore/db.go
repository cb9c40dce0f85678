package datastore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// openSQLite opens (creating if needed) the SQLite database at path and runs schema.
func openSQLite(path string, schema string, logger zerolog.Logger) (*sql.DB, error) {
	if path == "" {
		return nil, NewError("database path is empty")
	}

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create database directory")
		return nil, WrapError(err, fmt.Sprintf("failed to create database directory %s", dbDir))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("Failed to open database")
		return nil, WrapError(err, fmt.Sprintf("sql.Open failed for %s", path))
	}
	// database/sql pools connections; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		logger.Error().Err(err).Msg("Failed to initialize database schema")
		return nil, WrapError(err, "failed to initialize schema")
	}

	logger.Debug().Str("path", path).Msg("Database initialized and schema verified.")
	return db, nil
}
