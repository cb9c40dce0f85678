package datastore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/rs/zerolog"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS diff_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	before_path TEXT NOT NULL,
	after_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	result_code INTEGER NOT NULL,
	output_exists INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	result_type INTEGER,
	diff_count INTEGER,
	diff_percentage REAL,
	diff_line_count INTEGER,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diff_history_created_at ON diff_history(created_at);
`

// HistoryStore records diff invocations in SQLite.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewHistoryStore opens the history database at dbPath.
func NewHistoryStore(dbPath string, logger zerolog.Logger) (*HistoryStore, error) {
	hsLogger := logger.With().Str("component", "HistoryStore").Logger()
	db, err := openSQLite(dbPath, historySchema, hsLogger)
	if err != nil {
		return nil, err
	}
	return &HistoryStore{db: db, logger: hsLogger}, nil
}

func (h *HistoryStore) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

// RecordInvocation stores inv and returns the new row id.
func (h *HistoryStore) RecordInvocation(ctx context.Context, inv models.DiffInvocation) (int64, error) {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}

	var (
		resultType sql.NullInt64
		diffCount  sql.NullInt64
		percentage sql.NullFloat64
		lineCount  sql.NullInt64
	)
	if inv.Result != nil {
		resultType = sql.NullInt64{Int64: int64(inv.Result.ResultType), Valid: true}
		diffCount = sql.NullInt64{Int64: int64(inv.Result.DiffCount), Valid: true}
		percentage = sql.NullFloat64{Float64: inv.Result.DiffPercentage, Valid: true}
		lineCount = sql.NullInt64{Int64: int64(inv.Result.DiffLineCount), Valid: true}
	}

	res, err := h.db.ExecContext(ctx, `
		INSERT INTO diff_history (
			before_path, after_path, output_path, result_code, output_exists, duration_ms,
			result_type, diff_count, diff_percentage, diff_line_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.BeforePath, inv.AfterPath, inv.OutputPath, inv.ResultCode, inv.OutputExists,
		inv.Duration.Milliseconds(), resultType, diffCount, percentage, lineCount,
		inv.CreatedAt.UnixMilli())
	if err != nil {
		h.logger.Error().Err(err).Str("output_path", inv.OutputPath).Msg("Failed to record diff invocation")
		return 0, WrapError(err, "failed to record diff invocation")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, WrapError(err, "failed to read inserted id")
	}
	h.logger.Debug().Int64("id", id).Int32("result_code", inv.ResultCode).Msg("Diff invocation recorded")
	return id, nil
}

// ListRecent returns up to limit invocations, newest first. limit <= 0 means no limit.
func (h *HistoryStore) ListRecent(ctx context.Context, limit int) ([]models.DiffInvocation, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, before_path, after_path, output_path, result_code, output_exists, duration_ms,
			result_type, diff_count, diff_percentage, diff_line_count, created_at
		FROM diff_history ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, WrapError(err, "failed to query diff history")
	}
	defer func() { _ = rows.Close() }()

	var out []models.DiffInvocation
	for rows.Next() {
		var (
			inv        models.DiffInvocation
			durationMs int64
			createdAt  int64
			resultType sql.NullInt64
			diffCount  sql.NullInt64
			percentage sql.NullFloat64
			lineCount  sql.NullInt64
		)
		if err := rows.Scan(&inv.ID, &inv.BeforePath, &inv.AfterPath, &inv.OutputPath,
			&inv.ResultCode, &inv.OutputExists, &durationMs,
			&resultType, &diffCount, &percentage, &lineCount, &createdAt); err != nil {
			return nil, WrapError(err, "failed to scan diff history row")
		}
		inv.Duration = time.Duration(durationMs) * time.Millisecond
		inv.CreatedAt = time.UnixMilli(createdAt)
		if resultType.Valid {
			inv.Result = &models.DiffResult{
				ResultType:     models.ResultType(resultType.Int64),
				DiffCount:      int32(diffCount.Int64),
				DiffPercentage: percentage.Float64,
				DiffLineCount:  uint64(lineCount.Int64),
				DiffOutputPath: inv.OutputPath,
			}
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, "error iterating diff history")
	}
	return out, nil
}
