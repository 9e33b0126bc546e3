package repository

import (
	"context"
	"fmt"

	"gastrotour/internal/data/entity"
	"gastrotour/pkg/database"

	"go.uber.org/zap"
)

type ErrorLogRepository interface {
	Create(ctx context.Context, entry *entity.ErrorLog) error
	FindRecent(ctx context.Context, limit int) ([]*entity.ErrorLog, error)
}

type errorLogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewErrorLogRepository(db database.PgxIface, log *zap.Logger) ErrorLogRepository {
	return &errorLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "error_log")),
	}
}

func (r *errorLogRepository) Create(ctx context.Context, entry *entity.ErrorLog) error {
	query := `
		INSERT INTO error_logs (id, level, message, stack_trace, path, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.Level,
		entry.Message,
		entry.StackTrace,
		entry.Path,
		entry.UserEmail,
		entry.CreatedAt,
	)

	if err != nil {
		// Best effort only. Callers must never fail a request because the
		// error tracker itself is down.
		r.log.Error("Failed to persist error log entry", zap.Error(err))
		return fmt.Errorf("create error log entry: %w", err)
	}

	return nil
}

func (r *errorLogRepository) FindRecent(ctx context.Context, limit int) ([]*entity.ErrorLog, error) {
	query := `
		SELECT id, level, message, stack_trace, path, user_email, created_at
		FROM error_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find recent error logs", zap.Error(err))
		return nil, fmt.Errorf("find recent error logs: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ErrorLog
	for rows.Next() {
		var entry entity.ErrorLog
		err := rows.Scan(
			&entry.ID,
			&entry.Level,
			&entry.Message,
			&entry.StackTrace,
			&entry.Path,
			&entry.UserEmail,
			&entry.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan error log row", zap.Error(err))
			return nil, fmt.Errorf("scan error log row: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
