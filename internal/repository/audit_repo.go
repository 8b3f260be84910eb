package repository

import (
	"context"
	"encoding/json"

	"telegram_docbot/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil || log.Details == nil {
		detailsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (telegram_id, action, category, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, log.TelegramID, log.Action, log.Category, detailsJSON).Scan(&log.ID, &log.CreatedAt)
}

// ListByTelegramID returns audit logs for a telegram user, newest first
func (r *AuditRepository) ListByTelegramID(ctx context.Context, tgID int64, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, telegram_id, action, category, details, created_at
		FROM audit_logs
		WHERE telegram_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var details []byte
		if err := rows.Scan(&l.ID, &l.TelegramID, &l.Action, &l.Category, &details, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &l.Details)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
