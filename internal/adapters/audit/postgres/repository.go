package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"3tcapital/ms_numeracion_core/internal/core/audit"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the audit.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates a new PostgreSQL issuance ledger.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, log: nil}
}

// NewRepositoryWithLogger creates a new PostgreSQL issuance ledger with logging.
func NewRepositoryWithLogger(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

// Save appends an issued number to the ledger.
func (r *Repository) Save(ctx context.Context, record audit.IssueRecord) error {
	query := `
		INSERT INTO serial_issue_log (
			setting_id, property_code, doc_type, store_code,
			number, serial, period_key, correlation_id, issued_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		record.SettingID,
		record.PropertyCode,
		record.DocType,
		record.StoreCode,
		record.Number,
		record.Serial,
		record.PeriodKey,
		record.CorrelationID,
		record.IssuedAt,
	)
	if err != nil {
		errMsg := fmt.Errorf("insert issue log: %w", err)
		if r.log != nil {
			r.log.Error("Failed to insert issue log into database",
				"correlation_id", record.CorrelationID,
				"setting_id", record.SettingID,
				"serial", record.Serial,
				"error", errMsg,
			)
		}
		return errMsg
	}

	if r.log != nil {
		r.log.Debug("Issue log saved",
			"correlation_id", record.CorrelationID,
			"setting_id", record.SettingID,
			"serial", record.Serial,
		)
	}

	return nil
}

// FindBySetting retrieves the latest issued numbers of a setting, newest first.
func (r *Repository) FindBySetting(ctx context.Context, settingID string, limit int) ([]audit.IssueRecord, error) {
	uid, err := uuid.Parse(settingID)
	if err != nil {
		return []audit.IssueRecord{}, nil
	}

	query := `
		SELECT id, setting_id::text, property_code, doc_type, store_code,
		       number, serial, period_key, correlation_id, issued_at
		FROM serial_issue_log
		WHERE setting_id = $1
		ORDER BY issued_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("query issue log: %w", err)
	}
	defer rows.Close()

	records := []audit.IssueRecord{}
	for rows.Next() {
		var rec audit.IssueRecord
		err := rows.Scan(
			&rec.ID,
			&rec.SettingID,
			&rec.PropertyCode,
			&rec.DocType,
			&rec.StoreCode,
			&rec.Number,
			&rec.Serial,
			&rec.PeriodKey,
			&rec.CorrelationID,
			&rec.IssuedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan issue log: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}
