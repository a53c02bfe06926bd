package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"3tcapital/ms_numeracion_core/internal/core/serial"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const settingColumns = `
	id::text, property_code, doc_type, store_code, prefix, date_pattern, suffix,
	pad_length, next_number, reset_frequency, is_active, period_key,
	last_issued_at, created_at, updated_at`

// orderColumns maps the API sort keys to their columns.
var orderColumns = map[string]string{
	"propertyCode":   "property_code",
	"docType":        "doc_type",
	"storeCode":      "store_code",
	"prefix":         "prefix",
	"datePattern":    "date_pattern",
	"resetFrequency": "reset_frequency",
	"nextNumber":     "next_number",
	"isActive":       "is_active",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

// Repository implements the serial.Repository interface using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL serial settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSetting(row rowScanner) (*serial.Setting, error) {
	var s serial.Setting
	var pattern, freq string
	err := row.Scan(
		&s.ID,
		&s.PropertyCode,
		&s.DocType,
		&s.StoreCode,
		&s.Prefix,
		&pattern,
		&s.Suffix,
		&s.PadLength,
		&s.NextNumber,
		&freq,
		&s.IsActive,
		&s.PeriodKey,
		&s.LastIssuedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.DatePattern = serial.DatePattern(pattern)
	s.ResetFrequency = serial.ResetFrequency(freq)
	return &s, nil
}

// Create persists a new setting with a fresh id.
func (r *Repository) Create(ctx context.Context, s serial.Setting) (*serial.Setting, error) {
	query := `
		INSERT INTO serial_settings (
			id, property_code, doc_type, store_code, prefix, date_pattern, suffix,
			pad_length, next_number, reset_frequency, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + settingColumns

	created, err := scanSetting(r.pool.QueryRow(ctx, query,
		uuid.New(),
		s.PropertyCode,
		s.DocType,
		s.StoreCode,
		s.Prefix,
		string(s.DatePattern),
		s.Suffix,
		s.PadLength,
		s.NextNumber,
		string(s.ResetFrequency),
		s.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, serial.ErrDuplicateScope
		}
		return nil, fmt.Errorf("insert serial setting: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields. The counter is never written here;
// the period key only when a new one is supplied.
func (r *Repository) Update(ctx context.Context, s serial.Setting) (*serial.Setting, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, serial.ErrNotFound
	}

	query := `
		UPDATE serial_settings SET
			property_code = $1,
			doc_type = $2,
			store_code = $3,
			prefix = $4,
			date_pattern = $5,
			suffix = $6,
			pad_length = $7,
			reset_frequency = $8,
			is_active = $9,
			period_key = COALESCE(NULLIF($10::text, ''), period_key),
			updated_at = NOW()
		WHERE id = $11
		RETURNING ` + settingColumns

	updated, err := scanSetting(r.pool.QueryRow(ctx, query,
		s.PropertyCode,
		s.DocType,
		s.StoreCode,
		s.Prefix,
		string(s.DatePattern),
		s.Suffix,
		s.PadLength,
		string(s.ResetFrequency),
		s.IsActive,
		s.PeriodKey,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serial.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, serial.ErrDuplicateScope
		}
		return nil, fmt.Errorf("update serial setting: %w", err)
	}
	return updated, nil
}

// Delete removes a setting.
func (r *Repository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return serial.ErrNotFound
	}

	result, err := r.pool.Exec(ctx, "DELETE FROM serial_settings WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("delete serial setting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return serial.ErrNotFound
	}
	return nil
}

// FindByID retrieves a setting by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*serial.Setting, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, serial.ErrNotFound
	}

	query := "SELECT " + settingColumns + " FROM serial_settings WHERE id = $1"
	s, err := scanSetting(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serial.ErrNotFound
		}
		return nil, fmt.Errorf("query serial setting: %w", err)
	}
	return s, nil
}

// ExistsActiveScope checks whether another active setting owns the scope.
func (r *Repository) ExistsActiveScope(ctx context.Context, scope serial.Scope, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM serial_settings
			WHERE property_code = $1 AND doc_type = $2 AND store_code = $3
			  AND is_active AND id::text <> $4
		)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, scope.PropertyCode, scope.DocType, scope.StoreCode, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check scope existence: %w", err)
	}
	return exists, nil
}

// List retrieves settings with pagination, search, filters and sorting.
func (r *Repository) List(ctx context.Context, q serial.ListQuery) ([]serial.Setting, int, int, error) {
	whereClause, args := buildFilter(q)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM serial_settings").Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("count serial settings: %w", err)
	}

	filtered := total
	if whereClause != "" {
		if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM serial_settings "+whereClause, args...).Scan(&filtered); err != nil {
			return nil, 0, 0, fmt.Errorf("count filtered serial settings: %w", err)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM serial_settings %s %s", settingColumns, whereClause, buildOrderBy(q))
	if q.Length != -1 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Length, q.Start)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("query serial settings: %w", err)
	}
	defer rows.Close()

	settings := []serial.Setting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("scan serial setting: %w", err)
		}
		settings = append(settings, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("iterate rows: %w", err)
	}

	return settings, total, filtered, nil
}

// Issue takes the next number of the active setting owning scope. The row is
// locked for the duration of the transaction so concurrent callers serialize
// and never share a number.
func (r *Repository) Issue(ctx context.Context, scope serial.Scope, asOf time.Time) (*serial.IssuedNumber, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := "SELECT " + settingColumns + `
		FROM serial_settings
		WHERE property_code = $1 AND doc_type = $2 AND store_code = $3 AND is_active
		FOR UPDATE`

	s, err := scanSetting(tx.QueryRow(ctx, query, scope.PropertyCode, scope.DocType, scope.StoreCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serial.ErrNoActiveSetting
		}
		return nil, fmt.Errorf("lock serial setting: %w", err)
	}

	number := serial.EffectiveNextNumber(*s, asOf)
	periodKey := serial.PeriodKey(s.ResetFrequency, s.DatePattern, asOf)

	_, err = tx.Exec(ctx, `
		UPDATE serial_settings
		SET next_number = $1, period_key = $2, last_issued_at = $3, updated_at = NOW()
		WHERE id = $4::uuid`,
		number+1, periodKey, asOf, s.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("advance serial counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	pattern := s.Pattern()
	pattern.NextNumber = number
	return &serial.IssuedNumber{
		SettingID: s.ID,
		Scope:     s.Scope(),
		Number:    number,
		Serial:    serial.Format(pattern, asOf),
		PeriodKey: periodKey,
		IssuedAt:  asOf,
	}, nil
}

// buildFilter returns the WHERE clause and its arguments for a listing.
func buildFilter(q serial.ListQuery) (string, []any) {
	var conditions []string
	var args []any

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(property_code ILIKE $%d OR doc_type ILIKE $%d OR store_code ILIKE $%d OR prefix ILIKE $%d OR suffix ILIKE $%d)",
			n, n, n, n, n,
		))
	}
	if q.PropertyCode != "" {
		args = append(args, q.PropertyCode)
		conditions = append(conditions, fmt.Sprintf("property_code = $%d", len(args)))
	}
	if q.DocType != "" {
		args = append(args, q.DocType)
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if q.IsActive != nil {
		args = append(args, *q.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderBy only ever emits whitelisted columns.
func buildOrderBy(q serial.ListQuery) string {
	column, ok := orderColumns[q.OrderColumn]
	if !ok {
		column = "property_code"
	}
	direction := "ASC"
	if strings.EqualFold(q.OrderDirection, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, doc_type, store_code, created_at", column, direction)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
