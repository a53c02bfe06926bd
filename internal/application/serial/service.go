package serial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"3tcapital/ms_numeracion_core/internal/core/audit"
	"3tcapital/ms_numeracion_core/internal/core/serial"
	reqctx "3tcapital/ms_numeracion_core/internal/infrastructure/context"
)

const defaultIssueLogLimit = 50

// Cache holds recently read settings. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(id string) (serial.Setting, bool)
	Set(s serial.Setting)
	Delete(id string)
}

// Config tunes the serial service.
type Config struct {
	// Location is the business timezone used for date tokens and reset periods.
	Location *time.Location
	// IssueLogLimit caps the number of ledger entries returned per request.
	IssueLogLimit int
}

// Service orchestrates serial-setting use cases.
type Service struct {
	repo   serial.Repository
	ledger audit.Repository
	cache  Cache
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new serial service. ledger and cache may be nil.
func NewService(repo serial.Repository, ledger audit.Repository, cache Cache, cfg Config, log *slog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.IssueLogLimit <= 0 {
		cfg.IssueLogLimit = defaultIssueLogLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// CreateSetting validates and persists a new setting. Missing fields take
// their defaults: NONE date pattern, pad length 4, next number 1, NEVER
// reset and active.
func (s *Service) CreateSetting(ctx context.Context, in SettingInput) (*serial.Setting, error) {
	verr := &serial.ValidationError{}
	setting := in.apply(serial.Setting{
		PadLength:  serial.DefaultPadLength,
		NextNumber: serial.DefaultNextNumber,
		IsActive:   true,
	}, verr)
	if in.NextNumber.Valid {
		setting.NextNumber = in.NextNumber.Value
	}

	setting = setting.Normalize()
	if err := mergeValidation(verr, setting.Validate()); err != nil {
		return nil, err
	}

	if setting.IsActive {
		if err := s.ensureScopeFree(ctx, setting.Scope(), ""); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Create(ctx, setting)
	if err != nil {
		return nil, fmt.Errorf("create serial setting: %w", err)
	}

	s.log.Info("serial setting created",
		"id", created.ID,
		"property_code", created.PropertyCode,
		"doc_type", created.DocType,
		"store_code", created.StoreCode,
	)
	s.cacheSet(*created)
	return created, nil
}

// UpdateSetting applies a partial update. nextNumber belongs to issuance, so
// it may only be echoed back unchanged.
func (s *Service) UpdateSetting(ctx context.Context, id string, in SettingInput) (*serial.Setting, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find serial setting: %w", err)
	}

	verr := &serial.ValidationError{}
	next := in.apply(*current, verr)
	if in.NextNumber.Valid && serial.ClampNextNumber(in.NextNumber.Value) != current.NextNumber {
		verr.Add("nextNumber", "is advanced by issuance and cannot be changed")
	}

	next = next.Normalize()
	if err := mergeValidation(verr, next.Validate()); err != nil {
		return nil, err
	}

	if next.IsActive {
		if err := s.ensureScopeFree(ctx, next.Scope(), id); err != nil {
			return nil, err
		}
	}

	// A new period layout must not be mistaken for a rollover on the next
	// issuance, so the running period is re-keyed in place.
	if current.PeriodKey != "" &&
		(next.ResetFrequency != current.ResetFrequency || next.DatePattern != current.DatePattern) {
		next.PeriodKey = serial.PeriodKey(next.ResetFrequency, next.DatePattern, s.clock())
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("update serial setting: %w", err)
	}

	s.log.Info("serial setting updated", "id", updated.ID)
	s.cacheDelete(id)
	return updated, nil
}

// DeleteSetting removes a setting.
func (s *Service) DeleteSetting(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete serial setting: %w", err)
	}
	s.log.Info("serial setting deleted", "id", id)
	s.cacheDelete(id)
	return nil
}

// GetSetting returns a setting, served from the cache when possible.
func (s *Service) GetSetting(ctx context.Context, id string) (*serial.Setting, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(id); ok {
			return &cached, nil
		}
	}

	setting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find serial setting: %w", err)
	}
	s.cacheSet(*setting)
	return setting, nil
}

// ListSettings returns one page of settings.
func (s *Service) ListSettings(ctx context.Context, req ListRequest) (*ListSettingsResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	items, total, filtered, err := s.repo.List(ctx, req.query())
	if err != nil {
		return nil, fmt.Errorf("list serial settings: %w", err)
	}
	if items == nil {
		items = []serial.Setting{}
	}

	return &ListSettingsResponse{
		Total:     total,
		Filtrados: filtered,
		Data:      items,
	}, nil
}

// PreviewDraft renders the number a draft setting would produce. It never
// fails: unusable fields fall back to their defaults.
func (s *Service) PreviewDraft(in SettingInput, asOf time.Time) PreviewResponse {
	t := s.asOf(asOf)
	return PreviewResponse{
		Preview: serial.Format(in.Pattern(), t),
		AsOf:    t,
	}
}

// PreviewSetting renders the number the next issuance of a stored setting
// would produce, taking a pending period reset into account.
func (s *Service) PreviewSetting(ctx context.Context, id string, asOf time.Time) (*PreviewResponse, error) {
	setting, err := s.GetSetting(ctx, id)
	if err != nil {
		return nil, err
	}

	t := s.asOf(asOf)
	return &PreviewResponse{
		Preview: serial.Preview(*setting, t),
		AsOf:    t,
	}, nil
}

// IssueNext atomically takes the next number of a scope. The ledger entry is
// written after the counter has advanced; a ledger failure is logged and
// does not undo the issuance.
func (s *Service) IssueNext(ctx context.Context, req IssueRequest) (*IssueResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	scope := req.Scope()
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	issued, err := s.repo.Issue(ctx, scope, s.clock())
	if err != nil {
		return nil, fmt.Errorf("issue serial number: %w", err)
	}
	s.cacheDelete(issued.SettingID)

	correlationID := reqctx.GetCorrelationID(ctx)
	s.log.Info("serial number issued",
		"setting_id", issued.SettingID,
		"serial", issued.Serial,
		"number", issued.Number,
		"period_key", issued.PeriodKey,
		"correlation_id", correlationID,
	)

	if s.ledger != nil {
		record := audit.IssueRecord{
			SettingID:     issued.SettingID,
			PropertyCode:  issued.Scope.PropertyCode,
			DocType:       issued.Scope.DocType,
			StoreCode:     issued.Scope.StoreCode,
			Number:        issued.Number,
			Serial:        issued.Serial,
			PeriodKey:     issued.PeriodKey,
			CorrelationID: correlationID,
			IssuedAt:      issued.IssuedAt,
		}
		if err := s.ledger.Save(ctx, record); err != nil {
			s.log.Error("failed to record issued serial number",
				"setting_id", issued.SettingID,
				"serial", issued.Serial,
				"error", err,
			)
		}
	}

	return toIssueResponse(issued), nil
}

// ListIssues returns the most recent ledger entries of a setting.
func (s *Service) ListIssues(ctx context.Context, id string, limit int) (*ListIssuesResponse, error) {
	if _, err := s.GetSetting(ctx, id); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.cfg.IssueLogLimit {
		limit = s.cfg.IssueLogLimit
	}

	records := []audit.IssueRecord{}
	if s.ledger != nil {
		found, err := s.ledger.FindBySetting(ctx, id, limit)
		if err != nil {
			return nil, fmt.Errorf("list issued serial numbers: %w", err)
		}
		if found != nil {
			records = found
		}
	}

	return &ListIssuesResponse{SettingID: id, Data: records}, nil
}

// ParseAsOf reads an optional reference date. Dates without a time are taken
// at midnight in the business timezone; an empty value means now.
func (s *Service) ParseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, s.cfg.Location); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		verr := &serial.ValidationError{}
		verr.Add("asOf", "must be a date (YYYY-MM-DD) or an RFC3339 timestamp")
		return time.Time{}, verr
	}
	return t, nil
}

func (s *Service) ensureScopeFree(ctx context.Context, scope serial.Scope, excludeID string) error {
	exists, err := s.repo.ExistsActiveScope(ctx, scope, excludeID)
	if err != nil {
		return fmt.Errorf("check serial setting scope: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s/%s/%s", serial.ErrDuplicateScope, scope.PropertyCode, scope.DocType, scope.StoreCode)
	}
	return nil
}

func (s *Service) clock() time.Time {
	return s.now().In(s.cfg.Location)
}

func (s *Service) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return s.clock()
	}
	return t.In(s.cfg.Location)
}

func (s *Service) cacheSet(setting serial.Setting) {
	if s.cache != nil {
		s.cache.Set(setting)
	}
}

func (s *Service) cacheDelete(id string) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}

// mergeValidation folds err into verr when it is a validation error and
// returns the combined result.
func mergeValidation(verr *serial.ValidationError, err error) error {
	if err != nil {
		var other *serial.ValidationError
		if !errors.As(err, &other) {
			return err
		}
		verr.Fields = append(verr.Fields, other.Fields...)
	}
	return verr.OrNil()
}
