package testutil

import (
	"context"
	"time"

	"3tcapital/ms_numeracion_core/internal/core/audit"
	"3tcapital/ms_numeracion_core/internal/core/serial"
)

// MockSerialRepository is a mock implementation of serial.Repository for testing.
type MockSerialRepository struct {
	CreateFunc            func(ctx context.Context, setting serial.Setting) (*serial.Setting, error)
	UpdateFunc            func(ctx context.Context, setting serial.Setting) (*serial.Setting, error)
	DeleteFunc            func(ctx context.Context, id string) error
	FindByIDFunc          func(ctx context.Context, id string) (*serial.Setting, error)
	ExistsActiveScopeFunc func(ctx context.Context, scope serial.Scope, excludeID string) (bool, error)
	ListFunc              func(ctx context.Context, query serial.ListQuery) ([]serial.Setting, int, int, error)
	IssueFunc             func(ctx context.Context, scope serial.Scope, asOf time.Time) (*serial.IssuedNumber, error)
}

// Create calls the mock function if set, otherwise echoes the setting back with an id.
func (m *MockSerialRepository) Create(ctx context.Context, setting serial.Setting) (*serial.Setting, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, setting)
	}
	setting.ID = "00000000-0000-0000-0000-000000000001"
	return &setting, nil
}

// Update calls the mock function if set, otherwise echoes the setting back.
func (m *MockSerialRepository) Update(ctx context.Context, setting serial.Setting) (*serial.Setting, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, setting)
	}
	return &setting, nil
}

// Delete calls the mock function if set, otherwise returns nil.
func (m *MockSerialRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// FindByID calls the mock function if set, otherwise returns serial.ErrNotFound.
func (m *MockSerialRepository) FindByID(ctx context.Context, id string) (*serial.Setting, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, serial.ErrNotFound
}

// ExistsActiveScope calls the mock function if set, otherwise returns false.
func (m *MockSerialRepository) ExistsActiveScope(ctx context.Context, scope serial.Scope, excludeID string) (bool, error) {
	if m.ExistsActiveScopeFunc != nil {
		return m.ExistsActiveScopeFunc(ctx, scope, excludeID)
	}
	return false, nil
}

// List calls the mock function if set, otherwise returns an empty page.
func (m *MockSerialRepository) List(ctx context.Context, query serial.ListQuery) ([]serial.Setting, int, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, query)
	}
	return []serial.Setting{}, 0, 0, nil
}

// Issue calls the mock function if set, otherwise returns serial.ErrNoActiveSetting.
func (m *MockSerialRepository) Issue(ctx context.Context, scope serial.Scope, asOf time.Time) (*serial.IssuedNumber, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, scope, asOf)
	}
	return nil, serial.ErrNoActiveSetting
}

// Ensure MockSerialRepository implements serial.Repository interface.
var _ serial.Repository = (*MockSerialRepository)(nil)

// MockIssueLedger is a mock implementation of audit.Repository for testing.
type MockIssueLedger struct {
	SaveFunc          func(ctx context.Context, record audit.IssueRecord) error
	FindBySettingFunc func(ctx context.Context, settingID string, limit int) ([]audit.IssueRecord, error)
}

// Save calls the mock function if set, otherwise returns nil.
func (m *MockIssueLedger) Save(ctx context.Context, record audit.IssueRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}
	return nil
}

// FindBySetting calls the mock function if set, otherwise returns an empty slice.
func (m *MockIssueLedger) FindBySetting(ctx context.Context, settingID string, limit int) ([]audit.IssueRecord, error) {
	if m.FindBySettingFunc != nil {
		return m.FindBySettingFunc(ctx, settingID, limit)
	}
	return []audit.IssueRecord{}, nil
}

// Ensure MockIssueLedger implements audit.Repository interface.
var _ audit.Repository = (*MockIssueLedger)(nil)
