package audit

import (
	"context"
	"time"
)

// IssueRecord is one line of the issuance ledger: which number a scope handed
// out, when, and for which request.
type IssueRecord struct {
	ID            int64     `json:"id"`
	SettingID     string    `json:"settingId"`
	PropertyCode  string    `json:"propertyCode"`
	DocType       string    `json:"docType"`
	StoreCode     string    `json:"storeCode"`
	Number        int64     `json:"number"`
	Serial        string    `json:"serial"`
	PeriodKey     string    `json:"periodKey"`
	CorrelationID string    `json:"correlationId"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// Repository defines the contract for persisting and retrieving issued numbers.
type Repository interface {
	// Save appends a record to the ledger.
	Save(ctx context.Context, record IssueRecord) error

	// FindBySetting returns the most recent records of a setting, newest first.
	FindBySetting(ctx context.Context, settingID string, limit int) ([]IssueRecord, error)
}
