package serial

import (
	"context"
	"time"
)

// ListQuery describes a paginated, searchable settings listing.
type ListQuery struct {
	Start          int    // 0-based offset
	Length         int    // page size, -1 for all
	Search         string // free text over codes and literals
	OrderColumn    string
	OrderDirection string // "asc" or "desc"
	PropertyCode   string
	DocType        string
	IsActive       *bool
}

// IssuedNumber is the result of one atomic issuance.
type IssuedNumber struct {
	SettingID string    `json:"settingId"`
	Scope     Scope     `json:"scope"`
	Number    int64     `json:"number"`
	Serial    string    `json:"serial"`
	PeriodKey string    `json:"periodKey"`
	IssuedAt  time.Time `json:"issuedAt"`
}

// Repository defines the persistence operations for serial settings.
type Repository interface {
	// Create persists a new setting and returns it with id and timestamps set.
	Create(ctx context.Context, setting Setting) (*Setting, error)

	// Update overwrites the editable fields of an existing setting.
	// Returns ErrNotFound if the id does not exist.
	Update(ctx context.Context, setting Setting) (*Setting, error)

	// Delete removes a setting. Returns ErrNotFound if the id does not exist.
	Delete(ctx context.Context, id string) error

	// FindByID returns the setting or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Setting, error)

	// ExistsActiveScope reports whether an active setting other than excludeID
	// owns the scope.
	ExistsActiveScope(ctx context.Context, scope Scope, excludeID string) (bool, error)

	// List returns one page of settings, the total row count and the count
	// matching the query filters.
	List(ctx context.Context, query ListQuery) (items []Setting, total int, filtered int, err error)

	// Issue atomically takes the next number of the active setting owning
	// scope, restarting at 1 when the reset period changed, and advances the
	// counter. Returns ErrNoActiveSetting if the scope has none.
	Issue(ctx context.Context, scope Scope, asOf time.Time) (*IssuedNumber, error)
}
